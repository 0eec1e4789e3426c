package agents

import (
	"context"
	"fmt"
	"log"

	"stocksage/internal/llm"
	"stocksage/internal/models"
)

const marketConfidence = 0.85

// MarketAgent analyzes price trends, volatility and valuation from the
// primary quote snapshot using one structured model call.
type MarketAgent struct {
	name   string
	caller *llm.Caller
}

func NewMarketAgent(caller *llm.Caller) *MarketAgent {
	return &MarketAgent{
		name:   "Market Data Agent",
		caller: caller,
	}
}

func (a *MarketAgent) Name() string { return a.name }

// Analyze runs one model call over the quote snapshot. Malformed JSON from
// the model degrades to a raw-findings fallback; transport errors are fatal.
func (a *MarketAgent) Analyze(ctx context.Context, symbol string, data map[string]interface{}) (*models.AnalysisResult, error) {
	log.Printf("[%s] Analyzing %s", a.name, symbol)

	prompt := a.buildPrompt(symbol, data)

	raw, err := a.caller.Exchange(ctx,
		"You are an expert market analyst. Provide analysis in valid JSON format.",
		prompt, 0.7, 500)
	if err != nil {
		return nil, fmt.Errorf("market analysis for %s: %w", symbol, err)
	}

	findings, perr := llm.ParseJSONObject(raw)
	if perr != nil {
		findings = llm.RawFallback(raw)
		findings["price_trend"] = "Analysis provided in raw format"
	}

	recommendations := normalizeRecommendations(findings["recommendations"])

	return models.NewAnalysisResult(a.name, "Yahoo Finance + LLM",
		findings, marketConfidence, recommendations, raw)
}

func (a *MarketAgent) buildPrompt(symbol string, data map[string]interface{}) string {
	currentPrice, _ := floatField(data, "current_price")
	prevClose, _ := floatField(data, "previous_close")
	week52High, _ := floatField(data, "52_week_high")
	week52Low, _ := floatField(data, "52_week_low")
	marketCap, _ := floatField(data, "market_cap")
	volume, _ := floatField(data, "volume")

	priceChange := PriceChange(currentPrice, prevClose)
	priceChangePct := PriceChangePercent(priceChange, prevClose)

	rangePosition := "N/A"
	if pos, ok := RangePosition(currentPrice, week52Low, week52High); ok {
		rangePosition = fmt.Sprintf("%.1f%%", pos)
	}

	return fmt.Sprintf(`You are an expert market analyst. Analyze this stock's market data and provide investment insights.

STOCK INFORMATION:
Symbol: %s
Company: %s
Sector: %s

PRICE METRICS:
Current Price: $%.2f
Previous Close: $%.2f
Price Change: $%.2f (%+.2f%%)
52-Week High: $%.2f
52-Week Low: $%.2f
52-Week Range Position: %s

VALUATION & RISK:
Market Cap: $%.0f
PE Ratio: %s
Beta (Volatility): %s
Volume: %.0f

ANALYSIS REQUIRED:
Provide your analysis in JSON format with these fields:
{
    "price_trend": "bullish/bearish/neutral with 2-3 sentence explanation",
    "volatility_assessment": "high/moderate/low with reasoning based on beta and price action",
    "valuation_opinion": "overvalued/undervalued/fairly valued with reasoning based on PE and market position",
    "technical_position": "analysis of 52-week range position and recent price action",
    "key_observations": ["observation 1", "observation 2", "observation 3"],
    "recommendations": ["specific recommendation 1", "specific recommendation 2", "specific recommendation 3"]
}

Be specific, data-driven, and actionable. Focus on the metrics provided.`,
		symbol,
		stringField(data, "company_name"),
		stringField(data, "sector"),
		currentPrice,
		prevClose,
		priceChange,
		priceChangePct,
		week52High,
		week52Low,
		rangePosition,
		marketCap,
		numberOrNA(data, "pe_ratio", "%.2f"),
		numberOrNA(data, "beta", "%.2f"),
		volume)
}
