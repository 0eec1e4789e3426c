package agents

import (
	"context"
	"fmt"
	"log"

	"stocksage/internal/llm"
	"stocksage/internal/models"
)

const fundamentalsConfidence = 0.82

// FundamentalsAgent analyzes profitability, growth and financial health from
// the fundamentals snapshot using one structured model call.
type FundamentalsAgent struct {
	name   string
	caller *llm.Caller
}

func NewFundamentalsAgent(caller *llm.Caller) *FundamentalsAgent {
	return &FundamentalsAgent{
		name:   "Fundamentals Agent",
		caller: caller,
	}
}

func (a *FundamentalsAgent) Name() string { return a.name }

func (a *FundamentalsAgent) Analyze(ctx context.Context, symbol string, data map[string]interface{}) (*models.AnalysisResult, error) {
	log.Printf("[%s] Analyzing %s", a.name, symbol)

	prompt := a.buildPrompt(symbol, data)

	raw, err := a.caller.Exchange(ctx,
		"You are an expert fundamentals analyst. Provide analysis in valid JSON format.",
		prompt, 0.7, 500)
	if err != nil {
		return nil, fmt.Errorf("fundamentals analysis for %s: %w", symbol, err)
	}

	findings, perr := llm.ParseJSONObject(raw)
	if perr != nil {
		findings = llm.RawFallback(raw)
		findings["profitability"] = "Analysis provided in raw format"
	}

	recommendations := normalizeRecommendations(findings["recommendations"])

	return models.NewAnalysisResult(a.name, "Yahoo Finance + Alpha Vantage + LLM",
		findings, fundamentalsConfidence, recommendations, raw)
}

func (a *FundamentalsAgent) buildPrompt(symbol string, data map[string]interface{}) string {
	revenue, _ := floatField(data, "revenue")
	marketCap, _ := floatField(data, "market_cap")

	return fmt.Sprintf(`You are an expert fundamentals analyst. Evaluate this company's financial health and provide investment insights.

COMPANY:
Symbol: %s
Company: %s
Sector: %s

PROFITABILITY:
Profit Margin: %s
Operating Margin: %s
Return on Equity: %s
Revenue: $%.0f
EBITDA: %s

GROWTH:
Revenue Growth: %s
Earnings Growth: %s

BALANCE SHEET & VALUATION:
Debt to Equity: %s
PE Ratio: %s
Forward PE: %s
Market Cap: $%.0f
Dividend Yield: %s

ANALYSIS REQUIRED:
Provide your analysis in JSON format with these fields:
{
    "profitability": "strong/adequate/weak with reasoning based on margins and returns",
    "growth_outlook": "accelerating/stable/declining with reasoning based on revenue and earnings trends",
    "financial_health": "healthy/stretched/distressed with reasoning based on leverage",
    "valuation_context": "how the valuation multiples compare to the fundamentals",
    "key_observations": ["observation 1", "observation 2", "observation 3"],
    "recommendations": ["specific recommendation 1", "specific recommendation 2", "specific recommendation 3"]
}

Be specific, data-driven, and actionable. Focus on the metrics provided.`,
		symbol,
		stringField(data, "company_name"),
		stringField(data, "sector"),
		numberOrNA(data, "profit_margin", "%.4f"),
		numberOrNA(data, "operating_margin", "%.4f"),
		numberOrNA(data, "return_on_equity", "%.4f"),
		revenue,
		numberOrNA(data, "ebitda", "%.0f"),
		numberOrNA(data, "revenue_growth", "%.4f"),
		numberOrNA(data, "earnings_growth", "%.4f"),
		numberOrNA(data, "debt_to_equity", "%.2f"),
		numberOrNA(data, "pe_ratio", "%.2f"),
		numberOrNA(data, "forward_pe", "%.2f"),
		marketCap,
		numberOrNA(data, "dividend_yield", "%.4f"))
}
