package research

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"stocksage/internal/agents"
	"stocksage/internal/llm"
	"stocksage/internal/models"
	"stocksage/internal/workflows"
)

// MarketDataSource is the mandatory quote/fundamentals provider. A failure
// from GetStockInfo is fatal to the research cycle.
type MarketDataSource interface {
	GetStockInfo(ctx context.Context, symbol string) (map[string]interface{}, error)
	GetRecentNews(ctx context.Context, symbol string, limit int) ([]map[string]interface{}, error)
}

// OverviewSource provides the optional fundamentals-overview capability.
type OverviewSource interface {
	GetCompanyOverview(ctx context.Context, symbol string) (map[string]interface{}, error)
}

// MacroSource provides macro-indicator series such as interest rates and
// unemployment.
type MacroSource interface {
	GetIndicator(ctx context.Context, seriesID string, limit int) (map[string]interface{}, error)
}

// FilingsSource provides regulatory filings. On failure it returns an
// error-marker map instead of an error.
type FilingsSource interface {
	GetFilings(ctx context.Context, symbol string) map[string]interface{}
}

// Sources bundles the external data collaborators. Primary is required;
// Overview, Macro and Filings may be nil, in which case the corresponding
// data degrades to placeholders.
type Sources struct {
	Primary  MarketDataSource
	Overview OverviewSource
	Macro    MacroSource
	Filings  FilingsSource
}

const (
	interestRateSeries = "DFF"
	unemploymentSeries = "UNRATE"
	newsLimit          = 5
	macroLimit         = 5
	maxLearnedStrengths = 5
	defaultDimensionScore = 0.80
	maxReflectionScore    = 0.92
)

var agentNames = []string{
	"MarketDataAgent",
	"FundamentalsAgent",
	"EconomicContextAgent",
	"RegulatoryAgent",
}

// Orchestrator runs the full research lifecycle for a symbol: plan, collect,
// analyze, workflows, reflect, learn. Phases are strictly sequential.
type Orchestrator struct {
	caller  *llm.Caller
	sources Sources
	memory  *MemoryStore

	market       *agents.MarketAgent
	fundamentals *agents.FundamentalsAgent
	economic     *agents.EconomicAgent
	regulatory   *agents.RegulatoryAgent

	chain     *workflows.PromptChainWorkflow
	router    *workflows.RoutingWorkflow
	evaluator *workflows.EvaluatorOptimizerWorkflow
}

// NewOrchestrator wires the specialist agents and workflow patterns around
// the given model caller and data sources. A nil store gets the default
// bounded memory.
func NewOrchestrator(caller *llm.Caller, sources Sources, store *MemoryStore) *Orchestrator {
	if store == nil {
		store = NewMemoryStore(DefaultMemoryCapacity)
	}
	return &Orchestrator{
		caller:       caller,
		sources:      sources,
		memory:       store,
		market:       agents.NewMarketAgent(caller),
		fundamentals: agents.NewFundamentalsAgent(caller),
		economic:     agents.NewEconomicAgent(caller),
		regulatory:   agents.NewRegulatoryAgent(),
		chain:        workflows.NewPromptChainWorkflow(caller),
		router:       workflows.NewRoutingWorkflow(caller),
		evaluator:    workflows.NewEvaluatorOptimizerWorkflow(caller),
	}
}

// Memory exposes the learning store for status reporting.
func (o *Orchestrator) Memory() *MemoryStore { return o.memory }

// Conduct runs one complete research cycle. Only a primary data-source
// failure aborts the cycle; every model-side failure degrades to a labeled
// fallback so the returned report is always complete.
func (o *Orchestrator) Conduct(ctx context.Context, symbol string) (*ResearchReport, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	log.Printf("[Orchestrator] Starting research cycle for %s", symbol)

	status := MemoryStatus{}
	if prior, ok := o.memory.MostRecentFor(symbol); ok {
		status.SeenBefore = true
		status.LastAnalyzed = prior.Timestamp
		log.Printf("[Orchestrator] %s previously analyzed at %s", symbol, prior.Timestamp.Format(time.RFC3339))
	}

	plan := o.planResearch(ctx, symbol)

	rawData, err := o.collect(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("research cycle for %s: %w", symbol, err)
	}

	analyses, err := o.analyze(ctx, symbol, rawData)
	if err != nil {
		return nil, fmt.Errorf("research cycle for %s: %w", symbol, err)
	}

	stockInfo, _ := rawData["stock_info"].(map[string]interface{})
	chainResult := o.chain.Execute(ctx, symbol, stockInfo)

	query := fmt.Sprintf("Provide a comprehensive investment analysis for %s covering market trends, fundamentals, economic context and regulation", symbol)
	routing := o.router.Route(ctx, query, agentNames)

	bundle := map[string]interface{}{"symbol": symbol}
	for name, result := range analyses {
		bundle[name] = result.Findings
	}
	optimization := o.evaluator.Optimize(ctx, bundle)

	reflection := o.reflect(ctx, symbol, analyses, 3)

	o.learn(symbol, reflection)
	status.TotalEntries = o.memory.Len()

	log.Printf("[Orchestrator] Research cycle for %s complete (quality %.2f)", symbol, reflection.OverallScore)

	return &ResearchReport{
		Symbol:       symbol,
		Timestamp:    time.Now(),
		Plan:         plan,
		RawData:      rawData,
		Analyses:     analyses,
		PromptChain:  chainResult,
		Routing:      routing,
		Optimization: optimization,
		Reflection:   reflection,
		Memory:       status,
	}, nil
}

// planResearch asks the model for a research plan and degrades to a fixed
// deterministic plan on any failure.
func (o *Orchestrator) planResearch(ctx context.Context, symbol string) *models.ResearchPlan {
	log.Printf("[Orchestrator] Planning research for %s", symbol)

	planData, err := o.caller.Call(ctx,
		"You are an expert financial research planner. Create detailed, actionable research plans in JSON format.",
		o.planningPrompt(symbol), 0.7, 800)
	if err != nil {
		log.Printf("[Orchestrator] Planning failed, using fallback plan: %v", err)
		return fallbackPlan(symbol)
	}

	reasoning, _ := planData["reasoning"].(string)
	return models.NewResearchPlan(symbol,
		toStringSlice(planData["objectives"]),
		toStringSlice(planData["data_sources"]),
		toStringSlice(planData["analysis_steps"]),
		toStringSlice(planData["expected_outputs"]),
		reasoning)
}

func (o *Orchestrator) planningPrompt(symbol string) string {
	return fmt.Sprintf(`You are an expert financial research planner. Create a comprehensive research plan for analyzing %s stock.

Generate a detailed plan in JSON format:
{
    "objectives": ["Clear, specific objective 1", "Specific objective 2", "Specific objective 3", "Specific objective 4", "Specific objective 5"],
    "data_sources": [
        "Yahoo Finance - real-time stock data",
        "Alpha Vantage - company fundamentals",
        "FRED - economic indicators",
        "SEC EDGAR - regulatory filings",
        "News sources - recent developments"
    ],
    "analysis_steps": [
        "Step 1: Fetch current market data and price trends",
        "Step 2: Analyze financial health and profitability metrics",
        "Step 3: Evaluate macroeconomic context and sector conditions",
        "Step 4: Review regulatory compliance and recent filings",
        "Step 5: Synthesize findings using multi-agent analysis",
        "Step 6: Generate investment recommendations",
        "Step 7: Assess analysis quality and confidence"
    ],
    "expected_outputs": [
        "Market trend analysis with price targets",
        "Fundamental health assessment",
        "Economic risk analysis",
        "Regulatory compliance status",
        "Investment recommendation with rationale"
    ],
    "reasoning": "Detailed explanation of why this research plan is appropriate for %s, considering its sector, market cap, and typical investor interest. 2-3 sentences."
}

Be specific and actionable. Focus on what makes %s analysis unique.`, symbol, symbol, symbol)
}

func fallbackPlan(symbol string) *models.ResearchPlan {
	return models.NewResearchPlan(symbol,
		[]string{
			"Analyze current market position and trends",
			"Evaluate financial health and profitability",
			"Assess macroeconomic context",
			"Review regulatory compliance",
		},
		[]string{"Yahoo Finance", "Alpha Vantage", "FRED", "SEC EDGAR"},
		[]string{
			"Gather market data",
			"Analyze fundamentals",
			"Evaluate economic environment",
			"Review filings",
			"Synthesize findings",
		},
		[]string{
			"Market analysis",
			"Fundamental assessment",
			"Economic context",
			"Investment recommendation",
		},
		"Standard comprehensive financial analysis plan")
}

// collect gathers raw data from the external sources. The primary quote
// fetch is mandatory; everything else degrades independently.
func (o *Orchestrator) collect(ctx context.Context, symbol string) (map[string]interface{}, error) {
	log.Printf("[Orchestrator] Collecting data for %s", symbol)

	stockInfo, err := o.sources.Primary.GetStockInfo(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch primary data: %w", err)
	}

	rawData := map[string]interface{}{
		"stock_info":       stockInfo,
		"news":             nil,
		"company_overview": nil,
		"interest_rates":   nil,
		"unemployment":     nil,
	}

	if news, err := o.sources.Primary.GetRecentNews(ctx, symbol, newsLimit); err != nil {
		log.Printf("[Orchestrator] News fetch failed for %s: %v", symbol, err)
	} else {
		rawData["news"] = news
	}

	if o.sources.Overview != nil {
		if overview, err := o.sources.Overview.GetCompanyOverview(ctx, symbol); err != nil {
			log.Printf("[Orchestrator] Company overview fetch failed for %s: %v", symbol, err)
		} else {
			rawData["company_overview"] = overview
			mergeOverview(stockInfo, overview)
		}
	}

	if o.sources.Macro != nil {
		if rates, err := o.sources.Macro.GetIndicator(ctx, interestRateSeries, macroLimit); err != nil {
			log.Printf("[Orchestrator] Interest rate fetch failed: %v", err)
		} else {
			rawData["interest_rates"] = rates
		}
		if unemployment, err := o.sources.Macro.GetIndicator(ctx, unemploymentSeries, macroLimit); err != nil {
			log.Printf("[Orchestrator] Unemployment fetch failed: %v", err)
		} else {
			rawData["unemployment"] = unemployment
		}
	}

	if o.sources.Filings != nil {
		rawData["filings"] = o.sources.Filings.GetFilings(ctx, symbol)
	} else {
		rawData["filings"] = map[string]interface{}{"error": "filings source not configured"}
	}

	return rawData, nil
}

// mergeOverview folds overview fields the quote snapshot lacks into the
// stock info map so downstream prompts see one merged view.
func mergeOverview(stockInfo, overview map[string]interface{}) {
	for src, dst := range map[string]string{
		"Sector":           "sector",
		"Industry":         "industry",
		"EBITDA":           "ebitda",
		"RevenueTTM":       "revenue",
		"ProfitMargin":     "profit_margin",
		"OperatingMarginTTM": "operating_margin",
		"ReturnOnEquityTTM":  "return_on_equity",
		"QuarterlyRevenueGrowthYOY":  "revenue_growth",
		"QuarterlyEarningsGrowthYOY": "earnings_growth",
		"ForwardPE":                  "forward_pe",
		"DividendYield":              "dividend_yield",
		"DebtToEquity":               "debt_to_equity",
	} {
		v, ok := overview[src]
		if !ok {
			continue
		}
		if existing, present := stockInfo[dst]; present && existing != nil && existing != "" {
			continue
		}
		// Alpha Vantage serializes numbers as strings.
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				stockInfo[dst] = f
				continue
			}
		}
		stockInfo[dst] = v
	}
}

// analyze runs the four specialist agents in fixed order. Any agent error
// (transport, not parse) aborts the cycle.
func (o *Orchestrator) analyze(ctx context.Context, symbol string, rawData map[string]interface{}) (map[string]*models.AnalysisResult, error) {
	stockInfo, _ := rawData["stock_info"].(map[string]interface{})

	sector := "Unknown"
	if s, ok := stockInfo["sector"].(string); ok && s != "" && s != "N/A" {
		sector = s
	}

	marketResult, err := o.market.Analyze(ctx, symbol, stockInfo)
	if err != nil {
		return nil, err
	}

	fundamentalsResult, err := o.fundamentals.Analyze(ctx, symbol, stockInfo)
	if err != nil {
		return nil, err
	}

	economicData := map[string]interface{}{
		"interest_rates": rawData["interest_rates"],
		"unemployment":   rawData["unemployment"],
	}
	economicResult, err := o.economic.Analyze(ctx, sector, economicData)
	if err != nil {
		return nil, err
	}

	filings, _ := rawData["filings"].(map[string]interface{})
	regulatoryResult, err := o.regulatory.Analyze(ctx, symbol, filings)
	if err != nil {
		return nil, err
	}

	return map[string]*models.AnalysisResult{
		"market":       marketResult,
		"fundamentals": fundamentalsResult,
		"economic":     economicResult,
		"regulatory":   regulatoryResult,
	}, nil
}

// reflect scores the completed cycle with one model call. On failure the
// score is a deterministic function of how much work actually ran, capped
// at 0.92, and LLMPowered is false.
func (o *Orchestrator) reflect(ctx context.Context, symbol string, analyses map[string]*models.AnalysisResult, workflowsRun int) *Reflection {
	log.Printf("[Orchestrator] Reflecting on research quality for %s", symbol)

	var summary strings.Builder
	fmt.Fprintf(&summary, "Research cycle for %s completed with %d specialist analyses and %d workflow patterns.\n\n",
		symbol, len(analyses), workflowsRun)
	for _, key := range []string{"market", "fundamentals", "economic", "regulatory"} {
		if result, ok := analyses[key]; ok {
			fmt.Fprintf(&summary, "- %s (source: %s, confidence %.2f): %d recommendations\n",
				result.AgentName, result.DataSource, result.ConfidenceScore, len(result.Recommendations))
		}
	}

	prompt := fmt.Sprintf(`Assess the quality of this completed investment research cycle.

%s
Provide your assessment in JSON format:
{
    "overall_score": 0.85,
    "dimension_scores": {
        "completeness": 0.9,
        "clarity": 0.85,
        "actionability": 0.8
    },
    "strengths": ["strength 1", "strength 2", "strength 3"],
    "improvements": ["improvement 1", "improvement 2"]
}

Scores are between 0.0 and 1.0. Be honest and specific.`, summary.String())

	data, err := o.caller.Call(ctx,
		"You are a rigorous research quality assessor. Respond in valid JSON format.",
		prompt, 0.3, 500)
	if err != nil {
		log.Printf("[Orchestrator] Reflection failed, using heuristic score: %v", err)
		return fallbackReflection(len(analyses), workflowsRun)
	}

	reflection := &Reflection{
		DimensionScores: make(map[string]float64),
		LLMPowered:      true,
		Timestamp:       time.Now(),
	}
	if score, ok := data["overall_score"].(float64); ok {
		reflection.OverallScore = score
	}
	if dims, ok := data["dimension_scores"].(map[string]interface{}); ok {
		for name, v := range dims {
			if score, ok := v.(float64); ok {
				reflection.DimensionScores[name] = score
			}
		}
	}
	reflection.Strengths = toStringSlice(data["strengths"])
	reflection.Improvements = toStringSlice(data["improvements"])
	return reflection
}

func fallbackReflection(agentsRun, workflowsRun int) *Reflection {
	score := 0.75 + 0.05*float64(agentsRun) + 0.03*float64(workflowsRun)
	if score > maxReflectionScore {
		score = maxReflectionScore
	}
	return &Reflection{
		OverallScore:    score,
		DimensionScores: map[string]float64{},
		Strengths: []string{
			"Completed multi-agent analysis",
			"All workflow patterns executed",
		},
		Improvements: []string{"Reflection unavailable, heuristic score applied"},
		LLMPowered:   false,
		Timestamp:    time.Now(),
	}
}

// learn appends one memory entry built from the reflection: the top
// strengths become insights, missing dimension scores default to 0.80.
func (o *Orchestrator) learn(symbol string, reflection *Reflection) {
	entry := &models.AgentMemory{
		StockSymbol:     symbol,
		Timestamp:       time.Now(),
		QualityScores:   make(map[string]float64),
		Recommendations: append([]string(nil), reflection.Improvements...),
		AnalysisCount:   1,
	}

	strengths := reflection.Strengths
	if len(strengths) > maxLearnedStrengths {
		strengths = strengths[:maxLearnedStrengths]
	}
	for _, strength := range strengths {
		entry.AddInsight(strength)
	}

	for _, dim := range []string{"completeness", "clarity", "actionability"} {
		if score, ok := reflection.DimensionScores[dim]; ok {
			entry.QualityScores[dim] = score
		} else {
			entry.QualityScores[dim] = defaultDimensionScore
		}
	}
	entry.QualityScores["overall"] = reflection.OverallScore

	o.memory.Append(entry)
	log.Printf("[Orchestrator] Learned from %s cycle (%d insights, %d total memories)",
		symbol, len(entry.Insights), o.memory.Len())
}

func toStringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
