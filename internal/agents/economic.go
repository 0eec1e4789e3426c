package agents

import (
	"context"
	"fmt"
	"log"

	"stocksage/internal/llm"
	"stocksage/internal/models"
)

const economicConfidence = 0.85

// EconomicAgent analyzes the macroeconomic backdrop for a sector using one
// structured model call over FRED-style indicator payloads.
type EconomicAgent struct {
	name   string
	caller *llm.Caller
}

func NewEconomicAgent(caller *llm.Caller) *EconomicAgent {
	return &EconomicAgent{
		name:   "Economic Context Agent",
		caller: caller,
	}
}

func (a *EconomicAgent) Name() string { return a.name }

// Analyze evaluates macro conditions for the given sector. The payload holds
// optional "interest_rates" and "unemployment" indicator maps; missing
// indicators are rendered as N/A in the prompt.
func (a *EconomicAgent) Analyze(ctx context.Context, sector string, data map[string]interface{}) (*models.AnalysisResult, error) {
	log.Printf("[%s] Analyzing %s sector", a.name, sector)

	prompt := a.buildPrompt(sector, data)

	raw, err := a.caller.Exchange(ctx,
		"You are an expert macroeconomic analyst. Provide analysis in valid JSON format.",
		prompt, 0.7, 500)
	if err != nil {
		return nil, fmt.Errorf("economic analysis for %s: %w", sector, err)
	}

	findings, perr := llm.ParseJSONObject(raw)
	if perr != nil {
		findings = llm.RawFallback(raw)
		findings["interest_rate_impact"] = "Analysis provided in raw format"
	}

	recommendations := normalizeRecommendations(findings["recommendations"])

	return models.NewAnalysisResult(a.name, "FRED + LLM",
		findings, economicConfidence, recommendations, raw)
}

func (a *EconomicAgent) buildPrompt(sector string, data map[string]interface{}) string {
	return fmt.Sprintf(`You are an expert macroeconomic analyst. Assess the economic environment for companies in the %s sector.

ECONOMIC INDICATORS:
Short-Term Interest Rate: %s
Unemployment Rate: %s

ANALYSIS REQUIRED:
Provide your analysis in JSON format with these fields:
{
    "interest_rate_impact": "how the current rate environment affects this sector",
    "employment_impact": "how labor market conditions affect this sector",
    "inflation_impact": "inflationary pressures relevant to this sector",
    "sector_outlook": "favorable/neutral/unfavorable with 2-3 sentence explanation",
    "key_observations": ["observation 1", "observation 2", "observation 3"],
    "recommendations": ["specific recommendation 1", "specific recommendation 2", "specific recommendation 3"]
}

Be specific and focus on what the indicators imply for %s companies.`,
		sector,
		indicatorValue(data, "interest_rates"),
		indicatorValue(data, "unemployment"),
		sector)
}

// indicatorValue renders the latest value of a macro indicator payload, or
// N/A when the source was unavailable.
func indicatorValue(data map[string]interface{}, key string) string {
	indicator, ok := data[key].(map[string]interface{})
	if !ok || indicator == nil {
		return "N/A"
	}
	if v, ok := floatField(indicator, "latest_value"); ok {
		return fmt.Sprintf("%.2f%%", v)
	}
	return "N/A"
}
