// Package workflows implements the three reusable orchestration patterns:
// prompt chaining, routing and evaluator-optimizer.
package workflows

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"stocksage/internal/llm"
	"stocksage/internal/models"
)

// PromptChainWorkflow runs a fixed five-stage pipeline where each stage
// consumes the previous stage's output. The final two stages are LLM-powered
// and degrade to deterministic fallbacks on any model failure.
type PromptChainWorkflow struct {
	name   string
	caller *llm.Caller
}

func NewPromptChainWorkflow(caller *llm.Caller) *PromptChainWorkflow {
	return &PromptChainWorkflow{
		name:   "Prompt Chain Workflow",
		caller: caller,
	}
}

// Execute runs the five stages in order and records one intermediate entry
// per stage. It always completes all five stages.
func (w *PromptChainWorkflow) Execute(ctx context.Context, symbol string, data map[string]interface{}) *models.WorkflowResult {
	log.Printf("[%s] Executing for %s", w.name, symbol)

	start := time.Now()
	intermediate := make([]map[string]interface{}, 0, 5)

	ingested := w.ingest(data)
	intermediate = append(intermediate, map[string]interface{}{"step": 1, "name": "Ingest", "output": "Data ingested"})

	preprocessed := w.preprocess(ingested, symbol)
	intermediate = append(intermediate, map[string]interface{}{"step": 2, "name": "Preprocess", "output": "Data structured"})

	classified := w.classify(preprocessed)
	intermediate = append(intermediate, map[string]interface{}{"step": 3, "name": "Classify", "output": "Data classified"})

	insights := w.extractInsights(ctx, classified, symbol)
	intermediate = append(intermediate, map[string]interface{}{"step": 4, "name": "Extract (LLM)", "output": insights})

	summary := w.summarize(ctx, insights, symbol)
	intermediate = append(intermediate, map[string]interface{}{"step": 5, "name": "Summarize (LLM)", "output": summary})

	elapsed := time.Since(start).Seconds()
	log.Printf("[%s] Complete in %.2fs", w.name, elapsed)

	return &models.WorkflowResult{
		WorkflowName:         w.name,
		Timestamp:            time.Now(),
		StepsCompleted:       5,
		FinalOutput:          summary,
		IntermediateResults:  intermediate,
		ExecutionTimeSeconds: elapsed,
	}
}

// ingest wraps the raw payload with an ingestion timestamp.
func (w *PromptChainWorkflow) ingest(data map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"raw_data":    data,
		"ingested_at": time.Now().Format(time.RFC3339),
	}
}

// preprocess re-keys the payload by subject symbol.
func (w *PromptChainWorkflow) preprocess(data map[string]interface{}, symbol string) map[string]interface{} {
	return map[string]interface{}{
		"symbol":          symbol,
		"structured_data": data["raw_data"],
		"timestamp":       time.Now().Format(time.RFC3339),
	}
}

// classify tags the payload with fixed categories. The classification is
// static, not data-driven.
func (w *PromptChainWorkflow) classify(data map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"symbol": data["symbol"],
		"categories": map[string]bool{
			"market_data":      true,
			"fundamental_data": true,
			"economic_context": false,
		},
	}
}

// extractInsights asks the model for 3-5 insight strings; any failure yields
// exactly three generic insights referencing the symbol.
func (w *PromptChainWorkflow) extractInsights(ctx context.Context, classified map[string]interface{}, symbol string) []string {
	prompt := fmt.Sprintf(`Based on financial analysis of %s, extract 3-5 key investment insights.

Focus on:
- Market positioning and trends
- Financial health indicators
- Investment opportunities or risks

Provide insights as a JSON array of strings:
{"insights": ["insight 1", "insight 2", "insight 3"]}

Be specific and actionable.`, symbol)

	result, err := w.caller.CallOrRaw(ctx,
		"You are a financial analyst extracting key insights.",
		prompt, 0.7, 300)
	if err != nil {
		log.Printf("[%s] Insight extraction error: %v", w.name, err)
		return []string{
			fmt.Sprintf("Analysis completed for %s", symbol),
			"Key metrics evaluated",
			"Investment factors assessed",
		}
	}

	insights := toStringSlice(result["insights"])
	if len(insights) == 0 {
		return []string{
			fmt.Sprintf("Market analysis completed for %s", symbol),
			"Financial metrics evaluated",
			"Investment considerations identified",
		}
	}
	return insights
}

// summarize turns the insight list into a short executive summary; failures
// degrade to a deterministic string built from the first two insights.
func (w *PromptChainWorkflow) summarize(ctx context.Context, insights []string, symbol string) string {
	var insightLines strings.Builder
	for _, insight := range insights {
		fmt.Fprintf(&insightLines, "- %s\n", insight)
	}

	prompt := fmt.Sprintf(`Synthesize these investment insights for %s into a concise executive summary (2-3 sentences):

%s
Provide a clear, actionable summary for investors in JSON format:
{"summary": "your executive summary here"}`, symbol, insightLines.String())

	result, err := w.caller.CallOrRaw(ctx,
		"You are a financial analyst creating executive summaries.",
		prompt, 0.7, 200)
	if err != nil {
		log.Printf("[%s] Summary error: %v", w.name, err)
		head := insights
		if len(head) > 2 {
			head = head[:2]
		}
		return fmt.Sprintf("Investment analysis for %s completed. Key insights: %s.", symbol, strings.Join(head, ", "))
	}

	if summary, ok := result["summary"].(string); ok && summary != "" {
		return summary
	}
	return fmt.Sprintf("Analysis of %s reveals %d key insights for investors.", symbol, len(insights))
}

// toStringSlice converts loosely-typed model output into a string list.
func toStringSlice(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
