package research

import (
	"fmt"
	"time"

	"stocksage/internal/models"
	"stocksage/internal/workflows"
)

// Reflection is the orchestrator's self-assessment of one research cycle.
// LLMPowered is false when the model call failed and the heuristic score
// was substituted.
type Reflection struct {
	OverallScore    float64            `json:"overall_score"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	Strengths       []string           `json:"strengths"`
	Improvements    []string           `json:"improvements"`
	LLMPowered      bool               `json:"llm_powered"`
	Timestamp       time.Time          `json:"timestamp"`
}

// MemoryStatus reports what the learning store knew about the symbol when
// the cycle started, plus the store size after learning.
type MemoryStatus struct {
	TotalEntries int       `json:"total_entries"`
	SeenBefore   bool      `json:"seen_before"`
	LastAnalyzed time.Time `json:"last_analyzed,omitempty"`
}

// ResearchReport is the complete output of one research cycle. Either the
// full report is returned or the cycle fails; no partial reports.
type ResearchReport struct {
	Symbol       string                            `json:"symbol"`
	Timestamp    time.Time                         `json:"timestamp"`
	Plan         *models.ResearchPlan              `json:"plan"`
	RawData      map[string]interface{}            `json:"raw_data"`
	Analyses     map[string]*models.AnalysisResult `json:"analyses"`
	PromptChain  *models.WorkflowResult            `json:"prompt_chain"`
	Routing      *workflows.RoutingDecision        `json:"routing"`
	Optimization *workflows.OptimizationOutcome    `json:"optimization"`
	Reflection   *Reflection                       `json:"reflection"`
	Memory       MemoryStatus                      `json:"memory"`
}

// Summary returns a short human-readable digest of the report.
func (r *ResearchReport) Summary() string {
	return fmt.Sprintf("Research report for %s: %d analyses, quality %.2f, %d memory entries",
		r.Symbol, len(r.Analyses), r.Reflection.OverallScore, r.Memory.TotalEntries)
}
