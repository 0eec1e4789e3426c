package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"stocksage/internal/llm"
)

const (
	maxOptimizeIterations = 3
	qualityThreshold      = 0.8
	fallbackQualityScore  = 0.75
)

// Iteration records one evaluate step of the optimization loop.
type Iteration struct {
	Iteration    int      `json:"iteration"`
	QualityScore float64  `json:"quality_score"`
	Feedback     []string `json:"feedback"`
}

// OptimizationOutcome is the evaluator-optimizer's final state: the ordered
// iteration log, the last score, and whether any optimize step ran.
type OptimizationOutcome struct {
	WorkflowName        string      `json:"workflow_name"`
	Iterations          []Iteration `json:"iterations"`
	FinalQualityScore   float64     `json:"final_quality_score"`
	OptimizationApplied bool        `json:"optimization_applied"`
	Timestamp           time.Time   `json:"timestamp"`
}

// EvaluatorOptimizerWorkflow scores an analysis with the model and applies
// deterministic improvement annotations until the score clears the quality
// threshold or the iteration budget runs out.
type EvaluatorOptimizerWorkflow struct {
	name          string
	caller        *llm.Caller
	maxIterations int
}

func NewEvaluatorOptimizerWorkflow(caller *llm.Caller) *EvaluatorOptimizerWorkflow {
	return &EvaluatorOptimizerWorkflow{
		name:          "Evaluator-Optimizer Workflow",
		caller:        caller,
		maxIterations: maxOptimizeIterations,
	}
}

// Optimize mutates the analysis map in place across optimize steps. An
// evaluation scoring at or above the threshold terminates the loop
// immediately with no further optimize step.
func (w *EvaluatorOptimizerWorkflow) Optimize(ctx context.Context, analysis map[string]interface{}) *OptimizationOutcome {
	log.Printf("[%s] Starting optimization", w.name)

	iterations := make([]Iteration, 0, w.maxIterations)

	for i := 0; i < w.maxIterations; i++ {
		evaluation := w.evaluate(ctx, analysis)

		score := fallbackQualityScore
		if v, ok := evaluation["overall_score"].(float64); ok {
			score = v
		}
		feedback := toStringSlice(evaluation["feedback"])

		log.Printf("[%s] Iteration %d/%d quality score %.2f", w.name, i+1, w.maxIterations, score)
		iterations = append(iterations, Iteration{
			Iteration:    i + 1,
			QualityScore: score,
			Feedback:     feedback,
		})

		if score >= qualityThreshold {
			break
		}
		if i < w.maxIterations-1 {
			w.applyImprovements(analysis, feedback)
		}
	}

	return &OptimizationOutcome{
		WorkflowName:        w.name,
		Iterations:          iterations,
		FinalQualityScore:   iterations[len(iterations)-1].QualityScore,
		OptimizationApplied: len(iterations) > 1,
		Timestamp:           time.Now(),
	}
}

// evaluate asks the model to score the analysis; failures degrade to a fixed
// fallback score with placeholder feedback.
func (w *EvaluatorOptimizerWorkflow) evaluate(ctx context.Context, analysis map[string]interface{}) map[string]interface{} {
	summary, _ := json.MarshalIndent(analysis, "", "  ")
	if len(summary) > 500 {
		summary = summary[:500]
	}

	prompt := fmt.Sprintf(`Evaluate the quality of this financial analysis:

%s

Rate on scale 0.0 to 1.0 and provide feedback in JSON:
{
    "overall_score": 0.85,
    "completeness": 0.9,
    "clarity": 0.8,
    "actionability": 0.85,
    "feedback": ["specific feedback point 1", "point 2"]
}`, summary)

	result, err := w.caller.Call(ctx,
		"You are a quality assurance expert for financial analysis.",
		prompt, 0.5, 300)
	if err != nil {
		log.Printf("[%s] Evaluation error: %v", w.name, err)
		return map[string]interface{}{
			"overall_score": fallbackQualityScore,
			"feedback":      []interface{}{"Evaluation completed with fallback"},
		}
	}
	return result
}

// applyImprovements is the deterministic optimize step: it annotates the
// analysis rather than calling the model again.
func (w *EvaluatorOptimizerWorkflow) applyImprovements(analysis map[string]interface{}, feedback []string) {
	analysis["optimized"] = true

	round := 0
	if v, ok := analysis["optimization_round"].(int); ok {
		round = v
	}
	analysis["optimization_round"] = round + 1
	analysis["improvements_applied"] = feedback
}
