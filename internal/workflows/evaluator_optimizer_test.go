package workflows

import (
	"context"
	"errors"
	"testing"

	"stocksage/internal/llm"
	"stocksage/internal/llm/llmtest"
)

func TestOptimizeStopsImmediatelyOnHighScore(t *testing.T) {
	fake := &llmtest.FakeChatModel{Responses: []string{
		`{"overall_score": 0.9, "feedback": ["looks complete"]}`,
	}}
	workflow := NewEvaluatorOptimizerWorkflow(llm.NewCaller(fake))

	analysis := map[string]interface{}{"symbol": "AAPL", "findings": "bullish"}
	outcome := workflow.Optimize(context.Background(), analysis)

	if len(outcome.Iterations) != 1 {
		t.Fatalf("expected exactly 1 iteration, got %d", len(outcome.Iterations))
	}
	if outcome.OptimizationApplied {
		t.Fatalf("no optimization should be applied at first-pass acceptance")
	}
	if outcome.FinalQualityScore != 0.9 {
		t.Fatalf("expected final score 0.9, got %.2f", outcome.FinalQualityScore)
	}
	if _, optimized := analysis["optimized"]; optimized {
		t.Fatalf("analysis should be untouched when accepted immediately")
	}
}

func TestOptimizeRunsFullBudgetOnLowScores(t *testing.T) {
	fake := &llmtest.FakeChatModel{Responses: []string{
		`{"overall_score": 0.6, "feedback": ["add detail"]}`,
	}}
	workflow := NewEvaluatorOptimizerWorkflow(llm.NewCaller(fake))

	analysis := map[string]interface{}{"symbol": "AAPL"}
	outcome := workflow.Optimize(context.Background(), analysis)

	if len(outcome.Iterations) != 3 {
		t.Fatalf("expected 3 iterations at budget, got %d", len(outcome.Iterations))
	}
	if !outcome.OptimizationApplied {
		t.Fatalf("expected optimization_applied true")
	}
	if analysis["optimization_round"] != 2 {
		t.Fatalf("expected 2 optimize rounds between 3 evaluations, got %v", analysis["optimization_round"])
	}
	if analysis["optimized"] != true {
		t.Fatalf("expected optimized flag on analysis")
	}
	feedback, ok := analysis["improvements_applied"].([]string)
	if !ok || len(feedback) != 1 || feedback[0] != "add detail" {
		t.Fatalf("feedback not attached to analysis: %v", analysis["improvements_applied"])
	}

	// Iteration log preserves order.
	for i, iteration := range outcome.Iterations {
		if iteration.Iteration != i+1 {
			t.Fatalf("iteration log out of order at %d: %d", i, iteration.Iteration)
		}
	}
}

func TestOptimizeUsesFallbackScoreOnModelFailure(t *testing.T) {
	fake := &llmtest.FakeChatModel{Err: errors.New("quota exceeded")}
	workflow := NewEvaluatorOptimizerWorkflow(llm.NewCaller(fake))

	outcome := workflow.Optimize(context.Background(), map[string]interface{}{"symbol": "AAPL"})

	if outcome.FinalQualityScore != 0.75 {
		t.Fatalf("expected fallback score 0.75, got %.2f", outcome.FinalQualityScore)
	}
	// 0.75 < 0.8 so the loop runs its full budget.
	if len(outcome.Iterations) != 3 {
		t.Fatalf("expected 3 iterations with fallback scores, got %d", len(outcome.Iterations))
	}
	if outcome.Iterations[0].Feedback[0] != "Evaluation completed with fallback" {
		t.Fatalf("expected placeholder feedback, got %v", outcome.Iterations[0].Feedback)
	}
}

func TestOptimizeAcceptsMidLoop(t *testing.T) {
	fake := &llmtest.FakeChatModel{Responses: []string{
		`{"overall_score": 0.7, "feedback": ["thin analysis"]}`,
		`{"overall_score": 0.85, "feedback": ["much better"]}`,
	}}
	workflow := NewEvaluatorOptimizerWorkflow(llm.NewCaller(fake))

	analysis := map[string]interface{}{"symbol": "AAPL"}
	outcome := workflow.Optimize(context.Background(), analysis)

	if len(outcome.Iterations) != 2 {
		t.Fatalf("expected 2 iterations, got %d", len(outcome.Iterations))
	}
	if !outcome.OptimizationApplied {
		t.Fatalf("one optimize step ran, optimization_applied should be true")
	}
	if analysis["optimization_round"] != 1 {
		t.Fatalf("expected single optimize round, got %v", analysis["optimization_round"])
	}
}
