package models

import (
	"strings"
	"testing"
)

func TestResearchPlanSummary(t *testing.T) {
	plan := NewResearchPlan("AAPL",
		[]string{"Assess market position", "Evaluate fundamentals"},
		[]string{"Yahoo Finance", "FRED"},
		[]string{"Gather data", "Analyze", "Synthesize"},
		[]string{"Recommendation"},
		"Standard comprehensive financial analysis plan")

	summary := plan.Summary()
	for _, want := range []string{"AAPL", "2 goals", "Yahoo Finance, FRED", "3 steps"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}
