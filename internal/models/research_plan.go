package models

import (
	"fmt"
	"strings"
	"time"
)

// ResearchPlan represents an LLM-generated plan for a single research cycle.
// It is created once by the planning phase and never mutated afterwards.
type ResearchPlan struct {
	StockSymbol     string    `json:"stock_symbol"`
	Objectives      []string  `json:"objectives"`
	DataSources     []string  `json:"data_sources"`
	AnalysisSteps   []string  `json:"analysis_steps"`
	ExpectedOutputs []string  `json:"expected_outputs"`
	Reasoning       string    `json:"reasoning"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewResearchPlan creates a plan stamped with the current time.
func NewResearchPlan(symbol string, objectives, dataSources, analysisSteps, expectedOutputs []string, reasoning string) *ResearchPlan {
	return &ResearchPlan{
		StockSymbol:     symbol,
		Objectives:      objectives,
		DataSources:     dataSources,
		AnalysisSteps:   analysisSteps,
		ExpectedOutputs: expectedOutputs,
		Reasoning:       reasoning,
		Timestamp:       time.Now(),
	}
}

// Summary returns a human-readable overview of the plan.
func (p *ResearchPlan) Summary() string {
	return fmt.Sprintf(`Research Plan for %s
Objectives: %d goals
Data Sources: %s
Analysis Steps: %d steps
Generated: %s`,
		p.StockSymbol,
		len(p.Objectives),
		strings.Join(p.DataSources, ", "),
		len(p.AnalysisSteps),
		p.Timestamp.Format(time.RFC3339))
}
