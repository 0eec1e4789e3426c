package models

import "time"

const maxInsights = 10

// AgentMemory stores what the orchestrator learned from one research cycle.
// A new entry is created per cycle; the orchestrator's memory store bounds
// how many entries are retained process-wide.
type AgentMemory struct {
	StockSymbol     string             `json:"stock_symbol"`
	Timestamp       time.Time          `json:"timestamp"`
	Insights        []string           `json:"insights"`
	QualityScores   map[string]float64 `json:"quality_scores"`
	Recommendations []string           `json:"recommendations"`
	AnalysisCount   int                `json:"analysis_count"`
}

// AddInsight appends an insight, skipping duplicates and keeping only the
// most recent ten.
func (m *AgentMemory) AddInsight(insight string) {
	for _, existing := range m.Insights {
		if existing == insight {
			return
		}
	}
	m.Insights = append(m.Insights, insight)
	if len(m.Insights) > maxInsights {
		m.Insights = m.Insights[len(m.Insights)-maxInsights:]
	}
}

// UpdateQuality folds a new score into the running average under "overall".
func (m *AgentMemory) UpdateQuality(newScore float64) {
	currentAvg, ok := m.QualityScores["overall"]
	if !ok {
		currentAvg = newScore
	}
	m.AnalysisCount++
	if m.QualityScores == nil {
		m.QualityScores = make(map[string]float64)
	}
	m.QualityScores["overall"] = (currentAvg*float64(m.AnalysisCount-1) + newScore) / float64(m.AnalysisCount)
}
