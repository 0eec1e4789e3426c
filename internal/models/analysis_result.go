package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrConfidenceOutOfRange is returned when an AnalysisResult is constructed
// with a confidence score outside [0.0, 1.0].
var ErrConfidenceOutOfRange = errors.New("confidence score must be between 0.0 and 1.0")

// AnalysisResult is the standard output format shared by all specialist agents.
type AnalysisResult struct {
	AgentName       string                 `json:"agent_name"`
	Timestamp       time.Time              `json:"timestamp"`
	DataSource      string                 `json:"data_source"`
	Findings        map[string]interface{} `json:"findings"`
	ConfidenceScore float64                `json:"confidence_score"`
	Recommendations []string               `json:"recommendations"`
	LLMReasoning    string                 `json:"llm_reasoning"`
}

// NewAnalysisResult validates the confidence score and builds a result
// stamped with the current time.
func NewAnalysisResult(agentName, dataSource string, findings map[string]interface{}, confidence float64, recommendations []string, reasoning string) (*AnalysisResult, error) {
	if confidence < 0.0 || confidence > 1.0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrConfidenceOutOfRange, confidence)
	}
	return &AnalysisResult{
		AgentName:       agentName,
		Timestamp:       time.Now(),
		DataSource:      dataSource,
		Findings:        findings,
		ConfidenceScore: confidence,
		Recommendations: recommendations,
		LLMReasoning:    reasoning,
	}, nil
}

// Summary returns a human-readable overview of the result.
func (r *AnalysisResult) Summary() string {
	return fmt.Sprintf(`%s Analysis
Confidence: %.2f
Recommendations: %d
Source: %s
Timestamp: %s`,
		r.AgentName,
		r.ConfidenceScore,
		len(r.Recommendations),
		r.DataSource,
		r.Timestamp.Format(time.RFC3339))
}
