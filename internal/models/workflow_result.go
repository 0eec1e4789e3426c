package models

import "time"

// WorkflowResult is the standard output format for workflow patterns.
// IntermediateResults is an ordered append-only log, one entry per stage.
type WorkflowResult struct {
	WorkflowName         string                   `json:"workflow_name"`
	Timestamp            time.Time                `json:"timestamp"`
	StepsCompleted       int                      `json:"steps_completed"`
	FinalOutput          interface{}              `json:"final_output"`
	IntermediateResults  []map[string]interface{} `json:"intermediate_results"`
	ExecutionTimeSeconds float64                  `json:"execution_time_seconds"`
}
