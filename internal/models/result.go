package models

import "time"

// Stage result status constants.
const (
	StageStatusSuccess = "success"
	StageStatusFailed  = "failed"
	StageStatusRetried = "retried"
)

// ErrorInfo records why a stage attempt failed. Transient failures are
// retryable; fatal ones terminate the task.
type ErrorInfo struct {
	Stage     StageKind `json:"stage"`
	Message   string    `json:"message"`
	Transient bool      `json:"transient"`
}

// StageResult is the durable record of a stage execution. It is written once
// per stage; retries and refinement cycles overwrite the record in place and
// increment AttemptCount rather than appending.
type StageResult struct {
	Kind         StageKind     `json:"kind"`
	Status       string        `json:"status"`
	Output       *StageOutput  `json:"output,omitempty"`
	AttemptCount int           `json:"attempt_count"`
	QualityScore *float64      `json:"quality_score,omitempty"`
	Duration     time.Duration `json:"duration"`
	Error        *ErrorInfo    `json:"error,omitempty"`
}

// Succeeded reports whether the stage ended in a usable output.
func (r *StageResult) Succeeded() bool {
	return r.Status == StageStatusSuccess || r.Status == StageStatusRetried
}
