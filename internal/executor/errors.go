package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/provider"
)

// StageError records a stage execution failure with enough context to
// persist on the task. Transient errors were retried before surfacing; a
// surfaced StageError is fatal for the task.
type StageError struct {
	Stage     models.StageKind
	Message   string
	Err       error
	Attempts  int
	Timestamp time.Time
}

// NewStageError creates a StageError with the current timestamp.
func NewStageError(stage models.StageKind, msg string, attempts int, err error) *StageError {
	return &StageError{
		Stage:     stage,
		Message:   msg,
		Err:       err,
		Attempts:  attempts,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	s := fmt.Sprintf("stage %s: %s", e.Stage, e.Message)
	if e.Err != nil {
		s += fmt.Sprintf(": %v", e.Err)
	}
	return s
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// TimeoutError represents a per-stage timeout. Timeouts are transient and
// subject to the retry budget.
type TimeoutError struct {
	Stage           models.StageKind
	TimeoutDuration time.Duration
	Timestamp       time.Time
}

// NewTimeoutError creates a TimeoutError with the current timestamp.
func NewTimeoutError(stage models.StageKind, duration time.Duration) *TimeoutError {
	return &TimeoutError{
		Stage:           stage,
		TimeoutDuration: duration,
		Timestamp:       time.Now(),
	}
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("stage %s: timeout after %v", e.Stage, e.TimeoutDuration)
}

// Unwrap returns context.DeadlineExceeded so errors.Is works across layers.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// IsTransient reports whether err is retryable: provider rate limits and
// outages, and per-stage timeouts. Anything else is fatal for the attempt.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return provider.IsTransient(err)
}

// IsStageError checks if the error is or wraps a StageError.
func IsStageError(err error) bool {
	if err == nil {
		return false
	}
	var se *StageError
	return errors.As(err, &se)
}
