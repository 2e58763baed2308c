package models

import (
	"errors"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending          TaskStatus = "pending"
	TaskInProgress       TaskStatus = "in_progress"
	TaskAwaitingApproval TaskStatus = "awaiting_approval"
	TaskCompleted        TaskStatus = "completed"
	TaskFailed           TaskStatus = "failed"
	TaskCancelled        TaskStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// Task is the durable record of one confirmed work request. It is created on
// plan confirmation and mutated exclusively by the orchestrator; terminal
// states are immutable.
type Task struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Topic    string     `json:"topic"`
	TaskType string     `json:"task_type"`
	Status   TaskStatus `json:"status"`

	// Parameters carries the intent's extracted parameters (style, tone,
	// platform, require_images, ...) through to the stage executors.
	Parameters map[string]string `json:"parameters,omitempty"`

	// CurrentStage is set while Status is in_progress.
	CurrentStage StageKind `json:"current_stage,omitempty"`

	Plan         ExecutionPlan             `json:"plan"`
	StageResults map[StageKind]StageResult `json:"stage_results"`

	// Notes records non-fatal shortfalls (quality below threshold after the
	// refinement cap, no assets found) that did not fail the task.
	Notes []string `json:"notes,omitempty"`

	// CancelRequested is the cooperative cancellation flag, checked between
	// stages. The running stage is allowed to finish.
	CancelRequested bool `json:"cancel_requested,omitempty"`

	// FailedStage names the stage that exhausted its retry budget when
	// Status is failed.
	FailedStage StageKind `json:"failed_stage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks that a task is well formed enough to persist.
func (t *Task) Validate() error {
	if t.ID == "" {
		return errors.New("task id is required")
	}
	if t.Name == "" {
		return errors.New("task name is required")
	}
	if !t.Plan.UserConfirmed {
		return errors.New("task plan is not confirmed")
	}
	return t.Plan.Validate()
}

// Result returns the recorded result for a stage kind, if any.
func (t *Task) Result(kind StageKind) (StageResult, bool) {
	r, ok := t.StageResults[kind]
	return r, ok
}

// SetResult records a stage result, overwriting any prior record for the
// same kind. Only stages present in the confirmed plan may be recorded.
func (t *Task) SetResult(r StageResult) error {
	if !t.Plan.HasStage(r.Kind) {
		return errors.New("stage result kind not present in plan")
	}
	if t.StageResults == nil {
		t.StageResults = make(map[StageKind]StageResult)
	}
	t.StageResults[r.Kind] = r
	return nil
}

// Clone returns a deep copy of the task, detaching the stage result map and
// plan stage slice so callers can mutate their copy independently.
func (t *Task) Clone() *Task {
	cp := *t
	cp.Plan.Stages = make([]PlanStage, len(t.Plan.Stages))
	copy(cp.Plan.Stages, t.Plan.Stages)
	if t.StageResults != nil {
		cp.StageResults = make(map[StageKind]StageResult, len(t.StageResults))
		for k, v := range t.StageResults {
			cp.StageResults[k] = v
		}
	}
	if t.Parameters != nil {
		cp.Parameters = make(map[string]string, len(t.Parameters))
		for k, v := range t.Parameters {
			cp.Parameters[k] = v
		}
	}
	if t.Notes != nil {
		cp.Notes = make([]string, len(t.Notes))
		copy(cp.Notes, t.Notes)
	}
	return &cp
}

// AddNote appends a non-fatal shortfall note.
func (t *Task) AddNote(note string) {
	t.Notes = append(t.Notes, note)
}
