package models

import (
	"errors"
	"fmt"
)

// QualityPreference selects how aggressively the planner trades cost for quality.
type QualityPreference string

const (
	QualityDraft    QualityPreference = "draft"
	QualityBalanced QualityPreference = "balanced"
	QualityHigh     QualityPreference = "high"
)

// Multiplier returns the single multiplicative factor applied to stage cost,
// duration and quality contribution for this preference.
func (q QualityPreference) Multiplier() float64 {
	switch q {
	case QualityDraft:
		return 0.7
	case QualityHigh:
		return 1.3
	default:
		return 1.0
	}
}

// Valid reports whether the preference is one of the known values.
func (q QualityPreference) Valid() bool {
	switch q {
	case QualityDraft, QualityBalanced, QualityHigh:
		return true
	}
	return false
}

// ExecutionStrategy determines whether independent stages may run concurrently.
type ExecutionStrategy string

const (
	StrategySequential ExecutionStrategy = "sequential"
	StrategyParallel   ExecutionStrategy = "parallel"
)

// Task type identifiers produced by intent classification.
const (
	TaskTypeBlogPost    = "blog_post"
	TaskTypeSocialMedia = "social_media"
	TaskTypeGeneric     = "generic"
)

// Intent type identifiers.
const (
	IntentCreateContent  = "create_content"
	IntentGenericRequest = "generic_request"
)

// Intent is the classification of a free-text work request. It is immutable
// once produced by the classifier and consumed by the planner.
type Intent struct {
	IntentType           string            `json:"intent_type"`
	TaskType             string            `json:"task_type"`
	Confidence           float64           `json:"confidence"`
	Parameters           map[string]string `json:"parameters,omitempty"`
	SuggestedSubtasks    []StageKind       `json:"suggested_subtasks"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	ExecutionStrategy    ExecutionStrategy `json:"execution_strategy"`
}

// Parameter returns the named extracted parameter, or the empty string.
func (i *Intent) Parameter(name string) string {
	if i.Parameters == nil {
		return ""
	}
	return i.Parameters[name]
}

// Topic returns the extracted topic parameter, or the empty string.
func (i *Intent) Topic() string {
	return i.Parameter("topic")
}

// QualityPreference returns the extracted quality preference, defaulting to
// balanced when absent or unrecognized.
func (i *Intent) QualityPreference() QualityPreference {
	q := QualityPreference(i.Parameter("quality_preference"))
	if !q.Valid() {
		return QualityBalanced
	}
	return q
}

// Validate checks that the intent is well formed enough to plan from.
func (i *Intent) Validate() error {
	if i.TaskType == "" {
		return errors.New("intent task type is required")
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("intent confidence %.2f out of range [0,1]", i.Confidence)
	}
	if len(i.SuggestedSubtasks) == 0 {
		return errors.New("intent has no suggested subtasks")
	}
	seen := make(map[StageKind]bool, len(i.SuggestedSubtasks))
	for _, k := range i.SuggestedSubtasks {
		if !k.Valid() {
			return fmt.Errorf("unknown suggested subtask %q", k)
		}
		if seen[k] {
			return fmt.Errorf("duplicate suggested subtask %q", k)
		}
		seen[k] = true
	}
	// Quality review only runs as the refinement loop around the creative
	// stage; a plan carrying it without creative would never execute it.
	if seen[StageQualityReview] && !seen[StageCreative] {
		return errors.New("quality_review subtask requires the creative subtask")
	}
	if pref := i.Parameter("quality_preference"); pref != "" && !QualityPreference(pref).Valid() {
		return fmt.Errorf("unknown quality preference %q", pref)
	}
	return nil
}
