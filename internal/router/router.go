// Package router classifies free-text work requests into structured intents:
// an intent/task type, extracted parameters, a confidence score, and the
// suggested stage set the planner will cost out.
package router

import (
	"errors"

	"github.com/harrison/maestro/internal/models"
)

// ErrEmptyInput is returned when there is no text to classify.
var ErrEmptyInput = errors.New("no text to classify")

// Classifier turns free text into an Intent. Implementations must never block
// indefinitely and must fail closed to a low-confidence generic intent rather
// than erroring when no pattern matches.
type Classifier interface {
	Classify(text string) (*models.Intent, error)
}

// DefaultConfidenceThreshold is the confidence below which an intent always
// requires explicit confirmation.
const DefaultConfidenceThreshold = 0.5

// defaultSubtasks maps each task type to its default stage set.
var defaultSubtasks = map[string][]models.StageKind{
	models.TaskTypeBlogPost: {
		models.StageResearch,
		models.StageCreative,
		models.StageQualityReview,
		models.StageAssetSelection,
		models.StageFormat,
	},
	models.TaskTypeSocialMedia: {
		models.StageResearch,
		models.StageCreative,
		models.StageFormat,
	},
	models.TaskTypeGeneric: {
		models.StageResearch,
		models.StageFormat,
	},
}

// DefaultSubtasks returns the default stage set for a task type. Unknown task
// types fall back to the generic set.
func DefaultSubtasks(taskType string) []models.StageKind {
	kinds, ok := defaultSubtasks[taskType]
	if !ok {
		kinds = defaultSubtasks[models.TaskTypeGeneric]
	}
	out := make([]models.StageKind, len(kinds))
	copy(out, kinds)
	return out
}
