package executor

import (
	"github.com/harrison/maestro/internal/models"
)

// Logger receives pipeline progress events. All methods must be safe for
// concurrent use; a nil Logger disables logging.
type Logger interface {
	LogTaskStart(task *models.Task)
	LogStageStart(task *models.Task, kind models.StageKind, attempt int)
	LogStageComplete(task *models.Task, result models.StageResult)
	LogStageRetry(task *models.Task, kind models.StageKind, attempt int, err error)
	LogRefinement(task *models.Task, cycle int, score float64)
	LogTaskFinished(task *models.Task)
}

func (o *Orchestrator) logTaskStart(t *models.Task) {
	if o.logger != nil {
		o.logger.LogTaskStart(t)
	}
}

func (o *Orchestrator) logStageStart(t *models.Task, kind models.StageKind, attempt int) {
	if o.logger != nil {
		o.logger.LogStageStart(t, kind, attempt)
	}
}

func (o *Orchestrator) logStageComplete(t *models.Task, r models.StageResult) {
	if o.logger != nil {
		o.logger.LogStageComplete(t, r)
	}
}

func (o *Orchestrator) logStageRetry(t *models.Task, kind models.StageKind, attempt int, err error) {
	if o.logger != nil {
		o.logger.LogStageRetry(t, kind, attempt, err)
	}
}

func (o *Orchestrator) logRefinement(t *models.Task, cycle int, score float64) {
	if o.logger != nil {
		o.logger.LogRefinement(t, cycle, score)
	}
}

func (o *Orchestrator) logTaskFinished(t *models.Task) {
	if o.logger != nil {
		o.logger.LogTaskFinished(t)
	}
}
