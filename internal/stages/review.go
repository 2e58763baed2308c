package stages

import (
	"context"
	"fmt"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/quality"
)

// ReviewExecutor scores a draft with the quality evaluator. Inside a plan the
// orchestrator drives the evaluator directly through the refinement loop;
// this executor exists so that quality review is also callable standalone
// through the per-stage endpoint.
type ReviewExecutor struct {
	Evaluator *quality.Evaluator
}

// Kind implements Executor.
func (e *ReviewExecutor) Kind() models.StageKind {
	return models.StageQualityReview
}

// Execute implements Executor. It reviews the creative dependency output, or,
// for standalone invocations, the raw "content" parameter.
func (e *ReviewExecutor) Execute(ctx context.Context, in Input) (models.StageOutput, error) {
	content := in.Parameter("content")
	if draft, ok := in.Outputs[models.StageCreative]; ok && draft.Creative != nil {
		content = draft.Creative.Body
	}
	if content == "" {
		return models.StageOutput{}, fmt.Errorf("quality review: no draft to review")
	}

	out, err := e.Evaluator.Evaluate(ctx, content)
	if err != nil {
		return models.StageOutput{}, fmt.Errorf("quality review: %w", err)
	}

	return models.StageOutput{Kind: models.StageQualityReview, QualityReview: out}, nil
}
