package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/provider"
)

// CreativeExecutor drafts the content, drawing on upstream research and on
// reviewer feedback during refinement attempts.
type CreativeExecutor struct {
	Generator provider.TextGenerator
}

// Kind implements Executor.
func (e *CreativeExecutor) Kind() models.StageKind {
	return models.StageCreative
}

// Execute implements Executor.
func (e *CreativeExecutor) Execute(ctx context.Context, in Input) (models.StageOutput, error) {
	req := provider.TextRequest{
		Purpose:  provider.PurposeDraft,
		Topic:    in.Topic,
		Style:    in.Parameter("style"),
		Tone:     in.Parameter("tone"),
		Feedback: in.Feedback,
	}

	if research, ok := in.Outputs[models.StageResearch]; ok && research.Research != nil {
		req.Context = append(req.Context, research.Research.Summary)
	}

	res, err := e.Generator.Generate(ctx, req)
	if err != nil {
		return models.StageOutput{}, fmt.Errorf("draft generation: %w", err)
	}

	revision := in.Revision
	if revision < 1 {
		revision = 1
	}

	out := &models.CreativeOutput{
		Title:     res.Title,
		Body:      res.Body,
		WordCount: len(strings.Fields(res.Body)),
		Revision:  revision,
	}

	return models.StageOutput{Kind: models.StageCreative, Creative: out}, nil
}
