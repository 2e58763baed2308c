package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/provider"
)

// ResearchExecutor gathers background material on the topic.
type ResearchExecutor struct {
	Generator provider.TextGenerator
}

// Kind implements Executor.
func (e *ResearchExecutor) Kind() models.StageKind {
	return models.StageResearch
}

// Execute implements Executor.
func (e *ResearchExecutor) Execute(ctx context.Context, in Input) (models.StageOutput, error) {
	res, err := e.Generator.Generate(ctx, provider.TextRequest{
		Purpose: provider.PurposeResearch,
		Topic:   in.Topic,
		Style:   in.Parameter("style"),
		Tone:    in.Parameter("tone"),
	})
	if err != nil {
		return models.StageOutput{}, fmt.Errorf("research generation: %w", err)
	}

	out := &models.ResearchOutput{
		Summary:   res.Body,
		KeyPoints: extractKeyPoints(res.Body),
		Sources: []models.Source{
			{Title: res.Title},
		},
	}

	return models.StageOutput{Kind: models.StageResearch, Research: out}, nil
}

// extractKeyPoints pulls the lead sentence of each paragraph as a key point.
func extractKeyPoints(summary string) []string {
	var points []string
	for _, para := range strings.Split(summary, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if idx := strings.IndexAny(para, ".!?"); idx > 0 {
			para = para[:idx+1]
		}
		points = append(points, para)
	}
	return points
}
