package stages

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/harrison/maestro/internal/models"
)

// FormatExecutor renders the accepted draft into the publish-ready document:
// title, selected assets, and the Markdown body converted to HTML.
type FormatExecutor struct {
	markdown goldmark.Markdown
}

// NewFormatExecutor builds a FormatExecutor with GFM rendering.
func NewFormatExecutor() *FormatExecutor {
	return &FormatExecutor{
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Kind implements Executor.
func (e *FormatExecutor) Kind() models.StageKind {
	return models.StageFormat
}

// Execute implements Executor.
func (e *FormatExecutor) Execute(ctx context.Context, in Input) (models.StageOutput, error) {
	if err := ctx.Err(); err != nil {
		return models.StageOutput{}, err
	}

	title, body, err := formatSource(in)
	if err != nil {
		return models.StageOutput{}, err
	}

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", title)

	if assets, ok := in.Outputs[models.StageAssetSelection]; ok && assets.AssetSelection != nil {
		for _, a := range assets.AssetSelection.Assets {
			fmt.Fprintf(&md, "![%s](%s)\n\n", a.Description, a.URL)
		}
	}

	md.WriteString(body)

	var html bytes.Buffer
	if err := e.markdown.Convert([]byte(md.String()), &html); err != nil {
		return models.StageOutput{}, fmt.Errorf("format: markdown conversion: %w", err)
	}

	out := &models.FormatOutput{
		Platform: in.Parameter("platform"),
		Markdown: md.String(),
		HTML:     html.String(),
	}

	return models.StageOutput{Kind: models.StageFormat, Format: out}, nil
}

// formatSource picks the content to render: the accepted draft when the plan
// drafted one, otherwise the research summary for research-only plans.
func formatSource(in Input) (title, body string, err error) {
	if draft, ok := in.Outputs[models.StageCreative]; ok && draft.Creative != nil {
		return draft.Creative.Title, draft.Creative.Body, nil
	}
	if research, ok := in.Outputs[models.StageResearch]; ok && research.Research != nil {
		title := in.Topic
		if title == "" && len(research.Research.Sources) > 0 {
			title = research.Research.Sources[0].Title
		}
		return title, research.Research.Summary, nil
	}
	return "", "", fmt.Errorf("format: no upstream content to format")
}
