package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/harrison/maestro/internal/models"
)

// StaticGenerator is a deterministic offline text generator. Identical input
// yields identical output, so pipeline tests and dry runs are reproducible.
// Feedback lines expand the draft, so refined revisions are measurably
// longer and better structured than the first attempt.
type StaticGenerator struct{}

// Generate implements TextGenerator.
func (g *StaticGenerator) Generate(ctx context.Context, req TextRequest) (TextResult, error) {
	if err := ctx.Err(); err != nil {
		return TextResult{}, err
	}

	topic := req.Topic
	if topic == "" {
		topic = "the requested subject"
	}

	switch req.Purpose {
	case PurposeResearch:
		return g.research(topic), nil
	default:
		return g.draft(topic, req), nil
	}
}

func (g *StaticGenerator) research(topic string) TextResult {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research notes on %s.\n\n", topic)
	fmt.Fprintf(&sb, "Current landscape: %s has seen sustained interest, with practical adoption concentrated in a handful of use cases.\n\n", topic)
	fmt.Fprintf(&sb, "Key tension: practitioners report a gap between published results and day-to-day experience with %s.\n\n", topic)
	sb.WriteString("Recommended angle: lead with a concrete example, then generalize.")
	return TextResult{
		Title: fmt.Sprintf("Research: %s", topic),
		Body:  sb.String(),
	}
}

func (g *StaticGenerator) draft(topic string, req TextRequest) TextResult {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Introduction\n\n%s matters more than ever. This piece walks through what it is, why it matters, and where it is heading.\n\n", title(topic))

	for i, c := range req.Context {
		fmt.Fprintf(&sb, "## Background %d\n\n%s\n\n", i+1, c)
	}

	fmt.Fprintf(&sb, "## The core idea\n\nAt its heart, %s is about leverage: doing more with the same inputs. The teams that benefit most treat it as a tool, not a destination.\n\n", topic)

	if req.Tone != "" {
		fmt.Fprintf(&sb, "The piece keeps a %s tone throughout.\n\n", req.Tone)
	}

	// Each round of reviewer feedback produces an addressed-revision section,
	// so later revisions carry strictly more substance.
	for i, fb := range req.Feedback {
		fmt.Fprintf(&sb, "## Revision note %d\n\nAddressed reviewer feedback: %s\n\nThe section above was expanded with concrete examples and clearer transitions in response.\n\n", i+1, fb)
	}

	fmt.Fprintf(&sb, "## Conclusion\n\n%s rewards teams that start small, measure honestly, and iterate.", title(topic))

	return TextResult{
		Title: fmt.Sprintf("%s: A Practical Look", title(topic)),
		Body:  sb.String(),
	}
}

// title uppercases the first rune of s.
func title(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// StaticImageSearcher is a deterministic offline image searcher returning
// placeholder assets derived from the query.
type StaticImageSearcher struct {
	// Empty forces empty results, used to exercise no-assets handling.
	Empty bool
}

// Search implements ImageSearcher.
func (s *StaticImageSearcher) Search(ctx context.Context, query string, limit int) ([]models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Empty {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(query)), " ", "-")
	assets := make([]models.Asset, 0, limit)
	for i := 0; i < limit; i++ {
		assets = append(assets, models.Asset{
			URL:         fmt.Sprintf("https://images.example.com/%s/%d.jpg", slug, i+1),
			Description: fmt.Sprintf("Illustration %d for %s", i+1, query),
			Attribution: "example.com stock library",
		})
	}
	return assets, nil
}

// NullPublisher accepts any document and returns a synthetic reference
// without side effects.
type NullPublisher struct{}

// Publish implements Publisher.
func (p *NullPublisher) Publish(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	slug := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(doc.Title)), " ", "-")
	if slug == "" {
		slug = "untitled"
	}
	return "draft://" + slug, nil
}
