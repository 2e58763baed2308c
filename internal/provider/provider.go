// Package provider defines the external generative capabilities the pipeline
// consumes: text generation, image search, and the publishing sink. Concrete
// model clients live behind these interfaces; the package ships deterministic
// offline implementations used by default and in tests.
package provider

import (
	"context"
	"errors"

	"github.com/harrison/maestro/internal/models"
)

// Transient provider failures. Callers treat these as retryable.
var (
	// ErrRateLimited indicates the provider rejected the call due to rate
	// limiting and the call may be retried after backoff.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrUnavailable indicates a transient provider outage or network
	// failure.
	ErrUnavailable = errors.New("provider unavailable")
)

// IsTransient reports whether err is a retryable provider failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded)
}

// TextPurpose selects the kind of text a generation request is for.
type TextPurpose string

const (
	PurposeResearch TextPurpose = "research"
	PurposeDraft    TextPurpose = "draft"
)

// TextRequest describes a single text-generation call.
type TextRequest struct {
	Purpose TextPurpose
	Topic   string
	Style   string
	Tone    string

	// Context carries upstream stage output (research summaries etc.) the
	// generator should draw on.
	Context []string

	// Feedback carries reviewer feedback appended on refinement attempts.
	Feedback []string
}

// TextResult is the generator's response.
type TextResult struct {
	Title string
	Body  string
}

// TextGenerator produces text content. Implementations must honor ctx
// cancellation and deadlines.
type TextGenerator interface {
	Generate(ctx context.Context, req TextRequest) (TextResult, error)
}

// ImageSearcher finds visual assets for a query.
type ImageSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Asset, error)
}

// Document is the publish payload produced by the format stage.
type Document struct {
	Title    string
	Markdown string
	HTML     string
	Platform string
	Assets   []models.Asset
}

// Publisher pushes a finished document to the CMS/publishing sink and returns
// an opaque reference to the published artifact.
type Publisher interface {
	Publish(ctx context.Context, doc Document) (string, error)
}
