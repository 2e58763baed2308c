// Package quality scores drafted content against a fixed criterion set and
// produces the per-criterion feedback that drives the refinement loop.
package quality

import (
	"context"
	"fmt"

	"github.com/harrison/maestro/internal/models"
)

// DefaultAcceptanceThreshold is the composite score (out of 10) a draft must
// reach to pass review without refinement.
const DefaultAcceptanceThreshold = 7.0

// Scorer is the injected scoring capability. Implementations may call an
// external generative scorer; tests inject deterministic scorers.
type Scorer interface {
	Score(ctx context.Context, content string) (scores map[models.Criterion]float64, feedback map[models.Criterion]string, err error)
}

// Evaluator combines per-criterion scores from a Scorer into a composite
// review verdict.
type Evaluator struct {
	scorer    Scorer
	threshold float64
}

// NewEvaluator builds an Evaluator over the given scorer. A threshold of 0
// selects DefaultAcceptanceThreshold.
func NewEvaluator(scorer Scorer, threshold float64) *Evaluator {
	if threshold <= 0 {
		threshold = DefaultAcceptanceThreshold
	}
	return &Evaluator{scorer: scorer, threshold: threshold}
}

// Threshold returns the acceptance threshold in use.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// Evaluate scores content against the fixed criterion set. Every criterion is
// present in the result; missing scores from the scorer are an error. The
// composite is the plain average, and Passed reflects the acceptance
// threshold.
func (e *Evaluator) Evaluate(ctx context.Context, content string) (*models.QualityReviewOutput, error) {
	if content == "" {
		return nil, fmt.Errorf("evaluate: content is empty")
	}

	scores, feedback, err := e.scorer.Score(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	out := &models.QualityReviewOutput{
		Criteria: make(map[models.Criterion]float64, len(models.AllCriteria)),
		Feedback: make(map[models.Criterion]string, len(models.AllCriteria)),
	}

	var sum float64
	for _, c := range models.AllCriteria {
		score, ok := scores[c]
		if !ok {
			return nil, fmt.Errorf("evaluate: scorer returned no score for criterion %q", c)
		}
		score = clamp(score, 0, 10)
		out.Criteria[c] = score
		sum += score
		if fb := feedback[c]; fb != "" {
			out.Feedback[c] = fb
		}
	}

	out.Composite = sum / float64(len(models.AllCriteria))
	out.Passed = out.Composite >= e.threshold
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
