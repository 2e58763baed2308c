package quality

import (
	"context"
	"strings"
	"testing"

	"github.com/harrison/maestro/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedScorer returns the same score for every criterion.
type fixedScorer struct {
	score    float64
	feedback string
	err      error
}

func (f *fixedScorer) Score(ctx context.Context, content string) (map[models.Criterion]float64, map[models.Criterion]string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	scores := make(map[models.Criterion]float64)
	feedback := make(map[models.Criterion]string)
	for _, c := range models.AllCriteria {
		scores[c] = f.score
		if f.feedback != "" {
			feedback[c] = f.feedback
		}
	}
	return scores, feedback, nil
}

func TestEvaluatorComposite(t *testing.T) {
	eval := NewEvaluator(&fixedScorer{score: 8}, 0)
	out, err := eval.Evaluate(context.Background(), "some draft content")
	require.NoError(t, err)
	assert.InDelta(t, 8.0, out.Composite, 1e-9)
	assert.True(t, out.Passed)
	assert.Len(t, out.Criteria, len(models.AllCriteria))
}

func TestEvaluatorBelowThreshold(t *testing.T) {
	eval := NewEvaluator(&fixedScorer{score: 5, feedback: "needs work"}, 7.0)
	out, err := eval.Evaluate(context.Background(), "thin draft")
	require.NoError(t, err)
	assert.False(t, out.Passed)
	assert.Equal(t, "needs work", out.Feedback[models.CriterionClarity])
}

func TestEvaluatorClampsScores(t *testing.T) {
	eval := NewEvaluator(&fixedScorer{score: 14}, 0)
	out, err := eval.Evaluate(context.Background(), "draft")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, out.Composite, 1e-9)
}

func TestEvaluatorEmptyContent(t *testing.T) {
	eval := NewEvaluator(&fixedScorer{score: 8}, 0)
	_, err := eval.Evaluate(context.Background(), "")
	assert.Error(t, err)
}

func TestEvaluatorMissingCriterion(t *testing.T) {
	scorer := &partialScorer{}
	eval := NewEvaluator(scorer, 0)
	_, err := eval.Evaluate(context.Background(), "draft")
	assert.Error(t, err)
}

type partialScorer struct{}

func (p *partialScorer) Score(ctx context.Context, content string) (map[models.Criterion]float64, map[models.Criterion]string, error) {
	return map[models.Criterion]float64{models.CriterionClarity: 9}, nil, nil
}

func TestHeuristicScorerDeterministic(t *testing.T) {
	scorer := &HeuristicScorer{}
	content := "## Introduction\n\nA reasonably sized draft about something. It has sentences of sensible length throughout.\n\n## Conclusion\n\nIt ends well."

	a, _, err := scorer.Score(context.Background(), content)
	require.NoError(t, err)
	b, _, err := scorer.Score(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestHeuristicScorerRewardsExpansion(t *testing.T) {
	scorer := &HeuristicScorer{}
	eval := NewEvaluator(scorer, 7.0)

	thin := "## Introduction\n\nShort piece. Nothing else to say here really."
	var sb strings.Builder
	sb.WriteString(thin)
	for i := 0; i < 6; i++ {
		sb.WriteString("\n\n## Section\n\nThis section adds concrete detail with sentences of a comfortable middle length. It explains the idea, gives an example, and ties it back to the topic at hand.")
	}

	thinOut, err := eval.Evaluate(context.Background(), thin)
	require.NoError(t, err)
	richOut, err := eval.Evaluate(context.Background(), sb.String())
	require.NoError(t, err)

	assert.Greater(t, richOut.Composite, thinOut.Composite)
}
