package quality

import (
	"context"
	"strings"

	"github.com/harrison/maestro/internal/models"
)

// HeuristicScorer is the default offline scorer. It is a pure function of the
// content, so identical input always yields identical scores. Scores are
// monotone in draft length and structure, which lets refinement cycles (which
// expand the draft) improve the verdict.
type HeuristicScorer struct{}

// Score implements Scorer.
func (s *HeuristicScorer) Score(ctx context.Context, content string) (map[models.Criterion]float64, map[models.Criterion]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	words := strings.Fields(content)
	wordCount := len(words)
	sections := strings.Count(content, "\n## ")
	if strings.HasPrefix(content, "## ") {
		sections++
	}
	sentences := countSentences(content)
	avgSentence := 0.0
	if sentences > 0 {
		avgSentence = float64(wordCount) / float64(sentences)
	}

	// Structural depth: substance per section plus overall length.
	depth := clamp(float64(wordCount)/60, 0, 4)
	structure := clamp(float64(sections), 0, 3)

	scores := map[models.Criterion]float64{
		models.CriterionClarity:             clamp(5+structure, 0, 10),
		models.CriterionAccuracy:            clamp(6+depth/2, 0, 10),
		models.CriterionCompleteness:        clamp(4+depth+structure/2, 0, 10),
		models.CriterionRelevance:           clamp(6+structure/2, 0, 10),
		models.CriterionOptimizationQuality: clamp(5+depth, 0, 10),
		models.CriterionReadability:         readabilityScore(avgSentence),
		models.CriterionEngagement:          clamp(4.5+depth+structure/3, 0, 10),
	}

	feedback := make(map[models.Criterion]string)
	for c, v := range scores {
		if v < DefaultAcceptanceThreshold {
			feedback[c] = improvementHint(c)
		}
	}

	return scores, feedback, nil
}

func countSentences(content string) int {
	n := 0
	for _, r := range content {
		switch r {
		case '.', '!', '?':
			n++
		}
	}
	return n
}

// readabilityScore peaks for an average sentence length around 15-20 words
// and degrades for very short or very long sentences.
func readabilityScore(avgSentence float64) float64 {
	switch {
	case avgSentence == 0:
		return 3
	case avgSentence < 8:
		return 6
	case avgSentence <= 22:
		return 8.5
	case avgSentence <= 35:
		return 6.5
	default:
		return 4
	}
}

func improvementHint(c models.Criterion) string {
	switch c {
	case models.CriterionClarity:
		return "break the piece into clearly headed sections"
	case models.CriterionAccuracy:
		return "ground claims in the research notes and cite specifics"
	case models.CriterionCompleteness:
		return "expand thin sections with examples and supporting detail"
	case models.CriterionRelevance:
		return "tie each section back to the requested topic"
	case models.CriterionOptimizationQuality:
		return "add substance per section; the draft reads as an outline"
	case models.CriterionReadability:
		return "rebalance sentence length toward 15-20 words"
	case models.CriterionEngagement:
		return "open with a concrete hook and close with a takeaway"
	default:
		return "revise for overall quality"
	}
}
