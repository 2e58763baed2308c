package executor

import (
	"context"
	"time"

	"github.com/harrison/maestro/internal/models"
)

// refinementDecision is the outcome of one review cycle.
type refinementDecision int

const (
	decisionAccept refinementDecision = iota
	decisionRetry
	decisionAcceptWithShortfall
)

// decideRefinement is the loop's transition function: accept on pass, retry
// while the cap allows, otherwise accept the best draft with a recorded
// shortfall. Keeping it pure makes the loop's bounds testable in isolation.
func decideRefinement(passed bool, revision, cap int) refinementDecision {
	if passed {
		return decisionAccept
	}
	if revision <= cap {
		return decisionRetry
	}
	return decisionAcceptWithShortfall
}

// runRefinementLoop drives the creative/quality-review cycle: draft, review,
// and on a failing review feed the reviewer's feedback into a re-draft, up to
// the configured number of extra attempts. The best-scoring draft wins when
// the cap is exhausted. It returns both the creative and the quality-review
// stage results; the creative AttemptCount is the number of drafts produced
// and the review AttemptCount the number of evaluations performed.
func (o *Orchestrator) runRefinementLoop(ctx context.Context, task *models.Task) ([]stageOutcome, *StageError) {
	creative, err := o.registry.Get(models.StageCreative)
	if err != nil {
		return []stageOutcome{failedOutcome(models.StageCreative, 0, err)},
			NewStageError(models.StageCreative, "no executor", 0, err)
	}
	review, err := o.registry.Get(models.StageQualityReview)
	if err != nil {
		return []stageOutcome{failedOutcome(models.StageQualityReview, 0, err)},
			NewStageError(models.StageQualityReview, "no executor", 0, err)
	}

	var (
		feedback     []string
		bestDraft    models.StageOutput
		bestReview   models.StageOutput
		bestScore    = -1.0
		evaluations  int
		creativeTime time.Duration
		reviewTime   time.Duration
	)

	revision := 1
	for {
		in := o.stageInput(task)
		in.Feedback = feedback
		in.Revision = revision

		start := time.Now()
		draft, attempts, err := o.invoke(ctx, task, creative, in)
		creativeTime += time.Since(start)
		if err != nil {
			outcome := failedOutcome(models.StageCreative, attempts, err)
			outcome.result.AttemptCount = revision
			outcome.result.Duration = creativeTime
			return []stageOutcome{outcome},
				NewStageError(models.StageCreative, "draft generation failed", attempts, err)
		}

		reviewIn := o.stageInput(task)
		reviewIn.Outputs[models.StageCreative] = draft

		start = time.Now()
		verdict, attempts, err := o.invoke(ctx, task, review, reviewIn)
		reviewTime += time.Since(start)
		evaluations++
		if err != nil {
			outcome := failedOutcome(models.StageQualityReview, attempts, err)
			outcome.result.AttemptCount = evaluations
			outcome.result.Duration = reviewTime
			return []stageOutcome{outcome},
				NewStageError(models.StageQualityReview, "review failed", attempts, err)
		}

		qr := verdict.QualityReview
		if qr.Composite > bestScore {
			bestScore = qr.Composite
			bestDraft = draft
			bestReview = verdict
		}

		o.logRefinement(task, revision, qr.Composite)

		switch decideRefinement(qr.Passed, revision, o.opts.RefinementCap) {
		case decisionAccept:
			return o.refinementOutcomes(bestDraft, bestReview, revision, evaluations, creativeTime, reviewTime, false), nil
		case decisionAcceptWithShortfall:
			return o.refinementOutcomes(bestDraft, bestReview, revision, evaluations, creativeTime, reviewTime, true), nil
		case decisionRetry:
			feedback = append(feedback, feedbackLines(qr)...)
			revision++
		}
	}
}

// feedbackLines flattens the reviewer's per-criterion hints in the canonical
// criterion order so refinement prompts are deterministic.
func feedbackLines(qr *models.QualityReviewOutput) []string {
	var lines []string
	for _, c := range models.AllCriteria {
		if hint, ok := qr.Feedback[c]; ok && hint != "" {
			lines = append(lines, hint)
		}
	}
	return lines
}

func (o *Orchestrator) refinementOutcomes(draft, review models.StageOutput, revisions, evaluations int, creativeTime, reviewTime time.Duration, shortfall bool) []stageOutcome {
	score := review.QualityReview.Composite

	creativeResult := models.StageResult{
		Kind:         models.StageCreative,
		Status:       statusForAttempts(revisions),
		Output:       &draft,
		AttemptCount: revisions,
		QualityScore: &score,
		Duration:     creativeTime,
	}
	reviewResult := models.StageResult{
		Kind:         models.StageQualityReview,
		Status:       statusForAttempts(evaluations),
		Output:       &review,
		AttemptCount: evaluations,
		QualityScore: &score,
		Duration:     reviewTime,
	}

	outcomes := []stageOutcome{
		{result: creativeResult},
		{result: reviewResult},
	}
	if shortfall {
		outcomes[1].notes = []string{
			"quality review did not reach the acceptance threshold within the refinement cap; best draft accepted",
		}
	}
	return outcomes
}
