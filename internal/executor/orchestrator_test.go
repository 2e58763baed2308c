package executor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/provider"
	"github.com/harrison/maestro/internal/stages"
	"github.com/harrison/maestro/internal/store"
)

// fakeExecutor lets tests script a stage's behavior per call.
type fakeExecutor struct {
	kind  models.StageKind
	fn    func(ctx context.Context, in stages.Input, call int) (models.StageOutput, error)
	calls atomic.Int32
}

func (f *fakeExecutor) Kind() models.StageKind { return f.kind }

func (f *fakeExecutor) Execute(ctx context.Context, in stages.Input) (models.StageOutput, error) {
	call := int(f.calls.Add(1))
	return f.fn(ctx, in, call)
}

func okExecutor(kind models.StageKind) *fakeExecutor {
	return &fakeExecutor{kind: kind, fn: func(_ context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		return outputFor(kind), nil
	}}
}

func outputFor(kind models.StageKind) models.StageOutput {
	out := models.StageOutput{Kind: kind}
	switch kind {
	case models.StageResearch:
		out.Research = &models.ResearchOutput{Summary: "summary"}
	case models.StageCreative:
		out.Creative = &models.CreativeOutput{Title: "Title", Body: "body text", WordCount: 2, Revision: 1}
	case models.StageQualityReview:
		out.QualityReview = &models.QualityReviewOutput{Composite: 8.0, Passed: true}
	case models.StageAssetSelection:
		out.AssetSelection = &models.AssetSelectionOutput{Query: "q", Assets: []models.Asset{{URL: "https://img.example/1"}}}
	case models.StageFormat:
		out.Format = &models.FormatOutput{Platform: "blog", Markdown: "# Title", HTML: "<h1>Title</h1>"}
	}
	return out
}

// reviewSequence scripts the quality review verdicts returned on successive
// evaluations.
func reviewSequence(scores []float64, threshold float64) *fakeExecutor {
	return &fakeExecutor{kind: models.StageQualityReview, fn: func(_ context.Context, _ stages.Input, call int) (models.StageOutput, error) {
		idx := call - 1
		if idx >= len(scores) {
			idx = len(scores) - 1
		}
		score := scores[idx]
		return models.StageOutput{
			Kind: models.StageQualityReview,
			QualityReview: &models.QualityReviewOutput{
				Composite: score,
				Criteria:  map[models.Criterion]float64{models.CriterionClarity: score},
				Feedback:  map[models.Criterion]string{models.CriterionClarity: "tighten the opening"},
				Passed:    score >= threshold,
			},
		}, nil
	}}
}

func draftingExecutor() *fakeExecutor {
	return &fakeExecutor{kind: models.StageCreative, fn: func(_ context.Context, in stages.Input, _ int) (models.StageOutput, error) {
		return models.StageOutput{
			Kind: models.StageCreative,
			Creative: &models.CreativeOutput{
				Title:     "Draft",
				Body:      fmt.Sprintf("draft revision %d with %d feedback lines", in.Revision, len(in.Feedback)),
				WordCount: 6,
				Revision:  in.Revision,
			},
		}, nil
	}}
}

func planFor(strategy models.ExecutionStrategy, kinds ...models.StageKind) models.ExecutionPlan {
	present := make(map[models.StageKind]bool, len(kinds))
	for _, k := range kinds {
		present[k] = true
	}
	deps := map[models.StageKind][]models.StageKind{
		models.StageCreative:       {models.StageResearch},
		models.StageQualityReview:  {models.StageCreative},
		models.StageAssetSelection: {models.StageCreative},
		models.StageFormat:         {models.StageResearch, models.StageCreative, models.StageQualityReview, models.StageAssetSelection},
	}

	plan := models.ExecutionPlan{Strategy: strategy, UserConfirmed: true}
	for _, k := range kinds {
		var dependsOn []models.StageKind
		for _, d := range deps[k] {
			if present[d] {
				dependsOn = append(dependsOn, d)
			}
		}
		plan.Stages = append(plan.Stages, models.PlanStage{
			Kind:              k,
			EstimatedDuration: 10 * time.Second,
			EstimatedCost:     0.05,
			EstimatedTokens:   1000,
			DependsOn:         dependsOn,
		})
		plan.TotalDuration += 10 * time.Second
		plan.TotalCost += 0.05
		plan.TotalTokens += 1000
	}
	plan.EstimatedQualityScore = 80
	plan.SuccessProbability = 0.9
	return plan
}

func seedTask(t *testing.T, st store.Store, plan models.ExecutionPlan) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:       "task-1",
		Name:     "Blog post about testing",
		Topic:    "testing",
		TaskType: models.TaskTypeBlogPost,
		Status:   models.TaskPending,
		Plan:     plan,
	}
	require.NoError(t, st.Create(context.Background(), task))
	return task
}

func testOptions() Options {
	return Options{
		StageTimeout:   5 * time.Second,
		RetryBudget:    2,
		RetryBackoff:   time.Millisecond,
		RefinementCap:  2,
		MaxConcurrency: 3,
	}
}

func TestRunCompletesSequentialPlan(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageFormat)
	seedTask(t, st, plan)

	registry := stages.Registry{
		models.StageResearch: okExecutor(models.StageResearch),
		models.StageCreative: okExecutor(models.StageCreative),
		models.StageFormat:   okExecutor(models.StageFormat),
	}
	orch := New(st, registry, nil, nil, testOptions())

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	task, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	assert.Empty(t, task.CurrentStage)
	require.Len(t, task.StageResults, 3)
	for _, kind := range []models.StageKind{models.StageResearch, models.StageCreative, models.StageFormat} {
		r, ok := task.Result(kind)
		require.True(t, ok, "missing result for %s", kind)
		assert.Equal(t, models.StageStatusSuccess, r.Status)
		assert.Equal(t, 1, r.AttemptCount)
		require.NotNil(t, r.Output)
	}
}

func TestRefinementAcceptsSecondDraft(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageQualityReview)
	seedTask(t, st, plan)

	creative := draftingExecutor()
	registry := stages.Registry{
		models.StageResearch:      okExecutor(models.StageResearch),
		models.StageCreative:      creative,
		models.StageQualityReview: reviewSequence([]float64{5.0, 8.0}, 7.0),
	}
	orch := New(st, registry, nil, nil, testOptions())

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	task, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)

	cr, ok := task.Result(models.StageCreative)
	require.True(t, ok)
	assert.Equal(t, 2, cr.AttemptCount)
	require.NotNil(t, cr.Output.Creative)
	assert.Equal(t, 2, cr.Output.Creative.Revision)
	require.NotNil(t, cr.QualityScore)
	assert.InDelta(t, 8.0, *cr.QualityScore, 1e-9)

	qr, ok := task.Result(models.StageQualityReview)
	require.True(t, ok)
	assert.Equal(t, 2, qr.AttemptCount)
	assert.True(t, qr.Output.QualityReview.Passed)
	assert.Empty(t, task.Notes)
}

func TestRefinementCapAcceptsBestDraft(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageQualityReview)
	seedTask(t, st, plan)

	creative := draftingExecutor()
	// Never passes; the second draft scores best.
	registry := stages.Registry{
		models.StageResearch:      okExecutor(models.StageResearch),
		models.StageCreative:      creative,
		models.StageQualityReview: reviewSequence([]float64{4.0, 6.5, 5.0}, 7.0),
	}
	orch := New(st, registry, nil, nil, testOptions())

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	task, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)

	cr, ok := task.Result(models.StageCreative)
	require.True(t, ok)
	// Initial draft plus two refinement attempts.
	assert.Equal(t, 3, cr.AttemptCount)
	assert.Equal(t, int32(3), creative.calls.Load())
	require.NotNil(t, cr.QualityScore)
	assert.InDelta(t, 6.5, *cr.QualityScore, 1e-9)
	assert.Equal(t, 2, cr.Output.Creative.Revision)

	require.Len(t, task.Notes, 1)
	assert.Contains(t, task.Notes[0], "refinement cap")
}

func TestTransientFailureRetriesThenFails(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential, models.StageResearch, models.StageFormat)
	seedTask(t, st, plan)

	research := &fakeExecutor{kind: models.StageResearch, fn: func(_ context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		return models.StageOutput{}, provider.ErrUnavailable
	}}
	registry := stages.Registry{
		models.StageResearch: research,
		models.StageFormat:   okExecutor(models.StageFormat),
	}
	orch := New(st, registry, nil, nil, testOptions())

	err := orch.Run(context.Background(), "task-1")
	require.Error(t, err)
	assert.True(t, IsStageError(err))
	assert.True(t, errors.Is(err, provider.ErrUnavailable))

	task, gerr := st.Get(context.Background(), "task-1")
	require.NoError(t, gerr)
	assert.Equal(t, models.TaskFailed, task.Status)
	assert.Equal(t, models.StageResearch, task.FailedStage)

	r, ok := task.Result(models.StageResearch)
	require.True(t, ok)
	assert.Equal(t, models.StageStatusFailed, r.Status)
	assert.Equal(t, 3, r.AttemptCount)
	require.NotNil(t, r.Error)
	assert.True(t, r.Error.Transient)
	assert.Equal(t, int32(3), research.calls.Load())

	// Downstream stage never ran.
	_, ok = task.Result(models.StageFormat)
	assert.False(t, ok)
}

func TestFatalFailureDoesNotRetry(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential, models.StageResearch)
	seedTask(t, st, plan)

	research := &fakeExecutor{kind: models.StageResearch, fn: func(_ context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		return models.StageOutput{}, errors.New("malformed request")
	}}
	orch := New(st, stages.Registry{models.StageResearch: research}, nil, nil, testOptions())

	err := orch.Run(context.Background(), "task-1")
	require.Error(t, err)
	assert.Equal(t, int32(1), research.calls.Load())

	task, gerr := st.Get(context.Background(), "task-1")
	require.NoError(t, gerr)
	assert.Equal(t, models.TaskFailed, task.Status)
	r, _ := task.Result(models.StageResearch)
	require.NotNil(t, r.Error)
	assert.False(t, r.Error.Transient)
}

func TestCancellationBetweenStages(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageFormat)
	seedTask(t, st, plan)

	// The research stage flips the cancellation flag mid-run, as the cancel
	// endpoint would. The orchestrator must notice at the next wave boundary.
	research := &fakeExecutor{kind: models.StageResearch, fn: func(ctx context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		task, err := st.Get(ctx, "task-1")
		if err != nil {
			return models.StageOutput{}, err
		}
		task.CancelRequested = true
		if err := st.Update(ctx, task); err != nil {
			return models.StageOutput{}, err
		}
		return outputFor(models.StageResearch), nil
	}}
	creative := okExecutor(models.StageCreative)
	registry := stages.Registry{
		models.StageResearch: research,
		models.StageCreative: creative,
		models.StageFormat:   okExecutor(models.StageFormat),
	}
	orch := New(st, registry, nil, nil, testOptions())

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	task, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCancelled, task.Status)
	assert.Equal(t, int32(0), creative.calls.Load())

	// The completed stage's result survives cancellation.
	r, ok := task.Result(models.StageResearch)
	require.True(t, ok)
	assert.True(t, r.Succeeded())
}

func TestRequestCancelPendingTask(t *testing.T) {
	st := store.NewMemoryStore()
	seedTask(t, st, planFor(models.StrategySequential, models.StageResearch))

	orch := New(st, stages.Registry{models.StageResearch: okExecutor(models.StageResearch)}, nil, nil, testOptions())

	task, err := orch.RequestCancel(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCancelled, task.Status)

	_, err = orch.RequestCancel(context.Background(), "task-1")
	assert.ErrorIs(t, err, ErrTaskTerminal)
}

func TestApprovalFlowPublishes(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageFormat)
	seedTask(t, st, plan)

	registry := stages.Registry{
		models.StageResearch: okExecutor(models.StageResearch),
		models.StageCreative: okExecutor(models.StageCreative),
		models.StageFormat:   okExecutor(models.StageFormat),
	}
	opts := testOptions()
	opts.ApprovalRequired = true
	orch := New(st, registry, &provider.NullPublisher{}, nil, opts)

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	task, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskAwaitingApproval, task.Status)

	_, err = orch.Approve(context.Background(), "task-1")
	require.NoError(t, err)

	task, err = st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	r, ok := task.Result(models.StageFormat)
	require.True(t, ok)
	assert.NotEmpty(t, r.Output.Format.PublishedRef)

	_, err = orch.Approve(context.Background(), "task-1")
	assert.ErrorIs(t, err, ErrNotAwaitingApproval)
}

func TestAssetShortfallProceedsByDefault(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageAssetSelection, models.StageFormat)
	seedTask(t, st, plan)

	noAssets := &fakeExecutor{kind: models.StageAssetSelection, fn: func(_ context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		return models.StageOutput{
			Kind:           models.StageAssetSelection,
			AssetSelection: &models.AssetSelectionOutput{Query: "q"},
		}, stages.ErrNoAssets
	}}
	registry := stages.Registry{
		models.StageResearch:       okExecutor(models.StageResearch),
		models.StageCreative:       okExecutor(models.StageCreative),
		models.StageAssetSelection: noAssets,
		models.StageFormat:         okExecutor(models.StageFormat),
	}
	orch := New(st, registry, nil, nil, testOptions())

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	task, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	require.Len(t, task.Notes, 1)
	assert.Contains(t, task.Notes[0], "no assets")
}

func TestAssetShortfallFailsWhenImagesRequired(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageAssetSelection)
	task := &models.Task{
		ID:         "task-1",
		Name:       "Blog post",
		Topic:      "testing",
		TaskType:   models.TaskTypeBlogPost,
		Status:     models.TaskPending,
		Parameters: map[string]string{"require_images": "true"},
		Plan:       plan,
	}
	require.NoError(t, st.Create(context.Background(), task))

	noAssets := &fakeExecutor{kind: models.StageAssetSelection, fn: func(_ context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		return models.StageOutput{}, stages.ErrNoAssets
	}}
	registry := stages.Registry{
		models.StageResearch:       okExecutor(models.StageResearch),
		models.StageCreative:       okExecutor(models.StageCreative),
		models.StageAssetSelection: noAssets,
	}
	orch := New(st, registry, nil, nil, testOptions())

	err := orch.Run(context.Background(), "task-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, stages.ErrNoAssets))

	got, gerr := st.Get(context.Background(), "task-1")
	require.NoError(t, gerr)
	assert.Equal(t, models.TaskFailed, got.Status)
	assert.Equal(t, models.StageAssetSelection, got.FailedStage)
}

func TestRunResumesSkippingCompletedStages(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategySequential, models.StageResearch, models.StageFormat)
	task := seedTask(t, st, plan)

	out := outputFor(models.StageResearch)
	require.NoError(t, task.SetResult(models.StageResult{
		Kind:         models.StageResearch,
		Status:       models.StageStatusSuccess,
		Output:       &out,
		AttemptCount: 1,
	}))
	task.Status = models.TaskInProgress
	require.NoError(t, st.Update(context.Background(), task))

	research := okExecutor(models.StageResearch)
	registry := stages.Registry{
		models.StageResearch: research,
		models.StageFormat:   okExecutor(models.StageFormat),
	}
	orch := New(st, registry, nil, nil, testOptions())

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	assert.Equal(t, int32(0), research.calls.Load())
	got, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, got.Status)
}

func TestParallelWaveRunsIndependentStages(t *testing.T) {
	st := store.NewMemoryStore()
	plan := planFor(models.StrategyParallel,
		models.StageResearch, models.StageCreative, models.StageQualityReview,
		models.StageAssetSelection, models.StageFormat)
	seedTask(t, st, plan)

	registry := stages.Registry{
		models.StageResearch:       okExecutor(models.StageResearch),
		models.StageCreative:       draftingExecutor(),
		models.StageQualityReview:  reviewSequence([]float64{8.0}, 7.0),
		models.StageAssetSelection: okExecutor(models.StageAssetSelection),
		models.StageFormat:         okExecutor(models.StageFormat),
	}
	orch := New(st, registry, nil, nil, testOptions())

	require.NoError(t, orch.Run(context.Background(), "task-1"))

	task, err := st.Get(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, models.TaskCompleted, task.Status)
	assert.Len(t, task.StageResults, 5)
}

func TestDecideRefinement(t *testing.T) {
	tests := []struct {
		name     string
		passed   bool
		revision int
		cap      int
		want     refinementDecision
	}{
		{"pass accepts immediately", true, 1, 2, decisionAccept},
		{"fail below cap retries", false, 1, 2, decisionRetry},
		{"fail at cap retries", false, 2, 2, decisionRetry},
		{"fail past cap accepts with shortfall", false, 3, 2, decisionAcceptWithShortfall},
		{"zero cap never retries", false, 1, 0, decisionAcceptWithShortfall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decideRefinement(tt.passed, tt.revision, tt.cap)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeWaves(t *testing.T) {
	sequential := planFor(models.StrategySequential,
		models.StageResearch, models.StageCreative, models.StageQualityReview, models.StageFormat)
	waves, err := computeWaves(&sequential)
	require.NoError(t, err)
	// Quality review is driven by the refinement loop, never scheduled.
	require.Len(t, waves, 3)
	for _, w := range waves {
		assert.Len(t, w, 1)
	}

	parallel := planFor(models.StrategyParallel,
		models.StageResearch, models.StageCreative, models.StageQualityReview,
		models.StageAssetSelection, models.StageFormat)
	waves, err = computeWaves(&parallel)
	require.NoError(t, err)
	require.Len(t, waves, 4)
	assert.Equal(t, []models.StageKind{models.StageResearch}, waves[0])
	assert.Equal(t, []models.StageKind{models.StageCreative}, waves[1])
	assert.Equal(t, []models.StageKind{models.StageAssetSelection}, waves[2])
	assert.Equal(t, []models.StageKind{models.StageFormat}, waves[3])
}

func TestExecuteStageStandalone(t *testing.T) {
	st := store.NewMemoryStore()
	registry := stages.Registry{models.StageResearch: okExecutor(models.StageResearch)}
	orch := New(st, registry, nil, nil, testOptions())

	result, err := orch.ExecuteStage(context.Background(), models.StageResearch, stages.Input{Topic: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.StageResearch, result.Kind)
	assert.Equal(t, models.StageStatusSuccess, result.Status)
	assert.Equal(t, 1, result.AttemptCount)
	require.NotNil(t, result.Output)
	require.NotNil(t, result.Output.Research)

	_, err = orch.ExecuteStage(context.Background(), models.StageFormat, stages.Input{Topic: "x"})
	assert.Error(t, err)
}

func TestExecuteStageRetriesTransientFailures(t *testing.T) {
	st := store.NewMemoryStore()
	flaky := &fakeExecutor{kind: models.StageResearch, fn: func(_ context.Context, _ stages.Input, call int) (models.StageOutput, error) {
		if call == 1 {
			return models.StageOutput{}, provider.ErrRateLimited
		}
		return outputFor(models.StageResearch), nil
	}}
	orch := New(st, stages.Registry{models.StageResearch: flaky}, nil, nil, testOptions())

	result, err := orch.ExecuteStage(context.Background(), models.StageResearch, stages.Input{Topic: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.StageStatusRetried, result.Status)
	assert.Equal(t, 2, result.AttemptCount)
	assert.Equal(t, int32(2), flaky.calls.Load())
}

func TestExecuteStageReportsFailureAsResult(t *testing.T) {
	st := store.NewMemoryStore()
	broken := &fakeExecutor{kind: models.StageCreative, fn: func(_ context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		return models.StageOutput{}, errors.New("malformed request")
	}}
	orch := New(st, stages.Registry{models.StageCreative: broken}, nil, nil, testOptions())

	result, err := orch.ExecuteStage(context.Background(), models.StageCreative, stages.Input{Topic: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.StageStatusFailed, result.Status)
	assert.Equal(t, 1, result.AttemptCount)
	require.NotNil(t, result.Error)
	assert.False(t, result.Error.Transient)
	// Fatal errors are not retried.
	assert.Equal(t, int32(1), broken.calls.Load())
}

func TestExecuteStageEmptyAssetSearchSucceeds(t *testing.T) {
	st := store.NewMemoryStore()
	empty := &fakeExecutor{kind: models.StageAssetSelection, fn: func(_ context.Context, _ stages.Input, _ int) (models.StageOutput, error) {
		return models.StageOutput{
			Kind:           models.StageAssetSelection,
			AssetSelection: &models.AssetSelectionOutput{Query: "q"},
		}, stages.ErrNoAssets
	}}
	orch := New(st, stages.Registry{models.StageAssetSelection: empty}, nil, nil, testOptions())

	result, err := orch.ExecuteStage(context.Background(), models.StageAssetSelection, stages.Input{Topic: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.StageStatusSuccess, result.Status)
	require.NotNil(t, result.Output)
	require.NotNil(t, result.Output.AssetSelection)
	assert.Empty(t, result.Output.AssetSelection.Assets)
}
