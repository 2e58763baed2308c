package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/maestro/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func newTestTask() *models.Task {
	return &models.Task{
		ID:     uuid.NewString(),
		Name:   "Blog post: AI",
		Topic:  "AI",
		Status: models.TaskPending,
		Plan: models.ExecutionPlan{
			Stages: []models.PlanStage{
				{Kind: models.StageResearch, EstimatedDuration: 40 * time.Second, EstimatedCost: 0.08, EstimatedTokens: 3000},
				{Kind: models.StageCreative, EstimatedDuration: 60 * time.Second, EstimatedCost: 0.15, EstimatedTokens: 5000, DependsOn: []models.StageKind{models.StageResearch}},
			},
			TotalDuration:         100 * time.Second,
			TotalCost:             0.23,
			TotalTokens:           8000,
			Strategy:              models.StrategySequential,
			EstimatedQualityScore: 70,
			SuccessProbability:    0.9,
			UserConfirmed:         true,
		},
	}
}

func TestStoreCreateAndGet(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			task := newTestTask()

			require.NoError(t, s.Create(ctx, task))
			assert.False(t, task.UpdatedAt.IsZero())

			got, err := s.Get(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, task.ID, got.ID)
			assert.Equal(t, models.TaskPending, got.Status)
			assert.Len(t, got.Plan.Stages, 2)
			assert.True(t, got.UpdatedAt.Equal(task.UpdatedAt))
		})
	}
}

func TestStoreCreateDuplicate(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			task := newTestTask()
			require.NoError(t, s.Create(ctx, task))
			assert.ErrorIs(t, s.Create(ctx, task.Clone()), ErrExists)
		})
	}
}

func TestStoreGetNotFound(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "no-such-id")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreUpdateAdvancesStamp(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			task := newTestTask()
			require.NoError(t, s.Create(ctx, task))

			created := task.UpdatedAt
			task.Status = models.TaskInProgress
			task.CurrentStage = models.StageResearch
			require.NoError(t, s.Update(ctx, task))
			assert.True(t, task.UpdatedAt.After(created))

			got, err := s.Get(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, models.TaskInProgress, got.Status)
			assert.Equal(t, models.StageResearch, got.CurrentStage)
		})
	}
}

// Two concurrent writers: the second update, made with a stale updated_at,
// must be rejected with a conflict, never silently overwrite the first.
func TestStoreUpdateConflict(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			task := newTestTask()
			require.NoError(t, s.Create(ctx, task))

			first, err := s.Get(ctx, task.ID)
			require.NoError(t, err)
			second, err := s.Get(ctx, task.ID)
			require.NoError(t, err)

			first.Status = models.TaskInProgress
			require.NoError(t, s.Update(ctx, first))

			second.Status = models.TaskCancelled
			err = s.Update(ctx, second)
			assert.ErrorIs(t, err, ErrConflict)

			got, err := s.Get(ctx, task.ID)
			require.NoError(t, err)
			assert.Equal(t, models.TaskInProgress, got.Status)
		})
	}
}

func TestStoreUpdateMissingTask(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			task := newTestTask()
			err := s.Update(context.Background(), task)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreRoundTripsStageResults(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			task := newTestTask()
			require.NoError(t, s.Create(ctx, task))

			score := 8.2
			require.NoError(t, task.SetResult(models.StageResult{
				Kind:         models.StageCreative,
				Status:       models.StageStatusSuccess,
				AttemptCount: 2,
				QualityScore: &score,
				Duration:     3 * time.Second,
				Output: &models.StageOutput{
					Kind:     models.StageCreative,
					Creative: &models.CreativeOutput{Title: "T", Body: "B", WordCount: 1, Revision: 2},
				},
			}))
			require.NoError(t, s.Update(ctx, task))

			got, err := s.Get(ctx, task.ID)
			require.NoError(t, err)
			r, ok := got.Result(models.StageCreative)
			require.True(t, ok)
			assert.Equal(t, 2, r.AttemptCount)
			require.NotNil(t, r.QualityScore)
			assert.InDelta(t, 8.2, *r.QualityScore, 1e-9)
			require.NotNil(t, r.Output)
			require.NotNil(t, r.Output.Creative)
			assert.Equal(t, "T", r.Output.Creative.Title)
		})
	}
}

func TestStoreList(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var ids []string
			for i := 0; i < 5; i++ {
				task := newTestTask()
				task.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
				if i%2 == 0 {
					task.Status = models.TaskCompleted
				}
				require.NoError(t, s.Create(ctx, task))
				ids = append(ids, task.ID)
			}

			all, err := s.List(ctx, Filter{})
			require.NoError(t, err)
			require.Len(t, all, 5)
			// Newest first.
			assert.Equal(t, ids[4], all[0].ID)

			completed, err := s.List(ctx, Filter{Status: models.TaskCompleted})
			require.NoError(t, err)
			assert.Len(t, completed, 3)

			page, err := s.List(ctx, Filter{Limit: 2, Offset: 1})
			require.NoError(t, err)
			require.Len(t, page, 2)
			assert.Equal(t, ids[3], page[0].ID)
		})
	}
}

func TestStoreRejectsInvalidTask(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			task := newTestTask()
			task.Plan.UserConfirmed = false
			assert.Error(t, s.Create(context.Background(), task))
		})
	}
}
