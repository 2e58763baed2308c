// Package executor drives confirmed execution plans through their stages: it
// schedules stages in dependency order (sequentially or in bounded-parallel
// waves), applies the creative/quality-review refinement loop, retries
// transient stage failures with backoff, honors cooperative cancellation
// between stages, and persists every state transition to the task store
// before the next stage starts so a restart resumes from durable state.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harrison/maestro/internal/models"
	"github.com/harrison/maestro/internal/provider"
	"github.com/harrison/maestro/internal/stages"
	"github.com/harrison/maestro/internal/store"
)

// Asset failure policy values: what to do when asset selection finds nothing.
const (
	AssetPolicyProceed = "proceed"
	AssetPolicyFail    = "fail"
)

var (
	// ErrTaskTerminal is returned when an operation targets a task already in
	// a terminal state.
	ErrTaskTerminal = errors.New("task is in a terminal state")

	// ErrNotAwaitingApproval is returned when Approve targets a task that is
	// not awaiting approval.
	ErrNotAwaitingApproval = errors.New("task is not awaiting approval")
)

// Options tunes orchestrator behavior. Zero values select defaults.
type Options struct {
	// StageTimeout bounds each stage invocation; a timeout is a transient
	// failure subject to the retry budget.
	StageTimeout time.Duration

	// RetryBudget is the number of retries after the first attempt for
	// transient stage failures.
	RetryBudget int

	// RetryBackoff is the base delay between retries, doubled per attempt.
	RetryBackoff time.Duration

	// RefinementCap bounds extra creative attempts driven by quality review.
	RefinementCap int

	// MaxConcurrency bounds in-flight stages within a parallel wave.
	MaxConcurrency int

	// ApprovalRequired holds the task in awaiting_approval after the final
	// stage when the plan ends in a publish-side-effect stage.
	ApprovalRequired bool

	// AssetFailurePolicies maps task type to AssetPolicyProceed/AssetPolicyFail,
	// deciding whether an empty asset search fails the task. Unlisted task
	// types proceed. A task parameter require_images=true forces failure.
	AssetFailurePolicies map[string]string
}

func (o Options) withDefaults() Options {
	if o.StageTimeout <= 0 {
		o.StageTimeout = 2 * time.Minute
	}
	// Zero is meaningful for RetryBudget and RefinementCap (no retries, no
	// refinement), so only negatives are normalized.
	if o.RetryBudget < 0 {
		o.RetryBudget = 0
	}
	if o.RefinementCap < 0 {
		o.RefinementCap = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = 3
	}
	return o
}

// Orchestrator executes confirmed plans. It holds no per-task state: each Run
// works on its own task snapshot, and the store is the only shared mutable
// resource, accessed under optimistic concurrency.
type Orchestrator struct {
	store     store.Store
	registry  stages.Registry
	publisher provider.Publisher
	logger    Logger
	opts      Options
}

// New builds an Orchestrator. The logger may be nil.
func New(st store.Store, registry stages.Registry, publisher provider.Publisher, logger Logger, opts Options) *Orchestrator {
	if st == nil {
		panic("store cannot be nil")
	}
	if registry == nil {
		panic("stage registry cannot be nil")
	}
	return &Orchestrator{
		store:     st,
		registry:  registry,
		publisher: publisher,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

// Run executes the task's plan to its next resting state: completed,
// awaiting approval, failed, or cancelled. Stages that already have a
// successful durable result are skipped, so Run can resume a task after a
// process restart without re-running completed stages.
func (o *Orchestrator) Run(ctx context.Context, taskID string) error {
	task, err := o.store.Get(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status.Terminal() {
		return nil
	}

	waves, err := computeWaves(&task.Plan)
	if err != nil {
		ferr := o.failTask(ctx, &task, "", err)
		if ferr != nil {
			return ferr
		}
		return err
	}

	o.logTaskStart(task)

	for _, wave := range waves {
		// Refresh to pick up an externally-set cancellation flag; the
		// check sits between stages, never mid-stage.
		task, err = o.store.Get(ctx, task.ID)
		if err != nil {
			return err
		}
		if task.CancelRequested {
			return o.cancelTask(ctx, &task)
		}

		var pending []models.StageKind
		for _, kind := range wave {
			if r, ok := task.Result(kind); !ok || !r.Succeeded() {
				pending = append(pending, kind)
			}
		}
		if len(pending) == 0 {
			continue
		}

		err = o.transition(ctx, &task, func(t *models.Task) error {
			t.Status = models.TaskInProgress
			t.CurrentStage = pending[0]
			return nil
		})
		if err != nil {
			return err
		}

		outcomes, stageErr := o.executeWave(ctx, task, pending)

		err = o.transition(ctx, &task, func(t *models.Task) error {
			for _, oc := range outcomes {
				if err := t.SetResult(oc.result); err != nil {
					return err
				}
				for _, note := range oc.notes {
					t.AddNote(note)
				}
			}
			if stageErr != nil {
				t.Status = models.TaskFailed
				t.FailedStage = stageErr.Stage
				t.CurrentStage = ""
			}
			return nil
		})
		if err != nil {
			return err
		}

		if stageErr != nil {
			o.logTaskFinished(task)
			return stageErr
		}
	}

	// Final cancellation check before the resting transition.
	task, err = o.store.Get(ctx, task.ID)
	if err != nil {
		return err
	}
	if task.CancelRequested {
		return o.cancelTask(ctx, &task)
	}

	final := models.TaskCompleted
	if o.opts.ApprovalRequired && task.Plan.HasStage(models.StageFormat) {
		final = models.TaskAwaitingApproval
	}
	err = o.transition(ctx, &task, func(t *models.Task) error {
		t.Status = final
		t.CurrentStage = ""
		return nil
	})
	if err != nil {
		return err
	}
	o.logTaskFinished(task)
	return nil
}

// stageOutcome pairs a stage result with any non-fatal notes it produced.
type stageOutcome struct {
	result models.StageResult
	notes  []string
}

// executeWave runs the wave's stages, concurrently when the wave holds more
// than one. It returns every outcome (failed stages included) plus the first
// fatal stage error.
func (o *Orchestrator) executeWave(ctx context.Context, task *models.Task, wave []models.StageKind) ([]stageOutcome, *StageError) {
	if len(wave) == 1 {
		return o.runStage(ctx, task, wave[0])
	}

	semaphore := make(chan struct{}, o.opts.MaxConcurrency)
	results := make(chan struct {
		outcomes []stageOutcome
		err      *StageError
	}, len(wave))

	var wg sync.WaitGroup
	for _, kind := range wave {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(kind models.StageKind) {
			defer wg.Done()
			defer func() { <-semaphore }()
			outcomes, err := o.runStage(ctx, task, kind)
			results <- struct {
				outcomes []stageOutcome
				err      *StageError
			}{outcomes, err}
		}(kind)
	}

	wg.Wait()
	close(results)

	var outcomes []stageOutcome
	var firstErr *StageError
	for r := range results {
		outcomes = append(outcomes, r.outcomes...)
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
	}
	return outcomes, firstErr
}

// runStage executes one stage, routing the creative stage through the
// refinement loop when the plan includes quality review.
func (o *Orchestrator) runStage(ctx context.Context, task *models.Task, kind models.StageKind) ([]stageOutcome, *StageError) {
	if kind == models.StageCreative && task.Plan.HasStage(models.StageQualityReview) {
		return o.runRefinementLoop(ctx, task)
	}

	exec, err := o.registry.Get(kind)
	if err != nil {
		return []stageOutcome{failedOutcome(kind, 0, err)}, NewStageError(kind, "no executor", 0, err)
	}

	start := time.Now()
	out, attempts, err := o.invoke(ctx, task, exec, o.stageInput(task))
	duration := time.Since(start)

	if errors.Is(err, stages.ErrNoAssets) && kind == models.StageAssetSelection {
		return o.resolveAssetShortfall(task, out, attempts, duration)
	}
	if err != nil {
		outcome := failedOutcome(kind, attempts, err)
		outcome.result.Duration = duration
		return []stageOutcome{outcome}, NewStageError(kind, "execution failed", attempts, err)
	}

	result := models.StageResult{
		Kind:         kind,
		Status:       statusForAttempts(attempts),
		Output:       &out,
		AttemptCount: attempts,
		Duration:     duration,
	}
	o.logStageComplete(task, result)
	return []stageOutcome{{result: result}}, nil
}

// resolveAssetShortfall applies the per-task-type policy for an empty asset
// search: proceed with a note, or fail the task.
func (o *Orchestrator) resolveAssetShortfall(task *models.Task, out models.StageOutput, attempts int, duration time.Duration) ([]stageOutcome, *StageError) {
	policy := o.opts.AssetFailurePolicies[task.TaskType]
	if task.Parameters["require_images"] == "true" {
		policy = AssetPolicyFail
	}

	if policy == AssetPolicyFail {
		outcome := failedOutcome(models.StageAssetSelection, attempts, stages.ErrNoAssets)
		outcome.result.Duration = duration
		return []stageOutcome{outcome}, NewStageError(models.StageAssetSelection, "no assets found and task requires images", attempts, stages.ErrNoAssets)
	}

	result := models.StageResult{
		Kind:         models.StageAssetSelection,
		Status:       statusForAttempts(attempts),
		Output:       &out,
		AttemptCount: attempts,
		Duration:     duration,
	}
	o.logStageComplete(task, result)
	return []stageOutcome{{
		result: result,
		notes:  []string{"asset selection found no assets; proceeding without images"},
	}}, nil
}

// invoke runs the executor with the per-stage timeout, retrying transient
// failures with doubling backoff up to the retry budget. It returns the
// number of attempts made.
func (o *Orchestrator) invoke(ctx context.Context, task *models.Task, exec stages.Executor, in stages.Input) (models.StageOutput, int, error) {
	kind := exec.Kind()
	var lastErr error
	var out models.StageOutput

	maxAttempts := 1 + o.opts.RetryBudget
	attempts := 0
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attempts = attempt
		o.logStageStart(task, kind, attempt)

		stageCtx, cancel := context.WithTimeout(ctx, o.opts.StageTimeout)
		result, err := exec.Execute(stageCtx, in)
		timedOut := stageCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil
		cancel()

		if err == nil {
			return result, attempt, nil
		}
		if errors.Is(err, stages.ErrNoAssets) {
			return result, attempt, err
		}
		if timedOut {
			err = NewTimeoutError(kind, o.opts.StageTimeout)
		}
		lastErr = err

		if !IsTransient(err) || attempt == maxAttempts {
			break
		}

		o.logStageRetry(task, kind, attempt, err)
		backoff := o.opts.RetryBackoff << (attempt - 1)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return out, attempt, ctx.Err()
		}
	}
	return out, attempts, lastErr
}

// stageInput assembles the executor input from the task's topic, parameters,
// and the outputs of already-persisted stages.
func (o *Orchestrator) stageInput(task *models.Task) stages.Input {
	outputs := make(map[models.StageKind]models.StageOutput)
	for kind, r := range task.StageResults {
		if r.Succeeded() && r.Output != nil {
			outputs[kind] = *r.Output
		}
	}
	return stages.Input{
		Topic:      task.Topic,
		Parameters: task.Parameters,
		Outputs:    outputs,
	}
}

// transition applies mutate to the task and persists it, re-reading and
// re-applying on optimistic-concurrency conflicts. The mutate closure must be
// idempotent: it may run against a fresher snapshot than the caller's.
func (o *Orchestrator) transition(ctx context.Context, task **models.Task, mutate func(*models.Task) error) error {
	const maxRetries = 3

	t := *task
	for attempt := 0; ; attempt++ {
		if err := mutate(t); err != nil {
			return err
		}
		err := o.store.Update(ctx, t)
		if err == nil {
			*task = t
			return nil
		}
		if !errors.Is(err, store.ErrConflict) || attempt >= maxRetries {
			return err
		}
		fresh, gerr := o.store.Get(ctx, t.ID)
		if gerr != nil {
			return gerr
		}
		t = fresh
	}
}

func (o *Orchestrator) cancelTask(ctx context.Context, task **models.Task) error {
	err := o.transition(ctx, task, func(t *models.Task) error {
		t.Status = models.TaskCancelled
		t.CurrentStage = ""
		return nil
	})
	if err != nil {
		return err
	}
	o.logTaskFinished(*task)
	return nil
}

func (o *Orchestrator) failTask(ctx context.Context, task **models.Task, stage models.StageKind, cause error) error {
	err := o.transition(ctx, task, func(t *models.Task) error {
		t.Status = models.TaskFailed
		t.FailedStage = stage
		t.CurrentStage = ""
		t.AddNote("execution aborted: " + cause.Error())
		return nil
	})
	if err != nil {
		return err
	}
	o.logTaskFinished(*task)
	return nil
}

func failedOutcome(kind models.StageKind, attempts int, err error) stageOutcome {
	return stageOutcome{result: models.StageResult{
		Kind:         kind,
		Status:       models.StageStatusFailed,
		AttemptCount: attempts,
		Error: &models.ErrorInfo{
			Stage:     kind,
			Message:   err.Error(),
			Transient: IsTransient(err),
		},
	}}
}

func statusForAttempts(attempts int) string {
	if attempts > 1 {
		return models.StageStatusRetried
	}
	return models.StageStatusSuccess
}

// ExecuteStage runs a single stage outside any plan, with the same timeout,
// retry, and backoff treatment plan execution gets. The result is returned to
// the caller and never persisted; an empty asset search yields a succeeded
// result with an empty asset list. An error is returned only when no executor
// is registered for the kind.
func (o *Orchestrator) ExecuteStage(ctx context.Context, kind models.StageKind, in stages.Input) (models.StageResult, error) {
	exec, err := o.registry.Get(kind)
	if err != nil {
		return models.StageResult{}, err
	}

	task := &models.Task{ID: "standalone", Topic: in.Topic, Parameters: in.Parameters}

	start := time.Now()
	out, attempts, err := o.invoke(ctx, task, exec, in)
	duration := time.Since(start)

	if err != nil && !errors.Is(err, stages.ErrNoAssets) {
		outcome := failedOutcome(kind, attempts, err)
		outcome.result.Duration = duration
		return outcome.result, nil
	}

	return models.StageResult{
		Kind:         kind,
		Status:       statusForAttempts(attempts),
		Output:       &out,
		AttemptCount: attempts,
		Duration:     duration,
	}, nil
}

// RequestCancel sets the cooperative cancellation flag. Tasks that are not
// actively running a stage (pending or awaiting approval) cancel immediately;
// otherwise the running stage finishes and the orchestrator cancels at the
// next stage boundary.
func (o *Orchestrator) RequestCancel(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := o.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status.Terminal() {
		return nil, fmt.Errorf("cancel task %s: %w", taskID, ErrTaskTerminal)
	}

	err = o.transition(ctx, &task, func(t *models.Task) error {
		if t.Status.Terminal() {
			return fmt.Errorf("cancel task %s: %w", taskID, ErrTaskTerminal)
		}
		t.CancelRequested = true
		if t.Status == models.TaskPending || t.Status == models.TaskAwaitingApproval {
			t.Status = models.TaskCancelled
			t.CurrentStage = ""
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Approve releases a task held in awaiting_approval: the formatted document
// is pushed to the publisher, the published reference is recorded on the
// format result, and the task completes. On publish failure the task stays
// awaiting approval so the caller can retry.
func (o *Orchestrator) Approve(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := o.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != models.TaskAwaitingApproval {
		return nil, fmt.Errorf("approve task %s: %w", taskID, ErrNotAwaitingApproval)
	}

	var ref string
	if o.publisher != nil {
		if r, ok := task.Result(models.StageFormat); ok && r.Output != nil && r.Output.Format != nil {
			doc := provider.Document{
				Title:    task.Name,
				Markdown: r.Output.Format.Markdown,
				HTML:     r.Output.Format.HTML,
				Platform: r.Output.Format.Platform,
			}
			if ar, ok := task.Result(models.StageAssetSelection); ok && ar.Output != nil && ar.Output.AssetSelection != nil {
				doc.Assets = ar.Output.AssetSelection.Assets
			}
			ref, err = o.publisher.Publish(ctx, doc)
			if err != nil {
				return nil, fmt.Errorf("approve task %s: publish: %w", taskID, err)
			}
		}
	}

	err = o.transition(ctx, &task, func(t *models.Task) error {
		if t.Status != models.TaskAwaitingApproval {
			return fmt.Errorf("approve task %s: %w", taskID, ErrNotAwaitingApproval)
		}
		if ref != "" {
			if r, ok := t.Result(models.StageFormat); ok && r.Output != nil && r.Output.Format != nil {
				format := *r.Output.Format
				format.PublishedRef = ref
				out := *r.Output
				out.Format = &format
				r.Output = &out
				if err := t.SetResult(r); err != nil {
					return err
				}
			}
		}
		t.Status = models.TaskCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	o.logTaskFinished(task)
	return task, nil
}
