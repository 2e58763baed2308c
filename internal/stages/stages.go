// Package stages implements the five pipeline stage executors. Each executor
// is independently callable: it takes typed input (topic, parameters, and the
// accumulated outputs of its dependencies) and returns its StageOutput
// variant or an error.
package stages

import (
	"context"
	"errors"
	"fmt"

	"github.com/harrison/maestro/internal/models"
)

// ErrNoAssets is returned by the asset selection executor when the searcher
// finds nothing. Whether this fails the task is a per-task-type policy
// decision made by the orchestrator, not by the executor.
var ErrNoAssets = errors.New("no assets found")

// Input is the typed input handed to a stage executor.
type Input struct {
	Topic      string
	Parameters map[string]string

	// Outputs holds the results of already-completed stages, keyed by kind.
	// An executor reads only the kinds it depends on.
	Outputs map[models.StageKind]models.StageOutput

	// Feedback carries reviewer feedback lines for creative refinement
	// attempts. Empty on the first attempt.
	Feedback []string

	// Revision is the 1-based draft revision the creative stage should
	// produce.
	Revision int
}

// Parameter returns the named request parameter, or the empty string.
func (in *Input) Parameter(name string) string {
	if in.Parameters == nil {
		return ""
	}
	return in.Parameters[name]
}

// Executor is a single pipeline stage.
type Executor interface {
	Kind() models.StageKind
	Execute(ctx context.Context, in Input) (models.StageOutput, error)
}

// Registry maps stage kinds to their executors.
type Registry map[models.StageKind]Executor

// Get returns the executor for a kind.
func (r Registry) Get(kind models.StageKind) (Executor, error) {
	exec, ok := r[kind]
	if !ok {
		return nil, fmt.Errorf("no executor registered for stage %q", kind)
	}
	return exec, nil
}
