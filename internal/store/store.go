// Package store persists tasks, plans, and per-stage results. It is the only
// shared mutable state in the system; every mutation goes through Update,
// which enforces optimistic concurrency on the task's updated_at stamp.
package store

import (
	"context"
	"errors"

	"github.com/harrison/maestro/internal/models"
)

var (
	// ErrNotFound is returned when no task exists for the requested id.
	ErrNotFound = errors.New("task not found")

	// ErrConflict is returned when Update is called with a stale view of the
	// task. The caller must re-read and retry its own transition.
	ErrConflict = errors.New("task update conflict")

	// ErrExists is returned when Create is called with an id already in use.
	ErrExists = errors.New("task already exists")
)

// Filter narrows List results.
type Filter struct {
	// Status restricts results to one lifecycle state when non-empty.
	Status models.TaskStatus
	// Limit caps the result count; 0 means no cap.
	Limit int
	// Offset skips that many results, for pagination.
	Offset int
}

// Store is the durable task record. Implementations must reject stale
// updates with ErrConflict and must advance UpdatedAt on every accepted
// write.
type Store interface {
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id string) (*models.Task, error)
	List(ctx context.Context, filter Filter) ([]*models.Task, error)
	Close() error
}
