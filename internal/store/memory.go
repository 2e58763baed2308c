package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/harrison/maestro/internal/models"
)

// MemoryStore is an in-process Store with the same optimistic concurrency
// semantics as the SQLite adapter. Used by tests and ephemeral CLI runs.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*models.Task)}
}

// Create implements Store.
func (m *MemoryStore) Create(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[task.ID]; ok {
		return fmt.Errorf("create task %s: %w", task.ID, ErrExists)
	}

	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	m.tasks[task.ID] = task.Clone()
	return nil
}

// Update implements Store, rejecting stale updated_at stamps with ErrConflict.
func (m *MemoryStore) Update(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tasks[task.ID]
	if !ok {
		return fmt.Errorf("update task %s: %w", task.ID, ErrNotFound)
	}
	if !stored.UpdatedAt.Equal(task.UpdatedAt) {
		return fmt.Errorf("update task %s: %w", task.ID, ErrConflict)
	}

	next := time.Now()
	if !next.After(task.UpdatedAt) {
		next = task.UpdatedAt.Add(time.Nanosecond)
	}
	task.UpdatedAt = next
	m.tasks[task.ID] = task.Clone()
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	return task.Clone(), nil
}

// List implements Store, newest first.
func (m *MemoryStore) List(ctx context.Context, filter Filter) ([]*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*models.Task
	for _, t := range m.tasks {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		tasks = append(tasks, t.Clone())
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return nil, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
