package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/maestro/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is the durable Store implementation backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (creating if necessary) the task database at dbPath
// and initializes the schema. ":memory:" yields an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first, so subsequent pragmas wait on locks rather than
	// failing when another connection is initializing the same file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !strings.Contains(err.Error(), "locked") {
			return err
		}
		time.Sleep(baseDelay << attempt)
	}
	return lastErr
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	enc, err := marshalTask(task)
	if err != nil {
		return err
	}

	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, topic, task_type, status, current_stage, parameters, notes,
			cancel_requested, failed_stage, plan, stage_results, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Name, task.Topic, task.TaskType, string(task.Status), string(task.CurrentStage),
		enc.parameters, enc.notes, boolToInt(task.CancelRequested), string(task.FailedStage),
		enc.plan, enc.results, task.CreatedAt.UnixNano(), task.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("create task %s: %w", task.ID, ErrExists)
		}
		return fmt.Errorf("create task %s: %w", task.ID, err)
	}
	return nil
}

// Update implements Store. The caller's task.UpdatedAt must match the stored
// value; a stale stamp yields ErrConflict and no write. On success the task's
// UpdatedAt is advanced in place.
func (s *SQLiteStore) Update(ctx context.Context, task *models.Task) error {
	enc, err := marshalTask(task)
	if err != nil {
		return err
	}

	prev := task.UpdatedAt
	next := time.Now()
	if !next.After(prev) {
		next = prev.Add(time.Nanosecond)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, topic = ?, task_type = ?, status = ?, current_stage = ?, parameters = ?,
			notes = ?, cancel_requested = ?, failed_stage = ?, plan = ?, stage_results = ?, updated_at = ?
		WHERE id = ? AND updated_at = ?`,
		task.Name, task.Topic, task.TaskType, string(task.Status), string(task.CurrentStage), enc.parameters,
		enc.notes, boolToInt(task.CancelRequested), string(task.FailedStage), enc.plan, enc.results,
		next.UnixNano(), task.ID, prev.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	if affected == 0 {
		// Distinguish a stale stamp from a missing row.
		var exists int
		row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM tasks WHERE id = ?", task.ID)
		if scanErr := row.Scan(&exists); scanErr == nil && exists == 0 {
			return fmt.Errorf("update task %s: %w", task.ID, ErrNotFound)
		}
		return fmt.Errorf("update task %s: %w", task.ID, ErrConflict)
	}

	task.UpdatedAt = next
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, topic, task_type, status, current_stage, parameters, notes,
			cancel_requested, failed_stage, plan, stage_results, created_at, updated_at
		FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return task, nil
}

// List implements Store. Results are ordered newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*models.Task, error) {
	query := `
		SELECT id, name, topic, task_type, status, current_stage, parameters, notes,
			cancel_requested, failed_stage, plan, stage_results, created_at, updated_at
		FROM tasks`
	var args []interface{}
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var status, currentStage, failedStage string
	var paramsJSON, notesJSON, planJSON, resultsJSON string
	var cancelRequested int
	var createdAt, updatedAt int64

	err := row.Scan(&t.ID, &t.Name, &t.Topic, &t.TaskType, &status, &currentStage, &paramsJSON,
		&notesJSON, &cancelRequested, &failedStage, &planJSON, &resultsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.Status = models.TaskStatus(status)
	t.CurrentStage = models.StageKind(currentStage)
	t.FailedStage = models.StageKind(failedStage)
	t.CancelRequested = cancelRequested != 0
	t.CreatedAt = time.Unix(0, createdAt)
	t.UpdatedAt = time.Unix(0, updatedAt)

	if err := json.Unmarshal([]byte(paramsJSON), &t.Parameters); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	if err := json.Unmarshal([]byte(notesJSON), &t.Notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if err := json.Unmarshal([]byte(planJSON), &t.Plan); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &t.StageResults); err != nil {
		return nil, fmt.Errorf("decode stage results: %w", err)
	}
	return &t, nil
}

// encodedTask holds the JSON-encoded columns of a task row.
type encodedTask struct {
	parameters string
	notes      string
	plan       string
	results    string
}

func marshalTask(task *models.Task) (encodedTask, error) {
	var enc encodedTask

	params := task.Parameters
	if params == nil {
		params = map[string]string{}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return enc, fmt.Errorf("encode parameters: %w", err)
	}
	enc.parameters = string(b)

	notes := task.Notes
	if notes == nil {
		notes = []string{}
	}
	if b, err = json.Marshal(notes); err != nil {
		return enc, fmt.Errorf("encode notes: %w", err)
	}
	enc.notes = string(b)

	if b, err = json.Marshal(task.Plan); err != nil {
		return enc, fmt.Errorf("encode plan: %w", err)
	}
	enc.plan = string(b)

	results := task.StageResults
	if results == nil {
		results = map[models.StageKind]models.StageResult{}
	}
	if b, err = json.Marshal(results); err != nil {
		return enc, fmt.Errorf("encode stage results: %w", err)
	}
	enc.results = string(b)

	return enc, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
