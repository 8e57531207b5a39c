// Package taskqueue implements the durable, DB-resident reconciliation
// work queue: a PENDING -> RUNNING -> (deleted | FAILED) lifecycle over
// the tasks table, with claim() as the single point of contention
// between worker goroutines. Grounded on kadirpekel-hector's job-queue
// table pattern (claim-by-update-returning) rather than an in-memory
// channel, since the corpus's queue must survive a process restart.
package taskqueue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/standardbeagle/duckindex/internal/errors"
	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/storage"
)

// Queue wraps the shared pool with the task lifecycle operations.
type Queue struct {
	pool *storage.Pool
}

func New(pool *storage.Pool) *Queue {
	return &Queue{pool: pool}
}

func (q *Queue) db() (*sql.DB, error) {
	return q.pool.Get()
}

// Submit upserts a task by (path_type, path). An existing row is reset
// to PENDING regardless of its current status — a DELETE queued behind
// a stale FAILED index, or a second INDEX for the same path, both
// collapse onto the one row. Idempotent.
func (q *Queue) Submit(ctx context.Context, pathType model.PathType, taskType model.TaskType, path string) (int64, error) {
	db, err := q.db()
	if err != nil {
		return 0, err
	}
	now := formatTime(time.Now())
	row := db.QueryRowContext(ctx, `
		INSERT INTO tasks (path_type, path, task_type, status, worker, created_at, updated_at)
		VALUES (?, ?, ?, 'PENDING', '', ?, ?)
		ON CONFLICT(path_type, path) DO UPDATE SET
			task_type = excluded.task_type,
			status = 'PENDING',
			updated_at = excluded.updated_at
		RETURNING id
	`, string(pathType), path, string(taskType), now, now)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, errors.NewStoreError("submit", err)
	}
	return id, nil
}

// ResetRunning flips every RUNNING row back to PENDING. Called once at
// process start: a crash mid-task leaves unknown partial progress, and
// re-running reconciliation is always safe because every index write is
// an upsert or a transactional delete-then-insert.
func (q *Queue) ResetRunning(ctx context.Context) (int64, error) {
	db, err := q.db()
	if err != nil {
		return 0, err
	}
	now := formatTime(time.Now())
	res, err := db.ExecContext(ctx, `
		UPDATE tasks SET status = 'PENDING', worker = '', updated_at = ?
		WHERE status = 'RUNNING'
	`, now)
	if err != nil {
		return 0, errors.NewStoreError("reset_running", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Claim atomically picks the lowest-id PENDING row, marks it RUNNING
// under the given worker name, and returns it. Returns (Task{}, false,
// nil) when the queue is empty — not an error, the caller sleeps and
// retries.
func (q *Queue) Claim(ctx context.Context, worker string) (model.Task, bool, error) {
	db, err := q.db()
	if err != nil {
		return model.Task{}, false, err
	}
	now := formatTime(time.Now())
	row := db.QueryRowContext(ctx, `
		UPDATE tasks SET status = 'RUNNING', worker = ?, updated_at = ?
		WHERE id = (SELECT id FROM tasks WHERE status = 'PENDING' ORDER BY id LIMIT 1)
		RETURNING id, path_type, path, task_type, status, worker, created_at, updated_at
	`, worker, now)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, errors.NewStoreError("claim", err)
	}
	return t, true, nil
}

// Complete deletes the task row — the terminal state for a
// successfully processed task.
func (q *Queue) Complete(ctx context.Context, id int64) error {
	db, err := q.db()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return errors.NewStoreError("complete", err)
	}
	return nil
}

// Fail marks the row FAILED. Failed tasks are retained for diagnostics
// and are never automatically retried; only a fresh Submit (triggered
// by a later filesystem event or reconciliation pass) revives them.
func (q *Queue) Fail(ctx context.Context, id int64) error {
	db, err := q.db()
	if err != nil {
		return err
	}
	now := formatTime(time.Now())
	if _, err := db.ExecContext(ctx, `UPDATE tasks SET status = 'FAILED', updated_at = ? WHERE id = ?`, now, id); err != nil {
		return errors.NewStoreError("fail", err)
	}
	return nil
}

// StatusSnapshot returns the PENDING/RUNNING/FAILED counts plus the
// path lists for RUNNING and FAILED, for the command surface's
// get_status.
func (q *Queue) StatusSnapshot(ctx context.Context) (model.TaskStatusSnapshot, error) {
	db, err := q.db()
	if err != nil {
		return model.TaskStatusSnapshot{}, err
	}

	var snap model.TaskStatusSnapshot
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = 'PENDING'`).Scan(&snap.Pending); err != nil {
		return model.TaskStatusSnapshot{}, errors.NewStoreError("status_snapshot", err)
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = 'RUNNING'`).Scan(&snap.Running); err != nil {
		return model.TaskStatusSnapshot{}, errors.NewStoreError("status_snapshot", err)
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE status = 'FAILED'`).Scan(&snap.Failed); err != nil {
		return model.TaskStatusSnapshot{}, errors.NewStoreError("status_snapshot", err)
	}

	snap.RunningPaths, err = q.pathsWithStatus(ctx, db, "RUNNING")
	if err != nil {
		return model.TaskStatusSnapshot{}, err
	}
	snap.FailedPaths, err = q.pathsWithStatus(ctx, db, "FAILED")
	if err != nil {
		return model.TaskStatusSnapshot{}, err
	}
	return snap, nil
}

func (q *Queue) pathsWithStatus(ctx context.Context, db *sql.DB, status string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT path FROM tasks WHERE status = ? ORDER BY id`, status)
	if err != nil {
		return nil, errors.NewStoreError("status_snapshot", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, errors.NewStoreError("status_snapshot", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// row is satisfied by *sql.Row, letting scanTask stay agnostic of which
// query produced it.
type row interface {
	Scan(dest ...interface{}) error
}

func scanTask(r row) (model.Task, error) {
	var t model.Task
	var pathType, taskType, status, created, updated string
	if err := r.Scan(&t.ID, &pathType, &t.Path, &taskType, &status, &t.Worker, &created, &updated); err != nil {
		return model.Task{}, err
	}

	var ok bool
	if t.PathType, ok = model.ParsePathType(pathType); !ok {
		return model.Task{}, fmt.Errorf("unknown path_type %q", pathType)
	}
	if t.TaskType, ok = model.ParseTaskType(taskType); !ok {
		return model.Task{}, fmt.Errorf("unknown task_type %q", taskType)
	}
	if t.Status, ok = model.ParseTaskStatus(status); !ok {
		return model.Task{}, fmt.Errorf("unknown status %q", status)
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
