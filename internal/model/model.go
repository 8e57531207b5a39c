// Package model defines duckindex's persistent entities. Enums cross
// the SQL boundary as textual tokens, not integers, so the store stays
// self-describing and a stray row is readable with a plain SQL client.
package model

import "time"

// PathType distinguishes a Task's target.
type PathType string

const (
	PathTypeDirectory PathType = "DIRECTORY"
	PathTypeFile      PathType = "FILE"
)

// ParsePathType rejects unknown tokens at read time, per the enums
// contract: a row this build didn't write should never be silently
// coerced into a zero value.
func ParsePathType(s string) (PathType, bool) {
	switch PathType(s) {
	case PathTypeDirectory, PathTypeFile:
		return PathType(s), true
	default:
		return "", false
	}
}

// TaskType distinguishes the work a Task represents.
type TaskType string

const (
	TaskTypeIndex  TaskType = "INDEX"
	TaskTypeDelete TaskType = "DELETE"
)

func ParseTaskType(s string) (TaskType, bool) {
	switch TaskType(s) {
	case TaskTypeIndex, TaskTypeDelete:
		return TaskType(s), true
	default:
		return "", false
	}
}

// TaskStatus is the Task's position in its PENDING -> RUNNING ->
// (deleted | FAILED) lifecycle.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusRunning TaskStatus = "RUNNING"
	TaskStatusFailed  TaskStatus = "FAILED"
)

func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch TaskStatus(s) {
	case TaskStatusPending, TaskStatusRunning, TaskStatusFailed:
		return TaskStatus(s), true
	default:
		return "", false
	}
}

// Directory is a single indexed directory. ModifiedTime is refreshed on
// every reconciliation pass, not on every read.
type Directory struct {
	ID           int64
	Name         string
	Path         string
	ModifiedTime time.Time
}

// File is owned by exactly one Directory. The store does not enforce
// the DirectoryID foreign key; the Reconciler is responsible for
// upserting the parent Directory before any File that references it.
type File struct {
	ID           int64
	DirectoryID  int64
	Name         string
	ModifiedTime time.Time
}

// Item is a single immutable text fragment belonging to one File.
// Updates are delete-then-insert; Items are never mutated in place.
type Item struct {
	ID      int64
	FileID  int64
	Content string
}

// Task is a durable unit of pending reconciliation work, uniquely
// identified by (PathType, Path).
type Task struct {
	ID        int64
	PathType  PathType
	Path      string
	TaskType  TaskType
	Status    TaskStatus
	Worker    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DirectoryResult, FileResult and ItemResult are the shapes the search
// and listing endpoints return to callers — plain projections, not the
// full persisted row.
type DirectoryResult struct {
	Name         string
	Path         string
	ModifiedTime time.Time
}

type FileResult struct {
	Name         string
	Path         string
	ModifiedTime time.Time
}

type ItemResult struct {
	Content string
	File    string
	Path    string
}

// IndexStatus is the combined count summary for the index store.
type IndexStatus struct {
	Directories int64
	Files       int64
	Items       int64
}

// TaskStatusSnapshot is the combined count + diagnostic path summary for
// the task queue.
type TaskStatusSnapshot struct {
	Pending int64
	Running int64
	Failed  int64

	RunningPaths []string
	FailedPaths  []string
}
