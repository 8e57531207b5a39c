package taskqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/storage"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	ctx := context.Background()
	pool, err := storage.Open(ctx, t.TempDir(), 5000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close(context.Background()) })
	return New(pool)
}

func TestSubmitIsIdempotentByPathTypeAndPath(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id1, err := q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/a.txt")
	require.NoError(t, err)

	id2, err := q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/a.txt")
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, snap.Pending)
}

func TestSubmitResetsStatusToPending(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/a.txt")
	require.NoError(t, err)

	task, ok, err := q.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, task.ID)
	require.Equal(t, model.TaskStatusRunning, task.Status)

	// Resubmitting a RUNNING task resets it to PENDING so a later
	// reconciliation still wins even if a worker is mid-flight.
	_, err = q.Submit(ctx, model.PathTypeFile, model.TaskTypeDelete, "/a.txt")
	require.NoError(t, err)

	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, snap.Pending)
	require.EqualValues(t, 0, snap.Running)
}

func TestClaimReturnsFalseWhenEmpty(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	_, ok, err := q.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestClaimOrdersByLowestID(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/a.txt")
	require.NoError(t, err)
	_, err = q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/b.txt")
	require.NoError(t, err)

	first, ok, err := q.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "/a.txt", first.Path)
}

func TestCompleteDeletesRow(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/a.txt")
	require.NoError(t, err)
	require.NoError(t, q.Complete(ctx, id))

	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	require.Zero(t, snap.Pending)
	require.Zero(t, snap.Running)
	require.Zero(t, snap.Failed)
}

func TestFailRetainsRowForDiagnostics(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/a.txt")
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, id))

	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, snap.Failed)
	require.Equal(t, []string{"/a.txt"}, snap.FailedPaths)
}

func TestResetRunningRevertsToPending(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Submit(ctx, model.PathTypeFile, model.TaskTypeIndex, "/a.txt")
	require.NoError(t, err)
	_, ok, err := q.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.True(t, ok)

	n, err := q.ResetRunning(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	snap, err := q.StatusSnapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, snap.Pending)
	require.EqualValues(t, 0, snap.Running)
}
