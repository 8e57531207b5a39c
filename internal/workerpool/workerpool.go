// Package workerpool runs the fixed set of long-lived goroutines that
// drain the durable task queue. It follows the shape of the teacher's
// FileProcessor.ProcessFiles loop (a select over ctx.Done() vs. work)
// but pulls work from the database via taskqueue.Claim instead of
// receiving it over a channel, since the queue here is durable and
// shared across a process restart rather than in-memory.
package workerpool

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/standardbeagle/duckindex/internal/extract"
	"github.com/standardbeagle/duckindex/internal/indexstore"
	"github.com/standardbeagle/duckindex/internal/logging"
	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/storage"
	"github.com/standardbeagle/duckindex/internal/taskqueue"
)

const claimEmptySleep = time.Second

// Count returns the default worker count: half the logical CPUs,
// never fewer than one. It does not consult any configuration.
func Count() int {
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

// Pool owns the fixed set of worker goroutines. Each goroutine holds
// its own Store and Registry instances — cheap wrappers around the
// shared *sql.DB — so no worker-to-worker synchronization is needed
// beyond what the task queue's claim statement already provides.
type Pool struct {
	queue *taskqueue.Queue
	log   *logging.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// Start launches n worker goroutines, each built from the given pool,
// ocrLanguages, and logger. It returns immediately; call Stop to shut
// the pool down.
func Start(parent context.Context, n int, pool *storage.Pool, ocrLanguages string, log *logging.Logger) *Pool {
	ctx, cancel := context.WithCancel(parent)
	p := &Pool{queue: taskqueue.New(pool), log: log, cancel: cancel}

	for i := 0; i < n; i++ {
		worker := &worker{
			name:     fmt.Sprintf("worker-%d", i),
			queue:    p.queue,
			store:    indexstore.New(pool),
			registry: extract.NewRegistry(ocrLanguages),
			log:      log,
		}
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			worker.run(ctx)
		}()
	}
	return p
}

// Stop cancels the workers' context and waits for them to return. The
// cancellation also reaches the store and extractor calls of a task in
// progress, so that task may end with an error instead of completing.
func (p *Pool) Stop() {
	p.cancel()
	p.wg.Wait()
}

type worker struct {
	name     string
	queue    *taskqueue.Queue
	store    *indexstore.Store
	registry *extract.Registry
	log      *logging.Logger
}

func (w *worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		task, ok, err := w.queue.Claim(ctx, w.name)
		if err != nil {
			w.log.Errorf("%s: claim: %v", w.name, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(claimEmptySleep):
			}
			continue
		}
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(claimEmptySleep):
			}
			continue
		}

		if err := w.dispatch(ctx, task); err != nil {
			// The task row stays RUNNING; the next process start's
			// reset_running or a later reconciliation submission puts
			// it back in PENDING rather than retrying immediately.
			w.log.Errorf("%s: task %d (%s %s %s): %v", w.name, task.ID, task.TaskType, task.PathType, task.Path, err)
			continue
		}
		if err := w.queue.Complete(ctx, task.ID); err != nil {
			w.log.Errorf("%s: complete task %d: %v", w.name, task.ID, err)
		}
	}
}

func (w *worker) dispatch(ctx context.Context, task model.Task) error {
	switch {
	case task.TaskType == model.TaskTypeIndex && task.PathType == model.PathTypeDirectory:
		return w.indexDirectory(ctx, task.Path)
	case task.TaskType == model.TaskTypeIndex && task.PathType == model.PathTypeFile:
		return w.indexFile(ctx, task.Path)
	case task.TaskType == model.TaskTypeDelete && task.PathType == model.PathTypeDirectory:
		return w.store.DeleteDirectory(ctx, task.Path)
	case task.TaskType == model.TaskTypeDelete && task.PathType == model.PathTypeFile:
		return w.store.DeleteFile(ctx, task.Path)
	default:
		return fmt.Errorf("unhandled task shape: %s %s", task.TaskType, task.PathType)
	}
}

func (w *worker) indexDirectory(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && !info.IsDir()) {
		// Vanished or replaced by a file between submit and claim; the
		// Reconciler will have already submitted whatever is now true.
		return nil
	}
	if err != nil {
		return err
	}
	_, err = w.store.WriteDirectory(ctx, path, info.ModTime())
	return err
}

func (w *worker) indexFile(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		return nil
	}
	if err != nil {
		return err
	}

	items, err := w.registry.Read(ctx, path)
	if err != nil {
		// Extraction failures don't fail the task: the file is simply
		// left unindexed until a later modification triggers a retry
		// through the Reconciler.
		w.log.Warnf("%s: extract %s: %v", w.name, path, err)
		return nil
	}
	// items may legitimately be empty (a 0-byte file, an unsupported
	// extension) — that's still a successful extraction and must be
	// recorded, or the Reconciler will treat the file as never-indexed
	// on every subsequent pass.
	return w.store.WriteFileItems(ctx, path, info.ModTime(), items)
}
