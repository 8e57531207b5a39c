// Package duckindex wires the process's components — storage pool,
// index store, task queue, reconciler, worker pool, and filesystem
// monitor — into the eight-operation command surface described by the
// command API. A Service is the one type the bundled CLI (or any other
// UI) talks to; callers never reach into the internal packages
// directly.
package duckindex

import (
	"context"
	"time"

	"github.com/standardbeagle/duckindex/internal/config"
	"github.com/standardbeagle/duckindex/internal/errors"
	"github.com/standardbeagle/duckindex/internal/extract"
	"github.com/standardbeagle/duckindex/internal/indexstore"
	"github.com/standardbeagle/duckindex/internal/kvconfig"
	"github.com/standardbeagle/duckindex/internal/logging"
	"github.com/standardbeagle/duckindex/internal/model"
	"github.com/standardbeagle/duckindex/internal/reconciler"
	"github.com/standardbeagle/duckindex/internal/storage"
	"github.com/standardbeagle/duckindex/internal/taskqueue"
	"github.com/standardbeagle/duckindex/internal/watch"
	"github.com/standardbeagle/duckindex/internal/workerpool"
	"github.com/standardbeagle/duckindex/pkg/pathutil"
)

// Service is the process-wide entry point. Open wires every component;
// Close tears them down in the reverse order.
type Service struct {
	cfg    *config.Config
	log    *logging.Logger
	pool   *storage.Pool
	store  *indexstore.Store
	queue  *taskqueue.Queue
	kv     *kvconfig.Store
	recon  *reconciler.Reconciler
	worker *workerpool.Pool
	mon    *watch.Monitor
}

// Open resolves configuration, opens the storage pool, resets any
// RUNNING tasks orphaned by a prior crash, starts the worker pool and
// filesystem monitor, and re-registers every previously configured
// root with both.
func Open(ctx context.Context) (*Service, error) {
	cfg, dataDir, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logging.New(dataDir)
	if err != nil {
		return nil, err
	}

	pool, err := storage.Open(ctx, dataDir, cfg.BusyTimeoutMs)
	if err != nil {
		log.Close()
		return nil, err
	}

	store := indexstore.New(pool)
	queue := taskqueue.New(pool)
	kv := kvconfig.New(pool)
	registry := extract.NewRegistry(cfg.OcrLanguages)
	recon := reconciler.New(store, queue, registry)

	if _, err := queue.ResetRunning(ctx); err != nil {
		pool.Close(ctx)
		log.Close()
		return nil, err
	}

	worker := workerpool.Start(ctx, cfg.WorkerCount(), pool, cfg.OcrLanguages, log)

	svc := &Service{cfg: cfg, log: log, pool: pool, store: store, queue: queue, kv: kv, recon: recon, worker: worker}

	mon, err := watch.New(log, svc.onFilesystemEvent)
	if err != nil {
		worker.Stop()
		pool.Close(ctx)
		log.Close()
		return nil, err
	}
	svc.mon = mon

	roots, err := kv.IndexDirPaths(ctx)
	if err != nil {
		svc.Close(ctx)
		return nil, err
	}
	for _, root := range roots {
		if err := mon.AddPath(root); err != nil {
			log.Warnf("service: re-add watch for %s: %v", root, err)
		}
		if err := recon.SubmitIndexAllFiles(ctx, root); err != nil {
			log.Warnf("service: initial reconciliation for %s: %v", root, err)
		}
	}
	return svc, nil
}

// onFilesystemEvent is the watch.Handler passed to watch.New. It runs
// on the monitor's own drain goroutine, so it must not block; the
// Reconciler's own work lands on the durable queue, but the top-level
// directory walk itself still runs synchronously here, per the
// command surface's documented trade-off.
func (s *Service) onFilesystemEvent(path string) {
	if err := s.recon.SubmitIndexAllFiles(context.Background(), path); err != nil {
		s.log.Warnf("service: reconcile %s: %v", path, err)
	}
}

// Close stops the monitor and worker pool, then the storage pool and
// logger, in that order — newest-started first.
func (s *Service) Close(ctx context.Context) error {
	if s.mon != nil {
		s.mon.Close()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	var closeErr error
	if s.pool != nil {
		closeErr = s.pool.Close(ctx)
	}
	if s.log != nil {
		s.log.Close()
	}
	return closeErr
}

// AddIndexPath registers a new root: rejects a path already present in
// the configured roots, starts watching it, submits the initial
// reconciliation, and persists the updated root list.
func (s *Service) AddIndexPath(ctx context.Context, path string) error {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return err
	}
	roots, err := s.kv.IndexDirPaths(ctx)
	if err != nil {
		return err
	}
	for _, r := range roots {
		if r == path {
			return errors.NewPathError(path, "already an indexed root")
		}
	}

	if err := s.mon.AddPath(path); err != nil {
		return err
	}
	if err := s.recon.SubmitIndexAllFiles(ctx, path); err != nil {
		return err
	}
	return s.kv.SetIndexDirPaths(ctx, append(roots, path))
}

// DelIndexPath stops watching path, submits a delete task for it, and
// persists the updated root list.
func (s *Service) DelIndexPath(ctx context.Context, path string) error {
	path, err := pathutil.Canonicalize(path)
	if err != nil {
		return err
	}
	roots, err := s.kv.IndexDirPaths(ctx)
	if err != nil {
		return err
	}

	remaining := roots[:0]
	found := false
	for _, r := range roots {
		if r == path {
			found = true
			continue
		}
		remaining = append(remaining, r)
	}
	if !found {
		return errors.NewPathError(path, "not an indexed root")
	}

	if err := s.mon.DelPath(path); err != nil {
		s.log.Warnf("service: stop watching %s: %v", path, err)
	}
	if _, err := s.queue.Submit(ctx, model.PathTypeDirectory, model.TaskTypeDelete, path); err != nil {
		return err
	}
	return s.kv.SetIndexDirPaths(ctx, remaining)
}

// SearchDirectory, SearchFile, and SearchItem pass straight through to
// the Index store.
func (s *Service) SearchDirectory(ctx context.Context, query string, offset, limit int) ([]model.DirectoryResult, error) {
	return s.store.SearchDirectory(ctx, query, offset, limit)
}

func (s *Service) SearchFile(ctx context.Context, query string, offset, limit int) ([]model.FileResult, error) {
	return s.store.SearchFile(ctx, query, offset, limit)
}

func (s *Service) SearchItem(ctx context.Context, query string, offset, limit int) ([]model.ItemResult, error) {
	return s.store.SearchItem(ctx, query, offset, limit)
}

// GetIndexDirPaths reads the root list from config.
func (s *Service) GetIndexDirPaths(ctx context.Context) ([]string, error) {
	return s.kv.IndexDirPaths(ctx)
}

// Status is the combined task-queue snapshot and index-status counts
// get_status returns.
type Status struct {
	Tasks model.TaskStatusSnapshot
	Index model.IndexStatus
}

func (s *Service) GetStatus(ctx context.Context) (Status, error) {
	tasks, err := s.queue.StatusSnapshot(ctx)
	if err != nil {
		return Status{}, err
	}
	idx, err := s.store.GetIndexStatus(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{Tasks: tasks, Index: idx}, nil
}

// WaitIdle blocks until the task queue has no PENDING or RUNNING task,
// or ctx is done. The CLI's add and remove commands do not call it:
// they return as soon as their work is queued.
func (s *Service) WaitIdle(ctx context.Context, pollInterval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		snap, err := s.queue.StatusSnapshot(ctx)
		if err != nil {
			return err
		}
		if snap.Pending == 0 && snap.Running == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
