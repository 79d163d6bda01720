package discovery

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"prodassist/internal/logging"
)

// Worker runs discovery pipelines in the background, decoupled from the
// request that triggered them. Concurrent runs across projects are bounded by
// the semaphore; a project with a run already in flight is not started again.
type Worker struct {
	pipeline *Pipeline
	sem      *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

// NewWorker creates a background runner over the given pipeline. The pipeline
// must own its store handle; it is shared with no request-scoped code.
func NewWorker(pipeline *Pipeline, maxConcurrent int) *Worker {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Worker{
		pipeline: pipeline,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		inFlight: make(map[string]struct{}),
	}
}

// Trigger schedules a discovery run for the project and returns immediately.
// It reports whether a run was started; false means one is already in flight
// for this project.
func (w *Worker) Trigger(ctx context.Context, projectID, repoPath string, force bool) bool {
	w.mu.Lock()
	if _, running := w.inFlight[projectID]; running {
		w.mu.Unlock()
		logging.Discovery("discovery already running for project %s", projectID)
		return false
	}
	w.inFlight[projectID] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inFlight, projectID)
			w.mu.Unlock()
		}()

		if err := w.sem.Acquire(ctx, 1); err != nil {
			logging.DiscoveryWarn("discovery for project %s cancelled before start: %v", projectID, err)
			return
		}
		defer w.sem.Release(1)

		if _, err := w.pipeline.Discover(ctx, projectID, repoPath, force); err != nil {
			logging.DiscoveryError("background discovery for project %s failed: %v", projectID, err)
		}
	}()
	return true
}

// Running reports whether a discovery run is in flight for the project.
func (w *Worker) Running(projectID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, running := w.inFlight[projectID]
	return running
}

// Wait blocks until all scheduled runs have finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}
