package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/projectdesk/pkg/logger"
)

// WorkerManager manages the background workers
type WorkerManager struct {
	workers []Worker
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWorkerManager creates a new worker manager bound to parent
func NewWorkerManager(parent context.Context) *WorkerManager {
	ctx, cancel := context.WithCancel(parent)
	return &WorkerManager{
		workers: make([]Worker, 0),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// StartLinkCheckers starts count link check workers
func (wm *WorkerManager) StartLinkCheckers(checker LinkRechecker, interval time.Duration, count int) {
	for i := 0; i < count; i++ {
		wm.Start(NewLinkCheckWorker(fmt.Sprintf("link-check-%d", i+1), checker, interval))
	}
	logger.Infof("Started %d link check workers", count)
}

// Start registers a worker and runs it in its own goroutine
func (wm *WorkerManager) Start(worker Worker) {
	wm.workers = append(wm.workers, worker)
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil && err != context.Canceled {
			logger.Errorf("Worker %s stopped with error: %v", worker.GetWorkerID(), err)
		}
	}()
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.Errorf("Error stopping worker %s: %v", worker.GetWorkerID(), err)
		}
	}

	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// GetWorkerStatus returns the status of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool)
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
