package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/alimgiray/projectdesk/pkg/logger"
	"github.com/sirupsen/logrus"
)

const TaskLinkCheck = "link_check"

// LinkRechecker re-verifies links whose last check is older than cutoff
type LinkRechecker interface {
	RecheckDue(ctx context.Context, cutoff time.Time) (int, error)
}

// LinkCheckWorker periodically re-verifies GitHub repository links
type LinkCheckWorker struct {
	*BaseWorker
	checker  LinkRechecker
	interval time.Duration
}

// NewLinkCheckWorker creates a worker that runs every interval and rechecks
// links last checked more than one interval ago
func NewLinkCheckWorker(workerID string, checker LinkRechecker, interval time.Duration) *LinkCheckWorker {
	return &LinkCheckWorker{
		BaseWorker: NewBaseWorker(workerID, TaskLinkCheck),
		checker:    checker,
		interval:   interval,
	}
}

// Start begins the link check loop. The first pass runs immediately.
func (w *LinkCheckWorker) Start(ctx context.Context) error {
	if w.interval <= 0 {
		return fmt.Errorf("link check worker %s: interval must be positive, got %s", w.WorkerID, w.interval)
	}
	w.setRunning(true)
	defer w.setRunning(false)
	logger.Infof("Link check worker %s started (interval %s)", w.WorkerID, w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.runOnce(ctx)

		select {
		case <-ctx.Done():
			logger.Infof("Link check worker %s stopping due to context cancellation", w.WorkerID)
			return ctx.Err()
		case <-w.StopChan:
			logger.Infof("Link check worker %s stopping", w.WorkerID)
			return nil
		case <-ticker.C:
		}
	}
}

func (w *LinkCheckWorker) runOnce(ctx context.Context) {
	started := time.Now()
	checked, err := w.checker.RecheckDue(ctx, started.Add(-w.interval))
	fields := logrus.Fields{
		"worker":   w.WorkerID,
		"checked":  checked,
		"duration": time.Since(started).String(),
	}
	if err != nil {
		logger.WithFields(fields).WithError(err).Warn("Link check pass failed")
		return
	}
	if checked > 0 {
		logger.WithFields(fields).Info("Link check pass finished")
	}
}
