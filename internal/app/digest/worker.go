// internal/app/digest/worker.go
package digest

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Worker fires the digest once a day at a fixed wall-clock hour in a
// fixed timezone.
type Worker struct {
	runner *Runner
	log    *zap.Logger
	hour   int
	loc    *time.Location
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewWorker creates the daily digest worker. hour is the local hour
// (0-23) in loc at which the digest runs.
func NewWorker(runner *Runner, logger *zap.Logger, hour int, loc *time.Location) *Worker {
	if loc == nil {
		loc = time.UTC
	}
	return &Worker{
		runner: runner,
		log:    logger,
		hour:   hour,
		loc:    loc,
		stopCh: make(chan struct{}),
	}
}

// Start begins the scheduling loop.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("digest worker started",
		zap.Int("hour", w.hour), zap.String("timezone", w.loc.String()))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("digest worker stopped")
}

func (w *Worker) run() {
	defer w.wg.Done()

	for {
		next := w.nextRun(time.Now().In(w.loc))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-w.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			w.runOnce()
		}
	}
}

// nextRun returns the next wall-clock firing time strictly after now.
func (w *Worker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, 0, 0, 0, w.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *Worker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()

	if err := w.runner.Run(ctx); err != nil {
		w.log.Error("digest run failed", zap.Error(err))
	}
}
