package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/observability"
)

// Queue decouples notification delivery from the create/acknowledge path: a
// bounded job channel feeds a fixed worker pool. Enqueue never blocks, and a
// scheduled job always runs to completion; workers dispatch with a background
// context so shutdown waits for in-flight deliveries instead of cancelling
// them.
type Queue struct {
	dispatcher *Dispatcher
	jobs       chan *alert.Alert
	workers    int
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue creates a dispatch queue with the given worker count and buffer
// size. Call Start to launch the workers.
func NewQueue(d *Dispatcher, workers, size int, logger *slog.Logger, metrics *observability.Metrics) *Queue {
	return &Queue{
		dispatcher: d,
		jobs:       make(chan *alert.Alert, size),
		workers:    workers,
		logger:     logger,
		metrics:    metrics,
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.logger.Info("dispatch queue started", "workers", q.workers, "capacity", cap(q.jobs))
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for a := range q.jobs {
		q.metrics.DispatchQueue.Set(float64(len(q.jobs)))
		report := q.dispatcher.Dispatch(context.Background(), a)
		q.logger.Debug("dispatch job finished",
			"alert_id", a.ID,
			"succeeded", report.Succeeded(),
			"failed", report.Failed(),
		)
	}
}

// Enqueue schedules an alert for delivery without blocking. It reports false
// and counts a drop when the queue is full or already closed.
func (q *Queue) Enqueue(a *alert.Alert) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.metrics.DispatchDrops.Inc()
		q.logger.Warn("dispatch queue closed, dropping alert", "alert_id", a.ID)
		return false
	}
	select {
	case q.jobs <- a:
		q.metrics.DispatchQueue.Set(float64(len(q.jobs)))
		return true
	default:
		q.metrics.DispatchDrops.Inc()
		q.logger.Warn("dispatch queue full, dropping alert", "alert_id", a.ID)
		return false
	}
}

// Close stops accepting new jobs and blocks until queued deliveries finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("dispatch queue drained")
}
