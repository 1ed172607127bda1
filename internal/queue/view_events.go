package queue

import (
	"context"
	"sync"
	"time"

	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/logger"
	"github.com/zfogg/clipfeed/internal/metrics"
	"go.uber.org/zap"
)

// Sink persists view events. The repositories implement it.
type Sink interface {
	RecordMediaView(ctx context.Context, ev feed.ViewEvent) error
	RecordAdView(ctx context.Context, ev feed.ViewEvent) error
}

// Config sizes the view queue
type Config struct {
	Workers   int
	QueueSize int
	// Timeout bounds one write to the sink
	Timeout time.Duration
}

// ViewQueue records view events in the background so serving a feed page
// never waits on the database. When the buffer is full events are dropped.
type ViewQueue struct {
	sink    Sink
	events  chan feed.ViewEvent
	workers int
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool

	// For testing: receives every processed event
	processed chan feed.ViewEvent
}

// NewViewQueue creates a view queue writing to sink
func NewViewQueue(sink Sink, cfg Config) *ViewQueue {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &ViewQueue{
		sink:    sink,
		events:  make(chan feed.ViewEvent, cfg.QueueSize),
		workers: cfg.Workers,
		timeout: cfg.Timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the worker pool
func (q *ViewQueue) Start() {
	logger.Log.Info("Starting view queue", zap.Int("workers", q.workers))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops accepting events and waits for the workers to drain the buffer.
// Events still queued when ctx expires are abandoned.
func (q *ViewQueue) Stop(ctx context.Context) {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.events)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("View queue drained")
	case <-ctx.Done():
		q.cancel()
		logger.Log.Warn("View queue stopped before draining",
			zap.Int("pending", len(q.events)),
		)
	}
}

// Emit queues ev without blocking
func (q *ViewQueue) Emit(ev feed.ViewEvent) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	kind := eventKind(ev)
	if q.stopped {
		metrics.Get().App.ViewEventsTotal.WithLabelValues(kind, "dropped").Inc()
		return
	}

	select {
	case q.events <- ev:
		metrics.Get().App.ViewQueuePending.Inc()
	default:
		metrics.Get().App.ViewEventsTotal.WithLabelValues(kind, "dropped").Inc()
		logger.Log.Warn("View queue full, dropping event",
			logger.WithMediaID(ev.MediaID),
			logger.WithAdID(ev.AdID),
			logger.WithSessionID(ev.SessionID),
		)
	}
}

// Pending returns the number of buffered events
func (q *ViewQueue) Pending() int {
	return len(q.events)
}

func (q *ViewQueue) worker(workerID int) {
	defer q.wg.Done()
	logger.Log.Debug("View worker started", zap.Int("worker_id", workerID))

	for {
		select {
		case ev, ok := <-q.events:
			if !ok {
				logger.Log.Debug("View worker shutting down", zap.Int("worker_id", workerID))
				return
			}
			metrics.Get().App.ViewQueuePending.Dec()
			q.process(workerID, ev)

		case <-q.ctx.Done():
			return
		}
	}
}

func (q *ViewQueue) process(workerID int, ev feed.ViewEvent) {
	kind := eventKind(ev)
	start := time.Now()

	ctx, cancel := context.WithTimeout(q.ctx, q.timeout)
	defer cancel()

	var err error
	if ev.Sponsored() {
		err = q.sink.RecordAdView(ctx, ev)
	} else {
		err = q.sink.RecordMediaView(ctx, ev)
	}

	m := metrics.Get().App
	m.ViewEventDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		m.ViewEventsTotal.WithLabelValues(kind, "failed").Inc()
		logger.Log.Error("Failed to record view",
			zap.Int("worker_id", workerID),
			zap.String("kind", kind),
			logger.WithMediaID(ev.MediaID),
			logger.WithAdID(ev.AdID),
			zap.Error(err),
		)
	} else {
		m.ViewEventsTotal.WithLabelValues(kind, "recorded").Inc()
	}

	if q.processed != nil {
		q.processed <- ev
	}
}

func eventKind(ev feed.ViewEvent) string {
	if ev.Sponsored() {
		return "ad"
	}
	return "media"
}
