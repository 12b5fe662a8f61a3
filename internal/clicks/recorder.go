// Package clicks records shortcut visits against the registry store on a
// best-effort basis: recording never blocks or fails the resolution that
// triggered it.
package clicks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joshdurbin/golinks/internal/metrics"
)

// DefaultQueueSize is the number of pending clicks an AsyncRecorder buffers
const DefaultQueueSize = 1024

// persistTimeout bounds a single increment against the store
const persistTimeout = 5 * time.Second

// Incrementer is the store operation a recorder drives
type Incrementer interface {
	IncrementClicks(ctx context.Context, shortcut string) error
}

// Recorder records a visit to a shortcut
type Recorder interface {
	// Record notes one visit. It never returns an error to the caller.
	Record(shortcut string)

	// Close flushes pending visits and stops the recorder
	Close() error
}

// recorder holds what both recorder flavors need to persist a click
type recorder struct {
	store   Incrementer
	log     *slog.Logger
	metrics *metrics.Metrics
}

// persist applies one increment, logging and discarding any failure
func (r *recorder) persist(shortcut string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.store.IncrementClicks(ctx, shortcut); err != nil {
		r.metrics.ClickFailures.Inc()
		r.log.Warn("failed to record click", "shortcut", shortcut, "error", err)
		return
	}
	r.metrics.ClicksRecorded.Inc()
}

// SyncRecorder persists each click before Record returns. It suits short
// lived processes such as a single CLI invocation.
type SyncRecorder struct {
	recorder
}

// NewSyncRecorder creates a recorder that writes clicks inline
func NewSyncRecorder(store Incrementer, log *slog.Logger, m *metrics.Metrics) *SyncRecorder {
	return &SyncRecorder{recorder{store: store, log: log, metrics: m}}
}

// Record persists the click, swallowing errors
func (s *SyncRecorder) Record(shortcut string) {
	s.persist(shortcut)
}

// Close is a no-op; there is nothing buffered
func (s *SyncRecorder) Close() error {
	return nil
}

// AsyncRecorder hands clicks to a single background worker so callers
// never wait on the store. When the queue is full the click is dropped.
type AsyncRecorder struct {
	recorder

	queue  chan string
	mutex  sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncRecorder creates a recorder and starts its worker
func NewAsyncRecorder(store Incrementer, queueSize int, log *slog.Logger, m *metrics.Metrics) *AsyncRecorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	a := &AsyncRecorder{
		recorder: recorder{store: store, log: log, metrics: m},
		queue:    make(chan string, queueSize),
		done:     make(chan struct{}),
	}

	go a.run()
	return a
}

// Record queues the click without waiting
func (a *AsyncRecorder) Record(shortcut string) {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if a.closed {
		a.metrics.ClicksDropped.Inc()
		a.log.Warn("click recorder closed, dropping click", "shortcut", shortcut)
		return
	}

	select {
	case a.queue <- shortcut:
		a.metrics.ClickQueue.Inc()
	default:
		a.metrics.ClicksDropped.Inc()
		a.log.Warn("click queue full, dropping click", "shortcut", shortcut)
	}
}

// Close stops accepting clicks and waits for queued ones to be persisted
func (a *AsyncRecorder) Close() error {
	a.mutex.Lock()
	if a.closed {
		a.mutex.Unlock()
		<-a.done
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mutex.Unlock()

	<-a.done
	return nil
}

// run drains the queue until it is closed
func (a *AsyncRecorder) run() {
	defer close(a.done)

	for shortcut := range a.queue {
		a.metrics.ClickQueue.Dec()
		a.persist(shortcut)
	}
}

// Ensure both recorders implement Recorder
var _ Recorder = (*SyncRecorder)(nil)
var _ Recorder = (*AsyncRecorder)(nil)
