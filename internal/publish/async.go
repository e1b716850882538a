package publish

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/harrison/verdict/internal/models"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("publisher closed")

// AsyncOption configures an Async publisher.
type AsyncOption func(*Async)

// WithBufferSize sets the queue capacity. Default: 256.
func WithBufferSize(n int) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.bufSize = n
		}
	}
}

// WithOnError sets the callback for failures of the inner publisher and for
// a drain timeout on Close.
func WithOnError(f func(error)) AsyncOption {
	return func(a *Async) { a.errFunc = f }
}

// WithOnResult sets a callback invoked once per queued report with the
// result of handing it to the inner publisher; nil means delivered.
func WithOnResult(f func(error)) AsyncOption {
	return func(a *Async) { a.resultFunc = f }
}

// WithDropOnFull makes Publish drop the report instead of blocking when the queue is full.
func WithDropOnFull() AsyncOption {
	return func(a *Async) { a.dropOnFull = true }
}

// WithDrainTimeout bounds how long Close waits for queued reports. Default: 5s.
func WithDrainTimeout(d time.Duration) AsyncOption {
	return func(a *Async) { a.drainTimeout = d }
}

// ErrQueueFull is returned by Publish when a report is dropped.
var ErrQueueFull = errors.New("publish queue full, report dropped")

// ErrDrainTimeout is returned by Close when queued reports were still being
// delivered after the drain timeout.
var ErrDrainTimeout = errors.New("publish queue drain timed out")

// Async queues reports and hands them to the inner publisher from a
// background goroutine. Publish only reports whether the report was queued;
// delivery results go to the result and error callbacks.
type Async struct {
	inner        Publisher
	ch           chan models.Report
	done         chan struct{}
	errFunc      func(error)
	resultFunc   func(error)
	bufSize      int
	dropOnFull   bool
	drainTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// NewAsync wraps inner and starts the drain goroutine.
func NewAsync(inner Publisher, opts ...AsyncOption) *Async {
	a := &Async{
		inner:        inner,
		bufSize:      defaultBufferSize,
		errFunc:      func(error) {},
		resultFunc:   func(error) {},
		drainTimeout: defaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan models.Report, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Publish enqueues the report. It blocks while the queue is full unless
// WithDropOnFull was given, in which case the report is dropped and
// ErrQueueFull returned.
func (a *Async) Publish(ctx context.Context, report models.Report) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}

	if a.dropOnFull {
		select {
		case a.ch <- report:
			return nil
		default:
			return ErrQueueFull
		}
	}

	select {
	case a.ch <- report:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting reports and waits up to the drain timeout for queued
// ones. The inner publisher is closed once draining has finished; after a
// timeout that happens in the background and Close returns ErrDrainTimeout.
func (a *Async) Close() error {
	var err error
	a.once.Do(func() {
		a.mu.Lock()
		a.closed = true
		close(a.ch)
		a.mu.Unlock()

		select {
		case <-a.done:
			err = a.inner.Close()
		case <-time.After(a.drainTimeout):
			a.errFunc(ErrDrainTimeout)
			go func() {
				<-a.done
				a.inner.Close()
			}()
			err = ErrDrainTimeout
		}
	})
	return err
}

func (a *Async) drain() {
	defer close(a.done)
	for report := range a.ch {
		err := a.inner.Publish(context.Background(), report)
		if err != nil {
			a.errFunc(err)
		}
		a.resultFunc(err)
	}
}
