// Package worker implements a bounded worker pool that processes analysis sessions.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrQueueFull is returned by Submit when the job buffer is full.
	ErrQueueFull = errors.New("worker queue is full")
	// ErrClosed is returned by Submit after Shutdown has started.
	ErrClosed = errors.New("worker pool is shut down")
)

// HandlerFunc processes one session. Errors are logged by the pool.
type HandlerFunc func(ctx context.Context, sessionID string) error

// Pool runs a fixed set of worker goroutines over a buffered job channel.
// Accepted jobs run on a context detached from the submitter and are not
// cancelled once started.
type Pool struct {
	workers int
	jobs    chan string
	handle  HandlerFunc
	log     logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	once   sync.Once
}

// NewPool creates a pool with the given number of workers and queue size.
// Call Start to launch the goroutines.
func NewPool(workers, queueSize int, handle HandlerFunc, log logrus.FieldLogger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan string, queueSize),
		handle:  handle,
		log:     log.WithField("component", "worker_pool"),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.WithFields(logrus.Fields{"event": "pool_started", "workers": p.workers, "queue_size": cap(p.jobs)}).Info("worker pool started")
}

// Submit enqueues a session without blocking.
func (p *Pool) Submit(sessionID string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.jobs <- sessionID:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued and in-flight sessions
// to finish, or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.WithField("event", "pool_stopped").Info("worker pool drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for sessionID := range p.jobs {
		p.process(id, sessionID)
	}
}

func (p *Pool) process(workerID int, sessionID string) {
	log := p.log.WithFields(logrus.Fields{"worker_id": workerID, "session_id": sessionID})
	start := time.Now()
	log.WithField("event", "job_started").Info("processing started")

	err := p.run(sessionID)
	latency := time.Since(start)
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{"event": "job_failed", "latency": latency.String()}).Error("processing failed")
		return
	}
	log.WithFields(logrus.Fields{"event": "job_completed", "latency": latency.String()}).Info("processing completed")
}

// run shields the worker from a panicking handler.
func (p *Pool) run(sessionID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return p.handle(context.Background(), sessionID)
}

// PanicError reports a handler panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker: handler panicked: %v", e.Value)
}
