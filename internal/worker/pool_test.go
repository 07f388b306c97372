package worker

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ProcessesAllJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	p := NewPool(3, 10, func(_ context.Context, id string) error {
		mu.Lock()
		seen[id] = true
		mu.Unlock()
		return nil
	}, nil)
	p.Start()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, p.Submit(id))
	}
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Len(t, seen, 5)
	assert.ErrorIs(t, p.Submit("late"), ErrClosed)
}

func TestPool_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	p := NewPool(1, 1, func(context.Context, string) error {
		started <- struct{}{}
		<-release
		return nil
	}, nil)
	p.Start()

	require.NoError(t, p.Submit("running"))
	<-started
	require.NoError(t, p.Submit("queued"))
	assert.ErrorIs(t, p.Submit("overflow"), ErrQueueFull)

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_ShutdownWaitsForInFlight(t *testing.T) {
	var done atomic.Bool
	started := make(chan struct{})
	p := NewPool(1, 0, func(context.Context, string) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
		return nil
	}, nil)
	p.Start()

	// unbuffered queue: Submit only succeeds once a worker is waiting
	require.Eventually(t, func() bool { return p.Submit("s1") == nil }, time.Second, time.Millisecond)
	<-started
	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, done.Load())
}

func TestPool_ShutdownDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	p := NewPool(1, 1, func(context.Context, string) error {
		close(started)
		<-release
		return nil
	}, nil)
	p.Start()
	require.NoError(t, p.Submit("stuck"))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Shutdown(ctx), context.DeadlineExceeded)
}

func TestPool_LogsFailuresAndPanics(t *testing.T) {
	var buf bytes.Buffer
	var bufMu sync.Mutex
	log := logrus.New()
	log.SetOutput(&lockedWriter{w: &buf, mu: &bufMu})
	log.SetFormatter(&logrus.JSONFormatter{})

	p := NewPool(1, 2, func(_ context.Context, id string) error {
		if id == "panic" {
			panic("kaboom")
		}
		return errors.New("provider down")
	}, log)
	p.Start()
	require.NoError(t, p.Submit("fail"))
	require.NoError(t, p.Submit("panic"))
	require.NoError(t, p.Shutdown(context.Background()))

	bufMu.Lock()
	out := buf.String()
	bufMu.Unlock()
	assert.Contains(t, out, `"event":"job_failed"`)
	assert.Contains(t, out, "provider down")
	assert.Contains(t, out, "handler panicked: kaboom")
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
