package sender

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsJobsInOrder(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 1})

	var (
		mu  sync.Mutex
		got []int
	)
	for i := range 5 {
		require.NoError(t, d.Enqueue(context.Background(), "send.text", func() error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}))
	}
	d.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.EqualValues(t, 5, d.Sent())
	assert.Zero(t, d.ErrorCount())
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{MaxRetries: 2, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send.text", func() error {
		if calls.Add(1) < 3 {
			return fmt.Errorf("send: %w", context.DeadlineExceeded)
		}
		return nil
	}))
	d.Close()

	assert.EqualValues(t, 3, calls.Load())
	assert.EqualValues(t, 1, d.Sent())
}

func TestDispatcherDoesNotRetryPermanentErrors(t *testing.T) {
	d := NewDispatcher(Options{MaxRetries: 3, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send.text", func() error {
		calls.Add(1)
		return errors.New("bad request")
	}))
	d.Close()

	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, d.ErrorCount())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	d.Close()

	err := d.Enqueue(context.Background(), "send.text", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.Error(t, d.Enqueue(context.Background(), "send.text", nil))
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, d.Enqueue(context.Background(), "block", func() error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.NoError(t, d.Enqueue(context.Background(), "queued", func() error { return nil }))

	err := d.Enqueue(context.Background(), "overflow", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueFull)

	close(release)
	d.Close()
	assert.EqualValues(t, 2, d.Sent())
}
