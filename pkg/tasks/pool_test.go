package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() PoolConfig {
	return PoolConfig{Workers: 2, QueueSize: 8, MaxAttempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestPool(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var handled sync.Map
		pool := NewPool(HandlerFunc(func(_ context.Context, task Task) error {
			handled.Store(task.ID, task.Attempt)
			return nil
		}), fastConfig(), nil)

		for i := 0; i < 5; i++ {
			require.NoError(t, pool.Submit(context.Background(), NewPayoutTask("booking1", "tx1")))
		}
		require.NoError(t, pool.Shutdown(context.Background()))

		count := 0
		handled.Range(func(_, v any) bool {
			count++
			assert.Equal(t, 1, v)
			return true
		})
		assert.Equal(t, 5, count)
	})

	t.Run("Retries Until Success", func(t *testing.T) {
		var calls atomic.Int32
		pool := NewPool(HandlerFunc(func(_ context.Context, _ Task) error {
			if calls.Add(1) < 3 {
				return errors.New("transient")
			}
			return nil
		}), fastConfig(), nil)

		require.NoError(t, pool.Submit(context.Background(), NewPayoutTask("booking1", "tx1")))
		require.NoError(t, pool.Shutdown(context.Background()))

		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Gives Up After Max Attempts", func(t *testing.T) {
		var calls atomic.Int32
		pool := NewPool(HandlerFunc(func(_ context.Context, _ Task) error {
			calls.Add(1)
			return errors.New("down")
		}), fastConfig(), nil)

		require.NoError(t, pool.Submit(context.Background(), NewPayoutTask("booking1", "tx1")))
		require.NoError(t, pool.Shutdown(context.Background()))

		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("Permanent Errors Are Not Retried", func(t *testing.T) {
		var calls atomic.Int32
		pool := NewPool(HandlerFunc(func(_ context.Context, _ Task) error {
			calls.Add(1)
			return Permanent(errors.New("bad payload"))
		}), fastConfig(), nil)

		require.NoError(t, pool.Submit(context.Background(), NewPayoutTask("booking1", "tx1")))
		require.NoError(t, pool.Shutdown(context.Background()))

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("Panics Are Contained", func(t *testing.T) {
		pool := NewPool(HandlerFunc(func(_ context.Context, _ Task) error {
			panic("boom")
		}), fastConfig(), nil)

		require.NoError(t, pool.Submit(context.Background(), NewPayoutTask("booking1", "tx1")))
		assert.NoError(t, pool.Shutdown(context.Background()))
	})

	t.Run("Queue Full", func(t *testing.T) {
		release := make(chan struct{})
		pool := NewPool(HandlerFunc(func(_ context.Context, _ Task) error {
			<-release
			return nil
		}), PoolConfig{Workers: 1, QueueSize: 1, MaxAttempts: 1}, nil)

		var errs []error
		for i := 0; i < 4; i++ {
			errs = append(errs, pool.Submit(context.Background(), NewPayoutTask("booking1", "tx1")))
		}
		close(release)
		require.NoError(t, pool.Shutdown(context.Background()))

		assert.Contains(t, errs, ErrQueueFull)
	})

	t.Run("Submit After Shutdown", func(t *testing.T) {
		pool := NewPool(HandlerFunc(func(_ context.Context, _ Task) error { return nil }), fastConfig(), nil)
		require.NoError(t, pool.Shutdown(context.Background()))

		assert.ErrorIs(t, pool.Submit(context.Background(), NewPayoutTask("b", "t")), ErrPoolClosed)
	})

	t.Run("Shutdown Deadline Abandons Retries", func(t *testing.T) {
		pool := NewPool(HandlerFunc(func(_ context.Context, _ Task) error {
			return errors.New("down")
		}), PoolConfig{Workers: 1, MaxAttempts: 10, BaseBackoff: time.Hour, MaxBackoff: time.Hour}, nil)
		require.NoError(t, pool.Submit(context.Background(), NewPayoutTask("b", "t")))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, pool.Shutdown(ctx), context.DeadlineExceeded)
	})
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, Backoff(100*time.Millisecond, time.Second, 1))
	assert.Equal(t, 400*time.Millisecond, Backoff(100*time.Millisecond, time.Second, 3))
	assert.Equal(t, time.Second, Backoff(100*time.Millisecond, time.Second, 8))
}
