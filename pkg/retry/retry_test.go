package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	r := New(WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("flaky"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnNonTransientError(t *testing.T) {
	r := New(WithMaxAttempts(5), WithInitialDelay(time.Millisecond))
	permanent := errors.New("bad request")

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	r := New(WithMaxAttempts(3), WithInitialDelay(time.Millisecond))
	inner := errors.New("still down")

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Transient(inner)
	})

	assert.Equal(t, inner, err)
	assert.Equal(t, 3, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	r := New(WithMaxAttempts(10), WithInitialDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(ctx context.Context) error {
		calls++
		return Transient(errors.New("down"))
	})

	assert.Error(t, err)
	assert.Less(t, calls, 10)
}

func TestTransientWrapping(t *testing.T) {
	assert.Nil(t, Transient(nil))
	inner := errors.New("x")
	wrapped := Transient(inner)
	assert.True(t, IsTransient(wrapped))
	assert.False(t, IsTransient(inner))
	assert.Equal(t, inner, errors.Unwrap(wrapped))
}
