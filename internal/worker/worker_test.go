package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDeliversResult(t *testing.T) {
	runner := NewRunner(time.Second)

	value, err := runner.Run(context.Background(), "ok", func(ctx context.Context) (string, error) {
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", value)
}

func TestRunPropagatesFailure(t *testing.T) {
	runner := NewRunner(time.Second)
	boom := errors.New("boom")

	_, err := runner.Run(context.Background(), "fail", func(ctx context.Context) (string, error) {
		return "", boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestRunTimesOut(t *testing.T) {
	runner := NewRunner(20 * time.Millisecond)

	_, err := runner.Run(context.Background(), "slow", func(ctx context.Context) (string, error) {
		select {
		case <-time.After(time.Second):
			return "too late", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunHonorsCallerCancellation(t *testing.T) {
	runner := NewRunner(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, "cancelled", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRecoversPanic(t *testing.T) {
	runner := NewRunner(time.Second)

	_, err := runner.Run(context.Background(), "panic", func(ctx context.Context) (string, error) {
		panic("kaboom")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}
