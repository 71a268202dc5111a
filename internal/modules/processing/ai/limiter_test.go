package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitedCompleterAppliesTimeout(t *testing.T) {
	var deadline time.Time
	next := CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		d, ok := ctx.Deadline()
		require.True(t, ok)
		deadline = d
		return "ok", nil
	})
	l := NewLimitedCompleter(next, time.Second, 0)

	got, err := l.Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestLimitedCompleterBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	next := CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		close(started)
		<-release
		return "done", nil
	})
	l := NewLimitedCompleter(next, 50*time.Millisecond, 1)

	done := make(chan error, 1)
	go func() {
		_, err := l.Complete(context.Background(), "first")
		done <- err
	}()
	<-started

	_, err := l.Complete(context.Background(), "second")
	assert.ErrorIs(t, err, ErrModelBusy)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)
	assert.NoError(t, <-done)
}

func TestLimitedCompleterWithoutCap(t *testing.T) {
	calls := 0
	next := CompleterFunc(func(context.Context, string) (string, error) {
		calls++
		return "x", nil
	})
	l := NewLimitedCompleter(next, 0, 0)

	for i := 0; i < 3; i++ {
		_, err := l.Complete(context.Background(), "p")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}
