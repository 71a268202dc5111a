package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrModelBusy is returned when no model slot frees up before the call's
// deadline.
var ErrModelBusy = errors.New("language model is busy, try again later")

// LimitedCompleter bounds every call with a timeout and caps the number of
// calls in flight across the process.
type LimitedCompleter struct {
	next    Completer
	timeout time.Duration
	sem     *semaphore.Weighted
}

// NewLimitedCompleter wraps next. timeout <= 0 leaves deadlines to the caller
// and maxInFlight <= 0 disables the cap.
func NewLimitedCompleter(next Completer, timeout time.Duration, maxInFlight int) *LimitedCompleter {
	l := &LimitedCompleter{next: next, timeout: timeout}
	if maxInFlight > 0 {
		l.sem = semaphore.NewWeighted(int64(maxInFlight))
	}
	return l
}

func (l *LimitedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if l.sem != nil {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return "", fmt.Errorf("%w: %w", ErrModelBusy, err)
		}
		defer l.sem.Release(1)
	}
	return l.next.Complete(ctx, prompt)
}
