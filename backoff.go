package meetsync

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Backoff represents a backoff mechanism with configurable duration and maximum duration.
type Backoff struct {
	Duration    time.Duration // Duration represents the current backoff duration.
	MaxDuration time.Duration // MaxDuration is the maximum allowed backoff duration.
	base        time.Duration
	mu          sync.Mutex
	cancel      context.CancelFunc // cancel is the function to cancel the `Backoff.Sleep()` operation.
}

// NewBackoff returns a Backoff starting at base and capped at max.
func NewBackoff(base, max time.Duration) *Backoff {
	return &Backoff{Duration: base, MaxDuration: max, base: base}
}

// increment increases the backoff duration using an exponential strategy.
func (b *Backoff) increment() {
	if b.Duration < b.MaxDuration {
		b.Duration *= 2
	}

	if b.Duration > b.MaxDuration {
		b.Duration = b.MaxDuration
	}
}

// Sleep is a mock of time.Sleep(), that is also responsive to the cancel signal.
// It adds up to 25% of jitter and waits until the deadline or the cancellation.
// Returns true if the sleep was cancelled before the deadline, false otherwise.
func (b *Backoff) Sleep(ctx context.Context) bool {
	defer b.increment()

	jitter := time.Duration(0)
	if b.Duration >= 4 {
		jitter = time.Duration(rand.Int63n(int64(b.Duration) / 4))
	}

	sleepCtx, cancel := context.WithTimeout(ctx, b.Duration+jitter)
	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
	defer cancel()

	<-sleepCtx.Done()

	return sleepCtx.Err() != context.DeadlineExceeded
}

// Cancel cancels the ongoing backoff sleep, if any.
func (b *Backoff) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
}

// Reset restores the initial duration after a successful attempt.
func (b *Backoff) Reset() {
	if b.base > 0 {
		b.Duration = b.base
	}
}
