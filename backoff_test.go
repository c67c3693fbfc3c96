package meetsync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_SleepGrowsAndCaps(t *testing.T) {
	b := NewBackoff(time.Millisecond, 4*time.Millisecond)

	assert.False(t, b.Sleep(context.Background()), "sleep should reach its deadline")
	assert.Equal(t, 2*time.Millisecond, b.Duration)

	b.Sleep(context.Background())
	b.Sleep(context.Background())
	assert.Equal(t, 4*time.Millisecond, b.Duration, "duration should be capped")

	b.Reset()
	assert.Equal(t, time.Millisecond, b.Duration)
}

func TestBackoff_Cancel(t *testing.T) {
	b := NewBackoff(time.Minute, time.Hour)

	done := make(chan bool)
	go func() {
		done <- b.Sleep(context.Background())
	}()

	assert.Eventually(t, func() bool {
		b.Cancel()
		select {
		case cancelled := <-done:
			return cancelled
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestBackoff_ParentContext(t *testing.T) {
	b := NewBackoff(time.Minute, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, b.Sleep(ctx))
}
