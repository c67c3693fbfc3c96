package meetsync

import (
	"context"
	"time"
)

// Poller calls a function on a fixed interval and on demand.
type Poller struct {
	Interval time.Duration
	Fn       func(context.Context)
	trigger  chan struct{}
}

// NewPoller returns a Poller calling fn every interval.
func NewPoller(interval time.Duration, fn func(context.Context)) *Poller {
	return &Poller{
		Interval: interval,
		Fn:       fn,
		trigger:  make(chan struct{}, 1),
	}
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.trigger:
			ticker.Reset(p.Interval)
		}
		p.Fn(ctx)
	}
}

// Trigger requests an immediate poll. Triggers made while one is pending are merged.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}
