package interline

import (
	"context"
	"time"
)

// Pacer spaces out consecutive hub runs so upstream rate limits hold.
type Pacer interface {
	Pace(ctx context.Context) error
}

type PacerFunc func(ctx context.Context) error

func (f PacerFunc) Pace(ctx context.Context) error {
	return f(ctx)
}

// SleepPacer waits a fixed delay, returning early if ctx is done.
type SleepPacer struct {
	Delay time.Duration
}

func (p SleepPacer) Pace(ctx context.Context) error {
	if p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
