package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"veostudio/internal/domain"
	"veostudio/internal/providers/video"
)

const (
	DefaultPollInterval    = 10 * time.Second
	DefaultPollMaxAttempts = 90
)

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Sleep is the production WaitFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Progress is told about every completed status query.
type Progress func(attempt int, op domain.Operation)

// Poller re-queries an operation at a fixed interval until it is done.
type Poller struct {
	svc         video.Service
	interval    time.Duration
	maxAttempts int
	wait        WaitFunc
	logger      zerolog.Logger
}

// NewPoller builds a poller. maxAttempts 0 leaves the loop bounded only by ctx.
func NewPoller(svc video.Service, interval time.Duration, maxAttempts int, wait WaitFunc, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts < 0 {
		maxAttempts = 0
	}
	if wait == nil {
		wait = Sleep
	}
	return &Poller{svc: svc, interval: interval, maxAttempts: maxAttempts, wait: wait, logger: logger}
}

func (p *Poller) Poll(ctx context.Context, key string, op domain.Operation) (domain.Operation, error) {
	return p.PollWithProgress(ctx, key, op, nil)
}

// PollWithProgress waits one interval before each query, so an operation that
// is already done returns immediately without any query.
func (p *Poller) PollWithProgress(ctx context.Context, key string, op domain.Operation, progress Progress) (domain.Operation, error) {
	attempt := 0
	for !op.Done {
		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			return op, fmt.Errorf("%w (%d)", domain.ErrPollAttemptsExceeded, p.maxAttempts)
		}
		if err := p.wait(ctx, p.interval); err != nil {
			return op, fmt.Errorf("poll %s: %w", op.Name, err)
		}
		attempt++

		next, err := p.svc.Refresh(ctx, key, op)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return op, fmt.Errorf("poll %s: %w", op.Name, ctxErr)
			}
			p.logger.Error().Err(err).Str("operation", op.Name).Int("attempt", attempt).Msg("workflow: operation refresh failed")
			return op, err
		}
		if next.Name == "" {
			next.Name = op.Name
		}
		op = next

		p.logger.Debug().Str("operation", op.Name).Int("attempt", attempt).Bool("done", op.Done).Msg("workflow: operation polled")
		if progress != nil {
			progress(attempt, op)
		}
	}

	if op.Failed() {
		return op, fmt.Errorf("video generation failed: %s", op.ErrorMessage)
	}
	return op, nil
}
