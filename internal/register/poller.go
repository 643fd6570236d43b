package register

import (
	"context"
	"time"

	"github.com/fiddlecol/FidPOS/internal/domain"
)

// StatusSource answers status queries for a pending payment attempt.
type StatusSource interface {
	PaymentStatus(ctx context.Context, saleID string) (domain.PaymentStatus, error)
}

const (
	defaultPollInterval = 3 * time.Second
	defaultMaxAttempts  = 100
)

// StatusPoller repeatedly queries a pending attempt until it reaches a
// terminal state. Polling is bounded: it stops on context cancellation or
// after maxAttempts queries, so an abandoned register screen cannot leave an
// orphaned poll loop behind.
type StatusPoller struct {
	source      StatusSource
	interval    time.Duration
	maxAttempts int
}

type PollerOption func(*StatusPoller)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *StatusPoller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxAttempts overrides the attempt limit.
func WithMaxAttempts(n int) PollerOption {
	return func(p *StatusPoller) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

func NewStatusPoller(source StatusSource, opts ...PollerOption) *StatusPoller {
	p := &StatusPoller{
		source:      source,
		interval:    defaultPollInterval,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait polls until the attempt for saleID reaches Success or Failed. It
// returns ErrPaymentStatusTimeout once the attempt limit is exhausted and the
// context's error if it is canceled. Status-source errors stop the poll and
// propagate; the caller decides how to surface them.
func (p *StatusPoller) Wait(ctx context.Context, saleID string) (domain.PaymentStatus, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		status, err := p.source.PaymentStatus(ctx, saleID)
		if err != nil {
			return domain.PaymentStatusPending, err
		}
		if status.Terminal() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return domain.PaymentStatusPending, ctx.Err()
		case <-ticker.C:
		}
	}
	return domain.PaymentStatusPending, domain.ErrPaymentStatusTimeout
}

// PollTask is a cancelable background poll for one sale.
type PollTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the task and waits for its goroutine to finish. Safe to call
// after the task already completed.
func (t *PollTask) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed when the task has delivered its result.
func (t *PollTask) Done() <-chan struct{} {
	return t.done
}

// Start runs Wait in the background and delivers the outcome to onDone exactly
// once. The returned task must be stopped when the register screen owning the
// payment is torn down.
func (p *StatusPoller) Start(ctx context.Context, saleID string, onDone func(domain.PaymentStatus, error)) *PollTask {
	taskCtx, cancel := context.WithCancel(ctx)
	task := &PollTask{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(task.done)
		status, err := p.Wait(taskCtx, saleID)
		onDone(status, err)
	}()

	return task
}
