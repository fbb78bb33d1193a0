package logsink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"gatepass/pkg/platform/circuit"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRetries        = 1
	defaultInitialBackoff = 200 * time.Millisecond
)

// ErrCircuitOpen is returned for calls rejected while the breaker is open.
var ErrCircuitOpen = errors.New("log sink circuit open")

// Resilient bounds every call to the wrapped sink with a timeout and retries
// failed calls with exponential backoff. Once its circuit breaker opens,
// calls fail immediately with ErrCircuitOpen until the breaker cooldown
// passes; after that single trial calls go through without retries.
//
// A retried append whose first attempt actually reached the backend can
// produce a duplicate row. The log is an audit trail, so a duplicate is
// preferred over a lost entry.
type Resilient struct {
	next           Sink
	timeout        time.Duration
	retries        uint64
	initialBackoff time.Duration
	breaker        *circuit.Breaker
	probe          Table
	logger         *slog.Logger
	metrics        *Metrics
}

// ResilientOption configures a Resilient sink.
type ResilientOption func(*Resilient)

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) ResilientOption {
	return func(r *Resilient) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRetries sets how many times a failed call is retried. Zero disables retries.
func WithRetries(n int) ResilientOption {
	return func(r *Resilient) {
		if n >= 0 {
			r.retries = uint64(n)
		}
	}
}

// WithInitialBackoff sets the delay before the first retry.
func WithInitialBackoff(d time.Duration) ResilientOption {
	return func(r *Resilient) {
		if d > 0 {
			r.initialBackoff = d
		}
	}
}

// WithBreaker replaces the default breaker (5 failures open, 3 successes close).
func WithBreaker(b *circuit.Breaker) ResilientOption {
	return func(r *Resilient) {
		if b != nil {
			r.breaker = b
		}
	}
}

// WithProbeTable sets the table Check reads to test an open circuit.
// Default Visits.
func WithProbeTable(t Table) ResilientOption {
	return func(r *Resilient) {
		if t.Name != "" {
			r.probe = t
		}
	}
}

func WithLogger(logger *slog.Logger) ResilientOption {
	return func(r *Resilient) {
		r.logger = logger
	}
}

func WithMetrics(m *Metrics) ResilientOption {
	return func(r *Resilient) {
		r.metrics = m
	}
}

func NewResilient(next Sink, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		next:           next,
		timeout:        defaultTimeout,
		retries:        defaultRetries,
		initialBackoff: defaultInitialBackoff,
		probe:          Visits,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = circuit.New("logsink")
	}
	return r
}

func (r *Resilient) Append(ctx context.Context, table Table, row Row) error {
	return r.do(ctx, "append", table, func(ctx context.Context) error {
		return r.next.Append(ctx, table, row)
	})
}

func (r *Resilient) ReadAll(ctx context.Context, table Table) ([]Row, error) {
	var rows []Row
	err := r.do(ctx, "read", table, func(ctx context.Context) error {
		var err error
		rows, err = r.next.ReadAll(ctx, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Check backs the readiness probe. A closed circuit is ready. An open one
// stays unready until the cooldown passes, then Check reads the probe table
// directly and closes the circuit if the backend answers, so readiness
// recovers without client traffic.
func (r *Resilient) Check(ctx context.Context) error {
	if !r.breaker.IsOpen() {
		return nil
	}
	if !r.breaker.Allow() {
		return ErrCircuitOpen
	}

	trialCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if _, err := r.next.ReadAll(trialCtx, r.probe); err != nil {
		r.breaker.RecordFailure()
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}

	r.breaker.Reset()
	r.metrics.setCircuitOpen(false)
	r.logger.InfoContext(ctx, "log sink circuit breaker closed by readiness check",
		"circuit", r.breaker.Name(),
	)
	return nil
}

// Budget is the longest a single call can take: every attempt timing out
// plus the largest backoff between attempts.
func (r *Resilient) Budget() time.Duration {
	policy := backoff.NewExponentialBackOff()
	total := r.timeout * time.Duration(r.retries+1)
	wait := float64(r.initialBackoff)
	for i := uint64(0); i < r.retries; i++ {
		step := min(time.Duration(wait), policy.MaxInterval)
		total += time.Duration(float64(step) * (1 + policy.RandomizationFactor))
		wait *= policy.Multiplier
	}
	return total
}

func (r *Resilient) do(ctx context.Context, op string, table Table, call func(context.Context) error) error {
	start := time.Now()

	if !r.breaker.Allow() {
		err := Unavailable(ErrCircuitOpen, op, table)
		r.metrics.observe(op, table, start, err)
		return err
	}
	retries := r.retries
	if r.breaker.IsOpen() {
		retries = 0
	}

	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		err := call(attemptCtx)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialBackoff
	err := backoff.RetryNotify(attempt,
		backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx),
		func(err error, wait time.Duration) {
			r.metrics.retried(op)
			r.logger.WarnContext(ctx, "log sink call failed, retrying",
				"op", op,
				"table", table.Name,
				"wait_ms", wait.Milliseconds(),
				"error", err,
			)
		},
	)
	r.metrics.observe(op, table, start, err)

	if err != nil {
		if r.breaker.RecordFailure() {
			r.metrics.setCircuitOpen(true)
			r.logger.ErrorContext(ctx, "log sink circuit breaker opened",
				"circuit", r.breaker.Name(),
				"error", err,
			)
		}
		return Unavailable(err, op, table)
	}

	if r.breaker.RecordSuccess() {
		r.metrics.setCircuitOpen(false)
		r.logger.InfoContext(ctx, "log sink circuit breaker closed",
			"circuit", r.breaker.Name(),
		)
	}
	return nil
}
