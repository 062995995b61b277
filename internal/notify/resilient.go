package notify

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the mailer circuit breaker is open.
var ErrCircuitOpen = errors.New("mailer circuit breaker is open")

// SendRecorder receives timing for each outbound send attempt.
type SendRecorder interface {
	RecordRequest(gateway, operation string, duration time.Duration, err error)
}

// ResilientConfig holds configuration for the resilient mailer wrapper.
type ResilientConfig struct {
	// Name identifies the circuit breaker for logging.
	Name string

	// MaxRetries is the maximum number of retry attempts per send.
	// Default: 2
	MaxRetries uint64

	// InitialInterval is the initial retry backoff interval.
	// Default: 200ms
	InitialInterval time.Duration

	// MaxInterval is the maximum retry backoff interval.
	// Default: 2 seconds
	MaxInterval time.Duration

	// BreakerTimeout is the period of open state before half-open.
	// Default: 60 seconds
	BreakerTimeout time.Duration

	// Recorder, when set, receives per-attempt send metrics.
	Recorder SendRecorder
}

// DefaultResilientConfig returns sensible defaults for the resilient mailer.
func DefaultResilientConfig(name string) ResilientConfig {
	return ResilientConfig{
		Name:            name,
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		BreakerTimeout:  60 * time.Second,
	}
}

// ResilientMailer wraps a Mailer with retry and circuit-breaker protection.
// Email delivery stays best-effort; the breaker just stops a dead provider
// from adding retry latency to every privacy request.
type ResilientMailer struct {
	inner   Mailer
	breaker *gobreaker.CircuitBreaker[struct{}]
	config  ResilientConfig
}

// NewResilientMailer creates a resilient wrapper around the given mailer.
func NewResilientMailer(inner Mailer, cfg ResilientConfig) *ResilientMailer {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &ResilientMailer{
		inner:   inner,
		breaker: breaker,
		config:  cfg,
	}
}

// Send delivers the email through the wrapped mailer, retrying transient
// failures with exponential backoff. Returns ErrCircuitOpen without
// attempting delivery when the breaker is open.
func (m *ResilientMailer) Send(ctx context.Context, email Email) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.config.InitialInterval
	bo.MaxInterval = m.config.MaxInterval
	bo.MaxElapsedTime = 0 // retries bounded by WithMaxRetries

	operation := func() error {
		_, err := m.breaker.Execute(func() (struct{}, error) {
			start := time.Now()
			sendErr := m.inner.Send(ctx, email)
			if m.config.Recorder != nil {
				m.config.Recorder.RecordRequest(m.config.Name, "send-email", time.Since(start), sendErr)
			}
			return struct{}{}, sendErr
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			return err
		}
		return nil
	}

	return backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(bo, m.config.MaxRetries), ctx))
}
