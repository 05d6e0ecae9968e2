// Package breaker guards calls to remote model APIs with a circuit breaker.
// While a provider is down the remaining items of a run fail fast.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrOpen is returned while the breaker rejects calls
var ErrOpen = gobreaker.ErrOpenState

// Config holds breaker thresholds
type Config struct {
	MaxFailures uint32        // Consecutive failures that open the breaker
	OpenTimeout time.Duration // Time in open state before a trial call
	Interval    time.Duration // Period after which closed-state counts reset
}

// DefaultConfig returns the thresholds used for model providers
func DefaultConfig() Config {
	return Config{
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
		Interval:    2 * time.Minute,
	}
}

// Breaker wraps a gobreaker circuit breaker
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a breaker. A nil logger disables state change logging.
func New(name string, cfg Config, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultConfig().MaxFailures
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		// A caller giving up is not a fault of the remote side
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.cb.Name()
}

// State returns "closed", "half-open" or "open"
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Do runs fn through the breaker
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := result.(T)
	return value, nil
}
