package capability

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"carsales-backend/internal/models"
)

type breakerCapability struct {
	next Capability
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker guards next with a circuit breaker that opens after
// maxFailures consecutive failures and probes again after openFor. It never
// retries; an open breaker fails fast with KindUnavailable.
func WithBreaker(next Capability, maxFailures int, openFor time.Duration, logger *zap.Logger) Capability {
	if maxFailures <= 0 {
		return next
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		// Caller mistakes say nothing about the health of the upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || KindOf(err) == KindInvalidRequest
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("capability", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &breakerCapability{
		next: next,
		cb:   gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *breakerCapability) Name() string { return b.next.Name() }

func (b *breakerCapability) Invoke(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Invoke(ctx, messages)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, Unavailable(b.next.Name(), err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}
