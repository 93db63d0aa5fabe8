package mailer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/lightspeedtech/lightspeed/internal/observability"
)

const (
	DefaultMaxRetries      = 2
	DefaultInitialInterval = 500 * time.Millisecond
)

// Retrying wraps a Mailer with exponential backoff. Provider answers that
// cannot improve on retry (4xx other than 429) and a missing key are returned
// at once.
type Retrying struct {
	Mailer          Mailer
	MaxRetries      int
	InitialInterval time.Duration
}

// HasCredential delegates to the wrapped mailer.
func (r *Retrying) HasCredential() bool {
	return r != nil && HasCredential(r.Mailer)
}

// Send delivers email, retrying temporary failures up to MaxRetries times.
func (r *Retrying) Send(ctx context.Context, email Email) error {
	if r.MaxRetries <= 0 {
		return r.Mailer.Send(ctx, email)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = r.InitialInterval
	if expo.InitialInterval <= 0 {
		expo.InitialInterval = DefaultInitialInterval
	}
	expo.MaxElapsedTime = 0
	bo := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(r.MaxRetries)), ctx)

	attempt := 0
	op := func() error {
		attempt++
		err := r.Mailer.Send(ctx, email)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		if logger := observability.Logger(); logger != nil {
			logger.Warn("Mail send failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}

	return backoff.Retry(op, bo)
}

func retryable(err error) bool {
	if errors.Is(err, ErrMissingAPIKey) || errors.Is(err, context.Canceled) {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Temporary()
	}
	return true
}
