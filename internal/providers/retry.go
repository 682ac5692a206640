package providers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/fareradar/internal/models"
)

type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  2,
		RetryDelays: []time.Duration{100 * time.Millisecond, 200 * time.Millisecond},
	}
}

type retryingProvider struct {
	Provider
	config RetryConfig
	logger logrus.FieldLogger
}

// WithRetry wraps p so failed searches are retried with the configured
// delays. Credential errors and context cancellation are not retried.
func WithRetry(p Provider, cfg RetryConfig, logger logrus.FieldLogger) Provider {
	if cfg.MaxRetries <= 0 {
		return p
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &retryingProvider{Provider: p, config: cfg, logger: logger}
}

func (r *retryingProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.RawOffer, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(0)
			if len(r.config.RetryDelays) > 0 {
				idx := min(attempt-1, len(r.config.RetryDelays)-1)
				delay = r.config.RetryDelays[idx]
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		offers, err := r.Provider.Search(ctx, req)
		if err == nil {
			return offers, nil
		}

		lastErr = err
		r.logger.WithFields(logrus.Fields{
			"provider": r.Name(),
			"attempt":  attempt + 1,
		}).WithError(err).Warn("provider search failed")

		if errors.Is(err, ErrUnauthorized) || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}
