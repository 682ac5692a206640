package aggregator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/fareradar/internal/metrics"
	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/internal/normalize"
	"github.com/dharmasatrya/fareradar/internal/providers"
	"github.com/dharmasatrya/fareradar/internal/ratelimit"
)

var (
	ErrNoProviders        = errors.New("no providers configured")
	ErrAllProvidersFailed = errors.New("all providers failed")
)

type Config struct {
	Timeout     time.Duration
	RateLimiter *ratelimit.ProviderLimiter
}

type Aggregator struct {
	providers  []providers.Provider
	normalizer *normalize.Normalizer
	config     Config
	logger     logrus.FieldLogger
}

// ProviderOutcome is the explicit result of one provider call. Err is set
// when the provider failed; Offers and Dropped count normalized results.
type ProviderOutcome struct {
	Provider string
	Offers   int
	Dropped  int
	Duration time.Duration
	Err      error
}

func (o ProviderOutcome) Failed() bool {
	return o.Err != nil
}

type Result struct {
	Offers             []models.Offer
	Outcomes           []ProviderOutcome
	ProvidersQueried   int
	ProvidersSucceeded int
	ProvidersFailed    int
	FailedProviders    []string
	Dropped            int
}

func NewAggregator(providerList []providers.Provider, normalizer *normalize.Normalizer, config Config, logger logrus.FieldLogger) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Aggregator{
		providers:  providerList,
		normalizer: normalizer,
		config:     config,
		logger:     logger,
	}
}

// Search fans req out to every provider concurrently and normalizes the
// results. A failing provider never aborts the batch; the returned Result is
// always non-nil and ErrAllProvidersFailed is returned alongside it when no
// provider succeeded.
func (a *Aggregator) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	result := &Result{
		Offers:           make([]models.Offer, 0),
		ProvidersQueried: len(a.providers),
	}
	if len(a.providers) == 0 {
		return result, ErrNoProviders
	}

	searchCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	type providerResult struct {
		index   int
		outcome ProviderOutcome
		offers  []models.Offer
	}

	resultCh := make(chan providerResult, len(a.providers))
	var wg sync.WaitGroup

	for i, p := range a.providers {
		wg.Add(1)
		go func(index int, provider providers.Provider) {
			defer wg.Done()

			outcome, offers := a.query(searchCtx, provider, req)
			resultCh <- providerResult{index: index, outcome: outcome, offers: offers}
		}(i, p)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make([]ProviderOutcome, len(a.providers))
	perProvider := make([][]models.Offer, len(a.providers))
	for pr := range resultCh {
		outcomes[pr.index] = pr.outcome
		perProvider[pr.index] = pr.offers
	}

	for i, outcome := range outcomes {
		result.Dropped += outcome.Dropped
		if outcome.Failed() {
			a.logger.WithFields(logrus.Fields{
				"provider": outcome.Provider,
				"origin":   req.Origin,
				"dest":     req.Destination,
				"date":     req.DepartureDate,
			}).WithError(outcome.Err).Warn("provider failed")
			result.ProvidersFailed++
			result.FailedProviders = append(result.FailedProviders, outcome.Provider)
			continue
		}
		result.ProvidersSucceeded++
		result.Offers = append(result.Offers, perProvider[i]...)
	}
	result.Outcomes = outcomes

	if result.ProvidersSucceeded == 0 {
		return result, ErrAllProvidersFailed
	}
	return result, nil
}

// SearchOffers is Search reduced to its offers, for callers that only need
// the combined list.
func (a *Aggregator) SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, error) {
	result, err := a.Search(ctx, req)
	if err != nil {
		return nil, err
	}
	return result.Offers, nil
}

func (a *Aggregator) query(ctx context.Context, provider providers.Provider, req models.SearchRequest) (ProviderOutcome, []models.Offer) {
	name := provider.Name()
	start := time.Now()
	outcome := ProviderOutcome{Provider: name}

	if a.config.RateLimiter != nil {
		if err := a.config.RateLimiter.Wait(ctx, name); err != nil {
			outcome.Err = providers.NewProviderError(name, err)
			outcome.Duration = time.Since(start)
			metrics.RecordProvider(name, outcome.Duration, outcome.Err)
			return outcome, nil
		}
	}

	raws, err := provider.Search(ctx, req)
	outcome.Duration = time.Since(start)
	metrics.RecordProvider(name, outcome.Duration, err)
	if err != nil {
		outcome.Err = providers.NewProviderError(name, err)
		return outcome, nil
	}

	offers, dropped := a.normalizer.NormalizeAll(raws)
	for i := range offers {
		if offers[i].Provider == "" {
			offers[i].Provider = name
		}
	}
	outcome.Offers = len(offers)
	outcome.Dropped = dropped
	metrics.RecordDropped(name, dropped)

	return outcome, offers
}
