// Package app assembles the search pipeline and its collaborators from
// configuration. Both the HTTP server and the snapshot collector use it.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/fareradar/internal/aggregator"
	"github.com/dharmasatrya/fareradar/internal/airlines"
	"github.com/dharmasatrya/fareradar/internal/anomaly"
	"github.com/dharmasatrya/fareradar/internal/cache"
	"github.com/dharmasatrya/fareradar/internal/config"
	"github.com/dharmasatrya/fareradar/internal/hubs"
	"github.com/dharmasatrya/fareradar/internal/interline"
	"github.com/dharmasatrya/fareradar/internal/normalize"
	"github.com/dharmasatrya/fareradar/internal/pipeline"
	"github.com/dharmasatrya/fareradar/internal/providers"
	"github.com/dharmasatrya/fareradar/internal/ratelimit"
	"github.com/dharmasatrya/fareradar/internal/scoring"
	"github.com/dharmasatrya/fareradar/internal/storage"
)

type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Service *pipeline.Service
	Store   storage.Store
	Cache   cache.Cache
}

func New(cfg *config.Config, logger *logrus.Logger) (*App, error) {
	policy := cfg.Policy

	providerList, err := buildProviders(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize providers: %w", err)
	}

	limiter := ratelimit.NewProviderLimiter(policy.RateLimits.Default, policy.RateLimits.Providers)
	agg := aggregator.NewAggregator(
		providerList,
		normalize.New(airlines.Default(), logger),
		aggregator.Config{Timeout: cfg.ProviderTimeout, RateLimiter: limiter},
		logger,
	)

	table := hubs.DefaultTable()
	if policy.Interline.HubTable != "" {
		if table, err = hubs.LoadTable(policy.Interline.HubTable); err != nil {
			return nil, err
		}
	}
	stitcher := interline.NewStitcher(
		agg,
		hubs.NewRouter(table, policy.Interline.MaxHubs),
		interline.SleepPacer{Delay: policy.Interline.HubDelay},
		policy.LayoverWindow(),
		logger,
	)

	priceOracle, err := policy.Oracle.NewOracle()
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}

	searchCache, err := openCache(cfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open %s cache: %w", cfg.CacheBackend, err)
	}

	service := pipeline.NewService(pipeline.Deps{
		Searcher: agg,
		Stitcher: stitcher,
		Scorer:   scoring.NewScorer(policy.Scoring),
		Oracle:   priceOracle,
		Detector: anomaly.NewDetector(policy.Anomaly),
		Cache:    searchCache,
		Store:    store,
		Logger:   logger,
	})

	logger.WithFields(logrus.Fields{
		"providers": len(providerList),
		"storage":   cfg.StorageDriver,
		"cache":     cfg.CacheBackend,
		"oracle":    policy.Oracle.Strategy,
		"max_hubs":  policy.Interline.MaxHubs,
	}).Info("pipeline ready")

	return &App{
		Config:  cfg,
		Logger:  logger,
		Service: service,
		Store:   store,
		Cache:   searchCache,
	}, nil
}

func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.Store.Close())
}

func buildProviders(cfg *config.Config, logger logrus.FieldLogger) ([]providers.Provider, error) {
	var list []providers.Provider
	retry := providers.DefaultRetryConfig()
	retry.MaxRetries = cfg.ProviderMaxRetries

	if cfg.StaticProviders {
		names, err := providers.StaticProviderNames()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			p, err := providers.NewStaticProvider(name, providers.StaticConfig{
				MinLatency:  cfg.StaticMinLatency,
				MaxLatency:  cfg.StaticMaxLatency,
				FailureRate: cfg.StaticFailureRate,
			})
			if err != nil {
				return nil, err
			}
			list = append(list, providers.WithRetry(p, retry, logger))
		}
	}

	if cfg.AmadeusEnabled() {
		amadeus := providers.NewAmadeusProvider(providers.AmadeusConfig{
			BaseURL:      cfg.AmadeusBaseURL,
			ClientID:     cfg.AmadeusClientID,
			ClientSecret: cfg.AmadeusClientSecret,
			Timeout:      cfg.ProviderTimeout,
		})
		list = append(list, providers.WithRetry(amadeus, retry, logger))
	}

	if len(list) == 0 {
		return nil, errors.New("no providers enabled")
	}
	return list, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "postgres":
		return storage.OpenPostgres(cfg.PostgresDSN)
	case "memory":
		return storage.NewMemoryStore(), nil
	}
	if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return storage.OpenSQLite(cfg.SQLitePath)
}

func openCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case "redis":
		return cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
	case "none":
		return cache.NewNoOpCache(), nil
	}
	return cache.NewMemoryCache(cfg.CacheTTL, time.Now), nil
}
