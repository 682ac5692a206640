package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/fareradar/internal/oracle"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.True(t, cfg.StaticProviders)
	assert.False(t, cfg.AmadeusEnabled())
	assert.Equal(t, 4*time.Hour, cfg.Policy.Interline.MinLayover)
	assert.Equal(t, 25.0, cfg.Policy.Anomaly.DropThresholdPercent)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("PROVIDER_MAX_RETRIES", "4")
	t.Setenv("AMADEUS_CLIENT_ID", "id")
	t.Setenv("AMADEUS_CLIENT_SECRET", "supersecretvalue")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.ProviderMaxRetries)
	assert.True(t, cfg.AmadeusEnabled())
	assert.Equal(t, "supe****alue", cfg.MaskedAmadeusSecret())
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown cache":        {"CACHE_BACKEND": "memcached"},
		"postgres without dsn": {"STORAGE_DRIVER": "postgres"},
		"no providers":         {"STATIC_PROVIDERS": "false"},
		"bad failure rate":     {"STATIC_FAILURE_RATE": "1.5"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParsePolicy_OverridesOnlyWhatIsSet(t *testing.T) {
	p, err := ParsePolicy([]byte(`
interline:
  max_layover: 12h
anomaly:
  drop_threshold_percent: 30
oracle:
  strategy: legacy
scoring:
  self_transfer: -2
rate_limits:
  providers:
    amadeus:
      requests_per_second: 5
      burst: 5
`))
	require.NoError(t, err)

	assert.Equal(t, 4*time.Hour, p.Interline.MinLayover)
	assert.Equal(t, 12*time.Hour, p.Interline.MaxLayover)
	assert.Equal(t, 3, p.Interline.MaxHubs)
	assert.Equal(t, 30.0, p.Anomaly.DropThresholdPercent)
	assert.Equal(t, 5, p.Anomaly.MinObservations)
	assert.Equal(t, -2.0, p.Scoring.SelfTransfer)
	assert.Equal(t, 1.5, p.Scoring.CompetitiveRatio)
	assert.Equal(t, 5.0, p.RateLimits.Providers["amadeus"].RequestsPerSecond)
	assert.Equal(t, 10.0, p.RateLimits.Default.RequestsPerSecond)

	assert.Equal(t, oracle.LegacyCalendar(), p.Oracle.Calendar())
	o, err := p.Oracle.NewOracle()
	require.NoError(t, err)
	assert.NotNil(t, o)

	w := p.LayoverWindow()
	assert.True(t, w.Contains(12*time.Hour))
	assert.False(t, w.Contains(13*time.Hour))
}

func TestParsePolicy_CustomSeasons(t *testing.T) {
	p, err := ParsePolicy([]byte("oracle:\n  peak_months: [7, 8]\n  low_months: [11]\n"))
	require.NoError(t, err)

	cal := p.Oracle.Calendar()
	assert.True(t, cal.IsPeak(time.July))
	assert.False(t, cal.IsPeak(time.December))
	assert.True(t, cal.IsLow(time.November))
}

func TestParsePolicy_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"inverted window":  "interline:\n  min_layover: 10h\n  max_layover: 5h\n",
		"zero hubs":        "interline:\n  max_hubs: 0\n",
		"threshold":        "anomaly:\n  drop_threshold_percent: 120\n",
		"month":            "oracle:\n  peak_months: [13]\n",
		"strategy":         "oracle:\n  strategy: tarot\n",
		"malformed":        "interline: [",
		"window below min": "anomaly:\n  min_observations: 10\n  window: 5\n",
	} {
		_, err := ParsePolicy([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadPolicy_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interline:\n  hub_delay: 0s\n"), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Zero(t, p.Interline.HubDelay)

	_, err = LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
