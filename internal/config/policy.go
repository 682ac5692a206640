package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dharmasatrya/fareradar/internal/anomaly"
	"github.com/dharmasatrya/fareradar/internal/hubs"
	"github.com/dharmasatrya/fareradar/internal/interline"
	"github.com/dharmasatrya/fareradar/internal/oracle"
	"github.com/dharmasatrya/fareradar/internal/ratelimit"
	"github.com/dharmasatrya/fareradar/internal/scoring"
)

// Policy holds the tunables that shape search results.
type Policy struct {
	Interline  InterlinePolicy `yaml:"interline"`
	Anomaly    anomaly.Policy  `yaml:"anomaly"`
	Oracle     OraclePolicy    `yaml:"oracle"`
	Scoring    scoring.Weights `yaml:"scoring"`
	RateLimits RateLimitPolicy `yaml:"rate_limits"`
}

type InterlinePolicy struct {
	MinLayover time.Duration `yaml:"min_layover"`
	MaxLayover time.Duration `yaml:"max_layover"`
	HubDelay   time.Duration `yaml:"hub_delay"`
	MaxHubs    int           `yaml:"max_hubs"`
	// HubTable optionally replaces the embedded hub table.
	HubTable string `yaml:"hub_table"`
}

type OraclePolicy struct {
	Strategy   string `yaml:"strategy"`
	PeakMonths []int  `yaml:"peak_months"`
	LowMonths  []int  `yaml:"low_months"`
}

type RateLimitPolicy struct {
	Default   ratelimit.RateLimitConfig            `yaml:"default"`
	Providers map[string]ratelimit.RateLimitConfig `yaml:"providers"`
}

func DefaultPolicy() Policy {
	window := interline.DefaultLayoverWindow()
	return Policy{
		Interline: InterlinePolicy{
			MinLayover: window.Min,
			MaxLayover: window.Max,
			HubDelay:   800 * time.Millisecond,
			MaxHubs:    hubs.DefaultMaxHubs,
		},
		Anomaly: anomaly.DefaultPolicy(),
		Oracle:  OraclePolicy{Strategy: oracle.StrategyGlobal},
		Scoring: scoring.DefaultWeights(),
		RateLimits: RateLimitPolicy{
			Default: ratelimit.DefaultConfig(),
		},
	}
}

// LoadPolicy reads a YAML policy file over the defaults. An empty path
// returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.Interline.MinLayover < 0 || p.Interline.MaxLayover <= p.Interline.MinLayover {
		return fmt.Errorf("interline: layover window [%s, %s] is invalid", p.Interline.MinLayover, p.Interline.MaxLayover)
	}
	if p.Interline.MaxHubs < 1 {
		return fmt.Errorf("interline: max_hubs must be at least 1")
	}
	if p.Interline.HubDelay < 0 {
		return fmt.Errorf("interline: hub_delay must not be negative")
	}
	if t := p.Anomaly.DropThresholdPercent; t <= 0 || t >= 100 {
		return fmt.Errorf("anomaly: drop_threshold_percent must be between 0 and 100")
	}
	if p.Anomaly.MinObservations < 1 || p.Anomaly.Window < p.Anomaly.MinObservations {
		return fmt.Errorf("anomaly: window must hold at least min_observations")
	}
	if _, err := oracle.StrategyByName(p.Oracle.Strategy, oracle.Calendar{}); err != nil {
		return fmt.Errorf("oracle: %w", err)
	}
	for _, m := range append(append([]int(nil), p.Oracle.PeakMonths...), p.Oracle.LowMonths...) {
		if m < 1 || m > 12 {
			return fmt.Errorf("oracle: month %d out of range", m)
		}
	}
	return nil
}

func (p Policy) LayoverWindow() interline.LayoverWindow {
	return interline.LayoverWindow{Min: p.Interline.MinLayover, Max: p.Interline.MaxLayover}
}

// Calendar returns the configured seasons, falling back to the strategy's
// own calendar when none are set.
func (o OraclePolicy) Calendar() oracle.Calendar {
	if len(o.PeakMonths) == 0 && len(o.LowMonths) == 0 {
		if o.Strategy == oracle.StrategyLegacy {
			return oracle.LegacyCalendar()
		}
		return oracle.DefaultCalendar()
	}
	return oracle.Calendar{Peak: months(o.PeakMonths), Low: months(o.LowMonths)}
}

func (o OraclePolicy) NewOracle() (*oracle.Oracle, error) {
	strategy, err := oracle.StrategyByName(o.Strategy, o.Calendar())
	if err != nil {
		return nil, err
	}
	return oracle.New(strategy), nil
}

func months(values []int) []time.Month {
	out := make([]time.Month, len(values))
	for i, v := range values {
		out[i] = time.Month(v)
	}
	return out
}
