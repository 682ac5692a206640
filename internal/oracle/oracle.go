package oracle

import (
	"fmt"
	"math"
	"time"

	"github.com/dharmasatrya/fareradar/internal/models"
)

// Strategy turns an offer and its market into a raw risk score (already
// clamped to the strategy's range) plus the reasons behind it.
type Strategy interface {
	Name() string
	Assess(offer models.Offer, stats models.MarketStats, now time.Time) (float64, []models.Reason)
}

const (
	StrategyGlobal = "global"
	StrategyLegacy = "legacy"
)

// StrategyByName resolves a configured strategy. An empty name selects global.
func StrategyByName(name string, cal Calendar) (Strategy, error) {
	switch name {
	case "", StrategyGlobal:
		return NewGlobalStrategy(cal), nil
	case StrategyLegacy:
		return NewLegacyStrategy(cal), nil
	}
	return nil, fmt.Errorf("unknown oracle strategy %q", name)
}

type Oracle struct {
	strategy Strategy
}

func New(strategy Strategy) *Oracle {
	if strategy == nil {
		strategy = NewGlobalStrategy(DefaultCalendar())
	}
	return &Oracle{strategy: strategy}
}

// Forecast predicts whether the fare is likely to rise. Higher risk means
// waiting is more likely to cost money.
func (o *Oracle) Forecast(offer models.Offer, stats models.MarketStats, now time.Time) models.Forecast {
	score, reasons := o.strategy.Assess(offer, stats, now)
	if reasons == nil {
		reasons = []models.Reason{}
	}

	f := models.Forecast{
		Action:     models.ActionMonitor,
		RiskScore:  score,
		Trend:      models.TrendStable,
		Reasons:    reasons,
		Confidence: models.ConfidenceLow,
		Strategy:   o.strategy.Name(),
	}

	switch {
	case score >= 75:
		f.Action, f.Trend, f.Urgent = models.ActionBuyNow, models.TrendRising, true
	case score >= 55:
		f.Action, f.Trend = models.ActionBuyNow, models.TrendRising
	case score <= 30:
		f.Action, f.Trend = models.ActionWait, models.TrendFalling
	}

	if score > 70 || score < 30 {
		f.Confidence = models.ConfidenceHigh
	}
	return f
}

// daysUntil rounds partial days up.
func daysUntil(departure, now time.Time) int {
	return int(math.Ceil(departure.Sub(now).Hours() / 24))
}

type assessment struct {
	score   float64
	reasons []models.Reason
}

func (a *assessment) add(code string, delta float64, impact models.Impact, text string) {
	a.score += delta
	a.reasons = append(a.reasons, models.Reason{Code: code, Text: text, Impact: impact, Weight: delta})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
