package anomaly

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dharmasatrya/fareradar/internal/market"
	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/pkg/currency"
)

type Policy struct {
	MinObservations      int     `yaml:"min_observations"`
	DropThresholdPercent float64 `yaml:"drop_threshold_percent"`
	Window               int     `yaml:"window"`
}

func DefaultPolicy() Policy {
	return Policy{
		MinObservations:      5,
		DropThresholdPercent: 25,
		Window:               30,
	}
}

type Detector struct {
	policy Policy
}

func NewDetector(policy Policy) *Detector {
	d := DefaultPolicy()
	if policy.MinObservations > 0 {
		d.MinObservations = policy.MinObservations
	}
	if policy.DropThresholdPercent > 0 {
		d.DropThresholdPercent = policy.DropThresholdPercent
	}
	if policy.Window > 0 {
		d.Window = policy.Window
	}
	return &Detector{policy: d}
}

func (d *Detector) Policy() Policy {
	return d.policy
}

// Analyze compares currentPrice with the most recent observations of a route.
// With fewer than MinObservations every numeric field except CurrentPrice is
// zero and HasEnoughData is false.
func (d *Detector) Analyze(history models.RouteHistory, currentPrice float64) models.AnalysisResult {
	recent := d.window(history.Observations)

	result := models.AnalysisResult{
		RouteID:      history.RouteID,
		Observations: len(recent),
		CurrentPrice: currentPrice,
	}
	if len(recent) < d.policy.MinObservations {
		return result
	}

	amounts := make([]float64, len(recent))
	for i, o := range recent {
		amounts[i] = o.Amount
	}
	mean, std := market.MeanStd(amounts)

	result.HasEnoughData = true
	result.Mean = mean
	result.StdDev = std
	result.DropPercent = DropPercent(mean, currentPrice)
	result.IsAnomaly = result.DropPercent > d.policy.DropThresholdPercent

	latest := recent[0]
	if latest.Score != nil {
		result.DealScore = *latest.Score
	} else {
		result.DealScore = DealScore(currentPrice, mean, std)
	}

	switch {
	case latest.Explanation != nil:
		result.Explanation = *latest.Explanation
	case result.IsAnomaly:
		result.Explanation = explain(mean, currentPrice, result.DropPercent, history.Currency)
	}

	return result
}

// window returns up to Window observations, newest first.
func (d *Detector) window(observations []models.PriceObservation) []models.PriceObservation {
	sorted := append([]models.PriceObservation(nil), observations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > d.policy.Window {
		sorted = sorted[:d.policy.Window]
	}
	return sorted
}

// DealScore maps the z-score of current against the sample onto [0, 10]:
// the mean scores 5, each standard deviation cheaper adds 2.
func DealScore(current, mean, std float64) float64 {
	if std == 0 {
		switch {
		case current < mean:
			return 10
		case current > mean:
			return 0
		}
		return 5
	}
	z := (mean - current) / std
	score := math.Round((5+2*z)*10) / 10
	return math.Max(0, math.Min(10, score))
}

func DropPercent(mean, current float64) float64 {
	if mean == 0 {
		return 0
	}
	return (mean - current) * 100 / mean
}

func explain(mean, current, drop float64, code string) string {
	avg, now := fmt.Sprintf("%.0f", mean), fmt.Sprintf("%.2f", current)
	if code != "" {
		avg = currency.Format(decimal.NewFromFloat(mean).Round(0), code)
		now = currency.Format(decimal.NewFromFloat(current), code)
	}
	return fmt.Sprintf("Price dropped %.0f%% below normal. Avg: %s. Now: %s.", drop, avg, now)
}
