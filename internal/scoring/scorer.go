package scoring

import (
	"fmt"
	"math"

	"github.com/dharmasatrya/fareradar/internal/models"
)

const (
	BaseScore = 10.0
	MinScore  = 0.1
	MaxScore  = 10.0
)

// Weights are the additive adjustments applied to BaseScore.
type Weights struct {
	CompetitiveRatio  float64 `yaml:"competitive_ratio"`   // price/min at or below this is competitive
	ExpensivePerRatio float64 `yaml:"expensive_per_ratio"` // subtracted per unit of ratio above CompetitiveRatio
	Direct            float64 `yaml:"direct"`
	MultiStop         float64 `yaml:"multi_stop"`
	FamilyMultiStop   float64 `yaml:"family_multi_stop"`
	Refundable        float64 `yaml:"refundable"`
	NonRefundable     float64 `yaml:"non_refundable"`
	WiFi              float64 `yaml:"wifi"`
	Power             float64 `yaml:"power"`
	Meal              float64 `yaml:"meal"`
	NoBaggage         float64 `yaml:"no_baggage"`
	SelfTransfer      float64 `yaml:"self_transfer"`
}

func DefaultWeights() Weights {
	return Weights{
		CompetitiveRatio:  1.5,
		ExpensivePerRatio: 2.0,
		Direct:            1.0,
		MultiStop:         -1.5,
		FamilyMultiStop:   -2.5,
		Refundable:        0.5,
		NonRefundable:     -1.5,
		WiFi:              0.3,
		Power:             0.2,
		Meal:              0.5,
		NoBaggage:         -1.0,
		SelfTransfer:      -1.0,
	}
}

type Scorer struct {
	weights Weights
}

func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score rates an offer on [0.1, 10.0]. Every adjustment is listed in the
// breakdown together with the pro or penalty text that explains it.
func (s *Scorer) Score(offer models.Offer, stats models.MarketStats, traveler models.TravelerContext) models.ScoreResult {
	r := &result{score: BaseScore, out: models.ScoreResult{Pros: []string{}, Penalties: []string{}}}
	w := s.weights

	if stats.MinPrice > 0 {
		ratio := offer.Price.Float() / stats.MinPrice
		if ratio <= w.CompetitiveRatio {
			r.pro("price", 0, fmt.Sprintf("Competitive price (%.2fx the cheapest fare)", ratio))
		} else {
			r.penalty("price", -ratio*w.ExpensivePerRatio, fmt.Sprintf("Too expensive: %.1fx the cheapest fare", ratio))
		}
	}

	switch {
	case offer.Stops == 0:
		r.pro("stops", w.Direct, "Direct flight")
	case offer.Stops >= 2:
		r.penalty("stops", w.MultiStop, fmt.Sprintf("%d stops", offer.Stops))
		if traveler.HasMinors() {
			r.penalty("family", w.FamilyMultiStop, "High stress for families with a complex itinerary")
		}
	}

	if offer.Fare.Refundable {
		r.pro("refund", w.Refundable, "Refundable fare")
	} else {
		r.penalty("refund", w.NonRefundable, "Non-refundable fare")
	}

	if offer.Amenities.WiFi {
		r.pro("wifi", w.WiFi, "Wi-Fi on board")
	}
	if offer.Amenities.Power {
		r.pro("power", w.Power, "In-seat power")
	}
	if offer.Amenities.Meal {
		r.pro("meal", w.Meal, "Meal included")
	}

	if offer.Baggage.None() {
		r.penalty("baggage", w.NoBaggage, "No checked baggage included")
	}

	if offer.IsSelfTransfer {
		r.penalty("self_transfer", w.SelfTransfer, "Self-transfer: re-check bags at "+offer.Hub)
	}

	r.out.Score = clamp(r.score)
	return r.out
}

type result struct {
	score float64
	out   models.ScoreResult
}

func (r *result) pro(label string, delta float64, text string) {
	r.score += delta
	r.out.Breakdown = append(r.out.Breakdown, models.Adjustment{Label: label, Delta: delta})
	r.out.Pros = append(r.out.Pros, text)
}

func (r *result) penalty(label string, delta float64, text string) {
	r.score += delta
	r.out.Breakdown = append(r.out.Breakdown, models.Adjustment{Label: label, Delta: delta})
	r.out.Penalties = append(r.out.Penalties, text)
}

func clamp(score float64) float64 {
	score = math.Round(score*10) / 10
	return math.Max(MinScore, math.Min(MaxScore, score))
}
