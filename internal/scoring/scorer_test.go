package scoring

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/fareradar/internal/models"
)

func offer(price float64, stops int, refundable bool) models.Offer {
	return models.Offer{
		Stops:   stops,
		Price:   models.Price{Amount: decimal.NewFromFloat(price), Currency: "USD"},
		Fare:    models.FareRules{Refundable: refundable},
		Baggage: models.Baggage{CheckedKg: 23, CheckedPieces: 1},
	}
}

var market = models.MarketStats{MinPrice: 500, AvgPrice: 700, TotalFlights: 12}

func sumDeltas(r models.ScoreResult) float64 {
	total := 0.0
	for _, a := range r.Breakdown {
		total += a.Delta
	}
	return total
}

func TestScore_CheapDirectFlexible(t *testing.T) {
	res := NewScorer(DefaultWeights()).Score(offer(520, 0, true), market, models.TravelerContext{Adults: 1})

	assert.GreaterOrEqual(t, res.Score, 9.5)
	assert.Contains(t, res.Pros, "Direct flight")
	assert.Contains(t, res.Pros, "Refundable fare")
	assert.Empty(t, res.Penalties)
}

func TestScore_ExpensiveOneStopNonRefundable(t *testing.T) {
	s := NewScorer(DefaultWeights())

	// Ratio 3.0: 10 - 6 - 1.5.
	res := s.Score(offer(1500, 1, false), market, models.TravelerContext{Adults: 1})
	assert.Equal(t, 2.5, res.Score)
	assert.Contains(t, res.Penalties, "Too expensive: 3.0x the cheapest fare")
	assert.Contains(t, res.Penalties, "Non-refundable fare")

	// Once penalties exceed the base score the floor applies.
	res = s.Score(offer(2500, 1, false), market, models.TravelerContext{Adults: 1})
	assert.Equal(t, MinScore, res.Score)
}

func TestScore_FamilyWithComplexItinerary(t *testing.T) {
	s := NewScorer(DefaultWeights())
	o := offer(500, 2, true)

	adult := s.Score(o, market, models.TravelerContext{Adults: 2})
	family := s.Score(o, market, models.TravelerContext{Adults: 2, Children: 1})

	assert.InDelta(t, 2.5, adult.Score-family.Score, 1e-9)
	assert.Contains(t, family.Penalties, "High stress for families with a complex itinerary")
}

func TestScore_AmenitiesBaggageAndSelfTransfer(t *testing.T) {
	o := offer(500, 1, true)
	o.Amenities = models.Amenities{WiFi: true, Power: true, Meal: true}
	o.Baggage = models.Baggage{}
	o.IsSelfTransfer = true
	o.Hub = "KUL"

	res := NewScorer(DefaultWeights()).Score(o, market, models.TravelerContext{Adults: 1})

	// 10 + 0.5 + 0.3 + 0.2 + 0.5 - 1 - 1
	assert.Equal(t, 9.5, res.Score)
	assert.Contains(t, res.Penalties, "No checked baggage included")
	assert.Contains(t, res.Penalties, "Self-transfer: re-check bags at KUL")
	assert.Len(t, res.Breakdown, 7)
}

func TestScore_NoMarketFloorSkipsPriceSignal(t *testing.T) {
	res := NewScorer(DefaultWeights()).Score(offer(900, 1, true), models.MarketStats{}, models.TravelerContext{})

	for _, a := range res.Breakdown {
		assert.NotEqual(t, "price", a.Label)
	}
	assert.Equal(t, 10.0, res.Score)
}

func TestScore_AlwaysWithinBounds(t *testing.T) {
	s := NewScorer(DefaultWeights())
	travelers := []models.TravelerContext{{Adults: 1}, {Adults: 2, Infants: 1}}

	for _, price := range []float64{1, 400, 500, 750, 1500, 5000, 1e6} {
		for stops := 0; stops <= 4; stops++ {
			for _, refundable := range []bool{true, false} {
				for _, tc := range travelers {
					name := fmt.Sprintf("%v/%d/%v/%d", price, stops, refundable, tc.Infants)
					res := s.Score(offer(price, stops, refundable), market, tc)
					assert.GreaterOrEqual(t, res.Score, MinScore, name)
					assert.LessOrEqual(t, res.Score, MaxScore, name)
					assert.Len(t, res.Breakdown, len(res.Pros)+len(res.Penalties), name)
				}
			}
		}
	}
}

func TestScore_BreakdownExplainsUnclampedScore(t *testing.T) {
	res := NewScorer(DefaultWeights()).Score(offer(600, 1, false), market, models.TravelerContext{Adults: 1})

	assert.InDelta(t, BaseScore+sumDeltas(res), res.Score, 0.05)
}
