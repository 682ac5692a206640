package ranking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/fareradar/internal/models"
)

func scored(id string, price float64, minutes, stops int, score float64) models.ScoredOffer {
	return models.ScoredOffer{
		Offer: models.Offer{
			ID:       id,
			Price:    models.Price{Amount: decimal.NewFromFloat(price), Currency: "USD"},
			Duration: models.NewDuration(minutes),
			Stops:    stops,
		},
		Score: models.ScoreResult{Score: score},
	}
}

func TestCalculateBestValue(t *testing.T) {
	o := scored("a", 500, 600, 1, 0).Offer
	// 50 price points, 50 duration points, 15 stop points.
	assert.Equal(t, 43.0, CalculateBestValue(o, 1000, 1200))
	assert.Equal(t, 3.0, CalculateBestValue(o, 0, 0))
}

func TestCalculateScores_DoesNotMutateInput(t *testing.T) {
	in := []models.ScoredOffer{scored("a", 500, 600, 0, 8), scored("b", 1000, 1200, 1, 6)}
	out := CalculateScores(in)

	assert.Zero(t, in[0].BestValueScore)
	assert.Equal(t, 40.0, out[0].BestValueScore)
	assert.Equal(t, 83.0, out[1].BestValueScore)
	assert.Empty(t, CalculateScores(nil))
}

func TestCalculateScores_PricesComparedWithinCurrency(t *testing.T) {
	idr := scored("idr", 8500000, 600, 0, 7)
	idr.Offer.Price.Currency = "IDR"
	in := []models.ScoredOffer{scored("usd", 500, 600, 0, 7), idr}

	out := CalculateScores(in)

	// Each offer is the most expensive in its currency: 50 price points, 30 duration points.
	assert.Equal(t, 80.0, out[0].BestValueScore)
	assert.Equal(t, 80.0, out[1].BestValueScore)
}

func TestRank(t *testing.T) {
	offers := []models.ScoredOffer{
		scored("d", 700, 300, 0, 7.5),
		scored("c", 650, 300, 0, 7.5),
		scored("a", 900, 300, 0, 9.1),
		scored("b", 650, 300, 0, 7.5),
	}
	offers = CalculateScores(offers)
	Rank(offers)

	ids := make([]string, len(offers))
	for i, o := range offers {
		ids[i] = o.Offer.ID
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}
