package ranking

import (
	"math"
	"sort"

	"github.com/dharmasatrya/fareradar/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2
)

// CalculateScores sets BestValueScore on every offer relative to the most
// expensive offer in its own currency and the longest offer in the set.
func CalculateScores(offers []models.ScoredOffer) []models.ScoredOffer {
	if len(offers) == 0 {
		return offers
	}

	maxPrices := findMaxPrices(offers)
	maxDuration := findMaxDuration(offers)

	result := make([]models.ScoredOffer, len(offers))
	for i, o := range offers {
		result[i] = o
		result[i].BestValueScore = CalculateBestValue(o.Offer, maxPrices[o.Offer.Price.Currency], maxDuration)
	}
	return result
}

// Lower score = better value
func CalculateBestValue(offer models.Offer, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if maxPrice > 0 {
		priceScore = (offer.Price.Float() / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (float64(offer.Duration.TotalMinutes) / maxDuration) * 100
	}

	stopsScore := float64(offer.Stops) * 15
	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

// Rank orders offers best first: deal score descending, then best value,
// then price, then id so equal inputs always produce the same order.
func Rank(offers []models.ScoredOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return Less(offers[i], offers[j])
	})
}

func Less(a, b models.ScoredOffer) bool {
	if a.Score.Score != b.Score.Score {
		return a.Score.Score > b.Score.Score
	}
	if a.BestValueScore != b.BestValueScore {
		return a.BestValueScore < b.BestValueScore
	}
	if c := a.Offer.Price.Amount.Cmp(b.Offer.Price.Amount); c != 0 {
		return c < 0
	}
	return a.Offer.ID < b.Offer.ID
}

func findMaxPrices(offers []models.ScoredOffer) map[string]float64 {
	maxPrices := make(map[string]float64)
	for _, o := range offers {
		cur := o.Offer.Price.Currency
		maxPrices[cur] = math.Max(maxPrices[cur], o.Offer.Price.Float())
	}
	return maxPrices
}

func findMaxDuration(offers []models.ScoredOffer) float64 {
	maxDuration := 0.0
	for _, o := range offers {
		maxDuration = math.Max(maxDuration, float64(o.Offer.Duration.TotalMinutes))
	}
	return maxDuration
}
