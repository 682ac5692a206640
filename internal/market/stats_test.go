package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/fareradar/internal/models"
)

func offerAt(price string) models.Offer {
	return models.Offer{Price: models.Price{Amount: decimal.RequireFromString(price), Currency: "USD"}}
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats([]models.Offer{offerAt("500"), offerAt("700"), offerAt("900"), offerAt("700")})

	assert.Equal(t, 500.0, stats.MinPrice)
	assert.Equal(t, 900.0, stats.MaxPrice)
	assert.Equal(t, 700.0, stats.AvgPrice)
	assert.Equal(t, 700.0, stats.MedianPrice)
	assert.InDelta(t, 141.421, stats.StdDev, 0.001)
	assert.Equal(t, 4, stats.TotalFlights)
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, models.MarketStats{}, ComputeStats(nil))
	assert.Equal(t, models.MarketStats{}, FromHistory(models.RouteHistory{}))
}

func TestComputeStats_SingleOffer(t *testing.T) {
	stats := ComputeStats([]models.Offer{offerAt("812.40")})

	assert.Equal(t, 812.4, stats.MinPrice)
	assert.Equal(t, 812.4, stats.AvgPrice)
	assert.Zero(t, stats.StdDev)
}

func TestFromHistory(t *testing.T) {
	now := time.Now()
	h := models.RouteHistory{Observations: []models.PriceObservation{
		{Timestamp: now, Amount: 1200},
		{Timestamp: now.Add(-time.Hour), Amount: 800},
		{Timestamp: now.Add(-2 * time.Hour), Amount: 1000},
	}}

	stats := FromHistory(h)
	assert.Equal(t, 800.0, stats.MinPrice)
	assert.Equal(t, 1000.0, stats.AvgPrice)
	assert.Equal(t, 1000.0, stats.MedianPrice)
	assert.Equal(t, 3, stats.TotalFlights)
}

func TestMedian_EvenCount(t *testing.T) {
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
}
