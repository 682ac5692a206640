package market

import (
	"math"
	"sort"

	"github.com/dharmasatrya/fareradar/internal/models"
)

// ComputeStats summarises offer prices. Empty input yields zero stats.
func ComputeStats(offers []models.Offer) models.MarketStats {
	prices := make([]float64, 0, len(offers))
	for _, o := range offers {
		prices = append(prices, o.Price.Float())
	}
	return fromValues(prices)
}

// FromHistory summarises the observed amounts of a route.
func FromHistory(history models.RouteHistory) models.MarketStats {
	return fromValues(history.Amounts())
}

func fromValues(values []float64) models.MarketStats {
	if len(values) == 0 {
		return models.MarketStats{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean, std := MeanStd(values)

	return models.MarketStats{
		MinPrice:     lo,
		MaxPrice:     hi,
		AvgPrice:     mean,
		MedianPrice:  Median(values),
		StdDev:       std,
		TotalFlights: len(values),
	}
}

// MeanStd returns the mean and population standard deviation.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	if len(values) == 1 {
		return mean, 0
	}

	varianceSum := 0.0
	for _, v := range values {
		varianceSum += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(varianceSum / float64(len(values)))
}

func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
