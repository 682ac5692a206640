package filter

import (
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/internal/ranking"
)

// Apply filters the offers, fills best-value scores and sorts. The input
// slice is not modified.
func Apply(offers []models.ScoredOffer, filters *models.SearchFilters, sortBy, sortOrder string) []models.ScoredOffer {
	filtered := applyFilters(offers, filters)
	filtered = ranking.CalculateScores(filtered)
	return applySort(filtered, sortBy, sortOrder)
}

func applyFilters(offers []models.ScoredOffer, filters *models.SearchFilters) []models.ScoredOffer {
	result := make([]models.ScoredOffer, 0, len(offers))
	for _, o := range offers {
		if filters == nil || matchesFilters(o, filters) {
			result = append(result, o)
		}
	}
	return result
}

func matchesFilters(so models.ScoredOffer, filters *models.SearchFilters) bool {
	f := so.Offer
	price := f.Price.Float()

	if filters.PriceMin != nil && price < *filters.PriceMin {
		return false
	}
	if filters.PriceMax != nil && price > *filters.PriceMax {
		return false
	}

	if filters.MaxStops != nil && f.Stops > *filters.MaxStops {
		return false
	}

	if len(filters.Airlines) > 0 && !operatedByAny(f, filters.Airlines) {
		return false
	}

	if !withinTimeOfDay(f.DepartureTime(), filters.DepartureTimeMin, filters.DepartureTimeMax) {
		return false
	}
	if !withinTimeOfDay(f.ArrivalTime(), filters.ArrivalTimeMin, filters.ArrivalTimeMax) {
		return false
	}

	if filters.MaxDuration != nil && f.Duration.TotalMinutes > *filters.MaxDuration {
		return false
	}

	if filters.ExcludeSelfTransfer && f.IsSelfTransfer {
		return false
	}

	if filters.MinScore != nil && so.Score.Score < *filters.MinScore {
		return false
	}

	return true
}

// operatedByAny matches any segment carrier so a stitched itinerary is found
// by either of its airlines.
func operatedByAny(f models.Offer, airlines []string) bool {
	for _, s := range f.Segments {
		for _, airline := range airlines {
			if strings.EqualFold(s.Carrier, airline) {
				return true
			}
		}
	}
	return false
}

// withinTimeOfDay compares wall-clock minutes in the airport's own zone.
// Unparseable bounds are ignored.
func withinTimeOfDay(t time.Time, minStr, maxStr *string) bool {
	minutes := t.Hour()*60 + t.Minute()
	if minStr != nil {
		if lo, err := parseTimeOfDay(*minStr); err == nil && minutes < lo {
			return false
		}
	}
	if maxStr != nil {
		if hi, err := parseTimeOfDay(*maxStr); err == nil && minutes > hi {
			return false
		}
	}
	return true
}

func parseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func applySort(offers []models.ScoredOffer, sortBy, sortOrder string) []models.ScoredOffer {
	if len(offers) == 0 {
		return offers
	}

	order := strings.ToLower(sortOrder)
	// Attribute sorts read naturally smallest first unless desc is explicit.
	ascending := order != "desc"

	switch strings.ToLower(sortBy) {
	case "price":
		stableSort(offers, func(a, b models.ScoredOffer) int {
			return a.Offer.Price.Amount.Cmp(b.Offer.Price.Amount)
		}, ascending)

	case "duration":
		stableSort(offers, func(a, b models.ScoredOffer) int {
			return a.Offer.Duration.TotalMinutes - b.Offer.Duration.TotalMinutes
		}, ascending)

	case "departure":
		stableSort(offers, func(a, b models.ScoredOffer) int {
			return a.Offer.DepartureTime().Compare(b.Offer.DepartureTime())
		}, ascending)

	case "arrival":
		stableSort(offers, func(a, b models.ScoredOffer) int {
			return a.Offer.ArrivalTime().Compare(b.Offer.ArrivalTime())
		}, ascending)

	case "best_value":
		stableSort(offers, func(a, b models.ScoredOffer) int {
			return cmpFloat(a.BestValueScore, b.BestValueScore)
		}, ascending)

	case "stops":
		stableSort(offers, func(a, b models.ScoredOffer) int {
			return a.Offer.Stops - b.Offer.Stops
		}, ascending)

	default:
		// score: best deal first, reversed only on an explicit asc
		ranking.Rank(offers)
		if order == "asc" {
			reverse(offers)
		}
	}

	return offers
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// stableSort sorts by cmp and falls back to the deal ranking on ties.
func stableSort(offers []models.ScoredOffer, cmp func(a, b models.ScoredOffer) int, ascending bool) {
	sort.SliceStable(offers, func(i, j int) bool {
		c := cmp(offers[i], offers[j])
		if !ascending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return ranking.Less(offers[i], offers[j])
	})
}

func reverse(offers []models.ScoredOffer) {
	for i, j := 0, len(offers)-1; i < j; i, j = i+1, j-1 {
		offers[i], offers[j] = offers[j], offers[i]
	}
}
