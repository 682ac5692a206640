package oracle

import (
	"fmt"
	"math"
	"time"

	"github.com/dharmasatrya/fareradar/internal/models"
)

// GlobalStrategy combines the booking curve, market position, seasonality,
// day of week and seat scarcity. Scores are clamped to [1, 99].
type GlobalStrategy struct {
	calendar Calendar
}

func NewGlobalStrategy(cal Calendar) *GlobalStrategy {
	return &GlobalStrategy{calendar: cal}
}

func (s *GlobalStrategy) Name() string {
	return StrategyGlobal
}

func (s *GlobalStrategy) Assess(offer models.Offer, stats models.MarketStats, now time.Time) (float64, []models.Reason) {
	a := &assessment{score: 50}
	dep := offer.DepartureTime()
	days := daysUntil(dep, now)

	switch {
	case days <= 3:
		a.add("LAST_72_HOURS", 45, models.ImpactHigh, "Departure within 72 hours; fares rarely drop now")
	case days <= 7:
		a.add("LAST_WEEK", 40, models.ImpactHigh, "Departure within a week; fares typically climb")
	case days <= 14:
		a.add("TWO_WEEK_RULE", 30, models.ImpactHigh, "Inside the 14-day advance purchase window")
	case days >= 21 && days <= 60:
		a.add("IDEAL_WINDOW", -10, models.ImpactMedium, "Ideal booking window")
	case days > 180:
		a.add("TOO_EARLY", -15, models.ImpactLow, "Too early to tell; fares often soften")
	case days > 120:
		a.add("PLENTY_OF_TIME", -10, models.ImpactLow, "Plenty of time before departure")
	case days < 30:
		a.add("UNDER_A_MONTH", 15, models.ImpactMedium, "Less than a month to departure")
	}

	price := offer.Price.Float()
	if stats.AvgPrice > 0 && stats.MinPrice > 0 {
		fromAvg := (price - stats.AvgPrice) / stats.AvgPrice * 100
		fromMin := (price - stats.MinPrice) / stats.MinPrice * 100

		switch {
		case fromMin <= 2:
			a.add("BOTTOM_PRICE", 20, models.ImpactHigh, "Already at the market floor")
		case fromAvg < -20:
			a.add("BELOW_AVERAGE", 15, models.ImpactMedium, fmt.Sprintf("%.0f%% below the market average", math.Abs(fromAvg)))
		case fromAvg > 30:
			a.add("ABOVE_AVERAGE", -25, models.ImpactHigh, fmt.Sprintf("%.0f%% above the market average; expect a correction", fromAvg))
		}
	}

	switch {
	case s.calendar.IsPeak(dep.Month()):
		a.add("PEAK_SEASON", 25, models.ImpactMedium, "Peak travel season")
	case s.calendar.IsLow(dep.Month()):
		a.add("LOW_SEASON", -10, models.ImpactLow, "Low season")
	}

	switch wd := dep.Weekday(); {
	case isWeekend(wd):
		a.add("WEEKEND", 10, models.ImpactLow, "Weekend departure")
	case isMidweek(wd):
		a.add("MIDWEEK", -10, models.ImpactLow, "Tuesday and Wednesday are usually cheapest")
	}

	if seats := offer.SeatsLeft; seats > 0 && seats < 5 {
		a.add("SEAT_SCARCITY", float64(5-seats)*5, models.ImpactMedium, fmt.Sprintf("Only %d seats left at this fare", seats))
	}

	return clamp(a.score, 1, 99), a.reasons
}
