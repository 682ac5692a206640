package oracle

import (
	"fmt"
	"time"

	"github.com/dharmasatrya/fareradar/internal/models"
)

const assumedSeats = 9

// LegacyStrategy weights seasonality, the booking curve, seat scarcity and
// day of week, without market position. Scores are clamped to [0, 100].
type LegacyStrategy struct {
	calendar Calendar
}

func NewLegacyStrategy(cal Calendar) *LegacyStrategy {
	return &LegacyStrategy{calendar: cal}
}

func (s *LegacyStrategy) Name() string {
	return StrategyLegacy
}

func (s *LegacyStrategy) Assess(offer models.Offer, _ models.MarketStats, now time.Time) (float64, []models.Reason) {
	a := &assessment{score: 50}
	dep := offer.DepartureTime()
	days := daysUntil(dep, now)

	switch {
	case s.calendar.IsPeak(dep.Month()):
		a.add("PEAK_SEASON", 25, models.ImpactMedium, "High season; demand keeps fares up")
	case s.calendar.IsLow(dep.Month()):
		a.add("LOW_SEASON", -15, models.ImpactLow, "Low season; discounts are likely")
	}

	switch {
	case days < 7:
		a.add("LAST_WEEK", 40, models.ImpactHigh, "Final week; fares can jump any time")
	case days < 14:
		a.add("TWO_WEEK_RULE", 30, models.ImpactHigh, "Final two weeks; waiting is risky")
	case days < 30:
		a.add("UNDER_A_MONTH", 15, models.ImpactMedium, "Less than a month to departure")
	case days < 60:
		a.add("SWEET_SPOT", 5, models.ImpactLow, "Inside the usual booking sweet spot")
	case days > 180:
		a.add("TOO_EARLY", -25, models.ImpactLow, "Six months out; promotions are likely")
	case days > 120:
		a.add("PLENTY_OF_TIME", -15, models.ImpactLow, "Four months out; no need to rush")
	}

	seats := offer.SeatsLeft
	if seats <= 0 {
		seats = assumedSeats
	}
	switch {
	case seats <= 3:
		a.add("SEAT_SCARCITY", 30, models.ImpactHigh, fmt.Sprintf("Last %d seats", seats))
	case seats <= 5:
		a.add("SEAT_SCARCITY", 20, models.ImpactMedium, fmt.Sprintf("Only %d seats left", seats))
	case seats <= 9:
		a.add("SEATS_FILLING", 5, models.ImpactLow, "Cabin is filling up")
	}

	switch wd := dep.Weekday(); {
	case isWeekend(wd):
		a.add("WEEKEND", 10, models.ImpactLow, "Weekend departures are usually pricier")
	case isMidweek(wd):
		a.add("MIDWEEK", -10, models.ImpactLow, "Tuesday and Wednesday are usually cheapest")
	}

	return clamp(a.score, 0, 100), a.reasons
}
