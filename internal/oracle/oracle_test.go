package oracle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/fareradar/internal/models"
)

func offerDeparting(dep time.Time, price float64, seats int) models.Offer {
	return models.Offer{
		Segments: []models.Segment{{
			Origin:      "CGK",
			Destination: "DPS",
			Departure:   dep,
			Arrival:     dep.Add(2 * time.Hour),
		}},
		Price:     models.Price{Amount: decimal.NewFromFloat(price), Currency: "USD"},
		SeatsLeft: seats,
	}
}

func codes(reasons []models.Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.Code
	}
	return out
}

func TestForecast_LastMinutePeakWeekendAtFloor(t *testing.T) {
	now := time.Date(2026, 12, 3, 9, 0, 0, 0, time.UTC)
	dep := time.Date(2026, 12, 5, 8, 0, 0, 0, time.UTC) // Saturday
	stats := models.MarketStats{MinPrice: 450, AvgPrice: 600}

	f := New(nil).Forecast(offerDeparting(dep, 450, 0), stats, now)

	assert.Equal(t, models.ActionBuyNow, f.Action)
	assert.True(t, f.Urgent)
	assert.GreaterOrEqual(t, f.RiskScore, 75.0)
	assert.Equal(t, models.TrendRising, f.Trend)
	assert.Equal(t, models.ConfidenceHigh, f.Confidence)
	assert.Equal(t, StrategyGlobal, f.Strategy)
	assert.Subset(t, codes(f.Reasons), []string{"LAST_72_HOURS", "BOTTOM_PRICE", "PEAK_SEASON", "WEEKEND"})
}

func TestForecast_FarOutOverpricedLowSeason(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	dep := time.Date(2027, 3, 9, 8, 0, 0, 0, time.UTC) // Tuesday
	stats := models.MarketStats{MinPrice: 800, AvgPrice: 1000}

	f := New(NewGlobalStrategy(DefaultCalendar())).Forecast(offerDeparting(dep, 1400, 0), stats, now)

	assert.Equal(t, models.ActionWait, f.Action)
	assert.False(t, f.Urgent)
	assert.Equal(t, 1.0, f.RiskScore)
	assert.Equal(t, models.TrendFalling, f.Trend)
	assert.Equal(t, models.ConfidenceHigh, f.Confidence)
	assert.Subset(t, codes(f.Reasons), []string{"TOO_EARLY", "ABOVE_AVERAGE", "LOW_SEASON", "MIDWEEK"})
}

func TestForecast_NeutralIsMonitor(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	dep := time.Date(2026, 11, 12, 8, 0, 0, 0, time.UTC) // Thursday, 72 days out

	f := New(nil).Forecast(offerDeparting(dep, 500, 0), models.MarketStats{}, now)

	assert.Equal(t, models.ActionMonitor, f.Action)
	assert.Equal(t, 40.0, f.RiskScore)
	assert.Equal(t, models.TrendStable, f.Trend)
	assert.Equal(t, models.ConfidenceLow, f.Confidence)
}

func TestGlobal_SeatScarcityScalesWithFewerSeats(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	dep := time.Date(2026, 11, 12, 8, 0, 0, 0, time.UTC)
	s := NewGlobalStrategy(DefaultCalendar())

	four, _ := s.Assess(offerDeparting(dep, 500, 4), models.MarketStats{}, now)
	one, _ := s.Assess(offerDeparting(dep, 500, 1), models.MarketStats{}, now)
	plenty, _ := s.Assess(offerDeparting(dep, 500, 9), models.MarketStats{}, now)

	assert.Equal(t, 40.0, plenty)
	assert.Greater(t, four, plenty)
	assert.Greater(t, one, four)
}

func TestGlobal_BookingCurveBuckets(t *testing.T) {
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	s := NewGlobalStrategy(Calendar{})

	tests := []struct {
		days int
		code string
	}{
		{2, "LAST_72_HOURS"},
		{6, "LAST_WEEK"},
		{12, "TWO_WEEK_RULE"},
		{18, "UNDER_A_MONTH"},
		{45, "IDEAL_WINDOW"},
		{150, "PLENTY_OF_TIME"},
		{200, "TOO_EARLY"},
	}
	for _, tt := range tests {
		dep := now.Add(time.Duration(tt.days) * 24 * time.Hour)
		_, reasons := s.Assess(offerDeparting(dep, 500, 0), models.MarketStats{}, now)
		assert.Contains(t, codes(reasons), tt.code, "days=%d", tt.days)
	}
}

func TestLegacy_ScoresAndClamps(t *testing.T) {
	now := time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)
	dep := time.Date(2026, 12, 5, 8, 0, 0, 0, time.UTC)

	f := New(NewLegacyStrategy(LegacyCalendar())).Forecast(offerDeparting(dep, 450, 2), models.MarketStats{}, now)

	assert.Equal(t, 100.0, f.RiskScore)
	assert.Equal(t, StrategyLegacy, f.Strategy)
	assert.Equal(t, models.ActionBuyNow, f.Action)
	assert.True(t, f.Urgent)
}

func TestLegacy_UnknownSeatsAssumesNine(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	dep := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) // Thursday, 44 days, neutral month

	score, reasons := NewLegacyStrategy(LegacyCalendar()).Assess(offerDeparting(dep, 450, 0), models.MarketStats{}, now)

	assert.Equal(t, 60.0, score)
	assert.Equal(t, []string{"SWEET_SPOT", "SEATS_FILLING"}, codes(reasons))
}

func TestStrategyByName(t *testing.T) {
	s, err := StrategyByName("", DefaultCalendar())
	require.NoError(t, err)
	assert.Equal(t, StrategyGlobal, s.Name())

	s, err = StrategyByName("legacy", LegacyCalendar())
	require.NoError(t, err)
	assert.Equal(t, StrategyLegacy, s.Name())

	_, err = StrategyByName("crystal-ball", DefaultCalendar())
	assert.Error(t, err)
}
