package interline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/fareradar/internal/hubs"
	"github.com/dharmasatrya/fareradar/internal/models"
)

var baseDay = time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC)

func leg(id, from, to string, dep time.Time, minutes int, price string) models.Offer {
	seg := models.Segment{
		Origin: from, Destination: to, Carrier: "XX", FlightNumber: "XX" + id,
		Departure: dep, Arrival: dep.Add(time.Duration(minutes) * time.Minute), DurationMinutes: minutes,
	}
	return models.Offer{
		ID:        id,
		Provider:  "test",
		Carrier:   "XX",
		Segments:  []models.Segment{seg},
		Duration:  models.NewDuration(minutes),
		Price:     models.Price{Amount: decimal.RequireFromString(price), Currency: "USD"},
		Baggage:   models.Baggage{CheckedKg: 23, CheckedPieces: 1, CabinKg: 7},
		Fare:      models.FareRules{Refundable: true, Changeable: true},
		Amenities: models.Amenities{WiFi: true, Meal: true},
		Cabin:     "economy",
	}
}

type fakeSource struct {
	mu      sync.Mutex
	offers  map[string][]models.Offer
	errs    map[string]error
	queries []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{offers: map[string][]models.Offer{}, errs: map[string]error{}}
}

func key(from, to, date string) string { return from + "-" + to + "-" + date }

func (f *fakeSource) SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, error) {
	k := key(req.Origin, req.Destination, req.DepartureDate)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, k)
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	return f.offers[k], nil
}

func (f *fakeSource) queried(k string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.queries {
		if q == k {
			return true
		}
	}
	return false
}

type staticHubs []string

func (s staticHubs) SelectHubs(origin, destination string) []string { return s }

type countingPacer struct{ calls int }

func (p *countingPacer) Pace(ctx context.Context) error {
	p.calls++
	return nil
}

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func bneIstRequest() models.SearchRequest {
	return models.SearchRequest{Origin: "BNE", Destination: "IST", DepartureDate: "2026-11-20", Adults: 1}
}

func TestFind_OceaniaToIstanbulViaKualaLumpur(t *testing.T) {
	src := newFakeSource()
	src.offers[key("BNE", "KUL", "2026-11-20")] = []models.Offer{leg("D7207", "BNE", "KUL", baseDay.Add(2*time.Hour), 540, "289")}
	// Leg 1 lands 11:00 UTC; leg 2 leaves 19:00 UTC, an 8 hour layover.
	src.offers[key("KUL", "IST", "2026-11-20")] = []models.Offer{leg("OD1", "KUL", "IST", baseDay.Add(19*time.Hour), 735, "410")}

	pacer := &countingPacer{}
	s := NewStitcher(src, hubs.NewRouter(hubs.DefaultTable(), 3), pacer, DefaultLayoverWindow(), quiet())

	result := s.Find(context.Background(), bneIstRequest())

	require.Len(t, result.Offers, 1)
	offer := result.Offers[0]
	assert.Equal(t, "vi-KUL-D7207-OD1-D0", offer.ID)
	assert.True(t, offer.IsSelfTransfer)
	assert.Equal(t, "KUL", offer.Hub)
	assert.Equal(t, 1, offer.Stops)
	assert.Equal(t, "699", offer.Price.Amount.String())
	assert.Equal(t, 540+735+480, offer.Duration.TotalMinutes)
	require.Len(t, offer.Layovers, 1)
	assert.Equal(t, models.Layover{Airport: "KUL", DurationMinutes: 480, SelfTransfer: true}, offer.Layovers[0])
	assert.NoError(t, offer.Validate())

	require.Len(t, result.Hubs, 3)
	assert.Equal(t, []string{"KUL", "SIN", "DMK"}, []string{result.Hubs[0].Hub, result.Hubs[1].Hub, result.Hubs[2].Hub})
	assert.Equal(t, 1, result.Hubs[0].Accepted)
	assert.True(t, result.Hubs[1].ShortCircuited)
	assert.Equal(t, 2, pacer.calls)
}

func TestFind_EmptyLeg1SkipsLeg2Queries(t *testing.T) {
	src := newFakeSource()
	s := NewStitcher(src, staticHubs{"SIN"}, &countingPacer{}, DefaultLayoverWindow(), quiet())

	result := s.Find(context.Background(), bneIstRequest())

	assert.Empty(t, result.Offers)
	require.Len(t, result.Hubs, 1)
	assert.True(t, result.Hubs[0].ShortCircuited)
	assert.False(t, src.queried(key("SIN", "IST", "2026-11-20")))
	assert.False(t, src.queried(key("SIN", "IST", "2026-11-21")))
}

func TestFind_HubFailureDoesNotStopOtherHubs(t *testing.T) {
	src := newFakeSource()
	src.errs[key("BNE", "SIN", "2026-11-20")] = errors.New("rate limited")
	src.offers[key("BNE", "DMK", "2026-11-20")] = []models.Offer{leg("A", "BNE", "DMK", baseDay, 600, "300")}
	src.errs[key("DMK", "IST", "2026-11-21")] = errors.New("timeout")
	src.offers[key("BNE", "KUL", "2026-11-20")] = []models.Offer{leg("B", "BNE", "KUL", baseDay, 540, "289")}
	src.offers[key("KUL", "IST", "2026-11-20")] = []models.Offer{leg("C", "KUL", "IST", baseDay.Add(15*time.Hour), 735, "410")}

	s := NewStitcher(src, staticHubs{"SIN", "DMK", "KUL"}, &countingPacer{}, DefaultLayoverWindow(), quiet())
	result := s.Find(context.Background(), bneIstRequest())

	assert.Equal(t, 2, result.HubsFailed())
	require.Len(t, result.Hubs, 3)
	assert.Error(t, result.Hubs[0].Err)
	assert.Error(t, result.Hubs[1].Err, "a failed leg-2 query fails the hub")
	require.Len(t, result.Offers, 1)
	assert.Equal(t, "vi-KUL-B-C-D0", result.Offers[0].ID)
}

func TestFind_NextDayLegsCarrySuffix(t *testing.T) {
	src := newFakeSource()
	// Leg 1 lands 22:00 UTC; the only viable onward flight leaves the next morning.
	src.offers[key("BNE", "KUL", "2026-11-20")] = []models.Offer{leg("L1", "BNE", "KUL", baseDay.Add(13*time.Hour), 540, "289")}
	src.offers[key("KUL", "IST", "2026-11-20")] = []models.Offer{leg("X", "KUL", "IST", baseDay.Add(23*time.Hour), 735, "410")}
	src.offers[key("KUL", "IST", "2026-11-21")] = []models.Offer{leg("X", "KUL", "IST", baseDay.Add(32*time.Hour), 735, "400")}

	s := NewStitcher(src, staticHubs{"KUL"}, &countingPacer{}, DefaultLayoverWindow(), quiet())
	result := s.Find(context.Background(), bneIstRequest())

	require.Len(t, result.Offers, 1)
	assert.Equal(t, "vi-KUL-L1-X-D1", result.Offers[0].ID)
	assert.Equal(t, 1, result.Hubs[0].Rejected)
}

func TestFind_SkipsHubsEqualToEndpoints(t *testing.T) {
	src := newFakeSource()
	pacer := &countingPacer{}
	s := NewStitcher(src, staticHubs{"BNE", "IST"}, pacer, DefaultLayoverWindow(), quiet())

	result := s.Find(context.Background(), bneIstRequest())

	assert.Empty(t, result.Hubs)
	assert.Zero(t, pacer.calls)
}

func TestFind_CancelledPacerStopsLoop(t *testing.T) {
	src := newFakeSource()
	stop := PacerFunc(func(ctx context.Context) error { return context.Canceled })
	s := NewStitcher(src, staticHubs{"KUL", "SIN", "DMK"}, stop, DefaultLayoverWindow(), quiet())

	result := s.Find(context.Background(), bneIstRequest())
	assert.Len(t, result.Hubs, 1)
}

func TestStitch_RejectsCurrencyMismatch(t *testing.T) {
	l1 := leg("A", "BNE", "KUL", baseDay, 540, "289")
	l2 := leg("B", "KUL", "IST", baseDay.Add(17*time.Hour), 735, "1500")
	l2.Price.Currency = "MYR"

	_, err := Stitch("KUL", l1, l2, DefaultLayoverWindow())
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	src := newFakeSource()
	src.offers[key("BNE", "KUL", "2026-11-20")] = []models.Offer{l1}
	src.offers[key("KUL", "IST", "2026-11-20")] = []models.Offer{l2}
	result := NewStitcher(src, staticHubs{"KUL"}, &countingPacer{}, DefaultLayoverWindow(), quiet()).Find(context.Background(), bneIstRequest())
	assert.Empty(t, result.Offers)
	assert.Equal(t, 1, result.Hubs[0].CurrencyMismatches)
}

func TestStitch_RejectsLegsNotMeetingAtHub(t *testing.T) {
	l1 := leg("A", "BNE", "SIN", baseDay, 540, "289")
	l2 := leg("B", "KUL", "IST", baseDay.Add(17*time.Hour), 735, "410")

	_, err := Stitch("KUL", l1, l2, DefaultLayoverWindow())
	assert.ErrorIs(t, err, ErrHubMismatch)
}

func TestStitch_PessimisticMerge(t *testing.T) {
	l1 := leg("A", "BNE", "KUL", baseDay, 540, "289.50")
	l1.SeatsLeft = 7
	l2 := leg("B", "KUL", "IST", baseDay.Add(16*time.Hour), 735, "410.25")
	l2.Baggage = models.Baggage{CabinKg: 7}
	l2.Fare.Refundable = false
	l2.Amenities.WiFi = false
	l2.Carrier = "OD"

	offer, err := Stitch("KUL", l1, l2, DefaultLayoverWindow())
	require.NoError(t, err)

	assert.Equal(t, "699.75", offer.Price.Amount.String())
	assert.Equal(t, "$699.75", offer.Price.Formatted)
	assert.True(t, offer.Baggage.None())
	assert.False(t, offer.Fare.Refundable)
	assert.True(t, offer.Fare.Changeable)
	assert.False(t, offer.Amenities.WiFi)
	assert.True(t, offer.Amenities.Meal)
	assert.Equal(t, 7, offer.SeatsLeft)
	assert.Equal(t, "XX/OD", offer.Carrier)
}

// Every accepted pair respects the window and the structural invariants;
// every rejected pair falls outside the window.
func TestStitch_LayoverWindowProperty(t *testing.T) {
	window := DefaultLayoverWindow()
	l1 := leg("A", "BNE", "KUL", baseDay, 540, "289")
	l1Arrival := l1.ArrivalTime()

	for offset := -120; offset <= 30*60; offset += 15 {
		t.Run(fmt.Sprintf("gap_%dm", offset), func(t *testing.T) {
			l2 := leg("B", "KUL", "IST", l1Arrival.Add(time.Duration(offset)*time.Minute), 735, "410")
			gap := time.Duration(offset) * time.Minute

			offer, err := Stitch("KUL", l1, l2, window)
			if gap < 4*time.Hour || gap > 24*time.Hour {
				assert.ErrorIs(t, err, ErrLayoverOutOfWindow)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, offer.Validate())
			assert.Equal(t, l1.Stops+l2.Stops+1, offer.Stops)
			assert.True(t, offer.Price.Amount.Equal(l1.Price.Amount.Add(l2.Price.Amount)))
			assert.Equal(t, offset, offer.Layovers[0].DurationMinutes)
			assert.True(t, offer.IsSelfTransfer)
		})
	}
}

func TestSleepPacer(t *testing.T) {
	assert.NoError(t, SleepPacer{Delay: time.Millisecond}.Pace(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepPacer{Delay: time.Hour}.Pace(ctx), context.Canceled)
}
