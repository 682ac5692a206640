package interline

import (
	"errors"
	"fmt"
	"time"

	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/pkg/currency"
)

const ProviderName = "interline"

var (
	ErrLayoverOutOfWindow = errors.New("layover outside connection window")
	ErrCurrencyMismatch   = errors.New("legs priced in different currencies")
	ErrHubMismatch        = errors.New("legs do not meet at the hub")
)

// LayoverWindow bounds the self-transfer connection time, inclusive.
type LayoverWindow struct {
	Min time.Duration
	Max time.Duration
}

func DefaultLayoverWindow() LayoverWindow {
	return LayoverWindow{Min: 4 * time.Hour, Max: 24 * time.Hour}
}

func (w LayoverWindow) Contains(gap time.Duration) bool {
	return gap >= w.Min && gap <= w.Max
}

// Stitch combines leg1 (origin to hub) with leg2 (hub to destination) into a
// single self-transfer offer.
func Stitch(hub string, leg1, leg2 models.Offer, window LayoverWindow) (models.Offer, error) {
	if len(leg1.Segments) == 0 || len(leg2.Segments) == 0 {
		return models.Offer{}, models.ErrNoSegments
	}
	if leg1.Destination() != hub || leg2.Origin() != hub {
		return models.Offer{}, fmt.Errorf("%w: %s->%s via %s", ErrHubMismatch, leg1.Destination(), leg2.Origin(), hub)
	}

	gap := leg2.DepartureTime().Sub(leg1.ArrivalTime())
	if !window.Contains(gap) {
		return models.Offer{}, fmt.Errorf("%w: %s at %s", ErrLayoverOutOfWindow, gap, hub)
	}
	if leg1.Price.Currency != leg2.Price.Currency {
		return models.Offer{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, leg1.Price.Currency, leg2.Price.Currency)
	}

	gapMinutes := int(gap / time.Minute)
	amount := leg1.Price.Amount.Add(leg2.Price.Amount)

	segments := make([]models.Segment, 0, len(leg1.Segments)+len(leg2.Segments))
	segments = append(segments, leg1.Segments...)
	segments = append(segments, leg2.Segments...)

	layovers := make([]models.Layover, 0, len(leg1.Layovers)+len(leg2.Layovers)+1)
	layovers = append(layovers, leg1.Layovers...)
	layovers = append(layovers, models.Layover{Airport: hub, DurationMinutes: gapMinutes, SelfTransfer: true})
	layovers = append(layovers, leg2.Layovers...)

	carrier := leg1.Carrier
	if leg2.Carrier != leg1.Carrier {
		carrier = leg1.Carrier + "/" + leg2.Carrier
	}

	offer := models.Offer{
		ID:        "vi-" + hub + "-" + leg1.ID + "-" + leg2.ID,
		Provider:  ProviderName,
		Carrier:   carrier,
		Segments:  segments,
		Layovers:  layovers,
		Stops:     leg1.Stops + leg2.Stops + 1,
		Duration:  models.NewDuration(legMinutes(leg1) + legMinutes(leg2) + gapMinutes),
		Price:     models.Price{Amount: amount, Currency: leg1.Price.Currency, Formatted: currency.Format(amount, leg1.Price.Currency)},
		Baggage:   minBaggage(leg1.Baggage, leg2.Baggage),
		Fare:      models.FareRules{Refundable: leg1.Fare.Refundable && leg2.Fare.Refundable, Changeable: leg1.Fare.Changeable && leg2.Fare.Changeable},
		Amenities: models.Amenities{WiFi: leg1.Amenities.WiFi && leg2.Amenities.WiFi, Power: leg1.Amenities.Power && leg2.Amenities.Power, Meal: leg1.Amenities.Meal && leg2.Amenities.Meal},
		SeatsLeft: minKnown(leg1.SeatsLeft, leg2.SeatsLeft),
		Cabin:     leg1.Cabin,

		IsSelfTransfer: true,
		Hub:            hub,
	}

	if err := offer.Validate(); err != nil {
		return models.Offer{}, err
	}
	return offer, nil
}

// legMinutes falls back to elapsed wall time when the provider gave no duration.
func legMinutes(o models.Offer) int {
	if o.Duration.TotalMinutes > 0 {
		return o.Duration.TotalMinutes
	}
	return int(o.ArrivalTime().Sub(o.DepartureTime()) / time.Minute)
}

func minBaggage(a, b models.Baggage) models.Baggage {
	return models.Baggage{
		CheckedKg:     min(a.CheckedKg, b.CheckedKg),
		CheckedPieces: min(a.CheckedPieces, b.CheckedPieces),
		CabinKg:       min(a.CabinKg, b.CabinKg),
	}
}

// minKnown treats 0 as unknown.
func minKnown(a, b int) int {
	switch {
	case a <= 0:
		return b
	case b <= 0:
		return a
	}
	return min(a, b)
}
