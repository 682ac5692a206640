package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/fareradar/internal/airlines"
	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/internal/timezone"
	"github.com/dharmasatrya/fareradar/pkg/currency"
)

// Normalizer turns provider payloads into canonical offers. It is safe for
// concurrent use and holds no mutable state.
type Normalizer struct {
	airlines *airlines.Table
	logger   logrus.FieldLogger
}

func New(table *airlines.Table, logger logrus.FieldLogger) *Normalizer {
	if table == nil {
		table = airlines.Default()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Normalizer{airlines: table, logger: logger}
}

// NormalizeAll normalizes a batch and reports how many raw offers were dropped.
func (n *Normalizer) NormalizeAll(raws []models.RawOffer) ([]models.Offer, int) {
	offers := make([]models.Offer, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		offer, ok := n.Normalize(raw)
		if !ok {
			dropped++
			continue
		}
		offers = append(offers, offer)
	}
	return offers, dropped
}

// Normalize returns ok=false for offers that cannot be represented: no
// segments, unparseable or non-positive price, missing currency, unparseable
// timestamps or overlapping segments.
func (n *Normalizer) Normalize(raw models.RawOffer) (models.Offer, bool) {
	log := n.logger.WithFields(logrus.Fields{
		"provider": raw.Provider,
		"offer_id": raw.ID,
	})

	if len(raw.Segments) == 0 {
		log.Debug("dropping offer without segments")
		return models.Offer{}, false
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(raw.Price))
	if err != nil || !amount.IsPositive() {
		log.WithField("price", raw.Price).Debug("dropping offer with invalid price")
		return models.Offer{}, false
	}

	code := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if code == "" {
		log.Debug("dropping offer without currency")
		return models.Offer{}, false
	}

	segments := make([]models.Segment, 0, len(raw.Segments))
	for _, rs := range raw.Segments {
		seg, ok := n.segment(rs)
		if !ok {
			log.WithField("flight", rs.Carrier+rs.Number).Debug("dropping offer with unparseable segment")
			return models.Offer{}, false
		}
		segments = append(segments, seg)
	}

	layovers, ok := models.BuildLayovers(segments)
	if !ok {
		log.Debug("dropping offer with overlapping segments")
		return models.Offer{}, false
	}

	carrier := strings.ToUpper(strings.TrimSpace(raw.ValidatingCarrier))
	if carrier == "" {
		carrier = segments[0].Carrier
	}
	info := n.airlines.Lookup(carrier)

	offer := models.Offer{
		ID:        offerID(raw, segments),
		Provider:  raw.Provider,
		Carrier:   carrier,
		Segments:  segments,
		Layovers:  layovers,
		Stops:     len(segments) - 1,
		Duration:  models.NewDuration(ParseISODuration(raw.Duration)),
		Price:     models.Price{Amount: amount, Currency: code, Formatted: currency.Format(amount, code)},
		Baggage:   baggage(raw, info),
		Fare:      models.FareRules{Refundable: flag(raw.Refundable), Changeable: flag(raw.Changeable)},
		Amenities: amenities(raw.Amenities, info),
		SeatsLeft: raw.SeatsLeft,
		Cabin:     cabin(raw.Cabin),
	}

	if err := offer.Validate(); err != nil {
		log.WithError(err).Debug("dropping invalid offer")
		return models.Offer{}, false
	}
	return offer, true
}

func (n *Normalizer) segment(rs models.RawSegment) (models.Segment, bool) {
	origin := strings.ToUpper(strings.TrimSpace(rs.Origin))
	dest := strings.ToUpper(strings.TrimSpace(rs.Destination))
	if origin == "" || dest == "" {
		return models.Segment{}, false
	}

	dep, err := timezone.ParseTimeWithOffset(rs.DepartureAt, origin)
	if err != nil {
		return models.Segment{}, false
	}
	arr, err := timezone.ParseTimeWithOffset(rs.ArrivalAt, dest)
	if err != nil {
		return models.Segment{}, false
	}
	if arr.Before(dep) {
		return models.Segment{}, false
	}

	mins := ParseISODuration(rs.Duration)
	if mins == 0 {
		mins = int(arr.Sub(dep).Minutes())
	}

	carrier := strings.ToUpper(strings.TrimSpace(rs.Carrier))
	name := rs.CarrierName
	if name == "" {
		name = n.airlines.Lookup(carrier).Name
	}

	return models.Segment{
		Origin:          origin,
		Destination:     dest,
		Carrier:         carrier,
		CarrierName:     name,
		FlightNumber:    flightNumber(carrier, rs.Number),
		Departure:       dep,
		Arrival:         arr,
		DurationMinutes: mins,
	}, true
}

func offerID(raw models.RawOffer, segments []models.Segment) string {
	if raw.ID != "" {
		return raw.ID
	}
	first := segments[0]
	return raw.Provider + "-" + first.FlightNumber + "-" + first.Departure.UTC().Format("200601021504")
}

func flightNumber(carrier, number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(strings.ToUpper(number), carrier) {
		return strings.ToUpper(number)
	}
	return carrier + number
}

func baggage(raw models.RawOffer, info airlines.Info) models.Baggage {
	b := models.Baggage{CabinKg: raw.CabinBagKg}
	if b.CabinKg == 0 {
		b.CabinKg = info.CabinKg
	}

	if raw.CheckedBags != nil && (raw.CheckedBags.WeightKg > 0 || raw.CheckedBags.Quantity > 0) {
		b.CheckedKg = raw.CheckedBags.WeightKg
		b.CheckedPieces = raw.CheckedBags.Quantity
		if b.CheckedKg == 0 {
			b.CheckedKg = info.CheckedKg * float64(b.CheckedPieces)
		}
		return b
	}

	b.CheckedKg, b.CheckedPieces = info.DefaultCheckedKg()
	return b
}

func amenities(list []string, info airlines.Info) models.Amenities {
	if list == nil {
		return models.Amenities{Meal: info.Meals}
	}

	var a models.Amenities
	for _, item := range list {
		switch s := strings.ToLower(item); {
		case strings.Contains(s, "wifi"), strings.Contains(s, "wi-fi"):
			a.WiFi = true
		case strings.Contains(s, "power"), strings.Contains(s, "usb"):
			a.Power = true
		case strings.Contains(s, "meal"), strings.Contains(s, "food"):
			a.Meal = true
		}
	}
	return a
}

func cabin(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "economy"
	}
	return s
}

func flag(b *bool) bool {
	return b != nil && *b
}
