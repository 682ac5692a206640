package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

func NewDuration(totalMinutes int) Duration {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	return Duration{
		Hours:        totalMinutes / 60,
		Minutes:      totalMinutes % 60,
		TotalMinutes: totalMinutes,
	}
}

type Segment struct {
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	Carrier         string    `json:"carrier"`
	CarrierName     string    `json:"carrier_name,omitempty"`
	FlightNumber    string    `json:"flight_number"`
	Departure       time.Time `json:"departure"`
	Arrival         time.Time `json:"arrival"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Layover is derived from two consecutive segments, never stored on its own.
type Layover struct {
	Airport         string `json:"airport"`
	DurationMinutes int    `json:"duration_minutes"`
	SelfTransfer    bool   `json:"self_transfer,omitempty"`
}

type Price struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Formatted string          `json:"formatted"`
}

func (p Price) Float() float64 {
	return p.Amount.InexactFloat64()
}

type Baggage struct {
	CheckedKg     float64 `json:"checked_kg"`
	CheckedPieces int     `json:"checked_pieces"`
	CabinKg       float64 `json:"cabin_kg"`
}

func (b Baggage) None() bool {
	return b.CheckedKg == 0 && b.CheckedPieces == 0
}

type FareRules struct {
	Refundable bool `json:"refundable"`
	Changeable bool `json:"changeable"`
}

type Amenities struct {
	WiFi  bool `json:"wifi"`
	Power bool `json:"power"`
	Meal  bool `json:"meal"`
}

type Offer struct {
	ID             string    `json:"id"`
	Provider       string    `json:"provider"`
	Carrier        string    `json:"carrier"`
	Segments       []Segment `json:"segments"`
	Layovers       []Layover `json:"layovers,omitempty"`
	Stops          int       `json:"stops"`
	Duration       Duration  `json:"duration"`
	Price          Price     `json:"price"`
	Baggage        Baggage   `json:"baggage"`
	Fare           FareRules `json:"fare"`
	Amenities      Amenities `json:"amenities"`
	SeatsLeft      int       `json:"seats_left,omitempty"`
	Cabin          string    `json:"cabin"`
	IsSelfTransfer bool      `json:"is_self_transfer"`
	Hub            string    `json:"hub,omitempty"`
}

func (o Offer) Origin() string {
	if len(o.Segments) == 0 {
		return ""
	}
	return o.Segments[0].Origin
}

func (o Offer) Destination() string {
	if len(o.Segments) == 0 {
		return ""
	}
	return o.Segments[len(o.Segments)-1].Destination
}

func (o Offer) DepartureTime() time.Time {
	if len(o.Segments) == 0 {
		return time.Time{}
	}
	return o.Segments[0].Departure
}

func (o Offer) ArrivalTime() time.Time {
	if len(o.Segments) == 0 {
		return time.Time{}
	}
	return o.Segments[len(o.Segments)-1].Arrival
}

var (
	ErrNoSegments       = errors.New("offer has no segments")
	ErrStopsMismatch    = errors.New("stops do not match segment count")
	ErrNegativeLayover  = errors.New("layover duration is negative")
	ErrLayoversMismatch = errors.New("layovers do not match segment gaps")
	ErrNonPositivePrice = errors.New("price must be positive")
)

// Validate checks the structural invariants every offer leaving the core must hold.
func (o Offer) Validate() error {
	if len(o.Segments) == 0 {
		return ErrNoSegments
	}
	if o.Stops != len(o.Segments)-1 {
		return fmt.Errorf("%w: stops=%d segments=%d", ErrStopsMismatch, o.Stops, len(o.Segments))
	}
	if len(o.Layovers) != o.Stops {
		return fmt.Errorf("%w: layovers=%d stops=%d", ErrLayoversMismatch, len(o.Layovers), o.Stops)
	}
	for _, l := range o.Layovers {
		if l.DurationMinutes < 0 {
			return fmt.Errorf("%w at %s", ErrNegativeLayover, l.Airport)
		}
	}
	if !o.Price.Amount.IsPositive() {
		return ErrNonPositivePrice
	}
	return nil
}

// BuildLayovers derives one layover per gap between consecutive segments.
// ok is false when any gap is negative.
func BuildLayovers(segments []Segment) ([]Layover, bool) {
	if len(segments) < 2 {
		return nil, true
	}
	layovers := make([]Layover, 0, len(segments)-1)
	for i := 1; i < len(segments); i++ {
		gap := segments[i].Departure.Sub(segments[i-1].Arrival)
		if gap < 0 {
			return nil, false
		}
		layovers = append(layovers, Layover{
			Airport:         segments[i-1].Destination,
			DurationMinutes: int(gap / time.Minute),
		})
	}
	return layovers, true
}
