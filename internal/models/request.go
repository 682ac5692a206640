package models

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type SearchFilters struct {
	PriceMin            *float64 `json:"price_min,omitempty"`
	PriceMax            *float64 `json:"price_max,omitempty"`
	MaxStops            *int     `json:"max_stops,omitempty"`
	Airlines            []string `json:"airlines,omitempty"`
	DepartureTimeMin    *string  `json:"departure_time_min,omitempty"`
	DepartureTimeMax    *string  `json:"departure_time_max,omitempty"`
	ArrivalTimeMin      *string  `json:"arrival_time_min,omitempty"`
	ArrivalTimeMax      *string  `json:"arrival_time_max,omitempty"`
	MaxDuration         *int     `json:"max_duration,omitempty"`
	ExcludeSelfTransfer bool     `json:"exclude_self_transfer,omitempty"`
	MinScore            *float64 `json:"min_score,omitempty"`
}

type SearchRequest struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	Adults        int            `json:"adults"`
	Children      int            `json:"children"`
	Infants       int            `json:"infants"`
	CabinClass    string         `json:"cabin_class"`
	Currency      string         `json:"currency"`
	SelfTransfer  bool           `json:"self_transfer"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	SortBy        string         `json:"sort_by,omitempty"`
	SortOrder     string         `json:"sort_order,omitempty"`
}

func (r *SearchRequest) Validate() error {
	r.Origin = strings.ToUpper(strings.TrimSpace(r.Origin))
	r.Destination = strings.ToUpper(strings.TrimSpace(r.Destination))

	if r.Origin == "" {
		return ErrMissingOrigin
	}
	if r.Destination == "" {
		return ErrMissingDestination
	}
	if r.Origin == r.Destination {
		return ErrSameEndpoints
	}
	if r.DepartureDate == "" {
		return ErrMissingDepartureDate
	}
	if _, err := time.Parse(DateLayout, r.DepartureDate); err != nil {
		return ErrInvalidDepartureDate
	}
	if r.Adults <= 0 {
		r.Adults = 1
	}
	if r.Children < 0 {
		r.Children = 0
	}
	if r.Infants < 0 {
		r.Infants = 0
	}
	if r.CabinClass == "" {
		r.CabinClass = "economy"
	}
	r.CabinClass = strings.ToLower(r.CabinClass)
	if r.Currency == "" {
		r.Currency = "USD"
	}
	r.Currency = strings.ToUpper(r.Currency)
	if r.SortBy == "" {
		r.SortBy = "score"
	}
	if r.SortOrder == "" {
		r.SortOrder = "desc"
	}
	return nil
}

func (r SearchRequest) Passengers() int {
	return r.Adults + r.Children + r.Infants
}

func (r SearchRequest) Traveler() TravelerContext {
	return TravelerContext{Adults: r.Adults, Children: r.Children, Infants: r.Infants}
}

// WithLeg returns a copy of r searching origin->destination on date, used for
// one-way hub legs.
func (r SearchRequest) WithLeg(origin, destination, date string) SearchRequest {
	leg := r
	leg.Origin = origin
	leg.Destination = destination
	leg.DepartureDate = date
	leg.Filters = nil
	leg.SelfTransfer = false
	return leg
}

type TravelerContext struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

func (t TravelerContext) HasMinors() bool {
	return t.Children > 0 || t.Infants > 0
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin        ValidationError = "origin is required"
	ErrMissingDestination   ValidationError = "destination is required"
	ErrMissingDepartureDate ValidationError = "departure_date is required"
	ErrInvalidDepartureDate ValidationError = "departure_date must be YYYY-MM-DD"
	ErrSameEndpoints        ValidationError = "origin and destination must differ"
)
