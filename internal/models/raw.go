package models

// RawOffer is the loosely typed shape every provider adapter fills before
// normalization. Any field may be missing or malformed.
type RawOffer struct {
	ID                string       `json:"id"`
	Provider          string       `json:"provider"`
	ValidatingCarrier string       `json:"validating_carrier"`
	Price             string       `json:"price"`
	Currency          string       `json:"currency"`
	Duration          string       `json:"duration"`
	Segments          []RawSegment `json:"segments"`
	CheckedBags       *RawBaggage  `json:"checked_bags,omitempty"`
	CabinBagKg        float64      `json:"cabin_bag_kg,omitempty"`
	Refundable        *bool        `json:"refundable,omitempty"`
	Changeable        *bool        `json:"changeable,omitempty"`
	Amenities         []string     `json:"amenities,omitempty"`
	SeatsLeft         int          `json:"seats_left,omitempty"`
	Cabin             string       `json:"cabin,omitempty"`
}

type RawSegment struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Carrier     string `json:"carrier"`
	CarrierName string `json:"carrier_name,omitempty"`
	Number      string `json:"number"`
	DepartureAt string `json:"departure_at"`
	ArrivalAt   string `json:"arrival_at"`
	Duration    string `json:"duration,omitempty"`
}

type RawBaggage struct {
	WeightKg float64 `json:"weight_kg"`
	Quantity int     `json:"quantity"`
}
