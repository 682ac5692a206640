package models

import "time"

type Route struct {
	ID            string   `json:"id"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureDate string   `json:"departure_date"`
	CabinClass    string   `json:"cabin_class"`
	Currency      string   `json:"currency"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
}

func (r Route) SearchRequest() SearchRequest {
	return SearchRequest{
		Origin:        r.Origin,
		Destination:   r.Destination,
		DepartureDate: r.DepartureDate,
		Adults:        1,
		CabinClass:    r.CabinClass,
		Currency:      r.Currency,
		SelfTransfer:  true,
	}
}

// PriceObservation is one collected price for a route. Score and Explanation
// are set when an external evaluation step judged the snapshot.
type PriceObservation struct {
	ID          string    `json:"id"`
	RouteID     string    `json:"route_id"`
	Timestamp   time.Time `json:"timestamp"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	Score       *float64  `json:"score,omitempty"`
	Explanation *string   `json:"explanation,omitempty"`
}

type RouteHistory struct {
	RouteID      string             `json:"route_id"`
	Currency     string             `json:"currency"`
	Observations []PriceObservation `json:"observations"`
}

func (h RouteHistory) Amounts() []float64 {
	out := make([]float64, len(h.Observations))
	for i, o := range h.Observations {
		out[i] = o.Amount
	}
	return out
}

// Latest returns the observation with the newest timestamp regardless of slice order.
func (h RouteHistory) Latest() (PriceObservation, bool) {
	if len(h.Observations) == 0 {
		return PriceObservation{}, false
	}
	latest := h.Observations[0]
	for _, o := range h.Observations[1:] {
		if o.Timestamp.After(latest.Timestamp) {
			latest = o
		}
	}
	return latest, true
}
