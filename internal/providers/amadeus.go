package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dharmasatrya/fareradar/internal/models"
)

type AmadeusConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	MaxResults   int
	Timeout      time.Duration
}

func DefaultAmadeusConfig() AmadeusConfig {
	return AmadeusConfig{
		BaseURL:    "https://test.api.amadeus.com",
		MaxResults: 250,
		Timeout:    25 * time.Second,
	}
}

// AmadeusProvider queries the Amadeus flight-offers search API.
type AmadeusProvider struct {
	config AmadeusConfig
	client *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

func NewAmadeusProvider(cfg AmadeusConfig) *AmadeusProvider {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 250
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &AmadeusProvider{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		now:    time.Now,
	}
}

func (p *AmadeusProvider) Name() string {
	return "amadeus"
}

func (p *AmadeusProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.RawOffer, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("originLocationCode", req.Origin)
	q.Set("destinationLocationCode", req.Destination)
	q.Set("departureDate", req.DepartureDate)
	q.Set("adults", strconv.Itoa(max(req.Adults, 1)))
	if req.Children > 0 {
		q.Set("children", strconv.Itoa(req.Children))
	}
	if req.Infants > 0 {
		q.Set("infants", strconv.Itoa(req.Infants))
	}
	if cabin := travelClass(req.CabinClass); cabin != "" {
		q.Set("travelClass", cabin)
	}
	if req.Currency != "" {
		q.Set("currencyCode", req.Currency)
	}
	q.Set("max", strconv.Itoa(p.config.MaxResults))
	q.Set("nonStop", "false")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/v2/shopping/flight-offers?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)

	body, err := p.do(httpReq)
	if err != nil {
		return nil, err
	}

	return parseAmadeusOffers(body), nil
}

func (p *AmadeusProvider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.tokenExpiry.Add(-30*time.Second)) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.config.ClientID)
	form.Set("client_secret", p.config.ClientSecret)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := p.do(httpReq)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}

	res := gjson.ParseBytes(body)
	token := res.Get("access_token").String()
	if token == "" {
		return "", fmt.Errorf("fetch token: %w", ErrUnauthorized)
	}

	p.token = token
	p.tokenExpiry = p.now().Add(time.Duration(res.Get("expires_in").Int()) * time.Second)
	return p.token, nil
}

func (p *AmadeusProvider) do(req *http.Request) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrTemporaryFailure, resp.StatusCode)
	case resp.StatusCode >= 400:
		detail := gjson.GetBytes(body, "errors.0.detail").String()
		return nil, fmt.Errorf("amadeus status %d: %s", resp.StatusCode, detail)
	}
	return body, nil
}

func parseAmadeusOffers(body []byte) []models.RawOffer {
	doc := gjson.ParseBytes(body)
	carriers := doc.Get("dictionaries.carriers")

	var offers []models.RawOffer
	doc.Get("data").ForEach(func(_, o gjson.Result) bool {
		itinerary := o.Get("itineraries.0")

		var segments []models.RawSegment
		itinerary.Get("segments").ForEach(func(_, s gjson.Result) bool {
			carrier := s.Get("carrierCode").String()
			segments = append(segments, models.RawSegment{
				Origin:      s.Get("departure.iataCode").String(),
				Destination: s.Get("arrival.iataCode").String(),
				Carrier:     carrier,
				CarrierName: carriers.Get(carrier).String(),
				Number:      s.Get("number").String(),
				DepartureAt: s.Get("departure.at").String(),
				ArrivalAt:   s.Get("arrival.at").String(),
				Duration:    s.Get("duration").String(),
			})
			return true
		})

		fare := o.Get("travelerPricings.0.fareDetailsBySegment.0")
		raw := models.RawOffer{
			ID:                o.Get("id").String(),
			Provider:          "amadeus",
			ValidatingCarrier: o.Get("validatingAirlineCodes.0").String(),
			Price:             firstNonEmpty(o.Get("price.grandTotal").String(), o.Get("price.total").String()),
			Currency:          o.Get("price.currency").String(),
			Duration:          itinerary.Get("duration").String(),
			Segments:          segments,
			SeatsLeft:         int(o.Get("numberOfBookableSeats").Int()),
			Cabin:             strings.ToLower(fare.Get("cabin").String()),
		}

		if bags := fare.Get("includedCheckedBags"); bags.Exists() {
			raw.CheckedBags = &models.RawBaggage{
				WeightKg: bags.Get("weight").Float(),
				Quantity: int(bags.Get("quantity").Int()),
			}
		}

		fare.Get("amenities").ForEach(func(_, a gjson.Result) bool {
			if a.Get("isChargeable").Bool() {
				return true
			}
			raw.Amenities = append(raw.Amenities, strings.ToLower(a.Get("amenityType").String()+" "+a.Get("description").String()))
			return true
		})

		if v := o.Get("pricingOptions.refundableFare"); v.Exists() {
			b := v.Bool()
			raw.Refundable = &b
		}
		if v := o.Get("pricingOptions.noRestrictionFare"); v.Exists() {
			b := v.Bool()
			raw.Changeable = &b
		}

		offers = append(offers, raw)
		return true
	})

	return offers
}

func travelClass(cabin string) string {
	switch strings.ToLower(cabin) {
	case "economy":
		return "ECONOMY"
	case "premium_economy", "premium economy", "premium":
		return "PREMIUM_ECONOMY"
	case "business":
		return "BUSINESS"
	case "first":
		return "FIRST"
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
