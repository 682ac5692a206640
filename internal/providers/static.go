package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/internal/providers/data"
	"github.com/dharmasatrya/fareradar/internal/timezone"
)

type fixtureFile struct {
	Providers map[string][]fixtureOffer `json:"providers"`
}

type fixtureOffer struct {
	Code              string             `json:"code"`
	ValidatingCarrier string             `json:"validating_carrier"`
	Price             string             `json:"price"`
	Currency          string             `json:"currency"`
	Cabin             string             `json:"cabin"`
	SeatsLeft         int                `json:"seats_left"`
	Refundable        *bool              `json:"refundable"`
	Changeable        *bool              `json:"changeable"`
	Amenities         []string           `json:"amenities"`
	CheckedBags       *models.RawBaggage `json:"checked_bags"`
	CabinBagKg        float64            `json:"cabin_bag_kg"`
	Segments          []fixtureSegment   `json:"segments"`
}

type fixtureSegment struct {
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	Carrier         string `json:"carrier"`
	Number          string `json:"number"`
	Depart          string `json:"depart"`
	DayOffset       int    `json:"day_offset"`
	DurationMinutes int    `json:"duration_minutes"`
}

type StaticConfig struct {
	MinLatency  time.Duration
	MaxLatency  time.Duration
	FailureRate float64
}

// StaticProvider serves daily schedule templates from the embedded fixture
// file, stamped onto whatever date is requested.
type StaticProvider struct {
	name      string
	templates []fixtureOffer
	config    StaticConfig
}

// StaticProviderNames lists the fixture sets available to NewStaticProvider.
func StaticProviderNames() ([]string, error) {
	file, err := loadFixtures()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(file.Providers))
	for name := range file.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func NewStaticProvider(name string, cfg StaticConfig) (*StaticProvider, error) {
	file, err := loadFixtures()
	if err != nil {
		return nil, err
	}
	templates, ok := file.Providers[name]
	if !ok {
		return nil, fmt.Errorf("no fixtures for provider %q", name)
	}
	return &StaticProvider{name: name, templates: templates, config: cfg}, nil
}

func loadFixtures() (fixtureFile, error) {
	var file fixtureFile
	if err := json.Unmarshal(data.Fixtures, &file); err != nil {
		return fixtureFile{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return file, nil
}

func (p *StaticProvider) Name() string {
	return p.name
}

func (p *StaticProvider) Search(ctx context.Context, req models.SearchRequest) ([]models.RawOffer, error) {
	if p.config.MaxLatency > 0 {
		delay := p.config.MinLatency
		if spread := p.config.MaxLatency - p.config.MinLatency; spread > 0 {
			delay += time.Duration(rand.Int63n(int64(spread)))
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if p.config.FailureRate > 0 && rand.Float64() < p.config.FailureRate {
		return nil, ErrTemporaryFailure
	}

	date, err := time.Parse(models.DateLayout, req.DepartureDate)
	if err != nil {
		return nil, fmt.Errorf("parse departure date: %w", err)
	}

	var results []models.RawOffer
	for _, tpl := range p.templates {
		if len(tpl.Segments) == 0 {
			continue
		}
		first, last := tpl.Segments[0], tpl.Segments[len(tpl.Segments)-1]
		if !strings.EqualFold(first.Origin, req.Origin) || !strings.EqualFold(last.Destination, req.Destination) {
			continue
		}
		if req.CabinClass != "" && !strings.EqualFold(tpl.Cabin, req.CabinClass) {
			continue
		}

		offer, err := p.stamp(tpl, date)
		if err != nil {
			continue
		}
		results = append(results, offer)
	}

	return results, nil
}

func (p *StaticProvider) stamp(tpl fixtureOffer, date time.Time) (models.RawOffer, error) {
	segments := make([]models.RawSegment, 0, len(tpl.Segments))
	var firstDep, lastArr time.Time

	for i, s := range tpl.Segments {
		day := date.AddDate(0, 0, s.DayOffset).Format(models.DateLayout)
		local := day + "T" + s.Depart + ":00"

		dep, err := time.ParseInLocation("2006-01-02T15:04:05", local, timezone.GetLocationByAirport(s.Origin))
		if err != nil {
			return models.RawOffer{}, err
		}
		dur := time.Duration(s.DurationMinutes) * time.Minute
		arr := timezone.ConvertToTimezone(dep.Add(dur), s.Destination)

		if i == 0 {
			firstDep = dep
		}
		lastArr = arr

		segments = append(segments, models.RawSegment{
			Origin:      s.Origin,
			Destination: s.Destination,
			Carrier:     s.Carrier,
			Number:      s.Number,
			DepartureAt: local,
			ArrivalAt:   arr.Format(time.RFC3339),
			Duration:    isoDuration(dur),
		})
	}

	return models.RawOffer{
		ID:                p.name + "-" + tpl.Code + "-" + date.Format("20060102"),
		Provider:          p.name,
		ValidatingCarrier: tpl.ValidatingCarrier,
		Price:             tpl.Price,
		Currency:          tpl.Currency,
		Duration:          isoDuration(lastArr.Sub(firstDep)),
		Segments:          segments,
		CheckedBags:       tpl.CheckedBags,
		CabinBagKg:        tpl.CabinBagKg,
		Refundable:        tpl.Refundable,
		Changeable:        tpl.Changeable,
		Amenities:         tpl.Amenities,
		SeatsLeft:         tpl.SeatsLeft,
		Cabin:             tpl.Cabin,
	}, nil
}

func isoDuration(d time.Duration) string {
	mins := int(d.Minutes())
	return fmt.Sprintf("PT%dH%dM", mins/60, mins%60)
}
