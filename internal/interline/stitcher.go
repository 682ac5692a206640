package interline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dharmasatrya/fareradar/internal/metrics"
	"github.com/dharmasatrya/fareradar/internal/models"
)

// OfferSource answers one-way searches; the aggregator satisfies it.
type OfferSource interface {
	SearchOffers(ctx context.Context, req models.SearchRequest) ([]models.Offer, error)
}

type HubSelector interface {
	SelectHubs(origin, destination string) []string
}

const (
	sameDaySuffix = "-D0"
	nextDaySuffix = "-D1"
)

// HubOutcome records what happened at one hub. Err is set when a leg query
// failed; the stitcher moves on to the next hub either way.
type HubOutcome struct {
	Hub                string
	Leg1Offers         int
	Leg2Offers         int
	Accepted           int
	Rejected           int
	CurrencyMismatches int
	ShortCircuited     bool
	Duration           time.Duration
	Err                error
}

func (o HubOutcome) status() string {
	switch {
	case o.Err != nil:
		return "error"
	case o.ShortCircuited:
		return "empty"
	}
	return "ok"
}

type Result struct {
	Offers []models.Offer
	Hubs   []HubOutcome
}

func (r *Result) HubsFailed() int {
	n := 0
	for _, h := range r.Hubs {
		if h.Err != nil {
			n++
		}
	}
	return n
}

type Stitcher struct {
	source   OfferSource
	selector HubSelector
	pacer    Pacer
	window   LayoverWindow
	logger   logrus.FieldLogger
}

func NewStitcher(source OfferSource, selector HubSelector, pacer Pacer, window LayoverWindow, logger logrus.FieldLogger) *Stitcher {
	if pacer == nil {
		pacer = SleepPacer{Delay: 800 * time.Millisecond}
	}
	if window.Max <= 0 {
		window = DefaultLayoverWindow()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Stitcher{
		source:   source,
		selector: selector,
		pacer:    pacer,
		window:   window,
		logger:   logger,
	}
}

// Find builds self-transfer offers through the hubs picked for req. Hubs are
// processed one at a time with the pacer between them.
func (s *Stitcher) Find(ctx context.Context, req models.SearchRequest) *Result {
	result := &Result{Offers: make([]models.Offer, 0)}

	var hubs []string
	for _, hub := range s.selector.SelectHubs(req.Origin, req.Destination) {
		if hub == req.Origin || hub == req.Destination {
			continue
		}
		hubs = append(hubs, hub)
	}

	for i, hub := range hubs {
		if i > 0 {
			if err := s.pacer.Pace(ctx); err != nil {
				s.logger.WithError(err).Warn("stitching interrupted")
				break
			}
		}

		start := time.Now()
		offers, outcome := s.runHub(ctx, req, hub)
		outcome.Duration = time.Since(start)

		log := s.logger.WithFields(logrus.Fields{
			"hub":      hub,
			"origin":   req.Origin,
			"dest":     req.Destination,
			"accepted": outcome.Accepted,
			"rejected": outcome.Rejected,
		})
		if outcome.Err != nil {
			log.WithError(outcome.Err).Warn("hub failed")
		} else {
			log.Debug("hub processed")
		}
		metrics.RecordHub(hub, outcome.status(), outcome.Accepted)

		result.Hubs = append(result.Hubs, outcome)
		result.Offers = append(result.Offers, offers...)
	}

	return result
}

func (s *Stitcher) runHub(ctx context.Context, req models.SearchRequest, hub string) ([]models.Offer, HubOutcome) {
	outcome := HubOutcome{Hub: hub}

	date, err := time.Parse(models.DateLayout, req.DepartureDate)
	if err != nil {
		outcome.Err = fmt.Errorf("parse departure date: %w", err)
		return nil, outcome
	}
	nextDate := date.AddDate(0, 0, 1).Format(models.DateLayout)

	leg1, err := s.source.SearchOffers(ctx, req.WithLeg(req.Origin, hub, req.DepartureDate))
	if err != nil {
		outcome.Err = fmt.Errorf("leg 1 %s-%s: %w", req.Origin, hub, err)
		return nil, outcome
	}
	outcome.Leg1Offers = len(leg1)
	if len(leg1) == 0 {
		outcome.ShortCircuited = true
		return nil, outcome
	}

	var sameDay, nextDay []models.Offer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		offers, err := s.source.SearchOffers(gctx, req.WithLeg(hub, req.Destination, req.DepartureDate))
		if err != nil {
			return fmt.Errorf("leg 2 %s-%s %s: %w", hub, req.Destination, req.DepartureDate, err)
		}
		sameDay = tagIDs(offers, sameDaySuffix)
		return nil
	})
	g.Go(func() error {
		offers, err := s.source.SearchOffers(gctx, req.WithLeg(hub, req.Destination, nextDate))
		if err != nil {
			return fmt.Errorf("leg 2 %s-%s %s: %w", hub, req.Destination, nextDate, err)
		}
		nextDay = tagIDs(offers, nextDaySuffix)
		return nil
	})
	if err := g.Wait(); err != nil {
		outcome.Err = err
		return nil, outcome
	}
	outcome.Leg2Offers = len(sameDay) + len(nextDay)

	var stitched []models.Offer
	leg2 := make([]models.Offer, 0, len(sameDay)+len(nextDay))
	leg2 = append(leg2, sameDay...)
	leg2 = append(leg2, nextDay...)
	for _, l1 := range leg1 {
		for _, l2 := range leg2 {
			offer, err := Stitch(hub, l1, l2, s.window)
			if err != nil {
				outcome.Rejected++
				if errors.Is(err, ErrCurrencyMismatch) {
					outcome.CurrencyMismatches++
				}
				continue
			}
			outcome.Accepted++
			stitched = append(stitched, offer)
		}
	}

	return stitched, outcome
}

func tagIDs(offers []models.Offer, suffix string) []models.Offer {
	tagged := make([]models.Offer, len(offers))
	for i, o := range offers {
		o.ID += suffix
		tagged[i] = o
	}
	return tagged
}
