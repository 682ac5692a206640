package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dharmasatrya/fareradar/internal/aggregator"
	"github.com/dharmasatrya/fareradar/internal/anomaly"
	"github.com/dharmasatrya/fareradar/internal/cache"
	"github.com/dharmasatrya/fareradar/internal/filter"
	"github.com/dharmasatrya/fareradar/internal/interline"
	"github.com/dharmasatrya/fareradar/internal/market"
	"github.com/dharmasatrya/fareradar/internal/metrics"
	"github.com/dharmasatrya/fareradar/internal/models"
	"github.com/dharmasatrya/fareradar/internal/oracle"
	"github.com/dharmasatrya/fareradar/internal/ranking"
	"github.com/dharmasatrya/fareradar/internal/scoring"
	"github.com/dharmasatrya/fareradar/internal/storage"
)

const (
	StatusOK       = "ok"
	StatusNoOffers = "no_offers"
)

// ErrNoOffers is returned by RecordSnapshot when a route currently has no
// bookable offer to record.
var ErrNoOffers = errors.New("no offers found")

type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*aggregator.Result, error)
}

type Interliner interface {
	Find(ctx context.Context, req models.SearchRequest) *interline.Result
}

// Deps wires the service. Stitcher, Cache, Store and Logger are optional.
type Deps struct {
	Searcher Searcher
	Stitcher Interliner
	Scorer   *scoring.Scorer
	Oracle   *oracle.Oracle
	Detector *anomaly.Detector
	Cache    cache.Cache
	Store    storage.Store
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

type Service struct {
	searcher Searcher
	stitcher Interliner
	scorer   *scoring.Scorer
	oracle   *oracle.Oracle
	detector *anomaly.Detector
	cache    cache.Cache
	store    storage.Store
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		searcher: d.Searcher,
		stitcher: d.Stitcher,
		scorer:   d.Scorer,
		oracle:   d.Oracle,
		detector: d.Detector,
		cache:    d.Cache,
		store:    d.Store,
		logger:   d.Logger,
		now:      d.Now,
	}
	if s.scorer == nil {
		s.scorer = scoring.NewScorer(scoring.DefaultWeights())
	}
	if s.oracle == nil {
		s.oracle = oracle.New(nil)
	}
	if s.detector == nil {
		s.detector = anomaly.NewDetector(anomaly.DefaultPolicy())
	}
	if s.cache == nil {
		s.cache = cache.NewNoOpCache()
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SearchAndScore runs the full search for req: provider fan-out, optional
// self-transfer stitching, market statistics, scoring, forecasting, then
// filtering and ranking. Only an invalid request is an error; a search that
// finds nothing reports StatusNoOffers.
func (s *Service) SearchAndScore(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := s.now()

	entry, hit := s.cache.Get(ctx, req)
	if !hit {
		entry = s.search(ctx, req)
		if len(entry.Offers) > 0 {
			if err := s.cache.Set(ctx, req, entry); err != nil {
				s.logger.WithError(err).Warn("cache write failed")
			}
		}
	}

	offers := filter.Apply(entry.Offers, req.Filters, req.SortBy, req.SortOrder)

	meta := entry.Metadata
	meta.SearchID = uuid.NewString()
	meta.TotalResults = len(offers)
	meta.CacheHit = hit
	elapsed := s.now().Sub(start)
	meta.SearchTimeMs = elapsed.Milliseconds()

	status := StatusOK
	if len(entry.Offers) == 0 {
		status = StatusNoOffers
	}
	metrics.RecordSearch(status, hit, elapsed)

	s.logger.WithFields(logrus.Fields{
		"search_id": meta.SearchID,
		"origin":    req.Origin,
		"dest":      req.Destination,
		"date":      req.DepartureDate,
		"results":   meta.TotalResults,
		"cache_hit": hit,
		"status":    status,
	}).Info("search completed")

	return &models.SearchResponse{
		Status:         status,
		SearchCriteria: models.NewSearchCriteria(req),
		Metadata:       meta,
		Market:         entry.Market,
		Offers:         offers,
	}, nil
}

func (s *Service) search(ctx context.Context, req models.SearchRequest) *cache.Entry {
	entry := &cache.Entry{Offers: make([]models.ScoredOffer, 0)}

	direct, err := s.searcher.Search(ctx, req)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"origin": req.Origin,
			"dest":   req.Destination,
		}).Warn("direct search returned no provider results")
	}
	var offers []models.Offer
	if direct != nil {
		offers = append(offers, direct.Offers...)
		entry.Metadata.ProvidersQueried = direct.ProvidersQueried
		entry.Metadata.ProvidersSucceeded = direct.ProvidersSucceeded
		entry.Metadata.ProvidersFailed = direct.ProvidersFailed
		entry.Metadata.FailedProviders = direct.FailedProviders
		entry.Metadata.OffersDropped = direct.Dropped
	}

	if req.SelfTransfer && s.stitcher != nil {
		stitched := s.stitcher.Find(ctx, req)
		offers = append(offers, stitched.Offers...)
		for _, h := range stitched.Hubs {
			entry.Metadata.HubsTried = append(entry.Metadata.HubsTried, h.Hub)
		}
		entry.Metadata.HubsFailed = stitched.HubsFailed()
		entry.Metadata.SelfTransferOffers = len(stitched.Offers)
	}

	if len(offers) == 0 {
		return entry
	}

	byCurrency := statsByCurrency(offers)
	entry.Market = primaryStats(byCurrency, req.Currency)

	now := s.now()
	traveler := req.Traveler()
	for _, o := range offers {
		stats := byCurrency[o.Price.Currency]
		forecast := s.oracle.Forecast(o, stats, now)
		entry.Offers = append(entry.Offers, models.ScoredOffer{
			Offer:    o,
			Score:    s.scorer.Score(o, stats, traveler),
			Forecast: &forecast,
		})
	}
	entry.Offers = ranking.CalculateScores(entry.Offers)
	ranking.Rank(entry.Offers)

	return entry
}

// statsByCurrency keeps prices in different currencies out of each other's
// market.
func statsByCurrency(offers []models.Offer) map[string]models.MarketStats {
	groups := make(map[string][]models.Offer)
	for _, o := range offers {
		groups[o.Price.Currency] = append(groups[o.Price.Currency], o)
	}
	stats := make(map[string]models.MarketStats, len(groups))
	for cur, group := range groups {
		stats[cur] = market.ComputeStats(group)
	}
	return stats
}

// primaryStats picks the market reported with the response: the largest
// currency group, preferring the requested currency on ties.
func primaryStats(byCurrency map[string]models.MarketStats, preferred string) models.MarketStats {
	currencies := make([]string, 0, len(byCurrency))
	for cur := range byCurrency {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)

	best := ""
	for _, cur := range currencies {
		if best == "" {
			best = cur
			continue
		}
		n, m := byCurrency[cur].TotalFlights, byCurrency[best].TotalFlights
		if n > m || (n == m && cur == preferred) {
			best = cur
		}
	}
	return byCurrency[best]
}

// AnalyzeRoute judges a tracked route's current price against its history.
// The current price is the route's stored price, or the newest observation.
func (s *Service) AnalyzeRoute(ctx context.Context, routeID string) (models.AnalysisResult, error) {
	if s.store == nil {
		return models.AnalysisResult{}, errors.New("no route store configured")
	}

	route, err := s.store.Route(ctx, routeID)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	history, err := s.store.History(ctx, routeID, s.detector.Policy().Window)
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("load history: %w", err)
	}

	current := 0.0
	if route.CurrentPrice != nil {
		current = *route.CurrentPrice
	} else if latest, ok := history.Latest(); ok {
		current = latest.Amount
	}

	result := s.detector.Analyze(history, current)
	metrics.RecordAnalysis(result.HasEnoughData, result.IsAnomaly)

	log := s.logger.WithFields(logrus.Fields{
		"route_id":     routeID,
		"observations": result.Observations,
		"current":      current,
	})
	if result.IsAnomaly {
		log.WithField("drop_percent", result.DropPercent).Info(result.Explanation)
	} else {
		log.Debug("route analysed")
	}
	return result, nil
}

// RecordSnapshot searches a tracked route fresh, appends its cheapest price to
// the route history, stores it as the current price and analyses the result.
func (s *Service) RecordSnapshot(ctx context.Context, routeID string) (models.AnalysisResult, error) {
	if s.store == nil {
		return models.AnalysisResult{}, errors.New("no route store configured")
	}

	route, err := s.store.Route(ctx, routeID)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	req := route.SearchRequest()
	if err := req.Validate(); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("route %s: %w", routeID, err)
	}
	entry := s.search(ctx, req)

	cheapest, ok := cheapestIn(entry.Offers, route.Currency)
	if !ok {
		return models.AnalysisResult{}, fmt.Errorf("%w for route %s", ErrNoOffers, routeID)
	}
	price := cheapest.Price.Float()

	if _, err := s.store.AppendSnapshot(ctx, models.PriceObservation{
		RouteID:   routeID,
		Timestamp: s.now().UTC(),
		Amount:    price,
		Currency:  cheapest.Price.Currency,
	}); err != nil {
		return models.AnalysisResult{}, err
	}
	if err := s.store.UpdateCurrentPrice(ctx, routeID, price); err != nil {
		return models.AnalysisResult{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"route_id": routeID,
		"offer_id": cheapest.ID,
		"price":    cheapest.Price.Formatted,
	}).Info("snapshot recorded")

	return s.AnalyzeRoute(ctx, routeID)
}

// cheapestIn returns the lowest-priced offer in currency.
func cheapestIn(offers []models.ScoredOffer, currency string) (models.Offer, bool) {
	var (
		best  models.Offer
		found bool
	)
	for _, so := range offers {
		o := so.Offer
		if o.Price.Currency != currency {
			continue
		}
		if !found || o.Price.Amount.LessThan(best.Price.Amount) {
			best, found = o, true
		}
	}
	return best, found
}
