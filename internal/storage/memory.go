package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/fareradar/internal/models"
)

type MemoryStore struct {
	mu      sync.RWMutex
	routes  map[string]models.Route
	history map[string][]models.PriceObservation
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:  make(map[string]models.Route),
		history: make(map[string][]models.PriceObservation),
		now:     time.Now,
	}
}

func (m *MemoryStore) Routes(_ context.Context) ([]models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	routes := make([]models.Route, 0, len(m.routes))
	for _, r := range m.routes {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Origin != routes[j].Origin {
			return routes[i].Origin < routes[j].Origin
		}
		if routes[i].Destination != routes[j].Destination {
			return routes[i].Destination < routes[j].Destination
		}
		return routes[i].DepartureDate < routes[j].DepartureDate
	})
	return routes, nil
}

func (m *MemoryStore) Route(_ context.Context, id string) (models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.routes[id]
	if !ok {
		return models.Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	return r, nil
}

func (m *MemoryStore) SaveRoute(_ context.Context, route models.Route) (models.Route, error) {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes[route.ID] = route
	return route, nil
}

func (m *MemoryStore) History(_ context.Context, routeID string, limit int) (models.RouteHistory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	route, ok := m.routes[routeID]
	if !ok {
		return models.RouteHistory{}, fmt.Errorf("%w: %s", ErrRouteNotFound, routeID)
	}

	obs := append([]models.PriceObservation(nil), m.history[routeID]...)
	sort.SliceStable(obs, func(i, j int) bool {
		return obs[i].Timestamp.Before(obs[j].Timestamp)
	})
	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
	}
	return models.RouteHistory{RouteID: routeID, Currency: route.Currency, Observations: obs}, nil
}

func (m *MemoryStore) AppendSnapshot(_ context.Context, obs models.PriceObservation) (models.PriceObservation, error) {
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	if obs.Timestamp.IsZero() {
		obs.Timestamp = m.now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.routes[obs.RouteID]; !ok {
		return obs, fmt.Errorf("%w: %s", ErrRouteNotFound, obs.RouteID)
	}
	m.history[obs.RouteID] = append(m.history[obs.RouteID], obs)
	return obs, nil
}

func (m *MemoryStore) UpdateCurrentPrice(_ context.Context, routeID string, price float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.routes[routeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRouteNotFound, routeID)
	}
	r.CurrentPrice = &price
	m.routes[routeID] = r
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
