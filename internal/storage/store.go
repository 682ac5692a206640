package storage

import (
	"context"
	"errors"

	"github.com/dharmasatrya/fareradar/internal/models"
)

var ErrRouteNotFound = errors.New("route not found")

// Store persists tracked routes and their price history.
type Store interface {
	Routes(ctx context.Context) ([]models.Route, error)
	Route(ctx context.Context, id string) (models.Route, error)
	// SaveRoute inserts or replaces a route, assigning an id when empty.
	SaveRoute(ctx context.Context, route models.Route) (models.Route, error)
	// History returns at most limit of the newest observations, oldest first.
	// A non-positive limit returns everything.
	History(ctx context.Context, routeID string, limit int) (models.RouteHistory, error)
	AppendSnapshot(ctx context.Context, obs models.PriceObservation) (models.PriceObservation, error)
	UpdateCurrentPrice(ctx context.Context, routeID string, price float64) error
	Close() error
}
