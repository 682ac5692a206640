package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dharmasatrya/fareradar/internal/models"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore implements Store over database/sql. Queries are written with '?'
// placeholders and rebound for Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d, now: time.Now}
}

func (s *SQLStore) DB() *sql.DB {
	return s.db
}

func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const routeColumns = "id, origin, destination, departure_date, cabin_class, currency, current_price"

func (s *SQLStore) Routes(ctx context.Context) ([]models.Route, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+routeColumns+" FROM routes ORDER BY origin, destination, departure_date")
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, r)
	}
	return routes, rows.Err()
}

func (s *SQLStore) Route(ctx context.Context, id string) (models.Route, error) {
	row := s.db.QueryRowContext(ctx, s.rebind("SELECT "+routeColumns+" FROM routes WHERE id = ?"), id)
	r, err := scanRoute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Route{}, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoute(sc scanner) (models.Route, error) {
	var (
		r       models.Route
		current sql.NullFloat64
	)
	if err := sc.Scan(&r.ID, &r.Origin, &r.Destination, &r.DepartureDate, &r.CabinClass, &r.Currency, &current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("scan route: %w", err)
	}
	if current.Valid {
		v := current.Float64
		r.CurrentPrice = &v
	}
	return r, nil
}

func (s *SQLStore) SaveRoute(ctx context.Context, route models.Route) (models.Route, error) {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}

	var current sql.NullFloat64
	if route.CurrentPrice != nil {
		current = sql.NullFloat64{Float64: *route.CurrentPrice, Valid: true}
	}

	query := s.rebind(`
		INSERT INTO routes (` + routeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			origin = excluded.origin,
			destination = excluded.destination,
			departure_date = excluded.departure_date,
			cabin_class = excluded.cabin_class,
			currency = excluded.currency,
			current_price = excluded.current_price
	`)
	if _, err := s.db.ExecContext(ctx, query,
		route.ID, route.Origin, route.Destination, route.DepartureDate, route.CabinClass, route.Currency, current,
	); err != nil {
		return route, fmt.Errorf("save route %s: %w", route.ID, err)
	}
	return route, nil
}

func (s *SQLStore) History(ctx context.Context, routeID string, limit int) (models.RouteHistory, error) {
	route, err := s.Route(ctx, routeID)
	if err != nil {
		return models.RouteHistory{}, err
	}

	query := `
		SELECT id, route_id, observed_at, amount, currency, score, explanation
		FROM price_history
		WHERE route_id = ?
		ORDER BY observed_at DESC`
	args := []any{routeID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return models.RouteHistory{}, fmt.Errorf("query history %s: %w", routeID, err)
	}
	defer rows.Close()

	var newestFirst []models.PriceObservation
	for rows.Next() {
		var (
			obs         models.PriceObservation
			observedAt  int64
			score       sql.NullFloat64
			explanation sql.NullString
		)
		if err := rows.Scan(&obs.ID, &obs.RouteID, &observedAt, &obs.Amount, &obs.Currency, &score, &explanation); err != nil {
			return models.RouteHistory{}, fmt.Errorf("scan observation: %w", err)
		}
		obs.Timestamp = time.UnixMilli(observedAt).UTC()
		if score.Valid {
			v := score.Float64
			obs.Score = &v
		}
		if explanation.Valid {
			v := explanation.String
			obs.Explanation = &v
		}
		newestFirst = append(newestFirst, obs)
	}
	if err := rows.Err(); err != nil {
		return models.RouteHistory{}, err
	}

	observations := make([]models.PriceObservation, len(newestFirst))
	for i, obs := range newestFirst {
		observations[len(newestFirst)-1-i] = obs
	}
	return models.RouteHistory{
		RouteID:      routeID,
		Currency:     route.Currency,
		Observations: observations,
	}, nil
}

func (s *SQLStore) AppendSnapshot(ctx context.Context, obs models.PriceObservation) (models.PriceObservation, error) {
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	if obs.Timestamp.IsZero() {
		obs.Timestamp = s.now().UTC()
	}

	var (
		score       sql.NullFloat64
		explanation sql.NullString
	)
	if obs.Score != nil {
		score = sql.NullFloat64{Float64: *obs.Score, Valid: true}
	}
	if obs.Explanation != nil {
		explanation = sql.NullString{String: *obs.Explanation, Valid: true}
	}

	query := s.rebind(`
		INSERT INTO price_history (id, route_id, observed_at, amount, currency, score, explanation)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if _, err := s.db.ExecContext(ctx, query,
		obs.ID, obs.RouteID, obs.Timestamp.UnixMilli(), obs.Amount, obs.Currency, score, explanation,
	); err != nil {
		return obs, fmt.Errorf("append snapshot for %s: %w", obs.RouteID, err)
	}
	return obs, nil
}

func (s *SQLStore) UpdateCurrentPrice(ctx context.Context, routeID string, price float64) error {
	res, err := s.db.ExecContext(ctx, s.rebind("UPDATE routes SET current_price = ? WHERE id = ?"), price, routeID)
	if err != nil {
		return fmt.Errorf("update current price %s: %w", routeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRouteNotFound, routeID)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
