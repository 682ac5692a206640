package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/fareradar/internal/models"
)

var routeCols = []string{"id", "origin", "destination", "departure_date", "cabin_class", "currency", "current_price"}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgres_RebindsPlaceholders(t *testing.T) {
	s, _ := newMockStore(t)
	assert.Equal(t, "UPDATE routes SET current_price = $1 WHERE id = $2",
		s.rebind("UPDATE routes SET current_price = ? WHERE id = ?"))
}

func TestPostgres_Route(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM routes WHERE id = \$1`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(routeCols).AddRow("r1", "BNE", "IST", "2026-12-04", "economy", "USD", 1200.5))
	mock.ExpectQuery(`SELECT .* FROM routes WHERE id = \$1`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows(routeCols))

	r, err := s.Route(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "BNE", r.Origin)
	require.NotNil(t, r.CurrentPrice)
	assert.Equal(t, 1200.5, *r.CurrentPrice)

	_, err = s.Route(context.Background(), "gone")
	assert.True(t, errors.Is(err, ErrRouteNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_HistoryReturnsOldestFirst(t *testing.T) {
	s, mock := newMockStore(t)
	t0 := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM routes WHERE id = \$1`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(routeCols).AddRow("r1", "BNE", "IST", "2026-12-04", "economy", "USD", nil))
	mock.ExpectQuery(`FROM price_history\s+WHERE route_id = \$1\s+ORDER BY observed_at DESC LIMIT \$2`).
		WithArgs("r1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "route_id", "observed_at", "amount", "currency", "score", "explanation"}).
			AddRow("o2", "r1", t0.Add(time.Hour).UnixMilli(), 950.0, "USD", 7.5, nil).
			AddRow("o1", "r1", t0.UnixMilli(), 1000.0, "USD", nil, nil))

	h, err := s.History(context.Background(), "r1", 2)
	require.NoError(t, err)
	require.Len(t, h.Observations, 2)
	assert.Equal(t, "o1", h.Observations[0].ID)
	assert.Equal(t, "o2", h.Observations[1].ID)
	assert.Nil(t, h.Observations[0].Score)
	require.NotNil(t, h.Observations[1].Score)
	assert.Equal(t, 7.5, *h.Observations[1].Score)
	assert.True(t, h.Observations[0].Timestamp.Equal(t0))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateCurrentPrice(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE routes SET current_price = \$1 WHERE id = \$2`).
		WithArgs(880.0, "r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE routes SET current_price = \$1 WHERE id = \$2`).
		WithArgs(880.0, "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.UpdateCurrentPrice(context.Background(), "r1", 880))
	assert.True(t, errors.Is(s.UpdateCurrentPrice(context.Background(), "gone", 880), ErrRouteNotFound))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendSnapshotAssignsID(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2026, 10, 2, 6, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO price_history`).
		WithArgs(sqlmock.AnyArg(), "r1", at.UnixMilli(), 910.0, "USD", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	obs, err := s.AppendSnapshot(context.Background(), models.PriceObservation{
		RouteID:   "r1",
		Timestamp: at,
		Amount:    910,
		Currency:  "USD",
	})
	require.NoError(t, err)
	assert.Len(t, obs.ID, 36)

	require.NoError(t, mock.ExpectationsWereMet())
}
