package pos

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListActive(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "name", "category", "price", "recurring", "interval", "active", "sort_order", "created_at",
	}).
		AddRow("s1", "Six-Week Cellular Energy Reset", "programs", 399900, false, nil, true, 1, created).
		AddRow("s2", "Red Light Monthly Unlimited", "red_light", 19900, true, "month", true, 3002, created)

	mock.ExpectQuery(`SELECT .+ FROM pos_services WHERE active = true`).WillReturnRows(rows)

	services, err := NewRepository(db).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Six-Week Cellular Energy Reset", services[0].Name)
	assert.Empty(t, services[0].Interval)
	assert.Equal(t, "month", services[1].Interval)
	assert.True(t, services[1].Recurring)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateAll(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE pos_services SET active = false`).
		WillReturnResult(sqlmock.NewResult(0, 42))

	require.NoError(t, NewRepository(db).DeactivateAll(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertGeneratesID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO pos_services`).
		WithArgs(sqlmock.AnyArg(), "Red Light Session", "red_light", int64(5000), false, nil, true, 3001).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewRepository(db).Insert(context.Background(), Service{
		Name:      "Red Light Session",
		Category:  "red_light",
		Price:     5000,
		Active:    true,
		SortOrder: 3001,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerList(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM pos_services WHERE active = true`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "category", "price", "recurring", "interval", "active", "sort_order", "created_at",
		}).AddRow("s1", "B12 Injection", "injection_standard", 3500, false, nil, true, 8001, created))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/services", nil)
	NewHandler(NewRepository(db), nil).List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"B12 Injection"`)
	assert.Contains(t, rec.Body.String(), `"price":3500`)
	require.NoError(t, mock.ExpectationsWereMet())
}
