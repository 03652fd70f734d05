package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rangemedical/clinic-ops/internal/pos"
)

func signAdminToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	h := New(&Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpointWired(t *testing.T) {
	h := New(&Config{
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("metrics here"))
		}),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics here", rec.Body.String())
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	db, _, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	h := New(&Config{
		AdminAuthSecret: "secret",
		ServicesHandler: pos.NewHandler(pos.NewRepository(db), nil),
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/services", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAcceptValidToken(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM pos_services WHERE active = true`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "category", "price", "recurring", "interval", "active", "sort_order", "created_at",
		}))

	h := New(&Config{
		AdminAuthSecret: "secret",
		ServicesHandler: pos.NewHandler(pos.NewRepository(db), nil),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/services", nil)
	req.Header.Set("Authorization", "Bearer "+signAdminToken(t, "secret"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminRoutesRejectWrongSecret(t *testing.T) {
	db, _, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	h := New(&Config{
		AdminAuthSecret: "secret",
		ServicesHandler: pos.NewHandler(pos.NewRepository(db), nil),
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/services", nil)
	req.Header.Set("Authorization", "Bearer "+signAdminToken(t, "wrong"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRouteReturns404(t *testing.T) {
	h := New(&Config{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}
