package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"employee-service/internal/config"
	"employee-service/internal/health"
	"employee-service/internal/metrics"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func setupRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	database := bun.NewDB(sqlDB, pgdialect.New())
	t.Cleanup(func() { database.Close() })

	cfg := &config.Config{Server: config.ServerConfig{CORSOrigins: []string{"*"}}}
	m := metrics.NewMock()
	h := health.NewHandler(database, slog.Default(), m)

	return newRouter(cfg, database, nil, h, slog.Default(), m), mock
}

func TestRouter(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		router, _ := setupRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("trailing slash reaches employee list", func(t *testing.T) {
		router, mock := setupRouter(t)

		mock.ExpectQuery(`SELECT .* FROM "employees"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "contact", "created_at", "updated_at"}))

		req := httptest.NewRequest(http.MethodGet, "/employees/", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"No employees found"}`, rec.Body.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		router, mock := setupRouter(t)

		mock.ExpectQuery(`SELECT .* FROM "employees"`).WillReturnError(errors.New("connection reset"))

		req := httptest.NewRequest(http.MethodGet, "/employees", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		router, _ := setupRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/departments", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNewProducer(t *testing.T) {
	m := metrics.NewMock()

	t.Run("disabled", func(t *testing.T) {
		p, err := newProducer(config.EventsConfig{}, slog.Default(), m)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("unknown driver", func(t *testing.T) {
		p, err := newProducer(config.EventsConfig{Driver: "carrier-pigeon"}, slog.Default(), m)
		assert.Error(t, err)
		assert.Nil(t, p)
	})

	t.Run("unreachable nats", func(t *testing.T) {
		p, err := newProducer(config.EventsConfig{
			Driver: "nats",
			NATS:   config.NATSConfig{URL: "nats://127.0.0.1:1", Subject: "employees.events"},
		}, slog.Default(), m)
		assert.Error(t, err)
		assert.Nil(t, p)
	})
}

func TestSetServingStatus(t *testing.T) {
	server, healthServer := newGrpcServer(metrics.NewMock())
	defer server.Stop()

	a := &App{grpcHealth: healthServer, logger: slog.Default()}
	ctx := context.Background()
	req := &grpc_health_v1.HealthCheckRequest{Service: ServiceName}

	a.setServingStatus(errors.New("database down"))
	resp, err := healthServer.Check(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)

	a.setServingStatus(nil)
	resp, err = healthServer.Check(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}
