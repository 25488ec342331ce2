package health

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"employee-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   error
	calls atomic.Int32
}

func (p *fakePinger) PingContext(ctx context.Context) error {
	p.calls.Add(1)
	return p.err
}

func setup(p Pinger) (*Handler, *metrics.Metrics, http.Handler) {
	m := metrics.NewMock()
	h := NewHandler(p, slog.Default(), m)
	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return h, m, router
}

func TestHealth(t *testing.T) {
	_, _, router := setup(&fakePinger{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		_, m, router := setup(&fakePinger{})

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())

		deps := m.Health.Snapshot()
		require.Len(t, deps, 1)
		assert.Equal(t, "postgres", deps[0].Name)
		assert.True(t, deps[0].Available)
	})

	t.Run("database down", func(t *testing.T) {
		_, m, router := setup(&fakePinger{err: errors.New("connection refused")})

		req := httptest.NewRequest(http.MethodGet, "/ready", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unavailable", body.Status)
		assert.Equal(t, "database unreachable", body.Error)

		deps := m.Health.Snapshot()
		require.Len(t, deps, 1)
		assert.False(t, deps[0].Available)
	})
}

func TestStartChecks(t *testing.T) {
	p := &fakePinger{}
	h, _, _ := setup(p)

	var notified atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.StartChecks(ctx, 5*time.Millisecond, func(err error) {
			assert.NoError(t, err)
			notified.Add(1)
		})
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.calls.Load() >= 2 && notified.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("health checks did not stop after cancel")
	}
}
