package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDB struct {
	err error
}

func (s *stubDB) HealthCheck() error { return s.err }
func (s *stubDB) GetStats() sql.DBStats {
	return sql.DBStats{OpenConnections: 2, InUse: 1, Idle: 1}
}

func healthRouter(db DatabaseChecker, scanners []string) *gin.Engine {
	router := gin.New()
	h := NewHealthHandler(db, func() []string { return scanners }, testConfig(), zap.NewNop())
	h.RegisterRoutes(router.Group(""))
	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	return health
}

func TestHealthCheck_DatabaseDisabled(t *testing.T) {
	router := healthRouter(nil, []string{"serial"})

	rec := get(router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	health := decodeHealth(t, rec)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "serial-discovery", health.Service)
	assert.Equal(t, "disabled", health.Checks["database"].Status)
	assert.Equal(t, "healthy", health.Checks["scanners"].Status)

	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/health/db").Code)
	assert.Equal(t, http.StatusOK, get(router, "/ready").Code)
	assert.Equal(t, http.StatusOK, get(router, "/live").Code)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	router := healthRouter(&stubDB{err: errors.New("connection refused")}, []string{"serial"})

	rec := get(router, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	health := decodeHealth(t, rec)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "connection refused", health.Checks["database"].Message)

	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/health/db").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/ready").Code)
}

func TestHealthCheck_DatabaseUp(t *testing.T) {
	router := healthRouter(&stubDB{}, []string{"serial"})

	rec := get(router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	health := decodeHealth(t, rec)
	assert.Equal(t, "healthy", health.Checks["database"].Status)
	assert.EqualValues(t, 2, health.Checks["database"].Data["open_connections"])

	assert.Equal(t, http.StatusOK, get(router, "/health/db").Code)
}

func TestHealthCheck_NoScanners(t *testing.T) {
	router := healthRouter(nil, nil)

	rec := get(router, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", decodeHealth(t, rec).Status)

	assert.Equal(t, http.StatusServiceUnavailable, get(router, "/ready").Code)
}

func TestHealthCheck_ReportsEventFeedClients(t *testing.T) {
	connections := NewConnectionManager()
	first := &Client{ID: "a", Send: make(chan []byte, 1)}
	connections.Register(first)
	connections.Register(&Client{ID: "b", Send: make(chan []byte, 1)})

	router := gin.New()
	NewHealthHandler(nil, func() []string { return []string{"serial"} }, testConfig(), zap.NewNop()).
		WithConnectionStats(connections.GetStats).
		RegisterRoutes(router.Group(""))

	health := decodeHealth(t, get(router, "/health"))
	assert.Equal(t, "healthy", health.Checks["event_feed"].Status)
	assert.EqualValues(t, 2, health.Checks["event_feed"].Data["clients"])

	connections.Unregister(first)
	health = decodeHealth(t, get(router, "/health"))
	assert.EqualValues(t, 1, health.Checks["event_feed"].Data["clients"])
}

func TestHealthCheck_NoEventFeed(t *testing.T) {
	health := decodeHealth(t, get(healthRouter(nil, []string{"serial"}), "/health"))
	assert.NotContains(t, health.Checks, "event_feed")
}
