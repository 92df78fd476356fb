package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"serial-discovery/internal/config"
	"serial-discovery/internal/discovery"
	"serial-discovery/internal/model"
	"serial-discovery/internal/repository"
	"serial-discovery/internal/service"
	"serial-discovery/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubScanner struct {
	devices []*model.DiscoveredDevice
	err     error
	block   bool
}

func (s *stubScanner) Scan(ctx context.Context) ([]*model.DiscoveredDevice, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.devices, s.err
}

func (s *stubScanner) GetScannerType() string { return "serial" }
func (s *stubScanner) IsAvailable() bool      { return true }

type stubPorts struct {
	ports []model.PortInfo
	err   error
}

func (s *stubPorts) ListPorts(ctx context.Context) ([]model.PortInfo, error) {
	return s.ports, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Database:  config.DatabaseConfig{HistoryLimit: 50},
		Discovery: config.DiscoveryConfig{ScanTimeout: time.Second},
		App:       config.AppConfig{Name: "serial-discovery", Version: "test"},
	}
}

func newTestService(scanner *stubScanner, ports *stubPorts, events service.EventPublisher) *service.DiscoveryService {
	manager := discovery.NewScannerManager(zap.NewNop())
	if scanner != nil {
		manager.RegisterScanner(scanner)
	}
	return service.NewDiscoveryService(
		manager,
		ports,
		repository.NewMemoryScanRunRepository(10),
		events,
		testConfig(),
		zap.NewNop(),
	)
}

func perform(t *testing.T, router http.Handler, path string) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}
