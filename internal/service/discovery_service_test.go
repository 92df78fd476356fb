package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"serial-discovery/internal/config"
	"serial-discovery/internal/discovery"
	"serial-discovery/internal/model"
	"serial-discovery/internal/repository"
)

type fakeScanner struct {
	devices []*model.DiscoveredDevice
	err     error
	block   bool
}

func (f *fakeScanner) Scan(ctx context.Context) ([]*model.DiscoveredDevice, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.devices, f.err
}

func (f *fakeScanner) GetScannerType() string { return ScanTypeSerial }
func (f *fakeScanner) IsAvailable() bool      { return true }

type fakePorts struct {
	ports []model.PortInfo
	err   error
}

func (f *fakePorts) ListPorts(ctx context.Context) ([]model.PortInfo, error) {
	return f.ports, f.err
}

type recordedEvents struct {
	mu     sync.Mutex
	events []model.DiscoveryEvent
}

func (r *recordedEvents) Publish(event model.DiscoveryEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordedEvents) types() []model.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]model.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

type failingRepo struct {
	repository.ScanRunRepository
}

func (failingRepo) Create(ctx context.Context, run *model.ScanRun) error {
	return errors.New("disk full")
}

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			HistoryLimit:     2,
			HistoryRetention: time.Hour,
		},
		Discovery: config.DiscoveryConfig{ScanTimeout: time.Second},
	}
}

type fixture struct {
	service *DiscoveryService
	scanner *fakeScanner
	ports   *fakePorts
	history repository.ScanRunRepository
	events  *recordedEvents
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		scanner: &fakeScanner{},
		ports:   &fakePorts{},
		history: repository.NewMemoryScanRunRepository(10),
		events:  &recordedEvents{},
	}

	manager := discovery.NewScannerManager(zap.NewNop())
	manager.RegisterScanner(f.scanner)

	f.service = NewDiscoveryService(manager, f.ports, f.history, f.events, testConfig(), zap.NewNop())
	return f
}

func serialDevice(path string) *model.DiscoveredDevice {
	return &model.DiscoveredDevice{
		ConnectionType: model.ConnectionTypeSerial,
		Port:           &model.PortInfo{Path: path},
	}
}

func TestScanDevices_RecordsRunAndPublishesEvents(t *testing.T) {
	f := newFixture(t)
	f.scanner.devices = []*model.DiscoveredDevice{serialDevice("/dev/ttyUSB0")}

	result, err := f.service.ScanDevices(context.Background(), &ScanRequest{ScanType: "serial"})
	require.NoError(t, err)
	assert.Equal(t, "serial", result.ScanType)
	assert.Equal(t, 1, result.DevicesFound)
	assert.NotEqual(t, uuid.Nil, result.RunID)

	run, err := f.service.GetRun(context.Background(), result.RunID.String())
	require.NoError(t, err)
	assert.True(t, run.Succeeded())
	assert.Equal(t, 1, run.DevicesFound)

	assert.Equal(t, []model.EventType{model.EventDiscoveryStarted, model.EventDiscoveryCompleted}, f.events.types())
}

func TestScanDevices_DefaultsToAll(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.ScanDevices(context.Background(), &ScanRequest{})
	require.NoError(t, err)
	assert.Equal(t, ScanTypeAll, result.ScanType)
	assert.NotNil(t, result.Devices)
	assert.Empty(t, result.Devices)
}

func TestScanDevices_RejectsBadInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ScanDevices(context.Background(), &ScanRequest{ScanType: "usb"})
	assert.ErrorIs(t, err, ErrInvalidScanType)

	_, err = f.service.ScanDevices(context.Background(), &ScanRequest{Timeout: "soon"})
	assert.ErrorIs(t, err, ErrInvalidTimeout)

	_, err = f.service.ScanDevices(context.Background(), &ScanRequest{Timeout: "-1s"})
	assert.ErrorIs(t, err, ErrInvalidTimeout)

	assert.Empty(t, f.events.types())
}

func TestScanDevices_TimeoutFailsRun(t *testing.T) {
	f := newFixture(t)
	f.scanner.block = true

	_, err := f.service.ScanDevices(context.Background(), &ScanRequest{ScanType: "serial", Timeout: "20ms"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	runs, err := f.service.ListHistory(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Succeeded())

	assert.Equal(t, []model.EventType{model.EventDiscoveryStarted, model.EventDiscoveryFailed}, f.events.types())
}

func TestScanDevices_HistoryFailureDoesNotFailScan(t *testing.T) {
	manager := discovery.NewScannerManager(zap.NewNop())
	manager.RegisterScanner(&fakeScanner{devices: []*model.DiscoveredDevice{serialDevice("/dev/ttyS0")}})
	svc := NewDiscoveryService(manager, &fakePorts{}, failingRepo{}, nil, testConfig(), zap.NewNop())

	result, err := svc.ScanDevices(context.Background(), &ScanRequest{ScanType: "serial"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.DevicesFound)
}

func TestListPorts(t *testing.T) {
	f := newFixture(t)

	ports, err := f.service.ListPorts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, ports)
	assert.Empty(t, ports)

	f.ports.ports = []model.PortInfo{{Path: "/dev/ttyACM0", VendorID: "2341"}}
	ports, err = f.service.ListPorts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.ports.ports, ports)

	f.ports.err = errors.New("process exited with error code: 1")
	_, err = f.service.ListPorts(context.Background())
	assert.ErrorContains(t, err, "process exited with error code: 1")
}

func TestListHistory_LimitAndFilters(t *testing.T) {
	f := newFixture(t)
	f.scanner.devices = []*model.DiscoveredDevice{serialDevice("/dev/ttyUSB0")}

	for i := 0; i < 3; i++ {
		_, err := f.service.ScanDevices(context.Background(), &ScanRequest{ScanType: "serial"})
		require.NoError(t, err)
	}

	runs, err := f.service.ListHistory(context.Background(), &HistoryRequest{})
	require.NoError(t, err)
	assert.Len(t, runs, 2, "config history_limit applies by default")

	runs, err = f.service.ListHistory(context.Background(), &HistoryRequest{Limit: 10, ScanType: "all"})
	require.NoError(t, err)
	assert.Empty(t, runs)

	runs, err = f.service.ListHistory(context.Background(), &HistoryRequest{Limit: 10, Port: "/dev/ttyUSB0"})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestGetRun_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetRun(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidRunID)

	_, err = f.service.GetRun(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrScanRunNotFound)
}

func TestHistoryDisabled(t *testing.T) {
	manager := discovery.NewScannerManager(zap.NewNop())
	svc := NewDiscoveryService(manager, &fakePorts{}, nil, nil, testConfig(), zap.NewNop())

	runs, err := svc.ListHistory(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = svc.GetRun(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrScanRunNotFound)

	deleted, err := svc.PruneHistory(context.Background())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestPruneHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := &model.ScanRun{ID: uuid.New(), ScanType: "serial", StartedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, f.history.Create(ctx, old))
	_, err := f.service.ScanDevices(ctx, &ScanRequest{ScanType: "serial"})
	require.NoError(t, err)

	deleted, err := f.service.PruneHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = f.service.GetRun(ctx, old.ID.String())
	assert.ErrorIs(t, err, repository.ErrScanRunNotFound)
}
