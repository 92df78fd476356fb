// internal/service/discovery_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"serial-discovery/internal/config"
	"serial-discovery/internal/discovery"
	"serial-discovery/internal/model"
	"serial-discovery/internal/repository"
	"serial-discovery/internal/utils"
)

const (
	ScanTypeAll    = "all"
	ScanTypeSerial = "serial"

	maxHistoryLimit = 500
)

var (
	ErrInvalidScanType = errors.New("unsupported scan type")
	ErrInvalidTimeout  = errors.New("invalid scan timeout")
	ErrInvalidRunID    = errors.New("invalid run id")
)

// PortLister returns the raw serial port records
type PortLister interface {
	ListPorts(ctx context.Context) ([]model.PortInfo, error)
}

// EventPublisher receives discovery lifecycle events
type EventPublisher interface {
	Publish(event model.DiscoveryEvent)
}

// DiscoveryService runs scans, records history and publishes events
type DiscoveryService struct {
	scannerManager *discovery.ScannerManager
	ports          PortLister
	history        repository.ScanRunRepository
	events         EventPublisher
	config         *config.Config
	logger         *utils.ServiceLogger
}

// NewDiscoveryService creates a new discovery service. history and events
// may be nil.
func NewDiscoveryService(
	scannerManager *discovery.ScannerManager,
	ports PortLister,
	history repository.ScanRunRepository,
	events EventPublisher,
	config *config.Config,
	logger *zap.Logger,
) *DiscoveryService {
	ds := &DiscoveryService{
		scannerManager: scannerManager,
		ports:          ports,
		history:        history,
		events:         events,
		config:         config,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}

	ds.logger.Info("Discovery service initialized",
		zap.Strings("available_scanners", scannerManager.GetAvailableScanners()),
		zap.Bool("history_enabled", history != nil),
	)

	return ds
}

// ScanDevices validates the request, runs the scan under its timeout and
// records the outcome
func (ds *DiscoveryService) ScanDevices(ctx context.Context, req *ScanRequest) (*ScanResult, error) {
	if req == nil {
		req = &ScanRequest{}
	}

	scanType := req.ScanType
	if scanType == "" {
		scanType = ScanTypeAll
	}
	if scanType != ScanTypeAll && scanType != ScanTypeSerial {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScanType, req.ScanType)
	}

	timeout, err := ds.parseTimeout(req.Timeout)
	if err != nil {
		return nil, err
	}

	runID := uuid.New()
	scanLogger := utils.NewScanLogger(ds.logger.Logger, scanType, runID.String())
	scanLogger.Start(zap.Duration("timeout", timeout))
	ds.publish(model.NewDiscoveryEvent(model.EventDiscoveryStarted, runID, scanType, nil))

	startedAt := time.Now()
	scanCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var devices []*model.DiscoveredDevice
	if scanType == ScanTypeAll {
		devices, err = ds.scannerManager.ScanAll(scanCtx)
	} else {
		devices, err = ds.scannerManager.ScanByType(scanCtx, scanType)
	}

	run := &model.ScanRun{
		ID:         runID,
		ScanType:   scanType,
		StartedAt:  startedAt,
		DurationMs: time.Since(startedAt).Milliseconds(),
	}

	if err != nil {
		if errors.Is(scanCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		message := err.Error()
		run.Error = &message

		scanLogger.Error(err)
		ds.record(ctx, run)
		ds.publish(model.NewDiscoveryEvent(model.EventDiscoveryFailed, runID, scanType, map[string]interface{}{
			"error": message,
		}))
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if devices == nil {
		devices = []*model.DiscoveredDevice{}
	}
	run.DevicesFound = len(devices)
	run.Devices = devices

	scanLogger.Success(len(devices))
	ds.record(ctx, run)
	ds.publish(model.NewDiscoveryEvent(model.EventDiscoveryCompleted, runID, scanType, map[string]interface{}{
		"devices_found": len(devices),
		"duration_ms":   run.DurationMs,
	}))

	return &ScanResult{
		RunID:        runID,
		ScanType:     scanType,
		DevicesFound: len(devices),
		DurationMs:   run.DurationMs,
		Devices:      devices,
	}, nil
}

// ListPorts returns the active serial ports without enrichment
func (ds *DiscoveryService) ListPorts(ctx context.Context) ([]model.PortInfo, error) {
	ports, err := ds.ports.ListPorts(ctx)
	if err != nil {
		ds.logger.Error("Failed to list serial ports", zap.Error(err))
		return nil, fmt.Errorf("failed to list ports: %w", err)
	}
	if ports == nil {
		ports = []model.PortInfo{}
	}
	return ports, nil
}

// GetAvailableScanners returns the scanner types usable on this host
func (ds *DiscoveryService) GetAvailableScanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}

// ListHistory returns recorded runs, newest first
func (ds *DiscoveryService) ListHistory(ctx context.Context, req *HistoryRequest) ([]*model.ScanRun, error) {
	if ds.history == nil {
		return []*model.ScanRun{}, nil
	}
	if req == nil {
		req = &HistoryRequest{}
	}

	filter := &repository.ScanRunFilter{Limit: req.Limit}
	if filter.Limit <= 0 {
		filter.Limit = ds.config.Database.HistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	if req.ScanType != "" {
		filter.ScanType = &req.ScanType
	}
	if req.Port != "" {
		filter.PortPath = &req.Port
	}

	runs, err := ds.history.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return runs, nil
}

// GetRun returns one recorded run
func (ds *DiscoveryService) GetRun(ctx context.Context, id string) (*model.ScanRun, error) {
	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRunID, id)
	}
	if ds.history == nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrScanRunNotFound, runID)
	}

	return ds.history.GetByID(ctx, runID)
}

// PruneHistory deletes runs older than the configured retention
func (ds *DiscoveryService) PruneHistory(ctx context.Context) (int64, error) {
	retention := ds.config.Database.HistoryRetention
	if ds.history == nil || retention <= 0 {
		return 0, nil
	}

	deleted, err := ds.history.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return deleted, nil
}

func (ds *DiscoveryService) parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return ds.config.Discovery.ScanTimeout, nil
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("%w: must be positive", ErrInvalidTimeout)
	}
	return timeout, nil
}

// record stores the run; history failures never fail the scan
func (ds *DiscoveryService) record(ctx context.Context, run *model.ScanRun) {
	if ds.history == nil {
		return
	}
	if err := ds.history.Create(context.WithoutCancel(ctx), run); err != nil {
		ds.logger.Warn("Failed to record scan run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}
}

func (ds *DiscoveryService) publish(event model.DiscoveryEvent) {
	if ds.events != nil {
		ds.events.Publish(event)
	}
}

// DTOs for Discovery Service

// ScanRequest represents device scan request
type ScanRequest struct {
	ScanType string `json:"scan_type"` // all, serial
	Timeout  string `json:"timeout"`
}

// ScanResult is the outcome of a successful scan
type ScanResult struct {
	RunID        uuid.UUID                 `json:"run_id"`
	ScanType     string                    `json:"scan_type"`
	DevicesFound int                       `json:"devices_found"`
	DurationMs   int64                     `json:"duration_ms"`
	Devices      []*model.DiscoveredDevice `json:"devices"`
}

// HistoryRequest filters the scan history listing
type HistoryRequest struct {
	Limit    int    `json:"limit"`
	ScanType string `json:"scan_type,omitempty"`
	Port     string `json:"port,omitempty"`
}
