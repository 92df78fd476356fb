// internal/discovery/scanner.go
package discovery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"serial-discovery/internal/model"
)

// DeviceScanner interface - Strategy Pattern
type DeviceScanner interface {
	Scan(ctx context.Context) ([]*model.DiscoveredDevice, error)
	GetScannerType() string
	IsAvailable() bool
}

// ErrScannerNotFound is returned for an unregistered scanner type
var ErrScannerNotFound = errors.New("scanner type not found")

// ScannerManager manages all device scanners - Facade Pattern
type ScannerManager struct {
	scanners map[string]DeviceScanner
	order    []string
	logger   *zap.Logger
}

// NewScannerManager creates a new scanner manager
func NewScannerManager(logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]DeviceScanner),
		logger:   logger,
	}
}

// RegisterScanner registers a device scanner, replacing any previous
// scanner of the same type
func (sm *ScannerManager) RegisterScanner(scanner DeviceScanner) {
	scannerType := scanner.GetScannerType()
	if _, exists := sm.scanners[scannerType]; !exists {
		sm.order = append(sm.order, scannerType)
	}
	sm.scanners[scannerType] = scanner
	sm.logger.Info("Scanner registered", zap.String("type", scannerType))
}

// ScanAll runs every available scanner in registration order. It fails
// only when no scanner succeeded.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]*model.DiscoveredDevice, error) {
	allDevices := []*model.DiscoveredDevice{}
	var errs []error
	succeeded := 0

	for _, scannerType := range sm.order {
		scanner := sm.scanners[scannerType]
		if !scanner.IsAvailable() {
			sm.logger.Debug("Scanner not available, skipping", zap.String("type", scannerType))
			continue
		}

		devices, err := scanner.Scan(ctx)
		if err != nil {
			sm.logger.Error("Scanner failed", zap.String("type", scannerType), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", scannerType, err))
			continue
		}

		succeeded++
		allDevices = append(allDevices, devices...)
		sm.logger.Info("Scanner completed",
			zap.String("type", scannerType),
			zap.Int("devices_found", len(devices)),
		)
	}

	if succeeded == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return allDevices, nil
}

// ScanByType scans specific scanner type
func (sm *ScannerManager) ScanByType(ctx context.Context, scannerType string) ([]*model.DiscoveredDevice, error) {
	scanner, exists := sm.scanners[scannerType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrScannerNotFound, scannerType)
	}

	if !scanner.IsAvailable() {
		return nil, fmt.Errorf("scanner not available: %s", scannerType)
	}

	return scanner.Scan(ctx)
}

// GetAvailableScanners returns list of available scanner types
func (sm *ScannerManager) GetAvailableScanners() []string {
	available := []string{}
	for _, scannerType := range sm.order {
		if sm.scanners[scannerType].IsAvailable() {
			available = append(available, scannerType)
		}
	}
	return available
}
