// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"serial-discovery/internal/model"
)

// ErrScanRunNotFound is returned when no run matches the requested ID
var ErrScanRunNotFound = errors.New("scan run not found")

// ScanRunRepository defines scan history data access operations
type ScanRunRepository interface {
	Create(ctx context.Context, run *model.ScanRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ScanRun, error)

	// List returns the newest runs first
	List(ctx context.Context, filter *ScanRunFilter) ([]*model.ScanRun, error)

	// Cleanup
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
}

// ScanRunFilter represents history listing filters
type ScanRunFilter struct {
	ScanType *string `json:"scan_type,omitempty"`
	PortPath *string `json:"port_path,omitempty"`
	Limit    int     `json:"limit"`
}

// portPaths collects the device paths of a run for the port_paths index
func portPaths(run *model.ScanRun) []string {
	paths := make([]string, 0, len(run.Devices))
	for _, device := range run.Devices {
		if device != nil && device.Port != nil {
			paths = append(paths, device.Port.Path)
		}
	}
	return paths
}
