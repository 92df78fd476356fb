// internal/model/scan.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScanRun is the stored record of one discovery call
type ScanRun struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	ScanType     string     `json:"scan_type" db:"scan_type"`
	StartedAt    time.Time  `json:"started_at" db:"started_at"`
	DurationMs   int64      `json:"duration_ms" db:"duration_ms"`
	DevicesFound int        `json:"devices_found" db:"devices_found"`
	Error        *string    `json:"error,omitempty" db:"error"`
	Devices      DeviceList `json:"devices" db:"devices"`
}

// Succeeded reports whether the run produced a device list
func (r *ScanRun) Succeeded() bool {
	return r.Error == nil
}

// DeviceList stores discovered devices as PostgreSQL JSONB
type DeviceList []*DiscoveredDevice

func (d *DeviceList) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported device list type %T", value)
	}

	return json.Unmarshal(raw, d)
}

func (d DeviceList) Value() (driver.Value, error) {
	if d == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d)
}
