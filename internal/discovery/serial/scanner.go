// internal/discovery/serial/scanner.go - Serial Scanner Implementation
package serial

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"serial-discovery/internal/discovery/udev"
	"serial-discovery/internal/model"
)

// ScannerType is the identifier registered with the scanner manager
const ScannerType = "serial"

// PortLister enumerates serial ports on the host
type PortLister interface {
	List(ctx context.Context) ([]model.PortInfo, error)
}

// Scanner implements serial port device scanning
type Scanner struct {
	logger  *zap.Logger
	config  *Config
	catalog *Catalog
	lister  PortLister
	goos    string
}

// Config for serial scanner
type Config struct {
	UdevadmPath  string        `json:"udevadm_path"`
	UdevadmArgs  []string      `json:"udevadm_args"`
	ByPathDir    string        `json:"by_path_dir"`
	ScanTimeout  time.Duration `json:"scan_timeout"`
	PortPatterns []string      `json:"port_patterns"`
}

// DefaultConfig returns the settings used when no config is supplied
func DefaultConfig() *Config {
	return &Config{
		UdevadmPath: udev.DefaultCommand,
		UdevadmArgs: udev.DefaultArgs,
		ByPathDir:   udev.DefaultByPathDir,
		ScanTimeout: 30 * time.Second,
	}
}

// NewScanner creates a serial scanner backed by udevadm on Linux and by
// the go.bug.st enumerator elsewhere
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = DefaultConfig()
	}

	scannerLogger := logger.With(zap.String("scanner", ScannerType))

	var lister PortLister
	if runtime.GOOS == "linux" {
		lister = udev.NewLister(
			udev.WithCommand(config.UdevadmPath, config.UdevadmArgs...),
			udev.WithByPathDir(config.ByPathDir),
			udev.WithLogger(scannerLogger),
		)
	} else {
		lister = enumeratorLister{}
	}

	return NewScannerWithLister(scannerLogger, config, lister)
}

// NewScannerWithLister creates a scanner around an explicit port lister
func NewScannerWithLister(logger *zap.Logger, config *Config, lister PortLister) *Scanner {
	if config == nil {
		config = DefaultConfig()
	}

	return &Scanner{
		logger:  logger,
		config:  config,
		catalog: NewCatalog(),
		lister:  lister,
		goos:    runtime.GOOS,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return ScannerType
}

// IsAvailable checks if serial scanning is available. On Linux that
// requires the udevadm binary.
func (s *Scanner) IsAvailable() bool {
	if s.goos != "linux" {
		return true
	}

	if _, err := exec.LookPath(s.config.UdevadmPath); err != nil {
		s.logger.Warn("udevadm not found", zap.String("path", s.config.UdevadmPath), zap.Error(err))
		return false
	}
	return true
}

// ListPorts returns the active serial ports after pattern filtering
func (s *Scanner) ListPorts(ctx context.Context) ([]model.PortInfo, error) {
	if s.config.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ScanTimeout)
		defer cancel()
	}

	ports, err := s.lister.List(ctx)
	if err != nil {
		return nil, err
	}

	return s.filterPorts(ports), nil
}

// Scan performs serial port device discovery
func (s *Scanner) Scan(ctx context.Context) ([]*model.DiscoveredDevice, error) {
	s.logger.Info("Starting serial port scan")

	ports, err := s.ListPorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	discovered := make([]*model.DiscoveredDevice, 0, len(ports))
	for i := range ports {
		discovered = append(discovered, s.toDiscoveredDevice(ports[i]))
	}

	s.logger.Info("Serial scan completed", zap.Int("devices_found", len(discovered)))
	return discovered, nil
}

// filterPorts keeps ports matching at least one configured glob pattern.
// No patterns means no filtering.
func (s *Scanner) filterPorts(ports []model.PortInfo) []model.PortInfo {
	if len(s.config.PortPatterns) == 0 {
		return ports
	}

	filtered := make([]model.PortInfo, 0, len(ports))
	for _, port := range ports {
		for _, pattern := range s.config.PortPatterns {
			if matched, err := filepath.Match(pattern, port.Path); err == nil && matched {
				filtered = append(filtered, port)
				break
			}
		}
	}

	s.logger.Debug("Filtered serial ports",
		zap.Strings("patterns", s.config.PortPatterns),
		zap.Int("before", len(ports)),
		zap.Int("after", len(filtered)),
	)

	return filtered
}

func (s *Scanner) toDiscoveredDevice(port model.PortInfo) *model.DiscoveredDevice {
	id := s.catalog.Identify(port.VendorID, port.ProductID)

	modelName := id.Model
	if modelName == "" {
		modelName = port.FriendlyName
	}

	info := map[string]interface{}{
		"port": port.Path,
	}
	if port.PnpID != "" {
		info["pnp_id"] = port.PnpID
	}
	if port.VendorID != "" {
		info["vendor_id"] = port.VendorID
	}
	if port.ProductID != "" {
		info["product_id"] = port.ProductID
	}
	if port.Manufacturer != "" {
		info["manufacturer"] = port.Manufacturer
	}

	return &model.DiscoveredDevice{
		ConnectionType: model.ConnectionTypeSerial,
		ConnectionInfo: info,
		Brand:          id.Brand,
		Model:          modelName,
		Confidence:     id.Confidence,
		SerialNumber:   port.SerialNumber,
		Location:       port.LocationID,
		Port:           &port,
	}
}

// enumeratorLister covers hosts without udev
type enumeratorLister struct{}

func (enumeratorLister) List(ctx context.Context) ([]model.PortInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("enumerate ports: %w", err)
	}

	return portsFromDetails(details), nil
}

func portsFromDetails(details []*enumerator.PortDetails) []model.PortInfo {
	ports := make([]model.PortInfo, 0, len(details))
	for _, d := range details {
		port := model.PortInfo{Path: d.Name}
		if d.IsUSB {
			port.VendorID = strings.ToLower(d.VID)
			port.ProductID = strings.ToLower(d.PID)
			port.SerialNumber = d.SerialNumber
			port.FriendlyName = d.Product
		}
		ports = append(ports, port)
	}
	return ports
}
