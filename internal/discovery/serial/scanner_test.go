package serial

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"serial-discovery/internal/model"
)

type stubLister struct {
	ports       []model.PortInfo
	err         error
	gotDeadline bool
}

func (l *stubLister) List(ctx context.Context) ([]model.PortInfo, error) {
	_, l.gotDeadline = ctx.Deadline()
	return l.ports, l.err
}

func TestScanner_Scan(t *testing.T) {
	lister := &stubLister{ports: []model.PortInfo{
		{
			Path:         "/dev/ttyUSB0",
			Manufacturer: "FTDI",
			SerialNumber: "A50285BI",
			PnpID:        "usb-FTDI_FT232R_USB_UART_A50285BI-if00-port0",
			VendorID:     "0403",
			ProductID:    "6001",
			FriendlyName: "FT232R USB UART",
		},
		{Path: "/dev/ttyS0"},
	}}

	s := NewScannerWithLister(zap.NewNop(), nil, lister)
	devices, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.True(t, lister.gotDeadline)

	ftdi := devices[0]
	assert.Equal(t, model.ConnectionTypeSerial, ftdi.ConnectionType)
	assert.Equal(t, model.BrandFTDI, ftdi.Brand)
	assert.Equal(t, "FT232R", ftdi.Model)
	assert.Equal(t, "A50285BI", ftdi.SerialNumber)
	assert.Equal(t, "/dev/ttyUSB0", ftdi.ConnectionInfo["port"])
	assert.Equal(t, "usb-FTDI_FT232R_USB_UART_A50285BI-if00-port0", ftdi.ConnectionInfo["pnp_id"])
	require.NotNil(t, ftdi.Port)
	assert.Equal(t, "/dev/ttyUSB0", ftdi.Port.Path)

	builtin := devices[1]
	assert.Equal(t, model.BrandGeneric, builtin.Brand)
	assert.Empty(t, builtin.Model)
	assert.NotContains(t, builtin.ConnectionInfo, "vendor_id")
	assert.Equal(t, "/dev/ttyS0", builtin.Port.Path)
}

func TestScanner_ModelFallsBackToFriendlyName(t *testing.T) {
	lister := &stubLister{ports: []model.PortInfo{
		{Path: "/dev/ttyACM0", VendorID: "cafe", ProductID: "0001", FriendlyName: "Custom Board"},
	}}

	s := NewScannerWithLister(zap.NewNop(), nil, lister)
	devices, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Custom Board", devices[0].Model)
}

func TestScanner_PortPatterns(t *testing.T) {
	lister := &stubLister{ports: []model.PortInfo{
		{Path: "/dev/ttyUSB0"},
		{Path: "/dev/ttyS0"},
		{Path: "/dev/ttyACM1"},
	}}

	cfg := DefaultConfig()
	cfg.PortPatterns = []string{"/dev/ttyUSB*", "/dev/ttyACM*", "["}

	s := NewScannerWithLister(zap.NewNop(), cfg, lister)
	ports, err := s.ListPorts(context.Background())
	require.NoError(t, err)
	require.Len(t, ports, 2)
	assert.Equal(t, "/dev/ttyUSB0", ports[0].Path)
	assert.Equal(t, "/dev/ttyACM1", ports[1].Path)
}

func TestScanner_ListerError(t *testing.T) {
	cause := errors.New("process exited with error code: 1")
	s := NewScannerWithLister(zap.NewNop(), nil, &stubLister{err: cause})

	_, err := s.Scan(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestScanner_NoTimeout(t *testing.T) {
	lister := &stubLister{}
	cfg := DefaultConfig()
	cfg.ScanTimeout = 0

	s := NewScannerWithLister(zap.NewNop(), cfg, lister)
	_, err := s.ListPorts(context.Background())
	require.NoError(t, err)
	assert.False(t, lister.gotDeadline)
}

func TestScanner_IsAvailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UdevadmPath = "/nonexistent/udevadm"

	s := NewScannerWithLister(zap.NewNop(), cfg, &stubLister{})
	s.goos = "linux"
	assert.False(t, s.IsAvailable())

	s.goos = "darwin"
	assert.True(t, s.IsAvailable())

	assert.Equal(t, "serial", s.GetScannerType())
}

func TestPortsFromDetails(t *testing.T) {
	ports := portsFromDetails([]*enumerator.PortDetails{
		{Name: "/dev/cu.usbserial-A50285BI", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "A50285BI", Product: "FT232R USB UART"},
		{Name: "COM1"},
	})

	require.Len(t, ports, 2)
	assert.Equal(t, model.PortInfo{
		Path:         "/dev/cu.usbserial-A50285BI",
		VendorID:     "0403",
		ProductID:    "6001",
		SerialNumber: "A50285BI",
		FriendlyName: "FT232R USB UART",
	}, ports[0])
	assert.Equal(t, model.PortInfo{Path: "COM1"}, ports[1])
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "udevadm", cfg.UdevadmPath)
	assert.Equal(t, 30*time.Second, cfg.ScanTimeout)
}
