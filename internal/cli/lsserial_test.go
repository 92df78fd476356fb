package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"serial-discovery/internal/discovery/serial"
	"serial-discovery/internal/model"
)

type stubLister struct {
	ports []model.PortInfo
	err   error
}

func (s *stubLister) List(ctx context.Context) ([]model.PortInfo, error) {
	return s.ports, s.err
}

func init() {
	color.NoColor = true
}

func execute(t *testing.T, lister *stubLister, args ...string) (string, *serial.Config, error) {
	t.Helper()

	var got *serial.Config
	factory := func(logger *zap.Logger, cfg *serial.Config) *serial.Scanner {
		got = cfg
		return serial.NewScannerWithLister(logger, cfg, lister)
	}

	var out bytes.Buffer
	cmd := NewRootCommand(factory)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), got, err
}

var ftdi = model.PortInfo{
	Path:         "/dev/ttyUSB0",
	Manufacturer: "FTDI",
	SerialNumber: "A6008isP",
	VendorID:     "0403",
	ProductID:    "6001",
	PnpID:        "usb-FTDI_FT232R_USB_UART_A6008isP-if00-port0",
}

func TestLsserial_Table(t *testing.T) {
	out, _, err := execute(t, &stubLister{ports: []model.PortInfo{ftdi, {Path: "/dev/ttyS0"}}})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "PATH")
	assert.Contains(t, string(lines[1]), "/dev/ttyUSB0")
	assert.Contains(t, string(lines[1]), "0403:6001")
	assert.Contains(t, string(lines[2]), "/dev/ttyS0")
	assert.Contains(t, string(lines[2]), "-")
}

func TestLsserial_JSON(t *testing.T) {
	out, _, err := execute(t, &stubLister{ports: []model.PortInfo{ftdi}}, "--json")
	require.NoError(t, err)

	var ports []model.PortInfo
	require.NoError(t, json.Unmarshal([]byte(out), &ports))
	assert.Equal(t, []model.PortInfo{ftdi}, ports)
}

func TestLsserial_Identify(t *testing.T) {
	out, _, err := execute(t, &stubLister{ports: []model.PortInfo{ftdi}}, "--identify")
	require.NoError(t, err)
	assert.Contains(t, out, "BRAND")
	assert.Contains(t, out, string(model.BrandFTDI))
}

func TestLsserial_Empty(t *testing.T) {
	out, _, err := execute(t, &stubLister{})
	require.NoError(t, err)
	assert.Equal(t, "No serial ports found\n", out)
}

func TestLsserial_FlagsOverrideConfig(t *testing.T) {
	_, cfg, err := execute(t, &stubLister{}, "--timeout", "3s", "--by-path", "/tmp/by-path", "--udevadm", "/sbin/udevadm")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 3*time.Second, cfg.ScanTimeout)
	assert.Equal(t, "/tmp/by-path", cfg.ByPathDir)
	assert.Equal(t, "/sbin/udevadm", cfg.UdevadmPath)
}

func TestLsserial_Error(t *testing.T) {
	_, _, err := execute(t, &stubLister{err: errors.New("process exited with error code: 1")})
	assert.EqualError(t, err, "process exited with error code: 1")
}

func TestLsserial_RejectsArgs(t *testing.T) {
	_, _, err := execute(t, &stubLister{}, "extra")
	assert.Error(t, err)
}

func TestLsserial_BadConfigFile(t *testing.T) {
	_, _, err := execute(t, &stubLister{}, "--config", "/nonexistent/config.yaml")
	assert.ErrorContains(t, err, "load config")
}
