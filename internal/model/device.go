// internal/model/device.go
package model

// ConnectionType represents how the device is attached
type ConnectionType string

const (
	ConnectionTypeSerial ConnectionType = "SERIAL"
)

// DeviceBrand identifies the vendor of a USB-serial bridge chip
type DeviceBrand string

const (
	BrandFTDI        DeviceBrand = "FTDI"
	BrandProlific    DeviceBrand = "PROLIFIC"
	BrandSiliconLabs DeviceBrand = "SILICON_LABS"
	BrandWCH         DeviceBrand = "WCH"
	BrandArduino     DeviceBrand = "ARDUINO"
	BrandMicrochip   DeviceBrand = "MICROCHIP"
	BrandEspressif   DeviceBrand = "ESPRESSIF"
	BrandST          DeviceBrand = "STMICROELECTRONICS"
	BrandGeneric     DeviceBrand = "GENERIC"
)

// DiscoveredDevice is a port reported by a scanner, annotated with what
// the chip catalog knows about it
type DiscoveredDevice struct {
	ConnectionType ConnectionType         `json:"connection_type"`
	ConnectionInfo map[string]interface{} `json:"connection_info"`
	Brand          DeviceBrand            `json:"brand"`
	Model          string                 `json:"model"`
	Confidence     float64                `json:"confidence"` // 0.0-1.0
	SerialNumber   string                 `json:"serial_number,omitempty"`
	Location       string                 `json:"location,omitempty"`
	Port           *PortInfo              `json:"port,omitempty"`
}
