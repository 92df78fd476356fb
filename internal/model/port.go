// internal/model/port.go
package model

// PortInfo is the serial port record shared by every discovery backend.
// Only Path is guaranteed; the remaining fields are empty when unknown.
type PortInfo struct {
	Path         string `json:"path"`
	Manufacturer string `json:"manufacturer,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
	PnpID        string `json:"pnpId,omitempty"`
	LocationID   string `json:"locationId,omitempty"`
	VendorID     string `json:"vendorId,omitempty"`
	ProductID    string `json:"productId,omitempty"`
	FriendlyName string `json:"friendlyName,omitempty"`
}
