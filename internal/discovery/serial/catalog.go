// internal/discovery/serial/catalog.go - USB-serial bridge catalog
package serial

import (
	"strconv"
	"strings"

	"serial-discovery/internal/model"
)

// Catalog knows the common USB-serial bridge chips and dev boards
type Catalog struct {
	vendors map[uint16]*VendorInfo
}

// VendorInfo contains vendor-specific information
type VendorInfo struct {
	Brand    model.DeviceBrand
	Name     string
	products map[uint16]*ProductInfo
}

// ProductInfo contains product-specific information
type ProductInfo struct {
	Model      string
	Confidence float64
}

// Identification is the result of a catalog lookup
type Identification struct {
	Brand      model.DeviceBrand
	Vendor     string
	Model      string
	Confidence float64
}

const (
	knownVendorConfidence = 0.6
	unknownConfidence     = 0.2
)

// NewCatalog creates a catalog with the built-in entries
func NewCatalog() *Catalog {
	c := &Catalog{vendors: make(map[uint16]*VendorInfo)}

	c.addVendor(0x0403, model.BrandFTDI, "Future Technology Devices International", map[uint16]string{
		0x6001: "FT232R",
		0x6010: "FT2232H",
		0x6011: "FT4232H",
		0x6014: "FT232H",
		0x6015: "FT-X Series",
	})
	c.addVendor(0x067B, model.BrandProlific, "Prolific Technology", map[uint16]string{
		0x2303: "PL2303",
		0x23A3: "PL2303GC",
	})
	c.addVendor(0x10C4, model.BrandSiliconLabs, "Silicon Laboratories", map[uint16]string{
		0xEA60: "CP210x",
		0xEA70: "CP2105",
		0xEA71: "CP2108",
	})
	c.addVendor(0x1A86, model.BrandWCH, "Jiangsu Qinheng (WCH)", map[uint16]string{
		0x7523: "CH340",
		0x5523: "CH341",
		0x55D4: "CH9102",
	})
	c.addVendor(0x2341, model.BrandArduino, "Arduino SA", map[uint16]string{
		0x0001: "Uno",
		0x0043: "Uno R3",
		0x0042: "Mega 2560 R3",
		0x8036: "Leonardo",
		0x0058: "Nano Every",
	})
	c.addVendor(0x04D8, model.BrandMicrochip, "Microchip Technology", map[uint16]string{
		0x000A: "CDC RS-232 Emulation",
		0x00DF: "MCP2200",
	})
	c.addVendor(0x303A, model.BrandEspressif, "Espressif Systems", map[uint16]string{
		0x1001: "USB JTAG/serial debug unit",
	})
	c.addVendor(0x0483, model.BrandST, "STMicroelectronics", map[uint16]string{
		0x5740: "Virtual COM Port",
		0x374B: "ST-LINK/V2-1",
	})

	return c
}

func (c *Catalog) addVendor(id uint16, brand model.DeviceBrand, name string, products map[uint16]string) {
	vendor := &VendorInfo{
		Brand:    brand,
		Name:     name,
		products: make(map[uint16]*ProductInfo, len(products)),
	}
	for pid, modelName := range products {
		vendor.products[pid] = &ProductInfo{Model: modelName, Confidence: 0.95}
	}
	c.vendors[id] = vendor
}

// Identify looks up hex vendor/product IDs as reported by udev ("0403").
// Unknown or malformed IDs identify as a generic device.
func (c *Catalog) Identify(vendorID, productID string) Identification {
	generic := Identification{Brand: model.BrandGeneric, Confidence: unknownConfidence}

	vid, ok := parseUSBID(vendorID)
	if !ok {
		return generic
	}

	vendor, exists := c.vendors[vid]
	if !exists {
		return generic
	}

	id := Identification{
		Brand:      vendor.Brand,
		Vendor:     vendor.Name,
		Confidence: knownVendorConfidence,
	}

	if pid, ok := parseUSBID(productID); ok {
		if product, exists := vendor.products[pid]; exists {
			id.Model = product.Model
			id.Confidence = product.Confidence
		}
	}

	return id
}

// IsKnownVendor checks whether the vendor ID is in the catalog
func (c *Catalog) IsKnownVendor(vendorID string) bool {
	vid, ok := parseUSBID(vendorID)
	if !ok {
		return false
	}
	_, exists := c.vendors[vid]
	return exists
}

func parseUSBID(s string) (uint16, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}
