// internal/discovery/udev/properties.go
package udev

import (
	"regexp"
	"strconv"
	"strings"

	"serial-discovery/internal/model"
)

// Field names a PortInfo attribute that a udev property can populate
type Field string

const (
	FieldPath         Field = "path"
	FieldManufacturer Field = "manufacturer"
	FieldSerialNumber Field = "serialNumber"
	FieldPnpID        Field = "pnpId"
	FieldVendorID     Field = "vendorId"
	FieldProductID    Field = "productId"
	FieldFriendlyName Field = "friendlyName"
)

// propertyFields maps upper-cased udev property keys to PortInfo fields.
var propertyFields = map[string]Field{
	"DEVNAME":         FieldPath,
	"ID_VENDOR_ENC":   FieldManufacturer,
	"ID_SERIAL_SHORT": FieldSerialNumber,
	"ID_VENDOR_ID":    FieldVendorID,
	"ID_MODEL_ID":     FieldProductID,
	"ID_MODEL_ENC":    FieldFriendlyName,
	"DEVLINKS":        FieldPnpID,

	// Some systemd releases only export the ID_USB_* spelling for USB
	// serial adapters. See serialport/bindings-cpp#115.
	"ID_USB_VENDOR_ENC":   FieldManufacturer,
	"ID_USB_SERIAL_SHORT": FieldSerialNumber,
	"ID_USB_VENDOR_ID":    FieldVendorID,
	"ID_USB_MODEL_ID":     FieldProductID,
	"ID_USB_MODEL_ENC":    FieldFriendlyName,
}

var (
	byIDPattern      = regexp.MustCompile(`/by-id/([^\s]+)`)
	hexEscapePattern = regexp.MustCompile(`\\x([a-fA-F0-9]{2})`)
)

// CanonicalName returns the PortInfo field for a raw udev property key.
// Keys are matched case-insensitively; unknown keys report false.
func CanonicalName(rawKey string) (Field, bool) {
	field, ok := propertyFields[strings.ToUpper(rawKey)]
	return field, ok
}

// CanonicalValue decodes a raw property value for the given field.
// An empty result means the field should be left unset.
func CanonicalValue(field Field, raw string) string {
	switch {
	case field == FieldPnpID:
		match := byIDPattern.FindStringSubmatch(raw)
		if match == nil {
			return ""
		}
		return match[1]
	case field == FieldManufacturer || field == FieldFriendlyName:
		return decodeHexEscape(raw)
	case strings.HasPrefix(raw, "0x"):
		return raw[2:]
	default:
		return raw
	}
}

// decodeHexEscape replaces every \xHH sequence with the character it encodes
func decodeHexEscape(s string) string {
	return hexEscapePattern.ReplaceAllStringFunc(s, func(seq string) string {
		code, err := strconv.ParseUint(seq[2:], 16, 8)
		if err != nil {
			return seq
		}
		return string(rune(code))
	})
}

// setField assigns value to the PortInfo attribute named by field
func setField(port *model.PortInfo, field Field, value string) {
	switch field {
	case FieldPath:
		port.Path = value
	case FieldManufacturer:
		port.Manufacturer = value
	case FieldSerialNumber:
		port.SerialNumber = value
	case FieldPnpID:
		port.PnpID = value
	case FieldVendorID:
		port.VendorID = value
	case FieldProductID:
		port.ProductID = value
	case FieldFriendlyName:
		port.FriendlyName = value
	}
}
