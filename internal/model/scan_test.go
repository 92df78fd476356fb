package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceList_ValueAndScan(t *testing.T) {
	list := DeviceList{{
		ConnectionType: ConnectionTypeSerial,
		Brand:          BrandFTDI,
		Model:          "FT232R",
		Port:           &PortInfo{Path: "/dev/ttyUSB0", VendorID: "0403"},
	}}

	value, err := list.Value()
	require.NoError(t, err)

	var decoded DeviceList
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	assert.Equal(t, "/dev/ttyUSB0", decoded[0].Port.Path)
	assert.Equal(t, BrandFTDI, decoded[0].Brand)

	require.NoError(t, decoded.Scan(`[]`))
	assert.Empty(t, decoded)

	require.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)

	assert.Error(t, decoded.Scan(42))
}

func TestDeviceList_NilValue(t *testing.T) {
	var list DeviceList
	value, err := list.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)
}
