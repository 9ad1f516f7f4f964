package discovery

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IamMikeHelsel/enip-scanner/internal/bytecodec"
)

func buildIdentityItemPayload(t *testing.T, vendorID, deviceType, productCode, revision, status uint16, serial uint32, name string, state uint8) []byte {
	t.Helper()
	buf := make([]byte, 2+16) // protocol version + sockaddr_in, both ignored
	field := make([]byte, 2)

	bytecodec.WriteU16(field, 0, vendorID) //nolint:errcheck
	buf = append(buf, field...)
	bytecodec.WriteU16(field, 0, deviceType) //nolint:errcheck
	buf = append(buf, field...)
	bytecodec.WriteU16(field, 0, productCode) //nolint:errcheck
	buf = append(buf, field...)
	bytecodec.WriteU16(field, 0, revision) //nolint:errcheck
	buf = append(buf, field...)
	bytecodec.WriteU16(field, 0, status) //nolint:errcheck
	buf = append(buf, field...)

	serialField := make([]byte, 4)
	bytecodec.WriteU32(serialField, 0, serial) //nolint:errcheck
	buf = append(buf, serialField...)

	buf = append(buf, byte(len(name)))
	buf = append(buf, []byte(name)...)
	buf = append(buf, state)
	return buf
}

func TestDecodeIdentityItem(t *testing.T) {
	payload := buildIdentityItemPayload(t, 1, 14, 100, 1, 0, 0xDEADBEEF, "1756-L61", 0x03)
	ip := net.ParseIP("10.0.0.5")

	identity, err := decodeIdentityItem(ip, payload)
	require.NoError(t, err)
	assert.Equal(t, ip, identity.IP)
	assert.Equal(t, uint16(1), identity.VendorID)
	assert.Equal(t, uint16(14), identity.DeviceType)
	assert.Equal(t, uint16(100), identity.ProductCode)
	assert.Equal(t, uint32(0xDEADBEEF), identity.Serial)
	assert.Equal(t, "1756-L61", identity.ProductName)
	assert.Equal(t, uint8(0x03), identity.State)
}

func TestDecodeIdentityItemTruncatedName(t *testing.T) {
	payload := buildIdentityItemPayload(t, 1, 14, 100, 1, 0, 1, "short", 0)
	payload = payload[:len(payload)-3] // cut into the claimed name length
	_, err := decodeIdentityItem(net.ParseIP("10.0.0.5"), payload)
	assert.Error(t, err)
}
