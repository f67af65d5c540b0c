package byteutil

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// NFold pinned vectors are RFC 3961 Appendix A's test vectors.
func TestNFoldKerberos64(t *testing.T) {
	got := NFold([]byte("kerberos"), 8)
	want, err := hex.DecodeString("6b65726265726f73")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNFoldKerberos56(t *testing.T) {
	got := NFold([]byte("kerberos"), 7)
	want, err := hex.DecodeString("913525e4d38a0a")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestXOR(t *testing.T) {
	a := []byte{0xff, 0x00, 0xff}
	b := []byte{0x0f, 0xf0, 0x0f}
	require.Equal(t, []byte{0xf0, 0xf0, 0xf0}, XOR(a, b))
}

func TestUTF16LE(t *testing.T) {
	got := UTF16LE("ab")
	require.Equal(t, []byte{'a', 0, 'b', 0}, got)
}

func TestDefaultSourceProducesRequestedLength(t *testing.T) {
	b, err := Default.Bytes(16)
	require.NoError(t, err)
	require.Len(t, b, 16)
}
