package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/cention-sany/krb5/types"
	"github.com/stretchr/testify/require"
)

// Pinned RFC 3962 test-vector style key-derivation checks.
func TestAES256KeyFromPassword(t *testing.T) {
	p, err := ForEType(types.EtypeAES256CtsHmacSha1)
	require.NoError(t, err)
	key, err := p.GenerateKeyFromPassword("Minnie1234", "KINGDOM.HEARTSmickey")
	require.NoError(t, err)
	want, err := hex.DecodeString("D3301F0F2539CC4026A569F8B7C36715C8DAEF109FA3D8B2E14616AACAB549FD")
	require.NoError(t, err)
	require.Equal(t, want, key.KeyValue)
	require.Equal(t, int32(types.EtypeAES256CtsHmacSha1), key.KeyType)
}

func TestAES128KeyFromPassword(t *testing.T) {
	p, err := ForEType(types.EtypeAES128CtsHmacSha1)
	require.NoError(t, err)
	key, err := p.GenerateKeyFromPassword("Minnie1234", "KINGDOM.HEARTSmickey")
	require.NoError(t, err)
	want, err := hex.DecodeString("617F72FDBC851C459A1C39BF83235609")
	require.NoError(t, err)
	require.Equal(t, want, key.KeyValue)
}

func TestAESEncryptDecryptRoundTrip(t *testing.T) {
	for _, etype := range []int32{types.EtypeAES128CtsHmacSha1, types.EtypeAES256CtsHmacSha1} {
		p, err := ForEType(etype)
		require.NoError(t, err)
		key, err := p.GenerateKeyFromPassword("Minnie1234", "KINGDOM.HEARTSmickey")
		require.NoError(t, err)

		plaintext := []byte("this is a plaintext message that is not block aligned")
		ciphertext, err := p.Encrypt(key, KeyUsageASReqPaEncTimestamp, plaintext)
		require.NoError(t, err)

		got, err := p.Decrypt(key, KeyUsageASReqPaEncTimestamp, ciphertext)
		require.NoError(t, err)
		require.Equal(t, plaintext, got)
	}
}

func TestAESTamperDetection(t *testing.T) {
	p, err := ForEType(types.EtypeAES128CtsHmacSha1)
	require.NoError(t, err)
	key, err := p.GenerateKeyFromPassword("Minnie1234", "KINGDOM.HEARTSmickey")
	require.NoError(t, err)

	ciphertext, err := p.Encrypt(key, KeyUsageASReqPaEncTimestamp, []byte("hello world"))
	require.NoError(t, err)
	ciphertext[0] ^= 0xff

	_, err = p.Decrypt(key, KeyUsageASReqPaEncTimestamp, ciphertext)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Hmac integrity failure")
}
