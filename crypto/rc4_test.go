package crypto

import (
	"testing"

	"github.com/cention-sany/krb5/types"
	"github.com/stretchr/testify/require"
)

func TestRC4KeyFromPasswordIsMD4OfUTF16LE(t *testing.T) {
	p, err := ForEType(types.EtypeRC4HmacMD5)
	require.NoError(t, err)
	key, err := p.GenerateKeyFromPassword("password", "ignored-salt")
	require.NoError(t, err)
	require.Len(t, key.KeyValue, types.KeySizeRC4)
	require.Equal(t, int32(types.EtypeRC4HmacMD5), key.KeyType)

	again, err := p.GenerateKeyFromPassword("password", "different-salt-still-ignored")
	require.NoError(t, err)
	require.Equal(t, key.KeyValue, again.KeyValue, "RC4-HMAC-MD5 has no salted password variant")
}

func TestRC4EncryptDecryptRoundTrip(t *testing.T) {
	p, err := ForEType(types.EtypeRC4HmacMD5)
	require.NoError(t, err)
	key, err := p.GenerateKeyFromPassword("password", "")
	require.NoError(t, err)

	plaintext := []byte("arbitrary length plaintext, not block aligned")
	ciphertext, err := p.Encrypt(key, KeyUsageASRepEncPart, plaintext)
	require.NoError(t, err)

	got, err := p.Decrypt(key, KeyUsageASRepEncPart, ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestRC4KeyUsageRemap(t *testing.T) {
	require.EqualValues(t, 8, rc4KeyUsageRemap(KeyUsageASRepEncPart))
	require.EqualValues(t, 1, rc4KeyUsageRemap(KeyUsageASReqPaEncTimestamp))
}
