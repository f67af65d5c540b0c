package crypto

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rc4"

	"github.com/cention-sany/krb5/byteutil"
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"golang.org/x/crypto/md4"
)

const rc4ConfounderSize = 8

// rc4KeyUsageRemap implements RFC 4757 §3: the TGS-REP/AS-REP enc-part
// usage (3) is always substituted with 8 inside this profile, so no call
// site can forget it.
func rc4KeyUsageRemap(usage uint32) uint32 {
	if usage == KeyUsageASRepEncPart {
		return 8
	}
	return usage
}

// rc4Profile implements RC4-HMAC-MD5 (RFC 4757), grounded on
// _examples/original_source/kerberos_crypto/src/ciphers/rc4.rs.
type rc4Profile struct{}

func init() {
	register(rc4Profile{})
}

func (rc4Profile) EType() int32 { return types.EtypeRC4HmacMD5 }

// GenerateKeyFromPassword hashes UTF-16LE(password) with MD4; salt is
// ignored (RFC 4757 has no salted-password variant).
func (rc4Profile) GenerateKeyFromPassword(password, _ string) (types.EncryptionKey, error) {
	h := md4.New()
	h.Write(byteutil.UTF16LE(password))
	return types.EncryptionKey{KeyType: types.EtypeRC4HmacMD5, KeyValue: h.Sum(nil)}, nil
}

func leUsage(usage uint32) []byte {
	return []byte{byte(usage), byte(usage >> 8), byte(usage >> 16), byte(usage >> 24)}
}

func hmacMD5(key, data []byte) []byte {
	m := hmac.New(md5.New, key)
	m.Write(data)
	return m.Sum(nil)
}

func (rc4Profile) Encrypt(key types.EncryptionKey, keyUsage uint32, plaintext []byte) ([]byte, error) {
	if err := types.ValidateKeySize(types.EtypeRC4HmacMD5, key.KeyValue); err != nil {
		return nil, err
	}
	usage := rc4KeyUsageRemap(keyUsage)
	ki := hmacMD5(key.KeyValue, leUsage(usage))
	confounder, err := byteutil.Default.Bytes(rc4ConfounderSize)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.CryptographyError, "generating confounder", err)
	}
	withConfounder := append(append([]byte{}, confounder...), plaintext...)
	checksum := hmacMD5(ki, withConfounder)
	ke := hmacMD5(ki, checksum)
	c, err := rc4.NewCipher(ke)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.CryptographyError, "building RC4 cipher", err)
	}
	out := make([]byte, len(withConfounder))
	c.XORKeyStream(out, withConfounder)
	return append(checksum, out...), nil
}

func (rc4Profile) Decrypt(key types.EncryptionKey, keyUsage uint32, ciphertext []byte) ([]byte, error) {
	if err := types.ValidateKeySize(types.EtypeRC4HmacMD5, key.KeyValue); err != nil {
		return nil, err
	}
	if len(ciphertext) < md5.Size+rc4ConfounderSize {
		return nil, kerberr.New(kerberr.DecryptionError, "ciphertext shorter than checksum+confounder")
	}
	usage := rc4KeyUsageRemap(keyUsage)
	ki := hmacMD5(key.KeyValue, leUsage(usage))
	checksum := ciphertext[:md5.Size]
	encrypted := ciphertext[md5.Size:]
	ke := hmacMD5(ki, checksum)
	c, err := rc4.NewCipher(ke)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.CryptographyError, "building RC4 cipher", err)
	}
	withConfounder := make([]byte, len(encrypted))
	c.XORKeyStream(withConfounder, encrypted)
	wantChecksum := hmacMD5(ki, withConfounder)
	if !hmac.Equal(checksum, wantChecksum) {
		return nil, kerberr.New(kerberr.DecryptionError, "Hmac integrity failure")
	}
	return withConfounder[rc4ConfounderSize:], nil
}
