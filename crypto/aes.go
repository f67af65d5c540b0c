package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"

	"github.com/cention-sany/krb5/byteutil"
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/jcmturner/aescts/v2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 4096
	macSize          = 12
	confounderSize   = 16
)

// aesProfile implements AES128/256-CTS-HMAC-SHA1-96 (RFC 3962), grounded
// on _examples/original_source/src/crypter/aeshmacsha1/decrypt.rs for the
// Ki/Ke split, confounder handling, and truncated-HMAC integrity check.
// Ciphertext-stealing itself is delegated to jcmturner/aescts/v2 rather
// than hand-rolled (SPEC_FULL.md §3).
type aesProfile struct {
	etype   int32
	keySize int
}

func init() {
	register(&aesProfile{etype: types.EtypeAES128CtsHmacSha1, keySize: types.KeySizeAES128})
	register(&aesProfile{etype: types.EtypeAES256CtsHmacSha1, keySize: types.KeySizeAES256})
}

func (p *aesProfile) EType() int32 { return p.etype }

// dk is RFC 3961's DK(key, usage) = truncate(len(key), E(key, n-fold(usage) ; iterating the
// block cipher over its own output under a zero IV until enough bytes are
// produced)).
func dk(key, usage []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.CryptographyError, "building AES cipher for DK", err)
	}
	blockSize := block.BlockSize()
	cur := byteutil.NFold(usage, blockSize)
	out := make([]byte, 0, len(key)+blockSize)
	zeroIV := make([]byte, blockSize)
	for len(out) < len(key) {
		next := make([]byte, blockSize)
		cipher.NewCBCEncrypter(block, zeroIV).CryptBlocks(next, cur)
		out = append(out, next...)
		cur = next
	}
	return out[:len(key)], nil
}

// usageBytes is usage's big-endian 4-byte encoding with the RFC
// 3961-mandated 1-byte constant (0x55 for Ki, 0xAA for Ke) appended.
func usageBytes(usage uint32, constant byte) []byte {
	return []byte{byte(usage >> 24), byte(usage >> 16), byte(usage >> 8), byte(usage), constant}
}

func (p *aesProfile) deriveKiKe(baseKey []byte, keyUsage uint32) (ki, ke []byte, err error) {
	ki, err = dk(baseKey, usageBytes(keyUsage, 0x55))
	if err != nil {
		return nil, nil, err
	}
	ke, err = dk(baseKey, usageBytes(keyUsage, 0xAA))
	if err != nil {
		return nil, nil, err
	}
	return ki, ke, nil
}

func (p *aesProfile) GenerateKeyFromPassword(password, salt string) (types.EncryptionKey, error) {
	seed := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, p.keySize, sha1.New)
	base, err := dk(seed, []byte("kerberos"))
	if err != nil {
		return types.EncryptionKey{}, err
	}
	return types.EncryptionKey{KeyType: p.etype, KeyValue: base}, nil
}

func (p *aesProfile) Encrypt(key types.EncryptionKey, keyUsage uint32, plaintext []byte) ([]byte, error) {
	if err := types.ValidateKeySize(p.etype, key.KeyValue); err != nil {
		return nil, err
	}
	ki, ke, err := p.deriveKiKe(key.KeyValue, keyUsage)
	if err != nil {
		return nil, err
	}
	confounder, err := byteutil.Default.Bytes(confounderSize)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.CryptographyError, "generating confounder", err)
	}
	withConfounder := append(append([]byte{}, confounder...), plaintext...)
	_, ciphertext, err := aescts.Encrypt(ke, make([]byte, aes.BlockSize), withConfounder)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.CryptographyError, "AES-CTS encrypt", err)
	}
	mac := hmacSHA1Truncated(ki, withConfounder)
	return append(ciphertext, mac...), nil
}

func (p *aesProfile) Decrypt(key types.EncryptionKey, keyUsage uint32, ciphertext []byte) ([]byte, error) {
	if err := types.ValidateKeySize(p.etype, key.KeyValue); err != nil {
		return nil, err
	}
	if len(ciphertext) < macSize+confounderSize {
		return nil, kerberr.New(kerberr.DecryptionError, "ciphertext shorter than confounder+MAC")
	}
	ki, ke, err := p.deriveKiKe(key.KeyValue, keyUsage)
	if err != nil {
		return nil, err
	}
	encPart := ciphertext[:len(ciphertext)-macSize]
	gotMac := ciphertext[len(ciphertext)-macSize:]

	withConfounder, err := aescts.Decrypt(ke, make([]byte, aes.BlockSize), encPart)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.CryptographyError, "AES-CTS decrypt", err)
	}
	wantMac := hmacSHA1Truncated(ki, withConfounder)
	if !hmac.Equal(gotMac, wantMac) {
		return nil, kerberr.New(kerberr.DecryptionError, "Hmac integrity failure")
	}
	return withConfounder[confounderSize:], nil
}

func hmacSHA1Truncated(key, data []byte) []byte {
	m := hmac.New(sha1.New, key)
	m.Write(data)
	return m.Sum(nil)[:macSize]
}
