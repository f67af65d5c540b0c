// Package crypto implements the RFC 3961/3962/4757 cryptographic profile
// suite this module supports: AES128/256-CTS-HMAC-SHA1-96 and
// RC4-HMAC-MD5. Every profile exposes the same four operations so the AS
// exchange engine (package client) can stay etype-agnostic.
package crypto

import (
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
)

// Key usage numbers the AS exchange consumes (RFC 4120 §7.5.1).
const (
	KeyUsageASReqPaEncTimestamp = 1
	KeyUsageASRepEncPart        = 3
)

// Profile is the uniform capability set every supported etype exposes.
type Profile interface {
	// EType returns the etype number this profile implements.
	EType() int32
	// GenerateKeyFromPassword derives a key from a password and salt.
	GenerateKeyFromPassword(password, salt string) (types.EncryptionKey, error)
	// Encrypt produces ciphertext from plaintext under key and keyUsage.
	Encrypt(key types.EncryptionKey, keyUsage uint32, plaintext []byte) ([]byte, error)
	// Decrypt recovers plaintext from ciphertext under key and keyUsage,
	// or fails with a DecryptionError on integrity-check failure.
	Decrypt(key types.EncryptionKey, keyUsage uint32, ciphertext []byte) ([]byte, error)
}

var registry = map[int32]Profile{}

func register(p Profile) {
	registry[p.EType()] = p
}

// ForEType looks up the profile implementing etype.
func ForEType(etype int32) (Profile, error) {
	p, ok := registry[etype]
	if !ok {
		return nil, kerberr.Newf(kerberr.NoProvidedSupportedCipherAlgorithm, "unsupported etype %d", etype)
	}
	return p, nil
}

// SupportedEtypes lists the etype numbers a Password-based key can
// propose, most preferred first: AES256, then AES128, then RC4.
func SupportedEtypes() []int32 {
	return []int32{types.EtypeAES256CtsHmacSha1, types.EtypeAES128CtsHmacSha1, types.EtypeRC4HmacMD5}
}
