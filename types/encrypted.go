package types

import "github.com/cention-sany/krb5/kerberr"

// EncryptedData is RFC 4120's EncryptedData: opaque ciphertext tagged with
// the etype that produced it. The codec never interprets cipher; only the
// crypto layer does.
//
// KVNO is RFC 4120's UInt32, wire-encoded as a signed 32-bit INTEGER (the
// reflect-based asn1 codec only marshals genuine int32 fields); callers
// that need the reinterpreted unsigned value go through
// UInt32FromInt32/Int32Value, the same discipline as every other UInt32
// field in this module.
type EncryptedData struct {
	EType  int32  `asn1:"explicit,tag:0"`
	KVNO   int32  `asn1:"explicit,optional,tag:1"`
	Cipher []byte `asn1:"explicit,tag:2"`
}

// EncryptionKey is RFC 4120's EncryptionKey: a key type tag plus raw key
// bytes. ValidateKeySize in this package checks the length invariant;
// this type itself stays a plain carrier.
type EncryptionKey struct {
	KeyType  int32  `asn1:"explicit,tag:0"`
	KeyValue []byte `asn1:"explicit,tag:1"`
}

// Key sizes by etype, used to validate EncryptionKey.KeyValue when the
// crypto layer constructs one.
const (
	KeySizeAES128 = 16
	KeySizeAES256 = 32
	KeySizeRC4    = 16
)

// ValidateKeySize checks keyValue's length against the size the given
// etype requires.
func ValidateKeySize(etype int32, keyValue []byte) error {
	want, ok := keySizeByEtype[etype]
	if !ok {
		return kerberr.Newf(kerberr.NoProvidedSupportedCipherAlgorithm, "unsupported etype %d", etype)
	}
	if len(keyValue) != want {
		return kerberr.Newf(kerberr.InvalidKeyLength, "etype %d requires a %d-byte key, got %d", etype, want, len(keyValue))
	}
	return nil
}

var keySizeByEtype = map[int32]int{
	EtypeAES128CtsHmacSha1: KeySizeAES128,
	EtypeAES256CtsHmacSha1: KeySizeAES256,
	EtypeRC4HmacMD5:        KeySizeRC4,
}

// Etype numbers (RFC 3962 §7, RFC 4757 §1). Only 17, 18 and 23 have a
// crypto profile; the RC4 export variants 24 and -135 are named here but
// not implemented.
const (
	EtypeAES128CtsHmacSha1 = 17
	EtypeAES256CtsHmacSha1 = 18
	EtypeRC4HmacMD5        = 23
	EtypeRC4HmacMD5Exp     = 24
	EtypeRC4HmacOldExp     = -135
)
