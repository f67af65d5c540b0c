package client

import (
	"github.com/cention-sany/krb5/crypto"
	"github.com/cention-sany/krb5/types"
)

// KeyKind discriminates the closed Key variant: Password | RC4Key |
// AES128Key | AES256Key.
type KeyKind int

const (
	KeyKindPassword KeyKind = iota
	KeyKindRC4
	KeyKindAES128
	KeyKindAES256
)

// Key is the secret a caller supplies to RequestTGT. A Password carries
// no etype until an ETYPE-INFO2 salt and etype pin it down during the AS
// exchange; a typed key instead binds one etype up front.
type Key struct {
	Kind     KeyKind
	Password string
	Value    []byte
}

// NewPasswordKey builds a Password key.
func NewPasswordKey(password string) Key {
	return Key{Kind: KeyKindPassword, Password: password}
}

// NewRC4Key builds an RC4Key from an already-derived 16-byte key.
func NewRC4Key(key []byte) Key { return Key{Kind: KeyKindRC4, Value: key} }

// NewAES128Key builds an AES128Key from an already-derived 16-byte key.
func NewAES128Key(key []byte) Key { return Key{Kind: KeyKindAES128, Value: key} }

// NewAES256Key builds an AES256Key from an already-derived 32-byte key.
func NewAES256Key(key []byte) Key { return Key{Kind: KeyKindAES256, Value: key} }

// etype reports the single etype a typed key is bound to; only valid for
// non-Password kinds.
func (k Key) etype() int32 {
	switch k.Kind {
	case KeyKindRC4:
		return types.EtypeRC4HmacMD5
	case KeyKindAES128:
		return types.EtypeAES128CtsHmacSha1
	case KeyKindAES256:
		return types.EtypeAES256CtsHmacSha1
	default:
		return 0
	}
}

// proposedEtypes is the AS-REQ etype-list rule: a Password proposes
// every supported etype, most preferred first; a typed key proposes only
// its own etype.
func (k Key) proposedEtypes() []int32 {
	if k.Kind == KeyKindPassword {
		return crypto.SupportedEtypes()
	}
	return []int32{k.etype()}
}

// encryptionKey resolves k into the concrete EncryptionKey an etype/salt
// pair requires, deriving from the password when k is a Password, or
// validating the caller's typed key matches etype otherwise.
func (k Key) encryptionKey(etype int32, salt string) (types.EncryptionKey, error) {
	if k.Kind == KeyKindPassword {
		profile, err := crypto.ForEType(etype)
		if err != nil {
			return types.EncryptionKey{}, err
		}
		return profile.GenerateKeyFromPassword(k.Password, salt)
	}
	if k.etype() != etype {
		return types.EncryptionKey{}, keyEtypeMismatch(k.etype(), etype)
	}
	return types.EncryptionKey{KeyType: k.etype(), KeyValue: k.Value}, nil
}
