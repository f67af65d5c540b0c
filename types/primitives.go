// Package types holds the RFC 4120 Kerberos value model: validating
// constructors over the wire primitives (PrincipalName, Realm,
// KerberosTime, HostAddress, Flags, ...) plus their ASN.1 DER encoding via
// github.com/jcmturner/gofork/encoding/asn1.
package types

import (
	"strings"
	"time"

	"github.com/cention-sany/krb5/kerberr"
)

// Int32 and UInt32 mirror the RFC 4120 ASN.1 Int32/UInt32 primitives.
// UInt32 round-trips through the wire as a signed 32-bit INTEGER: a value
// above 2^31-1 is carried as the int32 you get from reinterpreting its bit
// pattern, not by widening the INTEGER encoding.
type Int32 int32
type UInt32 uint32

// Int32Value is the wire representation of a UInt32 field.
func (u UInt32) Int32Value() int32 { return int32(uint32(u)) }

// UInt32FromInt32 reverses Int32Value.
func UInt32FromInt32(v int32) UInt32 { return UInt32(uint32(v)) }

// Microseconds is an integer in [0, 999999].
type Microseconds int32

// NewMicroseconds validates v is in range before returning a Microseconds.
func NewMicroseconds(v int32) (Microseconds, error) {
	if v < 0 || v > 999999 {
		return 0, kerberr.Newf(kerberr.InvalidMicroseconds, "value %d out of range [0, 999999]", v)
	}
	return Microseconds(v), nil
}

// KerberosString is an ASCII-only string, used wherever RFC 4120 specifies
// KerberosString (realm and principal-name components).
type KerberosString string

// NewKerberosString validates s is pure ASCII.
func NewKerberosString(s string) (KerberosString, error) {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return "", kerberr.Newf(kerberr.InvalidAscii, "byte %d (0x%02x) is not ASCII", i, s[i])
		}
	}
	return KerberosString(s), nil
}

// kerberosTimeLayout is RFC 4120's GeneralizedTime form: no fractional
// seconds, Z-suffixed UTC only.
const kerberosTimeLayout = "20060102150405Z"

// KerberosTime is a UTC timestamp at one-second resolution.
type KerberosTime struct {
	time.Time
}

// NewKerberosTime truncates t to whole seconds and forces it to UTC.
func NewKerberosTime(t time.Time) KerberosTime {
	return KerberosTime{t.UTC().Truncate(time.Second)}
}

func (kt KerberosTime) String() string {
	return kt.UTC().Format(kerberosTimeLayout)
}

// MarshalASN1GeneralizedTime renders kt as RFC 4120 requires, for code that
// marshals it manually instead of through a struct tag.
func (kt KerberosTime) MarshalASN1GeneralizedTime() []byte {
	return []byte(kt.String())
}

// ParseKerberosTime parses RFC 4120's fixed GeneralizedTime layout.
func ParseKerberosTime(s string) (KerberosTime, error) {
	t, err := time.Parse(kerberosTimeLayout, s)
	if err != nil {
		return KerberosTime{}, kerberr.Wrap(kerberr.Asn1Error, "parsing KerberosTime", err)
	}
	return KerberosTime{t.UTC()}, nil
}

// Salt implements the password-salt rule: uppercase(realm) ‖
// lowercase(username), with a machine-account username (one ending in
// '$') rewritten to "host" + username-sans-'$' before concatenation.
func Salt(realm, username string) string {
	if strings.HasSuffix(username, "$") {
		username = "host" + strings.TrimSuffix(username, "$")
	}
	return strings.ToUpper(realm) + strings.ToLower(username)
}
