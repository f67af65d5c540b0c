package types

import "github.com/jcmturner/gofork/encoding/asn1"

// Ticket/KDC-option flag bits this module sets or reads (RFC 4120 §5.5.1,
// §7.5.5). Bit numbering follows the RFC's big-endian BIT STRING
// convention: bit 0 is the most significant bit of the first octet.
const (
	FlagReserved     = 0
	FlagForwardable  = 1
	FlagForwarded    = 2
	FlagProxiable    = 3
	FlagProxy        = 4
	FlagMayPostdate  = 5
	FlagPostdated    = 6
	FlagInvalid      = 7
	FlagRenewable    = 8
	FlagInitial      = 9
	FlagPreAuthent   = 10
	FlagHwAuthent    = 11
	FlagCanonicalize = 15
	FlagRenewableOk  = 27
)

// Flags fields (TicketFlags, KdcOptions) are plain asn1.BitString rather
// than a distinct wrapper type: gofork's asn1 package only recognizes the
// concrete asn1.BitString type as a BIT STRING when encoding a struct
// field, so a wrapper type here would silently encode as a SEQUENCE
// instead. The helpers below give it fixed-width, bit-position-exact
// behavior without losing that recognition.

// NewFlags builds a 32-bit BIT STRING with the given bits set.
func NewFlags(bits ...int) asn1.BitString {
	f := asn1.BitString{Bytes: make([]byte, 4), BitLength: 32}
	for _, b := range bits {
		SetFlag(&f, b)
	}
	return f
}

// SetFlag turns bit n on (0 = most significant bit of the first octet),
// growing f if necessary.
func SetFlag(f *asn1.BitString, n int) {
	ensureFlagWidth(f, n)
	f.Bytes[n/8] |= 1 << uint(7-n%8)
}

// IsFlagSet reports whether bit n is on.
func IsFlagSet(f asn1.BitString, n int) bool {
	if n/8 >= len(f.Bytes) {
		return false
	}
	return f.Bytes[n/8]&(1<<uint(7-n%8)) != 0
}

func ensureFlagWidth(f *asn1.BitString, n int) {
	need := n/8 + 1
	if need < 4 {
		need = 4
	}
	if len(f.Bytes) >= need {
		if f.BitLength < need*8 {
			f.BitLength = need * 8
		}
		return
	}
	grown := make([]byte, need)
	copy(grown, f.Bytes)
	f.Bytes = grown
	f.BitLength = need * 8
}

// FlagsUint32 packs the first four octets of f into a big-endian uint32,
// the form ccache's tktflags field and similar fixed-width callers need.
func FlagsUint32(f asn1.BitString) uint32 {
	var v uint32
	for i := 0; i < 4 && i < len(f.Bytes); i++ {
		v = v<<8 | uint32(f.Bytes[i])
	}
	return v
}

// FlagsFromUint32 builds a BIT STRING from its packed big-endian
// representation, the form the ccache wire layout stores tktflags in.
func FlagsFromUint32(v uint32) asn1.BitString {
	b := []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return asn1.BitString{Bytes: b, BitLength: 32}
}
