package types

import (
	"strings"

	"github.com/cention-sany/krb5/kerberr"
)

// AddrTypeNetBios is the addr-type for a NetBios name host address.
const AddrTypeNetBios = 20

// HostAddress is RFC 4120's HostAddress: a tagged addr-type/address pair.
// NetBios names are padded on the ASN.1 wire to a 16-byte multiple with
// ASCII space (0x20); Raw addresses carry their bytes unmodified. Padding
// is an ASN.1-only transformation — the ccache wire form in package
// ccache uses the unpadded bytes directly.
type HostAddress struct {
	AddrType int32  `asn1:"explicit,tag:0"`
	Address  []byte `asn1:"explicit,tag:1"`
}

// NewNetBiosAddress builds a HostAddress for a NetBios name, padding it to
// the next 16-byte boundary with ASCII spaces for ASN.1 encoding.
func NewNetBiosAddress(name string) HostAddress {
	return HostAddress{AddrType: AddrTypeNetBios, Address: padNetBios(name)}
}

// NewRawAddress builds a HostAddress carrying an opaque address of the
// given addr-type, unmodified.
func NewRawAddress(addrType int32, raw []byte) HostAddress {
	return HostAddress{AddrType: addrType, Address: raw}
}

// IsNetBios reports whether h carries a NetBios name.
func (h HostAddress) IsNetBios() bool { return h.AddrType == AddrTypeNetBios }

// NetBiosName trims the 0x20 padding NewNetBiosAddress applies, returning
// the original name. Only meaningful when IsNetBios() is true.
func (h HostAddress) NetBiosName() string {
	return strings.TrimRight(string(h.Address), " ")
}

// UnpaddedAddress returns the address bytes without ASN.1 NetBios padding,
// the form the ccache wire layout requires. Deliberately two distinct
// serializers: padding is never centralized into HostAddress itself.
func (h HostAddress) UnpaddedAddress() []byte {
	if h.IsNetBios() {
		return []byte(h.NetBiosName())
	}
	return h.Address
}

// Equal reports whether h and o carry the same addr-type and bytes.
func (h HostAddress) Equal(o HostAddress) bool {
	if h.AddrType != o.AddrType || len(h.Address) != len(o.Address) {
		return false
	}
	for i := range h.Address {
		if h.Address[i] != o.Address[i] {
			return false
		}
	}
	return true
}

func padNetBios(name string) []byte {
	b := []byte(name)
	pad := (16 - len(b)%16) % 16
	if pad == 0 {
		return b
	}
	out := make([]byte, len(b)+pad)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = ' '
	}
	return out
}

// HostAddresses is a non-empty ordered sequence of HostAddress.
type HostAddresses []HostAddress

// NewHostAddresses validates addrs is non-empty.
func NewHostAddresses(addrs ...HostAddress) (HostAddresses, error) {
	if len(addrs) == 0 {
		return nil, kerberr.FieldErr(kerberr.NoAddress, "HostAddresses")
	}
	return HostAddresses(addrs), nil
}
