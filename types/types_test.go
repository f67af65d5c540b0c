package types

import (
	"testing"
	"time"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/jcmturner/gofork/encoding/asn1"
	"github.com/stretchr/testify/require"
)

func TestSalt(t *testing.T) {
	require.Equal(t, "KINGDOM.HEARTSmickey", Salt("KINGDOM.HEARTS", "mickey"))
}

func TestSaltMachineAccount(t *testing.T) {
	require.Equal(t, "EXAMPLE.COMhostworkstation", Salt("example.com", "WORKSTATION$"))
}

func TestMicrosecondsBounds(t *testing.T) {
	_, err := NewMicroseconds(999999)
	require.NoError(t, err)
	_, err = NewMicroseconds(0)
	require.NoError(t, err)
	_, err = NewMicroseconds(1000000)
	require.Error(t, err)
	require.True(t, kerberr.OfKind(err, kerberr.InvalidMicroseconds))
	_, err = NewMicroseconds(-1)
	require.Error(t, err)
}

func TestAddApplicationTagWrapsExplicitly(t *testing.T) {
	// A SEQUENCE with an 0xE0-byte (224) content length, wrapped as
	// APPLICATION[10]: the outer tag/length must precede the untouched
	// inner 0x30 81 E0 bytes, not replace them.
	inner := append([]byte{0x30, 0x81, 0xE0}, make([]byte, 0xE0)...)
	out, err := AddApplicationTag(inner, TagASReq)
	require.NoError(t, err)
	require.Equal(t, []byte{0x6A, 0x81, 0xE3, 0x30, 0x81, 0xE0}, out[:6])
	require.Equal(t, inner, out[3:])
}

func TestAddApplicationTagRejectsNonSequence(t *testing.T) {
	_, err := AddApplicationTag([]byte{0x02, 0x01, 0x05}, TagASReq)
	require.Error(t, err)
}

func TestPaEncTSEncRoundTrip(t *testing.T) {
	now := time.Date(2019, 4, 18, 15, 0, 31, 123000, time.UTC)
	der, err := MarshalPaEncTSEnc(now)
	require.NoError(t, err)

	got, err := UnmarshalPaEncTSEnc(der)
	require.NoError(t, err)
	require.Equal(t, int32(123), got.PaUSec)
}

func TestUnmarshalPaEncTSEncRejectsInvalidMicroseconds(t *testing.T) {
	der, err := asn1.Marshal(PaEncTSEnc{PaTimestamp: time.Now().UTC(), PaUSec: 1000000})
	require.NoError(t, err)

	_, err = UnmarshalPaEncTSEnc(der)
	require.Error(t, err)
	require.True(t, kerberr.OfKind(err, kerberr.InvalidMicroseconds))
}

func TestPrincipalNameRequiresNonEmptyComponents(t *testing.T) {
	_, err := NewPrincipalName(NTPrincipal)
	require.Error(t, err)
	require.True(t, kerberr.OfKind(err, kerberr.NotAvailableData))
}

func TestPrincipalNameDisplay(t *testing.T) {
	p, err := NewPrincipalName(NTSrvInst, "krbtgt", "KINGDOM.HEARTS")
	require.NoError(t, err)
	require.Equal(t, "krbtgt/KINGDOM.HEARTS", p.Display())
}

func TestServicePrincipal(t *testing.T) {
	p := ServicePrincipal("KINGDOM.HEARTS")
	require.Equal(t, "krbtgt/KINGDOM.HEARTS", p.Display())
	require.EqualValues(t, NTSrvInst, p.NameType)
}

func TestNetBiosAddressPaddingAndTrim(t *testing.T) {
	addr := NewNetBiosAddress("HOLLOWBASTION")
	require.Len(t, addr.Address, 16)
	require.Equal(t, "HOLLOWBASTION", addr.NetBiosName())
	require.Equal(t, []byte("HOLLOWBASTION"), addr.UnpaddedAddress())
}

func TestNetBiosAddressExactMultipleNoPadding(t *testing.T) {
	addr := NewNetBiosAddress("0123456789ABCDEF")
	require.Len(t, addr.Address, 16)
	require.Equal(t, "0123456789ABCDEF", addr.NetBiosName())
}

func TestFlagsSetAndCheck(t *testing.T) {
	f := NewFlags(FlagForwardable, FlagRenewable)
	require.True(t, IsFlagSet(f, FlagForwardable))
	require.True(t, IsFlagSet(f, FlagRenewable))
	require.False(t, IsFlagSet(f, FlagInitial))
}

func TestFlagsUint32RoundTrip(t *testing.T) {
	v := uint32(0x40A10000) // bits 1, 8, 10, 15: Forwardable|Renewable|PreAuthent|Canonicalize
	f := FlagsFromUint32(v)
	require.Equal(t, v, FlagsUint32(f))
}

func TestKerberosTimeStringLayout(t *testing.T) {
	kt, err := ParseKerberosTime("20190418160031Z")
	require.NoError(t, err)
	require.Equal(t, "20190418160031Z", kt.String())
}
