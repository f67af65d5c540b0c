package messages

import (
	"testing"
	"time"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/stretchr/testify/require"
)

// TestASReqPrefix checks that the DER of an AS-REQ carrying a
// PA-PAC-REQUEST(true) datum begins with the APPLICATION[10] tag/length
// bytes 6A 81 E3 30 81 E0.
func TestASReqPrefix(t *testing.T) {
	addr := types.NewNetBiosAddress("HOLLOWBASTION")
	addrs, err := types.NewHostAddresses(addr)
	require.NoError(t, err)

	cname, err := types.NewPrincipalName(types.NTPrincipal, "mickey")
	require.NoError(t, err)

	till := time.Date(2037, 9, 13, 2, 48, 5, 0, time.UTC)
	body := types.KdcReqBody{
		KDCOptions: types.NewFlags(types.FlagForwardable, types.FlagRenewable, types.FlagCanonicalize, types.FlagRenewableOk),
		CName:      cname,
		Realm:      "KINGDOM.HEARTS",
		SName:      types.ServicePrincipal("KINGDOM.HEARTS"),
		Till:       till,
		RTime:      till,
		Nonce:      101225910,
		EType:      []int32{18, 17, 23, 24, -135, 3},
		Addresses:  addrs,
	}
	a := NewASReq(body, types.NewPacRequestPaData(true))

	der, err := a.Marshal()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(der), 6)
	require.Equal(t, []byte{0x6A, 0x81, 0xE3, 0x30, 0x81, 0xE0}, der[:6])
}

func TestASReqRoundTrip(t *testing.T) {
	cname, err := types.NewPrincipalName(types.NTPrincipal, "mickey")
	require.NoError(t, err)
	till := time.Date(2037, 9, 13, 2, 48, 5, 0, time.UTC)
	body := types.KdcReqBody{
		KDCOptions: types.NewFlags(types.FlagForwardable),
		CName:      cname,
		Realm:      "KINGDOM.HEARTS",
		SName:      types.ServicePrincipal("KINGDOM.HEARTS"),
		Till:       till,
		RTime:      till,
		Nonce:      42,
		EType:      []int32{18},
	}
	a := NewASReq(body, types.NewPacRequestPaData(true))

	der, err := a.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalASReq(der)
	require.NoError(t, err)
	require.Equal(t, a.ReqBody.Realm, got.ReqBody.Realm)
	require.Equal(t, a.ReqBody.Nonce, got.ReqBody.Nonce)
	require.Equal(t, a.ReqBody.EType, got.ReqBody.EType)
	require.Len(t, got.PAData, 1)
	require.Equal(t, types.PaPacRequest, int(got.PAData[0].Type))
	require.NotNil(t, got.PAData[0].PacRequest)
	require.True(t, *got.PAData[0].PacRequest)
}

func TestASRepRoundTrip(t *testing.T) {
	cname, err := types.NewPrincipalName(types.NTPrincipal, "mickey")
	require.NoError(t, err)
	sname := types.ServicePrincipal("KINGDOM.HEARTS")
	ticket := types.Ticket{
		TktVNO:  5,
		Realm:   "KINGDOM.HEARTS",
		SName:   sname,
		EncPart: types.EncryptedData{EType: 18, Cipher: []byte{1, 2, 3, 4}},
	}
	a := ASRep{
		PVNO: pvno, MsgType: msgTypeASRep,
		CRealm: "KINGDOM.HEARTS", CName: cname, Ticket: ticket,
		EncPart: types.EncryptedData{EType: 18, Cipher: []byte{5, 6, 7, 8}},
	}
	der, err := a.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalASRep(der)
	require.NoError(t, err)
	require.Equal(t, a.CRealm, got.CRealm)
	require.Equal(t, a.EncPart.Cipher, got.EncPart.Cipher)
	require.Equal(t, a.Ticket.Realm, got.Ticket.Realm)

	// A KRB-ERROR must not be misparsed as an AS-REP.
	e := &KrbError{PVNO: pvno, MsgType: msgTypeKrbError, ErrorCode: KdcErrPreauthRequired, Realm: "KINGDOM.HEARTS", SName: sname, STime: time.Now().UTC()}
	ed, err := e.Marshal()
	require.NoError(t, err)
	_, err = UnmarshalASRep(ed)
	require.Error(t, err)

	got2, err := UnmarshalKrbError(ed)
	require.NoError(t, err)
	require.Equal(t, int32(KdcErrPreauthRequired), got2.ErrorCode)
}

func TestKrbErrorMethodData(t *testing.T) {
	md, err := types.MarshalMethodData(types.MethodData{
		{Type: types.PaEtypeInfo2, EtypeInfo2: []types.EtypeInfo2Entry{{EType: 18, Salt: "KINGDOM.HEARTSmickey"}}},
	})
	require.NoError(t, err)
	e := &KrbError{PVNO: pvno, MsgType: msgTypeKrbError, ErrorCode: KdcErrPreauthRequired, Realm: "KINGDOM.HEARTS", SName: types.ServicePrincipal("KINGDOM.HEARTS"), STime: time.Now().UTC(), EData: md}

	decoded, ok := lookupEtypeInfo2(t, e)
	require.True(t, ok)
	require.Equal(t, int32(18), decoded.EType)
	require.Equal(t, "KINGDOM.HEARTSmickey", decoded.Salt)
}

func TestUnmarshalKrbErrorRejectsInvalidMicroseconds(t *testing.T) {
	e := &KrbError{
		PVNO: pvno, MsgType: msgTypeKrbError, ErrorCode: KdcErrPreauthRequired,
		Realm: "KINGDOM.HEARTS", SName: types.ServicePrincipal("KINGDOM.HEARTS"),
		STime: time.Now().UTC(), Susec: 1000000,
	}
	der, err := e.Marshal()
	require.NoError(t, err)

	_, err = UnmarshalKrbError(der)
	require.Error(t, err)
	require.True(t, kerberr.OfKind(err, kerberr.InvalidMicroseconds))
}

func lookupEtypeInfo2(t *testing.T, e *KrbError) (types.EtypeInfo2Entry, bool) {
	t.Helper()
	md, err := e.MethodData()
	require.NoError(t, err)
	entries, ok := md.FindEtypeInfo2()
	if !ok {
		return types.EtypeInfo2Entry{}, false
	}
	return entries[0], true
}
