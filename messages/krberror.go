package messages

import (
	"time"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/jcmturner/gofork/encoding/asn1"
)

// KdcErrPreauthRequired is RFC 4120's error-code 25: the KDC wants
// pre-authentication before it will issue a ticket.
const KdcErrPreauthRequired = 25

type wireKrbError struct {
	PVNO      int                 `asn1:"explicit,tag:0"`
	MsgType   int                 `asn1:"explicit,tag:1"`
	CTime     time.Time           `asn1:"generalized,explicit,optional,tag:2"`
	Cusec     int                 `asn1:"explicit,optional,tag:3"`
	STime     time.Time           `asn1:"generalized,explicit,tag:4"`
	Susec     int                 `asn1:"explicit,tag:5"`
	ErrorCode int32               `asn1:"explicit,tag:6"`
	CRealm    string              `asn1:"generalstring,explicit,optional,tag:7"`
	CName     types.PrincipalName `asn1:"explicit,optional,tag:8"`
	Realm     string              `asn1:"generalstring,explicit,tag:9"`
	SName     types.PrincipalName `asn1:"explicit,tag:10"`
	EText     string              `asn1:"generalstring,explicit,optional,tag:11"`
	EData     []byte              `asn1:"explicit,optional,tag:12"`
}

// KrbError is RFC 4120's KRB-ERROR, APPLICATION tag 30.
type KrbError struct {
	PVNO      int
	MsgType   int
	CTime     time.Time
	Cusec     int
	STime     time.Time
	Susec     int
	ErrorCode int32
	CRealm    string
	CName     types.PrincipalName
	Realm     string
	SName     types.PrincipalName
	EText     string
	EData     []byte
}

// Error lets *KrbError satisfy the error interface directly, so a decoded
// KRB-ERROR can be returned and matched on like any other error.
func (e *KrbError) Error() string {
	if e.EText != "" {
		return e.EText
	}
	return kerberr.Newf(kerberr.KrbErrorResponse, "KDC error code %d", e.ErrorCode).Error()
}

// MethodData decodes EData as a SeqOf<PaData>, valid only when ErrorCode
// == KdcErrPreauthRequired (RFC 4120 §5.9.1); e_data is otherwise opaque.
func (e *KrbError) MethodData() (types.MethodData, error) {
	if e.ErrorCode != KdcErrPreauthRequired {
		return nil, kerberr.Newf(kerberr.Asn1Error, "e-data is not MethodData for error code %d", e.ErrorCode)
	}
	return types.UnmarshalMethodData(e.EData)
}

// Marshal DER-encodes the KRB-ERROR as an APPLICATION[30]-tagged SEQUENCE.
func (e *KrbError) Marshal() ([]byte, error) {
	w := wireKrbError{
		PVNO: e.PVNO, MsgType: e.MsgType, CTime: e.CTime, Cusec: e.Cusec,
		STime: e.STime, Susec: e.Susec, ErrorCode: e.ErrorCode,
		CRealm: e.CRealm, CName: e.CName, Realm: e.Realm, SName: e.SName,
		EText: e.EText, EData: e.EData,
	}
	b, err := asn1.Marshal(w)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling KRB-ERROR", err)
	}
	return addAppTag(b, types.TagKrbError)
}

// UnmarshalKrbError decodes an APPLICATION[30]-tagged KRB-ERROR.
func UnmarshalKrbError(b []byte) (*KrbError, error) {
	var w wireKrbError
	if err := unmarshalAppTag(b, &w, types.TagKrbError); err != nil {
		return nil, err
	}
	if w.MsgType != msgTypeKrbError {
		return nil, kerberr.Newf(kerberr.Asn1Error, "expected msg-type %d (KRB-ERROR), got %d", msgTypeKrbError, w.MsgType)
	}
	if _, err := types.NewMicroseconds(int32(w.Cusec)); err != nil {
		return nil, err
	}
	if _, err := types.NewMicroseconds(int32(w.Susec)); err != nil {
		return nil, err
	}
	return &KrbError{
		PVNO: w.PVNO, MsgType: w.MsgType, CTime: w.CTime, Cusec: w.Cusec,
		STime: w.STime, Susec: w.Susec, ErrorCode: w.ErrorCode,
		CRealm: w.CRealm, CName: w.CName, Realm: w.Realm, SName: w.SName,
		EText: w.EText, EData: w.EData,
	}, nil
}
