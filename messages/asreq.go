// Package messages holds the top-level Kerberos messages this module
// builds or parses: AS-REQ, AS-REP/KDC-REP, KRB-ERROR, EncKDCRepPart,
// KRB-CRED and EncKrbCredPart. Each is marshaled from a private
// wire-shaped struct as a plain SEQUENCE and wrapped in its APPLICATION
// tag through package types' application-tag helpers. Where a field is
// itself a separately tagged value (AS-REQ's req-body, the tickets of
// AS-REP and KRB-CRED), the wire struct carries it as an asn1.RawValue
// while the public struct exposes it already decoded.
package messages

import (
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/jcmturner/gofork/encoding/asn1"
)

const (
	pvno       = 5
	msgTypeASReq    = 10
	msgTypeASRep    = 11
	msgTypeKrbError = 30
	msgTypeKrbCred  = 22
)

// wireKdcReq is the {pvno, msg-type, padata?, req-body} shape shared by
// AS-REQ and TGS-REQ (RFC 4120 §5.4.1), with req-body left undecoded so
// the outer APPLICATION tag machinery stays in one place.
type wireKdcReq struct {
	PVNO    int             `asn1:"explicit,tag:1"`
	MsgType int             `asn1:"explicit,tag:2"`
	PAData  []rawPaData     `asn1:"explicit,optional,tag:3"`
	ReqBody asn1.RawValue   `asn1:"explicit,tag:4"`
}

// rawPaData mirrors types.PaData's wire shape; kept private here to avoid
// a second copy of the PA-DATA interpretation logic living outside
// package types, while letting wireKdcReq round-trip the PAData slice
// losslessly via types' own (un)marshal helpers.
type rawPaData struct {
	PaDataType  int32  `asn1:"explicit,tag:1"`
	PaDataValue []byte `asn1:"explicit,tag:2"`
}

// ASReq is RFC 4120's AS-REQ, APPLICATION tag 10.
type ASReq struct {
	PVNO    int
	MsgType int
	PAData  []types.PaData
	ReqBody types.KdcReqBody
}

// NewASReq builds an AS-REQ envelope around body and padata.
func NewASReq(body types.KdcReqBody, padata ...types.PaData) ASReq {
	return ASReq{PVNO: pvno, MsgType: msgTypeASReq, PAData: padata, ReqBody: body}
}

// Marshal DER-encodes the AS-REQ as an APPLICATION[10]-tagged SEQUENCE.
func (a ASReq) Marshal() ([]byte, error) {
	bodyBytes, err := asn1.Marshal(a.ReqBody)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling KDC-REQ-BODY", err)
	}
	w := wireKdcReq{
		PVNO:    a.PVNO,
		MsgType: a.MsgType,
		ReqBody: asn1.RawValue{Class: 2, IsCompound: true, Tag: 4, Bytes: bodyBytes},
	}
	for _, p := range a.PAData {
		rp, err := toRawPaData(p)
		if err != nil {
			return nil, err
		}
		w.PAData = append(w.PAData, rp)
	}
	b, err := asn1.Marshal(w)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling AS-REQ", err)
	}
	return addAppTag(b, types.TagASReq)
}

// UnmarshalASReq decodes an APPLICATION[10]-tagged AS-REQ.
func UnmarshalASReq(b []byte) (ASReq, error) {
	var w wireKdcReq
	if err := unmarshalAppTag(b, &w, types.TagASReq); err != nil {
		return ASReq{}, err
	}
	if w.MsgType != msgTypeASReq {
		return ASReq{}, kerberr.Newf(kerberr.Asn1Error, "expected msg-type %d (AS-REQ), got %d", msgTypeASReq, w.MsgType)
	}
	var body types.KdcReqBody
	if _, err := asn1.Unmarshal(w.ReqBody.Bytes, &body); err != nil {
		return ASReq{}, kerberr.Wrap(kerberr.Asn1Error, "unmarshaling KDC-REQ-BODY", err)
	}
	a := ASReq{PVNO: w.PVNO, MsgType: w.MsgType, ReqBody: body}
	for _, rp := range w.PAData {
		a.PAData = append(a.PAData, fromRawPaData(rp))
	}
	return a, nil
}

func toRawPaData(p types.PaData) (rawPaData, error) {
	value, err := types.EncodePaDataValue(p)
	if err != nil {
		return rawPaData{}, kerberr.Wrap(kerberr.Asn1Error, "marshaling PA-DATA", err)
	}
	return rawPaData{PaDataType: p.Type, PaDataValue: value}, nil
}

func fromRawPaData(w rawPaData) types.PaData {
	return types.DecodePaData(w.PaDataType, w.PaDataValue)
}
