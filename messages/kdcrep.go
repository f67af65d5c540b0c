package messages

import (
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/jcmturner/gofork/encoding/asn1"
)

// wireKdcRep is the {pvno, msg-type, padata?, crealm, cname, ticket,
// enc-part} shape shared by AS-REP and TGS-REP (RFC 4120 §5.4.2). Ticket
// is kept as a RawValue since it carries its own APPLICATION[1] tag
// distinct from this message's own explicit context tag.
type wireKdcRep struct {
	PVNO    int                  `asn1:"explicit,tag:0"`
	MsgType int                  `asn1:"explicit,tag:1"`
	PAData  []rawPaData          `asn1:"explicit,optional,tag:2"`
	CRealm  string               `asn1:"generalstring,explicit,tag:3"`
	CName   types.PrincipalName  `asn1:"explicit,tag:4"`
	Ticket  asn1.RawValue        `asn1:"explicit,tag:5"`
	EncPart types.EncryptedData  `asn1:"explicit,tag:6"`
}

// ASRep is RFC 4120's AS-REP, APPLICATION tag 11.
type ASRep struct {
	PVNO    int
	MsgType int
	PAData  []types.PaData
	CRealm  string
	CName   types.PrincipalName
	Ticket  types.Ticket
	EncPart types.EncryptedData
}

// Marshal DER-encodes the AS-REP as an APPLICATION[11]-tagged SEQUENCE.
func (a ASRep) Marshal() ([]byte, error) {
	tktBytes, err := a.Ticket.Marshal()
	if err != nil {
		return nil, err
	}
	w := wireKdcRep{
		PVNO:    a.PVNO,
		MsgType: a.MsgType,
		CRealm:  a.CRealm,
		CName:   a.CName,
		Ticket:  asn1.RawValue{Class: asn1.ClassContextSpecific, IsCompound: true, Tag: 5, Bytes: tktBytes},
		EncPart: a.EncPart,
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
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling AS-REP", err)
	}
	return addAppTag(b, types.TagASRep)
}

// UnmarshalASRep decodes an APPLICATION[11]-tagged AS-REP. Returns an
// Asn1Error if b does not parse as an AS-REP at all (a caller suspecting
// it is instead a KRB-ERROR should try UnmarshalKrbError).
func UnmarshalASRep(b []byte) (ASRep, error) {
	var w wireKdcRep
	if err := unmarshalAppTag(b, &w, types.TagASRep); err != nil {
		return ASRep{}, err
	}
	if w.MsgType != msgTypeASRep {
		return ASRep{}, kerberr.Newf(kerberr.Asn1Error, "expected msg-type %d (AS-REP), got %d", msgTypeASRep, w.MsgType)
	}
	tkt, err := types.UnmarshalTicket(w.Ticket.Bytes)
	if err != nil {
		return ASRep{}, err
	}
	a := ASRep{
		PVNO:    w.PVNO,
		MsgType: w.MsgType,
		CRealm:  w.CRealm,
		CName:   w.CName,
		Ticket:  tkt,
		EncPart: w.EncPart,
	}
	for _, rp := range w.PAData {
		a.PAData = append(a.PAData, fromRawPaData(rp))
	}
	return a, nil
}
