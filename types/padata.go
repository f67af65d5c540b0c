package types

import (
	"time"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/jcmturner/gofork/encoding/asn1"
)

// PaEncTSEnc is RFC 4120's PA-ENC-TS-ENC (§5.2.7.2): the cleartext
// pre-authentication timestamp the AS exchange encrypts under the
// client's key with key-usage 1.
type PaEncTSEnc struct {
	PaTimestamp time.Time `asn1:"generalized,explicit,tag:0"`
	PaUSec      int32     `asn1:"explicit,optional,tag:1"`
}

// MarshalPaEncTSEnc DER-encodes a PA-ENC-TS-ENC for t, splitting t's
// sub-second component into PaUSec per RFC 4120 §5.2.7.2.
func MarshalPaEncTSEnc(t time.Time) ([]byte, error) {
	v := PaEncTSEnc{PaTimestamp: t, PaUSec: int32(t.Nanosecond() / 1000)}
	return asn1.Marshal(v)
}

// UnmarshalPaEncTSEnc decodes a PA-ENC-TS-ENC, validating PaUSec is a
// legal Microseconds value.
func UnmarshalPaEncTSEnc(b []byte) (PaEncTSEnc, error) {
	var v PaEncTSEnc
	if _, err := asn1.Unmarshal(b, &v); err != nil {
		return PaEncTSEnc{}, kerberr.Wrap(kerberr.Asn1Error, "unmarshaling PA-ENC-TS-ENC", err)
	}
	if _, err := NewMicroseconds(v.PaUSec); err != nil {
		return PaEncTSEnc{}, err
	}
	return v, nil
}

// Pre-authentication data types this module produces or consumes
// (RFC 4120 §7.5.2, MS-KILE for PA-PAC-REQUEST).
const (
	PaTGSReq       = 1
	PaEncTimestamp = 2
	PaPwSalt       = 3
	PaEtypeInfo    = 11
	PaEtypeInfo2   = 19
	PaPacRequest   = 128
)

// wirePaData is the raw {padata_type, padata_value} shape every PA-DATA
// element has on the wire (RFC 4120 §5.2.7.2).
type wirePaData struct {
	PaDataType  int32  `asn1:"explicit,tag:1"`
	PaDataValue []byte `asn1:"explicit,tag:2"`
}

// PaData is a closed tagged variant over the pre-auth data types this
// module understands. Decoding a recognized padata_type parses
// padata_value further; anything else is kept as Raw so re-encoding is
// lossless.
type PaData struct {
	Type          int32
	EtypeInfo2    []EtypeInfo2Entry // PaEtypeInfo2
	EncTimestamp  *EncryptedData    // PaEncTimestamp
	PacRequest    *bool             // PaPacRequest
	Raw           []byte            // fallback: padata_value as received
}

// EtypeInfo2Entry is ETYPE-INFO2-ENTRY (RFC 4120 §5.2.7.5). The first
// entry's salt is authoritative for key-from-password derivation when
// more than one is present.
type EtypeInfo2Entry struct {
	EType     int32  `asn1:"explicit,tag:0"`
	Salt      string `asn1:"generalstring,explicit,optional,tag:1"`
	S2KParams []byte `asn1:"explicit,optional,tag:2"`
}

type paPacRequest struct {
	IncludePac bool `asn1:"explicit,tag:0"`
}

// NewEncTimestampPaData builds a PA-ENC-TIMESTAMP datum.
func NewEncTimestampPaData(enc EncryptedData) PaData {
	return PaData{Type: PaEncTimestamp, EncTimestamp: &enc}
}

// NewPacRequestPaData builds a PA-PAC-REQUEST datum.
func NewPacRequestPaData(include bool) PaData {
	return PaData{Type: PaPacRequest, PacRequest: &include}
}

// paDataValue renders p's padata_value octet string.
func paDataValue(p PaData) ([]byte, error) {
	switch p.Type {
	case PaEncTimestamp:
		return asn1.Marshal(*p.EncTimestamp)
	case PaPacRequest:
		return asn1.Marshal(paPacRequest{IncludePac: *p.PacRequest})
	case PaEtypeInfo2:
		return asn1.Marshal(p.EtypeInfo2)
	default:
		return p.Raw, nil
	}
}

// Marshal renders p as its wire {padata_type, padata_value} form.
func (p PaData) Marshal() ([]byte, error) {
	value, err := paDataValue(p)
	if err != nil {
		return nil, err
	}
	return asn1.Marshal(wirePaData{PaDataType: p.Type, PaDataValue: value})
}

// unmarshalPaData decodes one wire PA-DATA element, interpreting its value
// when the type is recognized, else keeping it raw.
func unmarshalPaData(w wirePaData) PaData {
	p := PaData{Type: w.PaDataType}
	switch w.PaDataType {
	case PaEncTimestamp:
		var ed EncryptedData
		if _, err := asn1.Unmarshal(w.PaDataValue, &ed); err == nil {
			p.EncTimestamp = &ed
			return p
		}
	case PaPacRequest:
		var r paPacRequest
		if _, err := asn1.Unmarshal(w.PaDataValue, &r); err == nil {
			p.PacRequest = &r.IncludePac
			return p
		}
	case PaEtypeInfo2:
		var entries []EtypeInfo2Entry
		if _, err := asn1.Unmarshal(w.PaDataValue, &entries); err == nil {
			p.EtypeInfo2 = entries
			return p
		}
	}
	p.Raw = w.PaDataValue
	return p
}

// MethodData is a SeqOf<PaData> — the shape KRB-ERROR's e_data decodes as
// when error_code == KDC_ERR_PREAUTH_REQUIRED (RFC 4120 §5.9.1).
type MethodData []PaData

// MarshalMethodData renders a MethodData sequence to DER.
func MarshalMethodData(md MethodData) ([]byte, error) {
	wire := make([]wirePaData, len(md))
	for i, p := range md {
		value, err := paDataValue(p)
		if err != nil {
			return nil, err
		}
		wire[i] = wirePaData{PaDataType: p.Type, PaDataValue: value}
	}
	return asn1.Marshal(wire)
}

// UnmarshalMethodData decodes a SeqOf<PaData>.
func UnmarshalMethodData(b []byte) (MethodData, error) {
	var wire []wirePaData
	if _, err := asn1.Unmarshal(b, &wire); err != nil {
		return nil, err
	}
	md := make(MethodData, len(wire))
	for i, w := range wire {
		md[i] = unmarshalPaData(w)
	}
	return md, nil
}

// EncodePaDataValue renders p's padata_value octet string, for callers
// (package messages) building their own {padata_type, padata_value} wire
// struct around an APPLICATION-tagged message.
func EncodePaDataValue(p PaData) ([]byte, error) {
	return paDataValue(p)
}

// DecodePaData interprets one already-split {padata_type, padata_value}
// pair, for callers that decode the wire pair through their own struct.
func DecodePaData(paDataType int32, paDataValue []byte) PaData {
	return unmarshalPaData(wirePaData{PaDataType: paDataType, PaDataValue: paDataValue})
}

// FindEtypeInfo2 returns the first PA-ETYPE-INFO2 datum's entries, if any.
func (md MethodData) FindEtypeInfo2() ([]EtypeInfo2Entry, bool) {
	for _, p := range md {
		if p.Type == PaEtypeInfo2 && len(p.EtypeInfo2) > 0 {
			return p.EtypeInfo2, true
		}
	}
	return nil, false
}
