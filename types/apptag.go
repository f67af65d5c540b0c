package types

import (
	"fmt"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/jcmturner/gofork/encoding/asn1"
)

// Application tag numbers for the top-level Kerberos messages this module
// builds or parses (RFC 4120 §5).
const (
	TagASReq         = 10
	TagASRep         = 11
	TagTGSReq        = 12
	TagTGSRep        = 13
	TagKrbError      = 30
	TagEncASRepPart  = 25 // EncASRepPart; TGS-REP's EncTGSRepPart is APPLICATION 26 (RFC 4120 §5.4.2)
	TagKrbCred       = 22
	TagEncKrbCredPart = 29
	TagTicket        = 1
)

// AddApplicationTag wraps der — a complete marshaled SEQUENCE — in an
// outer APPLICATION-class constructed TLV carrying tag, the EXPLICIT
// tagging RFC 4120 uses for every top-level message (AS-REQ ::=
// [APPLICATION 10] KDC-REQ, and so on): the SEQUENCE's own tag/length/
// content octets are carried unchanged as the content of a new outer
// tag, not rewritten in place. Exported so package messages can apply
// the same wrap to its own APPLICATION-tagged envelopes (AS-REQ, AS-REP,
// KRB-ERROR, KRB-CRED).
func AddApplicationTag(der []byte, tag int) ([]byte, error) {
	if len(der) == 0 || der[0] != 0x30 {
		return nil, kerberr.New(kerberr.Asn1Error, "marshaled value does not start with a universal SEQUENCE tag")
	}
	out, err := asn1.Marshal(asn1.RawValue{
		Class:      asn1.ClassApplication,
		Tag:        tag,
		IsCompound: true,
		Bytes:      der,
	})
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "wrapping value in application tag", err)
	}
	return out, nil
}

// ApplicationParams builds the UnmarshalWithParams parameter string for
// decoding a top-level APPLICATION-tagged, explicitly-wrapped SEQUENCE.
func ApplicationParams(tag int) string {
	return fmt.Sprintf("application,explicit,tag:%d", tag)
}

// marshalApplication marshals v as a plain SEQUENCE then rewraps it with
// the given APPLICATION tag.
func marshalApplication(v any, tag int) ([]byte, error) {
	b, err := asn1.Marshal(v)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling", err)
	}
	return AddApplicationTag(b, tag)
}

// unmarshalApplication decodes b as an APPLICATION[tag]-wrapped SEQUENCE
// into v.
func unmarshalApplication(b []byte, v any, tag int) error {
	_, err := asn1.UnmarshalWithParams(b, v, ApplicationParams(tag))
	if err != nil {
		return kerberr.Wrap(kerberr.Asn1Error, "unmarshaling application-tagged value", err)
	}
	return nil
}
