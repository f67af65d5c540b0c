package types

import (
	"time"

	"github.com/jcmturner/gofork/encoding/asn1"
)

// KdcReqBody is RFC 4120's KDC-REQ-BODY (§5.4.1), the request-body shape
// shared by AS-REQ and TGS-REQ. AdditionalTickets is kept as raw APPLICATION
// [1]-tagged Ticket DER (rather than decoded Ticket values) because this
// module never issues a TGS-REQ, so it never needs to build non-empty
// AdditionalTickets itself — only to round-trip it if ever present.
type KdcReqBody struct {
	KDCOptions        asn1.BitString  `asn1:"explicit,tag:0"`
	CName             PrincipalName   `asn1:"explicit,optional,tag:1"`
	Realm             string          `asn1:"generalstring,explicit,tag:2"`
	SName             PrincipalName   `asn1:"explicit,optional,tag:3"`
	From              time.Time       `asn1:"generalized,explicit,optional,tag:4"`
	Till              time.Time       `asn1:"generalized,explicit,tag:5"`
	RTime             time.Time       `asn1:"generalized,explicit,optional,tag:6"`
	Nonce             int32           `asn1:"explicit,tag:7"`
	EType             []int32         `asn1:"explicit,tag:8"`
	Addresses         HostAddresses   `asn1:"explicit,optional,tag:9"`
	EncAuthData       EncryptedData   `asn1:"explicit,optional,tag:10"`
	AdditionalTickets []asn1.RawValue `asn1:"explicit,optional,tag:11"`
}

// LastReqEntry is RFC 4120's LastReq element (§5.4.2): a tagged
// last-request timestamp.
type LastReqEntry struct {
	LRType  int32     `asn1:"explicit,tag:0"`
	LRValue time.Time `asn1:"generalized,explicit,tag:1"`
}

// LastReq is SeqOf<LastReqEntry>, present on EncKDCRepPart. Part of the
// RFC 4120 EncKDCRepPart shape; decoded and retained rather than skipped.
type LastReq []LastReqEntry

// AuthorizationDataEntry is one element of RFC 4120's AuthorizationData
// (§5.2.6). Nothing in this module uses it: KdcReqBody.EncAuthData stays
// an undecrypted EncryptedData, and package ccache has its own
// AuthDataEntry wire type.
type AuthorizationDataEntry struct {
	ADType int32  `asn1:"explicit,tag:0"`
	ADData []byte `asn1:"explicit,tag:1"`
}
