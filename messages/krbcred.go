package messages

import (
	"time"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/jcmturner/gofork/encoding/asn1"
)

// KrbCredInfo is RFC 4120's KrbCredInfo (§5.8.1): per-ticket session
// metadata carried inside an EncKrbCredPart.
type KrbCredInfo struct {
	Key       types.EncryptionKey `asn1:"explicit,tag:0"`
	PRealm    string              `asn1:"generalstring,explicit,optional,tag:1"`
	PName     types.PrincipalName `asn1:"explicit,optional,tag:2"`
	Flags     asn1.BitString      `asn1:"explicit,optional,tag:3"`
	AuthTime  time.Time           `asn1:"generalized,explicit,optional,tag:4"`
	StartTime time.Time           `asn1:"generalized,explicit,optional,tag:5"`
	EndTime   time.Time           `asn1:"generalized,explicit,optional,tag:6"`
	RenewTill time.Time           `asn1:"generalized,explicit,optional,tag:7"`
	SRealm    string              `asn1:"generalstring,explicit,optional,tag:8"`
	SName     types.PrincipalName `asn1:"explicit,optional,tag:9"`
	CAddr     types.HostAddresses `asn1:"explicit,optional,tag:10"`
}

type wireEncKrbCredPart struct {
	TicketInfo []KrbCredInfo       `asn1:"explicit,tag:0"`
	Nonce      int32               `asn1:"explicit,optional,tag:1"`
	Timestamp  time.Time           `asn1:"generalized,explicit,optional,tag:2"`
	USec       int                 `asn1:"explicit,optional,tag:3"`
	SAddress   types.HostAddress   `asn1:"explicit,optional,tag:4"`
	RAddress   types.HostAddress   `asn1:"explicit,optional,tag:5"`
}

// EncKrbCredPart is RFC 4120's EncKrbCredPart, APPLICATION tag 29 — the
// payload of KRB-CRED.enc_part. This module's export path always leaves
// it unencrypted (etype 0), matching the Windows .kirbi convention.
type EncKrbCredPart struct {
	TicketInfo []KrbCredInfo
	Nonce      int32
	Timestamp  time.Time
	USec       int
}

// Marshal DER-encodes the EncKrbCredPart as an APPLICATION[29]-tagged
// SEQUENCE.
func (e EncKrbCredPart) Marshal() ([]byte, error) {
	w := wireEncKrbCredPart{TicketInfo: e.TicketInfo, Nonce: e.Nonce, Timestamp: e.Timestamp, USec: e.USec}
	b, err := asn1.Marshal(w)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling EncKrbCredPart", err)
	}
	return addAppTag(b, types.TagEncKrbCredPart)
}

// UnmarshalEncKrbCredPart decodes an APPLICATION[29]-tagged EncKrbCredPart.
func UnmarshalEncKrbCredPart(b []byte) (EncKrbCredPart, error) {
	var w wireEncKrbCredPart
	if err := unmarshalAppTag(b, &w, types.TagEncKrbCredPart); err != nil {
		return EncKrbCredPart{}, err
	}
	return EncKrbCredPart{TicketInfo: w.TicketInfo, Nonce: w.Nonce, Timestamp: w.Timestamp, USec: w.USec}, nil
}

type wireKrbCred struct {
	PVNO    int             `asn1:"explicit,tag:0"`
	MsgType int             `asn1:"explicit,tag:1"`
	Tickets []asn1.RawValue `asn1:"explicit,tag:2"`
	EncPart types.EncryptedData `asn1:"explicit,tag:3"`
}

// KrbCred is RFC 4120's KRB-CRED, APPLICATION tag 22 — the Windows
// KRB-CRED/.kirbi export envelope.
type KrbCred struct {
	PVNO    int
	MsgType int
	Tickets []types.Ticket
	EncPart types.EncryptedData
}

// NewKrbCred wraps tickets and an already-built (and, per this module's
// export convention, unencrypted) enc-part into a KRB-CRED envelope.
func NewKrbCred(tickets []types.Ticket, encPart types.EncryptedData) KrbCred {
	return KrbCred{PVNO: pvno, MsgType: msgTypeKrbCred, Tickets: tickets, EncPart: encPart}
}

// Marshal DER-encodes the KRB-CRED as an APPLICATION[22]-tagged SEQUENCE.
func (k KrbCred) Marshal() ([]byte, error) {
	w := wireKrbCred{PVNO: k.PVNO, MsgType: k.MsgType, EncPart: k.EncPart}
	for _, t := range k.Tickets {
		tb, err := t.Marshal()
		if err != nil {
			return nil, err
		}
		w.Tickets = append(w.Tickets, asn1.RawValue{FullBytes: tb})
	}
	b, err := asn1.Marshal(w)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling KRB-CRED", err)
	}
	return addAppTag(b, types.TagKrbCred)
}

// UnmarshalKrbCred decodes an APPLICATION[22]-tagged KRB-CRED.
func UnmarshalKrbCred(b []byte) (KrbCred, error) {
	var w wireKrbCred
	if err := unmarshalAppTag(b, &w, types.TagKrbCred); err != nil {
		return KrbCred{}, err
	}
	if w.MsgType != msgTypeKrbCred {
		return KrbCred{}, kerberr.Newf(kerberr.Asn1Error, "expected msg-type %d (KRB-CRED), got %d", msgTypeKrbCred, w.MsgType)
	}
	k := KrbCred{PVNO: w.PVNO, MsgType: w.MsgType, EncPart: w.EncPart}
	for _, raw := range w.Tickets {
		t, err := types.UnmarshalTicket(raw.FullBytes)
		if err != nil {
			return KrbCred{}, err
		}
		k.Tickets = append(k.Tickets, t)
	}
	return k, nil
}
