package messages

import (
	"time"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/jcmturner/gofork/encoding/asn1"
)

type wireEncKdcRepPart struct {
	Key             types.EncryptionKey   `asn1:"explicit,tag:0"`
	LastReq         []types.LastReqEntry  `asn1:"explicit,tag:1"`
	Nonce           int32                 `asn1:"explicit,tag:2"`
	KeyExpiration   time.Time             `asn1:"generalized,explicit,optional,tag:3"`
	Flags           asn1.BitString        `asn1:"explicit,tag:4"`
	AuthTime        time.Time             `asn1:"generalized,explicit,tag:5"`
	StartTime       time.Time             `asn1:"generalized,explicit,optional,tag:6"`
	EndTime         time.Time             `asn1:"generalized,explicit,tag:7"`
	RenewTill       time.Time             `asn1:"generalized,explicit,optional,tag:8"`
	SRealm          string                `asn1:"generalstring,explicit,tag:9"`
	SName           types.PrincipalName   `asn1:"explicit,tag:10"`
	CAddr           types.HostAddresses   `asn1:"explicit,optional,tag:11"`
	EncryptedPaData []rawPaData           `asn1:"explicit,optional,tag:12"`
}

// EncKdcRepPart is RFC 4120's EncKDCRepPart, APPLICATION tag 25 — the
// plaintext of AS-REP.enc_part once the crypto layer decrypts it.
// EncryptedPaData is the encrypted-pa-data field (tag 12) that RFC 6806
// adds to the RFC 4120 shape; it is decoded when present and otherwise
// left empty.
type EncKdcRepPart struct {
	Key             types.EncryptionKey
	LastReq         types.LastReq
	Nonce           int32
	KeyExpiration   time.Time
	Flags           asn1.BitString
	AuthTime        time.Time
	StartTime       time.Time
	EndTime         time.Time
	RenewTill       time.Time
	SRealm          string
	SName           types.PrincipalName
	CAddr           types.HostAddresses
	EncryptedPaData []types.PaData
}

// Marshal DER-encodes the EncKDCRepPart as an APPLICATION[25]-tagged
// SEQUENCE, the plaintext form the crypto layer encrypts into
// AS-REP.enc_part.
func (e EncKdcRepPart) Marshal() ([]byte, error) {
	w := wireEncKdcRepPart{
		Key: e.Key, LastReq: e.LastReq, Nonce: e.Nonce,
		KeyExpiration: e.KeyExpiration, Flags: e.Flags, AuthTime: e.AuthTime,
		StartTime: e.StartTime, EndTime: e.EndTime, RenewTill: e.RenewTill,
		SRealm: e.SRealm, SName: e.SName, CAddr: e.CAddr,
	}
	for _, p := range e.EncryptedPaData {
		rp, err := toRawPaData(p)
		if err != nil {
			return nil, err
		}
		w.EncryptedPaData = append(w.EncryptedPaData, rp)
	}
	b, err := asn1.Marshal(w)
	if err != nil {
		return nil, kerberr.Wrap(kerberr.Asn1Error, "marshaling EncKDCRepPart", err)
	}
	return addAppTag(b, types.TagEncASRepPart)
}

// UnmarshalEncKdcRepPart decodes an APPLICATION[25]-tagged EncKDCRepPart.
func UnmarshalEncKdcRepPart(b []byte) (EncKdcRepPart, error) {
	var w wireEncKdcRepPart
	if err := unmarshalAppTag(b, &w, types.TagEncASRepPart); err != nil {
		return EncKdcRepPart{}, err
	}
	e := EncKdcRepPart{
		Key: w.Key, LastReq: types.LastReq(w.LastReq), Nonce: w.Nonce,
		KeyExpiration: w.KeyExpiration, Flags: w.Flags, AuthTime: w.AuthTime,
		StartTime: w.StartTime, EndTime: w.EndTime, RenewTill: w.RenewTill,
		SRealm: w.SRealm, SName: w.SName, CAddr: w.CAddr,
	}
	for _, rp := range w.EncryptedPaData {
		e.EncryptedPaData = append(e.EncryptedPaData, fromRawPaData(rp))
	}
	return e, nil
}
