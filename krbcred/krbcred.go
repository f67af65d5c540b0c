// Package krbcred exports a credential.Warehouse as a Windows
// KRB-CRED/.kirbi DER blob. Export is one-way and always leaves
// EncKrbCredPart unencrypted (etype 0), the common .kirbi convention —
// this module never needs to decrypt a KRB-CRED it didn't produce itself.
package krbcred

import (
	"github.com/cention-sany/krb5/credential"
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/messages"
	"github.com/cention-sany/krb5/types"
)

// unencryptedEType is RFC 4120's reserved "no encryption" etype, the
// value .kirbi tooling expects on an EncKrbCredPart it never protects.
const unencryptedEType = 0

// Export renders wh as a complete KRB-CRED DER blob: one Ticket plus one
// KrbCredInfo per credential, sharing wh's client identity.
func Export(wh credential.Warehouse) ([]byte, error) {
	cred, err := Build(wh)
	if err != nil {
		return nil, err
	}
	return cred.Marshal()
}

// Build assembles the messages.KrbCred envelope Export marshals, split
// out so callers that want to inspect it before encoding can do so.
func Build(wh credential.Warehouse) (messages.KrbCred, error) {
	if len(wh.Credentials) == 0 {
		return messages.KrbCred{}, kerberr.New(kerberr.NotAvailableData, "warehouse holds no credentials to export")
	}

	var tickets []types.Ticket
	var infos []messages.KrbCredInfo
	for _, c := range wh.Credentials {
		tickets = append(tickets, c.Ticket)
		infos = append(infos, messages.KrbCredInfo{
			Key:       c.ClientPart.Key,
			PRealm:    c.CRealm,
			PName:     c.CName,
			Flags:     c.ClientPart.Flags,
			AuthTime:  c.ClientPart.AuthTime,
			StartTime: c.ClientPart.StartTime,
			EndTime:   c.ClientPart.EndTime,
			RenewTill: c.ClientPart.RenewTill,
			SRealm:    c.ClientPart.SRealm,
			SName:     c.ClientPart.SName,
			CAddr:     c.ClientPart.CAddr,
		})
	}

	encPart := messages.EncKrbCredPart{TicketInfo: infos}
	encPartBytes, err := encPart.Marshal()
	if err != nil {
		return messages.KrbCred{}, err
	}

	return messages.NewKrbCred(tickets, types.EncryptedData{EType: unencryptedEType, Cipher: encPartBytes}), nil
}

// Parse decodes a .kirbi blob back into its messages.KrbCred envelope,
// for round-trip tests and tooling that inspects an exported file.
func Parse(der []byte) (messages.KrbCred, error) {
	return messages.UnmarshalKrbCred(der)
}

// DecryptedPart returns kc's EncKrbCredPart, valid only for the
// unencrypted (etype 0) form this module's own Export always produces.
func DecryptedPart(kc messages.KrbCred) (messages.EncKrbCredPart, error) {
	if kc.EncPart.EType != unencryptedEType {
		return messages.EncKrbCredPart{}, kerberr.Newf(kerberr.NoProvidedSupportedCipherAlgorithm,
			"KRB-CRED enc-part etype %d is encrypted; only the unencrypted (0) form this module exports is supported", kc.EncPart.EType)
	}
	return messages.UnmarshalEncKrbCredPart(kc.EncPart.Cipher)
}
