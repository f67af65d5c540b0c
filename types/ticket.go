package types

// Ticket is RFC 4120's Ticket, APPLICATION tag 1. enc_part is never
// decrypted client-side; the codec treats it as opaque bytes.
type Ticket struct {
	TktVNO  int           `asn1:"explicit,tag:0"`
	Realm   string        `asn1:"generalstring,explicit,tag:1"`
	SName   PrincipalName `asn1:"explicit,tag:2"`
	EncPart EncryptedData `asn1:"explicit,tag:3"`
}

// Marshal DER-encodes t as an APPLICATION[1]-tagged SEQUENCE.
func (t Ticket) Marshal() ([]byte, error) {
	return marshalApplication(t, TagTicket)
}

// UnmarshalTicket decodes an APPLICATION[1]-tagged Ticket.
func UnmarshalTicket(b []byte) (Ticket, error) {
	var t Ticket
	if err := unmarshalApplication(b, &t, TagTicket); err != nil {
		return Ticket{}, err
	}
	return t, nil
}
