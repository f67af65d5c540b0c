// Package ccache implements the MIT-krb5 UNIX credential cache binary
// format (version 0x0504) — parsing, byte-exact export, and the
// CredentialWarehouse bridge.
package ccache

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"

	"github.com/cention-sany/krb5/credential"
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/messages"
	"github.com/cention-sany/krb5/types"
)

// FileFormatVersion is the version byte this module reads and writes:
// MIT krb5's ccache v4, always big-endian (wire version u16 = 0x0504).
const FileFormatVersion = 4

// HeaderFieldKDCOffset is the header field this module synthesizes on
// export when the header lacks one: the KDC time-offset field (RFC says
// its value is two 32-bit integers, seconds and microseconds).
const HeaderFieldKDCOffset = 0x0001

// HeaderField is one {tag, value} entry of the v4 header. Unknown tags
// are preserved verbatim on import so a round trip never silently drops
// header data a newer MIT-krb5 build wrote.
type HeaderField struct {
	Tag   uint16
	Value []byte
}

// Principal is the ccache wire Principal: name-type, realm, and ordered
// name components, all as counted octet strings.
type Principal struct {
	NameType   int32
	Realm      string
	Components []string
}

func principalFromTypes(p types.PrincipalName, realm string) Principal {
	return Principal{NameType: p.NameType, Realm: realm, Components: append([]string{}, p.NameString...)}
}

// PrincipalName reconstructs the in-memory PrincipalName this Principal
// carries.
func (p Principal) PrincipalName() (types.PrincipalName, error) {
	return types.NewPrincipalName(p.NameType, p.Components...)
}

// KeyBlock is the ccache wire KeyBlock: keytype/etype/length/keyvalue.
// This module always emits etype 0 on the wire field, matching MIT
// krb5's own ccache writer.
type KeyBlock struct {
	KeyType  int16
	KeyValue []byte
}

// Address is the ccache wire Address: addrtype plus unpadded address
// bytes (NetBios padding is an ASN.1-only transformation).
type Address struct {
	AddrType uint16
	Data     []byte
}

// AuthDataEntry is the ccache wire AuthData element.
type AuthDataEntry struct {
	ADType uint16
	Data   []byte
}

// Credential is one ccache wire credential entry.
type Credential struct {
	Client, Server                      Principal
	Key                                  KeyBlock
	AuthTime, StartTime, EndTime, RenewTill time.Time
	IsSKey                               bool
	TicketFlags                          uint32
	Addresses                            []Address
	AuthData                             []AuthDataEntry
	Ticket                               []byte
	SecondTicket                         []byte
}

// CCache is a fully parsed (or about-to-be-written) credential cache
// file.
type CCache struct {
	Version          uint8
	Header           []HeaderField
	DefaultPrincipal Principal
	Credentials      []Credential
}

// Contains reports whether c holds a credential for the given server
// principal.
func (c *CCache) Contains(server types.PrincipalName) bool {
	_, ok := c.GetEntry(server)
	return ok
}

// GetEntry returns the credential for the given server principal.
func (c *CCache) GetEntry(server types.PrincipalName) (Credential, bool) {
	for _, cred := range c.Credentials {
		p, err := cred.Server.PrincipalName()
		if err == nil && p.Equal(server) {
			return cred, true
		}
	}
	return Credential{}, false
}

// GetEntries returns every credential except X-CACHECONF configuration
// pseudo-principals.
func (c *CCache) GetEntries() []Credential {
	var out []Credential
	for _, cred := range c.Credentials {
		if strings.HasPrefix(cred.Server.Realm, "X-CACHECONF") {
			continue
		}
		out = append(out, cred)
	}
	return out
}

// ---- binary reader/writer ----

type reader struct {
	b *bytes.Reader
}

func (r *reader) u8() (uint8, error) {
	var v uint8
	err := binary.Read(r.b, binary.BigEndian, &v)
	return v, err
}

func (r *reader) u16() (uint16, error) {
	var v uint16
	err := binary.Read(r.b, binary.BigEndian, &v)
	return v, err
}

func (r *reader) u32() (uint32, error) {
	var v uint32
	err := binary.Read(r.b, binary.BigEndian, &v)
	return v, err
}

func (r *reader) bytesN(n uint32) ([]byte, error) {
	buf := make([]byte, n)
	_, err := r.b.Read(buf)
	return buf, err
}

func (r *reader) counted() ([]byte, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	return r.bytesN(n)
}

func (r *reader) timestamp() (time.Time, error) {
	v, err := r.u32()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(v), 0).UTC(), nil
}

func (r *reader) principal() (Principal, error) {
	nt, err := r.u32()
	if err != nil {
		return Principal{}, err
	}
	nc, err := r.u32()
	if err != nil {
		return Principal{}, err
	}
	realm, err := r.counted()
	if err != nil {
		return Principal{}, err
	}
	p := Principal{NameType: int32(nt), Realm: string(realm)}
	for i := uint32(0); i < nc; i++ {
		c, err := r.counted()
		if err != nil {
			return Principal{}, err
		}
		p.Components = append(p.Components, string(c))
	}
	return p, nil
}

// Parse decodes a version-4 ccache file from b.
func Parse(b []byte) (*CCache, error) {
	r := &reader{b: bytes.NewReader(b)}
	first, err := r.u8()
	if err != nil || first != 5 {
		return nil, kerberr.New(kerberr.BinaryParseError, "not a credential cache: first byte must be 5")
	}
	version, err := r.u8()
	if err != nil {
		return nil, kerberr.Wrap(kerberr.BinaryParseError, "reading version byte", err)
	}
	c := &CCache{Version: version}
	if version == FileFormatVersion {
		if err := parseHeader(r, c); err != nil {
			return nil, err
		}
	}
	c.DefaultPrincipal, err = r.principal()
	if err != nil {
		return nil, kerberr.Wrap(kerberr.BinaryParseError, "reading default principal", err)
	}
	for r.b.Len() > 0 {
		cred, err := parseCredential(r)
		if err != nil {
			return nil, err
		}
		c.Credentials = append(c.Credentials, cred)
	}
	return c, nil
}

func parseHeader(r *reader, c *CCache) error {
	length, err := r.u16()
	if err != nil {
		return kerberr.Wrap(kerberr.BinaryParseError, "reading header length", err)
	}
	remaining := int(length)
	for remaining > 0 {
		tag, err := r.u16()
		if err != nil {
			return kerberr.Wrap(kerberr.BinaryParseError, "reading header field tag", err)
		}
		flen, err := r.u16()
		if err != nil {
			return kerberr.Wrap(kerberr.BinaryParseError, "reading header field length", err)
		}
		value, err := r.bytesN(uint32(flen))
		if err != nil {
			return kerberr.Wrap(kerberr.BinaryParseError, "reading header field value", err)
		}
		c.Header = append(c.Header, HeaderField{Tag: tag, Value: value})
		remaining -= 4 + int(flen)
	}
	return nil
}

func parseCredential(r *reader) (Credential, error) {
	var cred Credential
	var err error
	if cred.Client, err = r.principal(); err != nil {
		return cred, kerberr.Wrap(kerberr.BinaryParseError, "reading client principal", err)
	}
	if cred.Server, err = r.principal(); err != nil {
		return cred, kerberr.Wrap(kerberr.BinaryParseError, "reading server principal", err)
	}
	keytype, err := r.u16()
	if err != nil {
		return cred, kerberr.Wrap(kerberr.BinaryParseError, "reading key type", err)
	}
	if _, err := r.u16(); err != nil { // etype field, always emitted as 0
		return cred, kerberr.Wrap(kerberr.BinaryParseError, "reading key etype", err)
	}
	keyValue, err := r.counted()
	if err != nil {
		return cred, kerberr.Wrap(kerberr.BinaryParseError, "reading key value", err)
	}
	cred.Key = KeyBlock{KeyType: int16(keytype), KeyValue: keyValue}
	if cred.AuthTime, err = r.timestamp(); err != nil {
		return cred, err
	}
	if cred.StartTime, err = r.timestamp(); err != nil {
		return cred, err
	}
	if cred.EndTime, err = r.timestamp(); err != nil {
		return cred, err
	}
	if cred.RenewTill, err = r.timestamp(); err != nil {
		return cred, err
	}
	isSKey, err := r.u8()
	if err != nil {
		return cred, err
	}
	cred.IsSKey = isSKey != 0
	flags, err := r.u32()
	if err != nil {
		return cred, err
	}
	cred.TicketFlags = flags
	numAddr, err := r.u32()
	if err != nil {
		return cred, err
	}
	for i := uint32(0); i < numAddr; i++ {
		addrType, err := r.u16()
		if err != nil {
			return cred, err
		}
		data, err := r.counted()
		if err != nil {
			return cred, err
		}
		cred.Addresses = append(cred.Addresses, Address{AddrType: addrType, Data: data})
	}
	numAuth, err := r.u32()
	if err != nil {
		return cred, err
	}
	for i := uint32(0); i < numAuth; i++ {
		adType, err := r.u16()
		if err != nil {
			return cred, err
		}
		data, err := r.counted()
		if err != nil {
			return cred, err
		}
		cred.AuthData = append(cred.AuthData, AuthDataEntry{ADType: adType, Data: data})
	}
	if cred.Ticket, err = r.counted(); err != nil {
		return cred, err
	}
	if cred.SecondTicket, err = r.counted(); err != nil {
		return cred, err
	}
	return cred, nil
}

// ---- export (write) ----

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8)   { binary.Write(&w.buf, binary.BigEndian, v) }
func (w *writer) u16(v uint16) { binary.Write(&w.buf, binary.BigEndian, v) }
func (w *writer) u32(v uint32) { binary.Write(&w.buf, binary.BigEndian, v) }
func (w *writer) raw(b []byte) { w.buf.Write(b) }
func (w *writer) counted(b []byte) {
	w.u32(uint32(len(b)))
	w.raw(b)
}
func (w *writer) timestamp(t time.Time) { w.u32(uint32(t.UTC().Unix())) }

func (w *writer) principal(p Principal) {
	w.u32(uint32(p.NameType))
	w.u32(uint32(len(p.Components)))
	w.counted([]byte(p.Realm))
	for _, c := range p.Components {
		w.counted([]byte(c))
	}
}

// Export renders c as the byte-exact v4 ccache file format. Header fields
// already present on c.Header are re-emitted verbatim, ahead of the
// synthesized DeltaTime sentinel field, so importing an unrecognized
// header and re-exporting it is lossless.
func (c *CCache) Export() []byte {
	w := &writer{}
	w.u8(5)
	w.u8(FileFormatVersion)

	headerFields := append([]HeaderField{}, c.Header...)
	hasKDCOffset := false
	for _, f := range headerFields {
		if f.Tag == HeaderFieldKDCOffset {
			hasKDCOffset = true
		}
	}
	if !hasKDCOffset {
		headerFields = append(headerFields, HeaderField{
			Tag:   HeaderFieldKDCOffset,
			Value: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00},
		})
	}
	var hbuf bytes.Buffer
	for _, f := range headerFields {
		binary.Write(&hbuf, binary.BigEndian, f.Tag)
		binary.Write(&hbuf, binary.BigEndian, uint16(len(f.Value)))
		hbuf.Write(f.Value)
	}
	w.u16(uint16(hbuf.Len()))
	w.raw(hbuf.Bytes())

	w.principal(c.DefaultPrincipal)
	for _, cred := range c.Credentials {
		w.writeCredential(cred)
	}
	return w.buf.Bytes()
}

func (w *writer) writeCredential(cred Credential) {
	w.principal(cred.Client)
	w.principal(cred.Server)
	w.u16(uint16(cred.Key.KeyType))
	w.u16(0) // etype field, always emitted as 0
	w.counted(cred.Key.KeyValue)
	w.timestamp(cred.AuthTime)
	w.timestamp(cred.StartTime)
	w.timestamp(cred.EndTime)
	w.timestamp(cred.RenewTill)
	if cred.IsSKey {
		w.u8(1)
	} else {
		w.u8(0)
	}
	w.u32(cred.TicketFlags)
	w.u32(uint32(len(cred.Addresses)))
	for _, a := range cred.Addresses {
		w.u16(a.AddrType)
		w.counted(a.Data)
	}
	w.u32(uint32(len(cred.AuthData)))
	for _, a := range cred.AuthData {
		w.u16(a.ADType)
		w.counted(a.Data)
	}
	w.counted(cred.Ticket)
	w.counted(cred.SecondTicket)
}

// ---- CredentialWarehouse bridge ----

// FromWarehouse converts an in-memory credential.Warehouse into a v4
// CCache ready for Export.
func FromWarehouse(wh credential.Warehouse) (*CCache, error) {
	c := &CCache{
		Version:          FileFormatVersion,
		DefaultPrincipal: principalFromTypes(wh.Client, wh.Realm),
	}
	for _, cred := range wh.Credentials {
		wireCred, err := credentialToWire(cred)
		if err != nil {
			return nil, err
		}
		c.Credentials = append(c.Credentials, wireCred)
	}
	return c, nil
}

func credentialToWire(cred credential.Credential) (Credential, error) {
	authData, err := methodDataToAuthData(cred.ClientPart.EncryptedPaData)
	if err != nil {
		return Credential{}, err
	}
	ticketBytes, err := cred.Ticket.Marshal()
	if err != nil {
		return Credential{}, err
	}
	var addrs []Address
	for _, a := range cred.ClientPart.CAddr {
		addrs = append(addrs, Address{AddrType: uint16(a.AddrType), Data: a.UnpaddedAddress()})
	}
	return Credential{
		Client:       principalFromTypes(cred.CName, cred.CRealm),
		Server:       principalFromTypes(cred.ClientPart.SName, cred.ClientPart.SRealm),
		Key:          KeyBlock{KeyType: int16(cred.ClientPart.Key.KeyType), KeyValue: cred.ClientPart.Key.KeyValue},
		AuthTime:     cred.ClientPart.AuthTime,
		StartTime:    cred.ClientPart.StartTime,
		EndTime:      cred.ClientPart.EndTime,
		RenewTill:    cred.ClientPart.RenewTill,
		TicketFlags:  types.FlagsUint32(cred.ClientPart.Flags),
		Addresses:    addrs,
		AuthData:     authData,
		Ticket:       ticketBytes,
		SecondTicket: []byte{},
	}, nil
}

// methodDataToAuthData carries the enc-part's EncryptedPaData method-data
// as one AuthData entry per PaData, padata_value in ad_data.
func methodDataToAuthData(md []types.PaData) ([]AuthDataEntry, error) {
	var out []AuthDataEntry
	for _, p := range md {
		value, err := types.EncodePaDataValue(p)
		if err != nil {
			return nil, err
		}
		out = append(out, AuthDataEntry{ADType: uint16(p.Type), Data: value})
	}
	return out, nil
}

// ToWarehouse converts a parsed CCache back into a credential.Warehouse.
func (c *CCache) ToWarehouse() (credential.Warehouse, error) {
	client, err := c.DefaultPrincipal.PrincipalName()
	if err != nil {
		return credential.Warehouse{}, err
	}
	wh := credential.NewWarehouse(c.DefaultPrincipal.Realm, client)
	for _, cred := range c.Credentials {
		cr, err := wireCredentialToCredential(cred)
		if err != nil {
			return credential.Warehouse{}, err
		}
		if err := wh.Add(cr); err != nil {
			return credential.Warehouse{}, err
		}
	}
	return wh, nil
}

func wireCredentialToCredential(cred Credential) (credential.Credential, error) {
	cname, err := cred.Client.PrincipalName()
	if err != nil {
		return credential.Credential{}, err
	}
	sname, err := cred.Server.PrincipalName()
	if err != nil {
		return credential.Credential{}, err
	}
	ticket, err := types.UnmarshalTicket(cred.Ticket)
	if err != nil {
		return credential.Credential{}, err
	}
	var caddr types.HostAddresses
	for _, a := range cred.Addresses {
		caddr = append(caddr, types.NewRawAddress(int32(a.AddrType), a.Data))
	}
	var paData []types.PaData
	for _, a := range cred.AuthData {
		paData = append(paData, types.DecodePaData(int32(a.ADType), a.Data))
	}
	clientPart := messages.EncKdcRepPart{
		Key:             types.EncryptionKey{KeyType: int32(cred.Key.KeyType), KeyValue: cred.Key.KeyValue},
		AuthTime:        cred.AuthTime,
		StartTime:       cred.StartTime,
		EndTime:         cred.EndTime,
		RenewTill:       cred.RenewTill,
		Flags:           types.FlagsFromUint32(cred.TicketFlags),
		SRealm:          cred.Server.Realm,
		SName:           sname,
		CAddr:           caddr,
		EncryptedPaData: paData,
	}
	return credential.New(cred.Client.Realm, cname, ticket, clientPart), nil
}
