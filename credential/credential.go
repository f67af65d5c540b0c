// Package credential holds the in-memory aggregate a successful AS
// exchange produces, and the ordered collection of such aggregates that
// shares one (realm, client) identity.
package credential

import (
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/messages"
	"github.com/cention-sany/krb5/types"
)

// Credential is an in-memory aggregate assembled by the AS exchange
// engine on success. It is immutable thereafter: a Credential exclusively
// owns its Ticket and EncKdcRepPart.
type Credential struct {
	CRealm     string
	CName      types.PrincipalName
	Ticket     types.Ticket
	ClientPart messages.EncKdcRepPart
}

// New assembles a Credential from a completed AS exchange.
func New(crealm string, cname types.PrincipalName, ticket types.Ticket, clientPart messages.EncKdcRepPart) Credential {
	return Credential{CRealm: crealm, CName: cname, Ticket: ticket, ClientPart: clientPart}
}

// Warehouse is an ordered list of Credentials sharing one (realm, client)
// identity pair; it is the unit of ccache/KRB-CRED serialization.
type Warehouse struct {
	Realm       string
	Client      types.PrincipalName
	Credentials []Credential
}

// NewWarehouse builds an empty Warehouse for the given identity.
func NewWarehouse(realm string, client types.PrincipalName) Warehouse {
	return Warehouse{Realm: realm, Client: client}
}

// Add appends c to the warehouse, enforcing the invariant that every
// member's (crealm, cname) equals the warehouse's (realm, client).
func (w *Warehouse) Add(c Credential) error {
	if c.CRealm != w.Realm || !c.CName.Equal(w.Client) {
		return kerberr.Newf(kerberr.NotAvailableData,
			"credential identity %s@%s does not match warehouse identity %s@%s",
			c.CName.Display(), c.CRealm, w.Client.Display(), w.Realm)
	}
	w.Credentials = append(w.Credentials, c)
	return nil
}

// Primary returns the warehouse's first credential, or false when the
// warehouse is empty.
func (w Warehouse) Primary() (Credential, bool) {
	if len(w.Credentials) == 0 {
		return Credential{}, false
	}
	return w.Credentials[0], true
}

// Contains reports whether w holds a credential for the given server
// principal.
func (w Warehouse) Contains(server types.PrincipalName) bool {
	for _, c := range w.Credentials {
		if c.ClientPart.SName.Equal(server) {
			return true
		}
	}
	return false
}

// GetEntry returns the credential for the given server principal, if any.
func (w Warehouse) GetEntry(server types.PrincipalName) (Credential, bool) {
	for _, c := range w.Credentials {
		if c.ClientPart.SName.Equal(server) {
			return c, true
		}
	}
	return Credential{}, false
}
