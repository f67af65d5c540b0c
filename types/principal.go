package types

import (
	"strings"

	"github.com/cention-sany/krb5/kerberr"
)

// Name-type constants used by this module (RFC 4120 §6.2).
const (
	NTUnknown    = 0
	NTPrincipal  = 1
	NTSrvInst    = 2
	NTSrvHst     = 3
	NTSrvXHst    = 4
	NTUID        = 5
	NTX500Principal = 6
	NTSmtpName   = 7
	NTEnterprise = 10
)

// PrincipalName is (name_type, name_string), wire-tagged per RFC 4120
// §5.2.2. name_string MUST have at least one component.
type PrincipalName struct {
	NameType   int32                `asn1:"explicit,tag:0"`
	NameString []string `asn1:"generalstring,explicit,tag:1"`
}

// NewPrincipalName validates components is non-empty and ASCII before
// building a PrincipalName.
func NewPrincipalName(nameType int32, components ...string) (PrincipalName, error) {
	if len(components) == 0 {
		return PrincipalName{}, kerberr.FieldErr(kerberr.NotAvailableData, "PrincipalName::name_string")
	}
	for _, c := range components {
		if _, err := NewKerberosString(c); err != nil {
			return PrincipalName{}, err
		}
	}
	return PrincipalName{NameType: nameType, NameString: components}, nil
}

// Validate checks the non-empty name_string invariant on an already
// constructed or decoded PrincipalName.
func (p PrincipalName) Validate() error {
	if len(p.NameString) == 0 {
		return kerberr.FieldErr(kerberr.NotAvailableData, "PrincipalName::name_string")
	}
	return nil
}

// Display joins the name's components with '/', e.g. "krbtgt/EXAMPLE.COM".
func (p PrincipalName) Display() string {
	return strings.Join(p.NameString, "/")
}

// Equal reports whether p and o have the same type and components.
func (p PrincipalName) Equal(o PrincipalName) bool {
	if p.NameType != o.NameType || len(p.NameString) != len(o.NameString) {
		return false
	}
	for i := range p.NameString {
		if p.NameString[i] != o.NameString[i] {
			return false
		}
	}
	return true
}

// Realm is a KerberosString naming a Kerberos realm.
type Realm = KerberosString

// NewRealm validates r is ASCII.
func NewRealm(r string) (Realm, error) {
	return NewKerberosString(r)
}

// ServicePrincipal builds the "krbtgt/REALM" NT-SRV-INST principal the AS
// exchange always requests a ticket for.
func ServicePrincipal(realm string) PrincipalName {
	p, _ := NewPrincipalName(NTSrvInst, "krbtgt", realm)
	return p
}
