package messages

import (
	"github.com/cention-sany/krb5/kerberr"
	"github.com/cention-sany/krb5/types"
	"github.com/jcmturner/gofork/encoding/asn1"
)

// addAppTag and unmarshalAppTag reuse package types' application-tag
// wrapping (see types/apptag.go) so the two packages don't drift on how a
// SEQUENCE gets wrapped as APPLICATION[tag].
func addAppTag(der []byte, tag int) ([]byte, error) {
	return types.AddApplicationTag(der, tag)
}

func unmarshalAppTag(b []byte, v any, tag int) error {
	if _, err := asn1.UnmarshalWithParams(b, v, types.ApplicationParams(tag)); err != nil {
		return kerberr.Wrap(kerberr.Asn1Error, "unmarshaling application-tagged value", err)
	}
	return nil
}
