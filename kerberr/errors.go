// Package kerberr defines the closed set of error kinds this library can
// return. Failures surfaced across package boundaries are a *Error so
// callers can switch on Kind without parsing strings, with two exceptions
// that return the underlying error unwrapped: read failures inside a
// ccache credential entry (package ccache), and ASN.1 failures from the
// PA-DATA, MethodData and PA-ENC-TS-ENC helpers of package types.
package kerberr

import (
	"errors"
	"fmt"
)

// Kind identifies a family of failure. The zero value is never produced.
type Kind int

const (
	_ Kind = iota
	InvalidAscii
	InvalidUtf8
	InvalidMicroseconds
	InvalidKeyCharset
	InvalidKeyLength
	IOError
	NetworkError
	NameResolutionError
	NoKeyProvided
	NoProvidedSupportedCipherAlgorithm
	NotAvailableData
	PrincipalNameTypeUndefined
	NoPrincipalName
	NoAddress
	Asn1Error
	CryptographyError
	DecryptionError
	BinaryParseError
	KrbErrorResponse
	ParseAsRepError
	ProtocolNonceMismatch
)

var kindNames = map[Kind]string{
	InvalidAscii:                        "InvalidAscii",
	InvalidUtf8:                         "InvalidUtf8",
	InvalidMicroseconds:                 "InvalidMicroseconds",
	InvalidKeyCharset:                   "InvalidKeyCharset",
	InvalidKeyLength:                    "InvalidKeyLength",
	IOError:                             "IOError",
	NetworkError:                        "NetworkError",
	NameResolutionError:                 "NameResolutionError",
	NoKeyProvided:                       "NoKeyProvided",
	NoProvidedSupportedCipherAlgorithm:  "NoProvidedSupportedCipherAlgorithm",
	NotAvailableData:                    "NotAvailableData",
	PrincipalNameTypeUndefined:          "PrincipalNameTypeUndefined",
	NoPrincipalName:                     "NoPrincipalName",
	NoAddress:                           "NoAddress",
	Asn1Error:                           "Asn1Error",
	CryptographyError:                   "CryptographyError",
	DecryptionError:                     "DecryptionError",
	BinaryParseError:                    "BinaryParseError",
	KrbErrorResponse:                    "KrbErrorResponse",
	ParseAsRepError:                     "ParseAsRepError",
	ProtocolNonceMismatch:               "ProtocolNonceMismatch",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UnknownError"
}

// Error is the single error type this library returns. Field is an optional
// field path ("PrincipalName::name_string"), Cause an optional wrapped
// error, and Message any other detail (an etype pair, a KDC error code).
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Cause   error
	// Payload carries structured context a Kind needs beyond a string: the
	// server's full KRB-ERROR (*messages.KrbError) for KrbErrorResponse.
	// ParseAsRepError carries no payload. Declared as any to avoid this leaf
	// package importing the message types that depend on it.
	Payload any
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Message != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, kerberr.New(kerberr.DecryptionError, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New builds an *Error with no field path or wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// FieldErr builds an *Error naming the offending field path, so codec
// errors identify exactly which field failed (e.g. "PrincipalName::name_string").
func FieldErr(kind Kind, field string) *Error {
	return &Error{Kind: kind, Field: field}
}

// Wrap builds an *Error around a lower-level cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithPayload attaches structured context (such as a decoded KrbError) to
// an *Error and returns it for chaining.
func (e *Error) WithPayload(p any) *Error {
	e.Payload = p
	return e
}

// OfKind reports whether err is a *Error of the given kind, unwrapping as
// needed.
func OfKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
