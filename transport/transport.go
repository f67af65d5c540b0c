// Package transport sends an encoded Kerberos message to a KDC and
// returns its reply. The AS exchange engine (package client) depends
// only on the Transport interface; DefaultTransport is the UDP-with-TCP-
// fallback implementation.
package transport

import "context"

// Transport hands req's encoded bytes to a KDC for realm and returns the
// reply bytes, framing and retries included.
type Transport interface {
	Send(ctx context.Context, realm string, req []byte) ([]byte, error)
}
