package transport

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/cention-sany/krb5/kerberr"
	"github.com/jcmturner/dnsutils/v2"
)

const (
	udpReadTimeout = 5 * time.Second
	maxUDPWrite    = 1400
	maxRetries     = 3
	maxUDPReply    = 1 << 16
)

// DefaultTransport discovers a realm's KDCs by SRV lookup and talks UDP
// first, switching to TCP when the request exceeds maxUDPWrite bytes or a
// UDP read times out. A reply that does not fit a datagram (including a
// KRB_ERR_RESPONSE_TOO_BIG error) does not trigger the switch.
type DefaultTransport struct {
	// DialTimeout bounds each TCP/UDP dial attempt. Zero means the dial
	// has no deadline of its own beyond the OS default.
	DialTimeout time.Duration
}

// Send implements Transport.
func (t DefaultTransport) Send(ctx context.Context, realm string, req []byte) ([]byte, error) {
	proto := "udp"
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		conn, err := t.dial(ctx, proto, realm)
		if err != nil {
			lastErr = err
			continue
		}
		reply, err := sendReceive(conn, proto, req)
		conn.Close()
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if proto == "udp" && (err == io.ErrShortWrite || isTimeout(err)) {
			proto = "tcp"
			continue
		}
		break
	}
	return nil, kerberr.Wrap(kerberr.NetworkError, "exchanging request with KDC for realm "+realm, lastErr)
}

// dial resolves realm's KDCs via SRV records (_kerberos._udp/_tcp) and
// dials the first one to accept a connection, preferring the priority/
// weight ordering dnsutils computes per RFC 2782.
func (t DefaultTransport) dial(ctx context.Context, proto, realm string) (net.Conn, error) {
	_, records, err := net.LookupSRV("kerberos", proto, realm)
	if err != nil || len(records) == 0 {
		_, records, err = net.LookupSRV("kerberos-master", proto, realm)
	}
	if err != nil {
		return nil, kerberr.Wrap(kerberr.NameResolutionError, "SRV lookup for realm "+realm, err)
	}
	ordered := dnsutils.OrderedSRV(records)
	dialer := net.Dialer{Timeout: t.DialTimeout}
	var lastErr error
	for _, rec := range ordered {
		addr := net.JoinHostPort(rec.Target, strconv.Itoa(int(rec.Port)))
		conn, err := dialer.DialContext(ctx, proto, addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, kerberr.Wrap(kerberr.NetworkError, "dialing KDC for realm "+realm, lastErr)
}

func sendReceive(conn net.Conn, proto string, req []byte) ([]byte, error) {
	if proto == "udp" {
		if len(req) > maxUDPWrite {
			return nil, io.ErrShortWrite
		}
		conn.SetDeadline(time.Now().Add(udpReadTimeout))
		if _, err := conn.Write(req); err != nil {
			return nil, err
		}
		buf := make([]byte, maxUDPReply)
		n, err := conn.Read(buf)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	}

	if err := binary.Write(conn, binary.BigEndian, uint32(len(req))); err != nil {
		return nil, err
	}
	if _, err := conn.Write(req); err != nil {
		return nil, err
	}
	var size uint32
	if err := binary.Read(conn, binary.BigEndian, &size); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	te, ok := err.(timeout)
	return ok && te.Timeout()
}
