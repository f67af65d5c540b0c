// Package byteutil holds the byte-level primitives the rest of this module
// builds on: endian conversion helpers, UTF-16LE string encoding, XOR, the
// RFC 3961 n-fold construction, and an injectable randomness source.
package byteutil

import (
	"crypto/rand"
	"encoding/binary"
	"unicode/utf16"
)

// XOR returns a XOR b, truncated to the shorter of the two inputs' length.
// Both Kerberos ciphers only ever XOR equal-length buffers; callers must
// size their inputs accordingly.
func XOR(a, b []byte) []byte {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// UTF16LE encodes s as UTF-16LE with no BOM and no terminator, the form
// RFC 4757 requires for the RC4-HMAC-MD5 password-to-key transform.
func UTF16LE(s string) []byte {
	runes := utf16.Encode([]rune(s))
	out := make([]byte, len(runes)*2)
	for i, r := range runes {
		binary.LittleEndian.PutUint16(out[i*2:], r)
	}
	return out
}

// NFold implements the RFC 3961 §5.1 n-fold operation: it replicates v to
// the least common multiple of len(v) and nbytes, rotating each successive
// copy 13 bits further right, then folds the result down to nbytes using
// one's-complement addition.
func NFold(v []byte, nbytes int) []byte {
	if len(v) == 0 || nbytes == 0 {
		return make([]byte, nbytes)
	}
	lcm := lcm(nbytes, len(v))
	rotated := make([]byte, lcm)
	for i := 0; i < lcm/len(v); i++ {
		copy(rotated[i*len(v):], rotateRight13(v, 13*i))
	}

	chunks := make([][]byte, lcm/nbytes)
	for i := range chunks {
		chunks[i] = rotated[i*nbytes : (i+1)*nbytes]
	}

	sum := make([]uint16, nbytes)
	for _, chunk := range chunks {
		for j, b := range chunk {
			sum[j] += uint16(b)
		}
		propagateCarries(sum)
	}

	out := make([]byte, nbytes)
	for i, s := range sum {
		out[i] = byte(s)
	}
	return out
}

// rotateRight13 rotates v right by nbits bits, wrapping within len(v)*8.
// NFold passes 13 times the copy index as nbits.
func rotateRight13(v []byte, nbits int) []byte {
	n := len(v)
	nbits %= n * 8
	nbytes := nbits / 8
	nbitsRemain := nbits % 8

	out := make([]byte, n)
	for i := 0; i < n; i++ {
		a := ((i-nbytes)%n + n) % n
		b := ((i-nbytes-1)%n + n) % n
		out[i] = byte(v[a]>>uint(nbitsRemain)) | byte(v[b]<<uint(8-nbitsRemain))
	}
	return out
}

// propagateCarries performs circular one's-complement addition: the carry
// out of byte i+1 (the next less-significant byte, wrapping around) is
// added into byte i, repeated until no byte overflows 0xff.
func propagateCarries(sum []uint16) {
	n := len(sum)
	for hasCarry(sum) {
		next := make([]uint16, n)
		for i := range sum {
			nxt := (i + 1) % n
			next[i] = (sum[nxt] >> 8) + (sum[i] & 0xff)
		}
		copy(sum, next)
	}
}

func hasCarry(sum []uint16) bool {
	for _, s := range sum {
		if s > 0xff {
			return true
		}
	}
	return false
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

// Source supplies the randomness a fresh Kerberos message needs: a nonce
// and an encryption confounder. Packages client and crypto draw from the
// package-level Default; no function in this module takes a Source as a
// parameter.
type Source interface {
	Bytes(n int) ([]byte, error)
	Uint32() (uint32, error)
}

type cryptoSource struct{}

func (cryptoSource) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (cryptoSource) Uint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// Default is the OS-backed cryptographically strong randomness source.
var Default Source = cryptoSource{}
