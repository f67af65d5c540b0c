package transport

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendReceiveTCPFraming(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var size uint32
		if err := readUint32(conn, &size); err != nil {
			return
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		reply := append([]byte("echo:"), buf...)
		writeUint32(conn, uint32(len(reply)))
		conn.Write(reply)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	got, err := sendReceive(conn, "tcp", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, []byte("echo:hello"), got)
	<-serverDone
}

func readUint32(r io.Reader, v *uint32) error {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	*v = uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
	return nil
}

func writeUint32(w io.Writer, v uint32) {
	buf := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	w.Write(buf[:])
}
