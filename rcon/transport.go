package rcon

import (
	"bufio"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Transport is the byte stream a Session talks over. Recv must return exactly n
// bytes or an error; io.EOF means the peer closed before any byte arrived.
type Transport interface {
	Send(b []byte) error
	WaitReadable(timeout time.Duration) (bool, error)
	Recv(n int) ([]byte, error)
	Close() error
}

// Dialer opens transports for a Session.
type Dialer interface {
	Open(host, port string) (Transport, error)
}

// DialFunc adapts a function to the Dialer interface.
type DialFunc func(host, port string) (Transport, error)

func (f DialFunc) Open(host, port string) (Transport, error) { return f(host, port) }

// TCPDialer opens plain TCP transports.
type TCPDialer struct {
	// DialTimeout bounds connection setup. Zero means 10 seconds.
	DialTimeout time.Duration
	// IOTimeout bounds each Send and Recv. Zero means no deadline.
	IOTimeout time.Duration
}

func (d TCPDialer) Open(host, port string) (Transport, error) {
	address := net.JoinHostPort(host, port)

	timeout := d.DialTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, &ConnectError{Addr: address, Err: err}
	}

	// Frames are small and strictly request/response.
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}

	return NewConnTransport(conn, d.IOTimeout), nil
}

// ConnTransport is a Transport over any net.Conn.
type ConnTransport struct {
	conn      net.Conn
	r         *bufio.Reader
	ioTimeout time.Duration
}

// NewConnTransport wraps conn. A zero ioTimeout leaves Send and Recv without a
// deadline.
func NewConnTransport(conn net.Conn, ioTimeout time.Duration) *ConnTransport {
	return &ConnTransport{
		conn:      conn,
		r:         bufio.NewReaderSize(conn, MaxPacketSize+4),
		ioTimeout: ioTimeout,
	}
}

func (t *ConnTransport) Send(b []byte) error {
	if err := t.conn.SetWriteDeadline(t.deadline()); err != nil && !closedConn(err) {
		return err
	}
	_, err := t.conn.Write(b)
	return err
}

// WaitReadable reports whether a byte (or EOF) arrives within timeout. Nothing
// is consumed: the peeked byte stays buffered for Recv.
func (t *ConnTransport) WaitReadable(timeout time.Duration) (bool, error) {
	if t.r.Buffered() > 0 {
		return true, nil
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		if closedConn(err) {
			// Some conns refuse deadlines once the peer is gone; Recv reports it.
			return true, nil
		}
		return false, err
	}
	defer t.conn.SetReadDeadline(time.Time{})

	_, err := t.r.Peek(1)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		// EOF counts as readable so that Recv reports the close.
		return true, nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return false, nil
	default:
		return false, err
	}
}

func (t *ConnTransport) Recv(n int) ([]byte, error) {
	if err := t.conn.SetReadDeadline(t.deadline()); err != nil && !closedConn(err) {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(t.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (t *ConnTransport) Close() error { return t.conn.Close() }

// closedConn reports errors a net.Conn returns once either side has closed it.
func closedConn(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}

func (t *ConnTransport) deadline() time.Time {
	if t.ioTimeout == 0 {
		return time.Time{}
	}
	return time.Now().Add(t.ioTimeout)
}
