package rcon_test

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"rcon-go/rcon"
)

func TestConnTransport(t *testing.T) {
	t.Run(
		"wait times out",
		func(t *testing.T) {
			cc, sc := net.Pipe()
			defer func() {
				_ = cc.Close()
				_ = sc.Close()
			}()

			tr := rcon.NewConnTransport(cc, 0)
			ok, err := tr.WaitReadable(20 * time.Millisecond)
			if err != nil {
				t.Fatalf("WaitReadable failed: %s", err)
			}
			if ok {
				t.Fatal("WaitReadable reported data on an idle pipe")
			}
		},
	)

	t.Run(
		"wait does not consume",
		func(t *testing.T) {
			cc, sc := net.Pipe()
			defer func() {
				_ = cc.Close()
				_ = sc.Close()
			}()

			go func() { _, _ = sc.Write([]byte("abcd")) }()

			tr := rcon.NewConnTransport(cc, time.Second)
			ok, err := tr.WaitReadable(time.Second)
			if err != nil || !ok {
				t.Fatalf("WaitReadable = %v, %v", ok, err)
			}
			b, err := tr.Recv(4)
			if err != nil {
				t.Fatalf("Recv failed: %s", err)
			}
			if string(b) != "abcd" {
				t.Fatalf("Recv mismatch, got: %q", b)
			}
		},
	)

	t.Run(
		"peer closed",
		func(t *testing.T) {
			cc, sc := net.Pipe()
			defer func() { _ = cc.Close() }()
			_ = sc.Close()

			tr := rcon.NewConnTransport(cc, 0)
			ok, err := tr.WaitReadable(time.Second)
			if err != nil || !ok {
				t.Fatalf("WaitReadable = %v, %v", ok, err)
			}
			if _, err := tr.Recv(rcon.HeaderSize); !errors.Is(err, io.EOF) {
				t.Fatalf("Expected EOF, got: %v", err)
			}
		},
	)
}

// serveOnce answers one auth exchange and then each command with reply.
func serveOnce(t *testing.T, conn net.Conn, reply string) {
	t.Helper()
	defer conn.Close()

	tr := rcon.NewConnTransport(conn, time.Second)
	readFrame := func() (*rcon.Packet, error) {
		head, err := tr.Recv(4)
		if err != nil {
			return nil, err
		}
		size := int(binary.LittleEndian.Uint32(head))
		rest, err := tr.Recv(size)
		if err != nil {
			return nil, err
		}
		var p rcon.Packet
		if err := p.UnmarshalBinary(append(head, rest...)); err != nil {
			return nil, err
		}
		return &p, nil
	}

	req, err := readFrame()
	if err != nil || req.Type != rcon.TypeAuth {
		t.Errorf("Failed to read auth request: %v", err)
		return
	}
	junk, _ := rcon.Packet{ID: req.ID, Type: rcon.TypeResponseValue}.MarshalBinary()
	auth, _ := rcon.Packet{ID: req.ID, Type: rcon.TypeAuthResponse}.MarshalBinary()
	if err := tr.Send(append(junk, auth...)); err != nil {
		t.Errorf("Failed to write auth response: %s", err)
		return
	}

	for {
		req, err := readFrame()
		if err != nil {
			return
		}
		resp, _ := rcon.Packet{ID: req.ID, Type: rcon.TypeResponseValue, Body: reply}.MarshalBinary()
		if err := tr.Send(resp); err != nil {
			return
		}
	}
}

func TestSessionOverPipe(t *testing.T) {
	cc, sc := net.Pipe()
	defer cc.Close()

	go serveOnce(t, sc, "Done")

	dialer := rcon.DialFunc(func(host, port string) (rcon.Transport, error) {
		return rcon.NewConnTransport(cc, time.Second), nil
	})
	s := rcon.NewSession("pipe", "0", rcon.SessionConfig{Dialer: dialer, ReadWait: time.Second})
	defer s.Disconnect()

	if _, err := s.Authenticate("password goes here"); err != nil {
		t.Fatalf("Authenticate failed: %s", err)
	}
	resp, err := s.Command("say hi")
	if err != nil {
		t.Fatalf("Command failed: %s", err)
	}
	if resp.Body != "Done" {
		t.Fatalf("Body mismatch, got: %q", resp.Body)
	}
}

func TestSessionPeerClosesOverPipe(t *testing.T) {
	t.Run(
		"while waiting for a response",
		func(t *testing.T) {
			cc, sc := net.Pipe()
			defer cc.Close()

			go func() {
				defer sc.Close()
				tr := rcon.NewConnTransport(sc, time.Second)
				auth, err := tr.Recv(4 + rcon.MinPacketSize + len("pw"))
				if err != nil {
					return
				}
				var req rcon.Packet
				if err := req.UnmarshalBinary(auth); err != nil {
					t.Errorf("Failed to decode auth request: %s", err)
					return
				}
				junk, _ := rcon.Packet{ID: req.ID, Type: rcon.TypeResponseValue}.MarshalBinary()
				ok, _ := rcon.Packet{ID: req.ID, Type: rcon.TypeAuthResponse}.MarshalBinary()
				if err := tr.Send(append(junk, ok...)); err != nil {
					return
				}
				// Swallow the command and hang up without answering.
				_, _ = tr.Recv(4 + rcon.MinPacketSize + len("status"))
			}()

			dialer := rcon.DialFunc(func(host, port string) (rcon.Transport, error) {
				return rcon.NewConnTransport(cc, time.Second), nil
			})
			s := rcon.NewSession("pipe", "0", rcon.SessionConfig{Dialer: dialer, ReadWait: time.Second})
			defer s.Disconnect()

			if _, err := s.Authenticate("pw"); err != nil {
				t.Fatalf("Authenticate failed: %s", err)
			}
			_, err := s.Command("status")
			if !errors.Is(err, rcon.ErrConnectionClosed) {
				t.Fatalf("Expected ErrConnectionClosed, got: %v", err)
			}
			if !s.Authenticated() {
				t.Fatal("Closed connection changed session state")
			}
		},
	)

	t.Run(
		"before the command is sent",
		func(t *testing.T) {
			cc, sc := net.Pipe()
			defer cc.Close()
			_ = sc.Close()

			s := rcon.NewSession("pipe", "0", rcon.SessionConfig{
				Dialer: rcon.DialFunc(func(host, port string) (rcon.Transport, error) {
					return rcon.NewConnTransport(cc, time.Second), nil
				}),
			})
			defer s.Disconnect()

			_, err := s.Authenticate("pw")
			if !errors.Is(err, rcon.ErrConnectionClosed) {
				t.Fatalf("Expected ErrConnectionClosed, got: %v", err)
			}
		},
	)
}

func TestTCPDialer(t *testing.T) {
	t.Run(
		"round trip",
		func(t *testing.T) {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatalf("Listen failed: %s", err)
			}
			defer ln.Close()

			go func() {
				conn, err := ln.Accept()
				if err != nil {
					return
				}
				serveOnce(t, conn, "There are 3 of a max of 20 players online")
			}()

			host, port, _ := net.SplitHostPort(ln.Addr().String())
			s := rcon.NewSession(host, port, rcon.SessionConfig{
				Dialer:   rcon.TCPDialer{DialTimeout: time.Second, IOTimeout: time.Second},
				ReadWait: time.Second,
			})
			defer s.Disconnect()

			if _, err := s.Authenticate("pw"); err != nil {
				t.Fatalf("Authenticate failed: %s", err)
			}
			for i := 0; i < 3; i++ {
				resp, err := s.Command("list")
				if err != nil {
					t.Fatalf("Command %d failed: %s", i, err)
				}
				if resp.Body != "There are 3 of a max of 20 players online" {
					t.Fatalf("Body mismatch, got: %q", resp.Body)
				}
			}
		},
	)

	t.Run(
		"connection refused",
		func(t *testing.T) {
			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				t.Fatalf("Listen failed: %s", err)
			}
			host, port, _ := net.SplitHostPort(ln.Addr().String())
			_ = ln.Close()

			s := rcon.NewSession(host, port, rcon.SessionConfig{
				Dialer: rcon.TCPDialer{DialTimeout: time.Second},
			})
			_, err = s.Authenticate("pw")
			var connErr *rcon.ConnectError
			if !errors.As(err, &connErr) {
				t.Fatalf("Expected ConnectError, got: %v", err)
			}
			if s.Connected() {
				t.Fatal("Session connected after refused dial")
			}
		},
	)
}
