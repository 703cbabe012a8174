package rcon

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// SessionConfig controls a Session. The zero value dials TCP, waits
// DefaultReadWait for responses and discards logs.
type SessionConfig struct {
	Dialer   Dialer
	ReadWait time.Duration
	Logger   *zerolog.Logger

	// ReturnPackets makes Authenticate and Command fill Response.Packet.
	ReturnPackets bool

	// LogAuthPackets includes the plaintext password in debug packet dumps.
	// Leave it off unless the logs are as private as the password.
	LogAuthPackets bool
}

// Response is the result of Authenticate or Command. Packet is only set when
// the session returns full packets.
type Response struct {
	Body   string
	Packet *Packet
}

// Session is one RCON connection. It is created disconnected; Authenticate
// opens the transport, Disconnect closes it and the Session can then be
// authenticated again.
type Session struct {
	host string
	port string

	dialer    Dialer
	transport Transport
	readWait  time.Duration
	log       zerolog.Logger

	authenticated  bool
	returnPackets  bool
	logAuthPackets bool
	nextID         int32
}

// NewSession returns an unauthenticated Session for host:port.
func NewSession(host, port string, cfg SessionConfig) *Session {
	s := &Session{
		host:           host,
		port:           port,
		dialer:         cfg.Dialer,
		readWait:       cfg.ReadWait,
		log:            zerolog.Nop(),
		returnPackets:  cfg.ReturnPackets,
		logAuthPackets: cfg.LogAuthPackets,
		nextID:         1,
	}
	if s.dialer == nil {
		s.dialer = TCPDialer{}
	}
	if s.readWait <= 0 {
		s.readWait = DefaultReadWait
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "rcon").Str("addr", s.addr()).Logger()
	}
	return s
}

func (s *Session) Host() string { return s.host }
func (s *Session) Port() string { return s.port }

// Authenticated reports whether the last Authenticate succeeded on the current
// transport.
func (s *Session) Authenticated() bool { return s.authenticated }

// Connected reports whether a transport is open.
func (s *Session) Connected() bool { return s.transport != nil }

func (s *Session) ReturnPackets() bool     { return s.returnPackets }
func (s *Session) SetReturnPackets(v bool) { s.returnPackets = v }

func (s *Session) addr() string { return s.host + ":" + s.port }

// Authenticate opens the transport if needed and logs in with password.
//
// The server answers an auth request with an empty response value packet
// followed by the real auth response, so two frames are always read and the
// first is dropped.
func (s *Session) Authenticate(password string) (*Response, error) {
	if err := s.connect(); err != nil {
		return nil, err
	}

	if err := s.write(Auth(password)); err != nil {
		return nil, err
	}

	var resp *Packet
	for i := 0; i < 2; i++ {
		p, err := s.readPacket()
		if err != nil {
			return nil, err
		}
		resp = p
	}

	if resp.Type != TypeAuthResponse || resp.ID == authFailedID {
		s.log.Warn().Int32("type", int32(resp.Type)).Int32("id", resp.ID).Msg("authentication failed")
		return nil, &AuthError{Type: resp.Type, ID: resp.ID}
	}

	s.authenticated = true
	s.log.Info().Msg("authenticated")
	return s.response(resp), nil
}

// Command runs text on the server and returns its output.
func (s *Session) Command(text string) (*Response, error) {
	resp, err := s.Send(Command(text))
	if err != nil {
		return nil, err
	}
	return s.response(resp), nil
}

// Send performs one command exchange and returns the decoded response packet
// regardless of ReturnPackets. Auth requests must go through Authenticate.
func (s *Session) Send(req Request) (*Packet, error) {
	if req.Kind != KindCommand {
		return nil, fmt.Errorf("rcon: send: %s requests go through Authenticate", req.Kind)
	}
	if !s.authenticated {
		return nil, ErrNotAuthenticated
	}

	if err := s.write(req); err != nil {
		return nil, err
	}
	resp, err := s.readPacket()
	if err != nil {
		return nil, err
	}
	if resp.Type != TypeResponseValue {
		return nil, &CommandError{Type: resp.Type}
	}
	return resp, nil
}

// Disconnect closes the transport and drops authentication. It is safe to
// call at any time, any number of times.
func (s *Session) Disconnect() {
	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			s.log.Debug().Err(err).Msg("close transport")
		}
		s.transport = nil
		s.log.Info().Msg("disconnected")
	}
	s.authenticated = false
}

func (s *Session) connect() error {
	if s.transport != nil {
		return nil
	}
	t, err := s.dialer.Open(s.host, s.port)
	if err != nil {
		return err
	}
	s.transport = t
	s.log.Info().Msg("connected")
	return nil
}

func (s *Session) write(req Request) error {
	id := s.nextRequestID()
	b, err := Encode(req.Kind, id, req.Payload)
	if err != nil {
		return err
	}
	s.logFrame("sending packet", req.Kind == KindAuth, b)
	if err := s.transport.Send(b); err != nil {
		if closedConn(err) {
			return fmt.Errorf("%w: failed to send %s packet: %w", ErrConnectionClosed, req.Kind, err)
		}
		return fmt.Errorf("rcon: failed to send %s packet: %w", req.Kind, err)
	}
	return nil
}

// readPacket assembles one response frame from the transport.
func (s *Session) readPacket() (*Packet, error) {
	ok, err := s.transport.WaitReadable(s.readWait)
	if err != nil {
		return nil, fmt.Errorf("rcon: wait for response: %w", err)
	}
	if !ok {
		return nil, ErrTimeout
	}

	head, err := s.recv(HeaderSize)
	if err != nil {
		return nil, err
	}
	p, lead, err := DecodeHeader(head)
	if err != nil {
		return nil, err
	}

	var body []byte
	if rest, junk := trimTerminator(lead); junk {
		// Two NULs straight after the header: an empty frame, nothing more to read.
		if p.Size != MinPacketSize {
			return nil, malformed("empty body but size %d", p.Size)
		}
		body = rest
		s.logFrame("received packet", false, head)
	} else {
		remaining := int(p.Size) - MinPacketSize
		if remaining <= 0 || remaining > MaxPacketSize-MinPacketSize {
			return nil, malformed("cannot read %d remaining bytes", remaining)
		}
		tail, err := s.recv(remaining)
		if err != nil {
			return nil, err
		}
		s.logFrame("received packet", false, slices.Concat(head, tail))
		done, err := DecodeTail(p, lead, tail)
		if err != nil {
			return nil, err
		}
		body = []byte(done.Body)
	}

	// Strip once more at exit; DecodeTail already removed the frame's own
	// terminator.
	body, _ = trimTerminator(body)
	p.Body = string(body)
	return &p, nil
}

func (s *Session) recv(n int) ([]byte, error) {
	b, err := s.transport.Recv(n)
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), closedConn(err):
		return nil, fmt.Errorf("%w: %w", ErrConnectionClosed, err)
	case err != nil:
		return nil, fmt.Errorf("rcon: failed to read response: %w", err)
	case len(b) == 0:
		return nil, ErrConnectionClosed
	case len(b) != n:
		return nil, malformed("short read: got %d of %d bytes", len(b), n)
	}
	return b, nil
}

func (s *Session) response(p *Packet) *Response {
	r := &Response{Body: p.Body}
	if s.returnPackets {
		r.Packet = p
	}
	return r
}

// nextRequestID returns the id for the next request, wrapping to 1 before it
// would collide with the auth failure id.
func (s *Session) nextRequestID() int32 {
	id := s.nextID
	if id <= 0 {
		id = 1
	}
	s.nextID = id + 1
	return id
}

// logFrame dumps a frame at debug level. Auth frames are replaced by a marker
// so the password never reaches the log unless explicitly allowed.
func (s *Session) logFrame(msg string, auth bool, frame []byte) {
	e := s.log.Debug()
	if !e.Enabled() {
		return
	}
	if auth && !s.logAuthPackets {
		e.Str("packet", "<auth packet redacted>").Msg(msg)
		return
	}
	e.Str("packet", hex.EncodeToString(frame)).Msg(msg)
}
