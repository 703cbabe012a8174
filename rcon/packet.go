package rcon

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PacketType is the numeric type field of a packet.
type PacketType int32

// Request and response type codes. The two pairs overlap on the wire (2 is both
// an exec command and an auth response), so a type is only meaningful together
// with the direction it travels in.
const (
	TypeAuth          PacketType = 3
	TypeCommand       PacketType = 2
	TypeAuthResponse  PacketType = 2
	TypeResponseValue PacketType = 0
)

// RequestKind selects which request packet Encode builds.
type RequestKind int

const (
	KindAuth RequestKind = iota
	KindCommand
)

func (k RequestKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindCommand:
		return "command"
	default:
		return fmt.Sprintf("RequestKind(%d)", int(k))
	}
}

func (k RequestKind) packetType() (PacketType, error) {
	switch k {
	case KindAuth:
		return TypeAuth, nil
	case KindCommand:
		return TypeCommand, nil
	default:
		return 0, fmt.Errorf("rcon: unknown request kind %d", int(k))
	}
}

// Request is one outbound exchange: an auth password or a command line.
type Request struct {
	Kind    RequestKind
	Payload string
}

// Auth returns an auth request for password.
func Auth(password string) Request { return Request{Kind: KindAuth, Payload: password} }

// Command returns a command request for text.
func Command(text string) Request { return Request{Kind: KindCommand, Payload: text} }

// Packet is a single RCON frame. Body holds the first body string; the second
// body string is always empty and exists only on the wire.
type Packet struct {
	Size int32
	ID   int32
	Type PacketType
	Body string
}

// packetSize returns the size field for a body of n bytes.
func packetSize(n int) int {
	// ID (4) + Type (4) + Body (n) + null terminator (1) + empty body2 terminator (1)
	return 4 + 4 + n + 2
}

// MarshalBinary encodes p in wire form. Size is always recomputed from Body.
func (p Packet) MarshalBinary() ([]byte, error) {
	size := packetSize(len(p.Body))
	if size > MaxPacketSize {
		return nil, malformed("packet size %d exceeds %d", size, MaxPacketSize)
	}

	// Build the whole frame up front so it goes out in a single write.
	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	// Both terminators are already zero.
	return buf, nil
}

// UnmarshalBinary decodes one complete frame from b.
func (p *Packet) UnmarshalBinary(b []byte) error {
	hdr, lead, err := DecodeHeader(b)
	if err != nil {
		return err
	}
	want := 4 + int(hdr.Size)
	if len(b) != want {
		return malformed("frame is %d bytes, size field implies %d", len(b), want)
	}
	out, err := DecodeTail(hdr, lead, b[HeaderSize:])
	if err != nil {
		return err
	}
	*p = out
	return nil
}

// Encode builds the wire bytes for a request of the given kind.
func Encode(kind RequestKind, id int32, payload string) ([]byte, error) {
	typ, err := kind.packetType()
	if err != nil {
		return nil, err
	}
	return Packet{ID: id, Type: typ, Body: payload}.MarshalBinary()
}

// DecodeHeader parses the first HeaderSize bytes of a frame. The returned
// packet carries Size, ID and Type; lead holds the two leading body bytes,
// which are not yet part of Body because the caller decides whether the frame
// ends there.
func DecodeHeader(b []byte) (Packet, []byte, error) {
	if len(b) < HeaderSize {
		return Packet{}, nil, malformed("header is %d bytes, need %d", len(b), HeaderSize)
	}
	p := Packet{
		Size: int32(binary.LittleEndian.Uint32(b[0:4])),
		ID:   int32(binary.LittleEndian.Uint32(b[4:8])),
		Type: PacketType(int32(binary.LittleEndian.Uint32(b[8:12]))),
	}
	if p.Size < MinPacketSize || p.Size > MaxPacketSize {
		return Packet{}, nil, malformed("invalid packet size %d (must be %d-%d)", p.Size, MinPacketSize, MaxPacketSize)
	}
	lead := make([]byte, 2)
	copy(lead, b[12:HeaderSize])
	return p, lead, nil
}

// DecodeTail completes a packet started by DecodeHeader. rest must be the
// remaining Size-10 bytes of the frame. The trailing double NUL is required
// and stripped.
func DecodeTail(p Packet, lead, rest []byte) (Packet, error) {
	if want := int(p.Size) - MinPacketSize; len(rest) != want {
		return Packet{}, malformed("tail is %d bytes, size field implies %d", len(rest), want)
	}
	body := make([]byte, 0, len(lead)+len(rest))
	body = append(body, lead...)
	body = append(body, rest...)

	trimmed, ok := trimTerminator(body)
	if !ok {
		return Packet{}, malformed("body of packet %d is not NUL terminated", p.ID)
	}
	if bytes.IndexByte(trimmed, 0) >= 0 {
		// An earlier NUL means body1 ended before the size field says it does.
		return Packet{}, malformed("body length disagrees with size %d", p.Size)
	}
	p.Body = string(trimmed)
	return p, nil
}

var terminator = []byte{0, 0}

// trimTerminator strips one trailing double NUL, reporting whether it was there.
func trimTerminator(b []byte) ([]byte, bool) {
	if bytes.HasSuffix(b, terminator) {
		return b[:len(b)-len(terminator)], true
	}
	return b, false
}
