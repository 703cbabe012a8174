package rcon

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("rcon: not authenticated")
	ErrAuthFailed       = errors.New("rcon: authentication failed")
	ErrCommandFailed    = errors.New("rcon: command failed")
	ErrConnectionClosed = errors.New("rcon: connection closed")
	ErrTimeout          = errors.New("rcon: timed out waiting for response")
	ErrMalformedFrame   = errors.New("rcon: malformed frame")
)

// AuthError reports an auth request that the server answered with the wrong
// packet type or with the rejection id.
type AuthError struct {
	Type PacketType
	ID   int32
}

func (e *AuthError) Error() string {
	if e.ID == authFailedID {
		return "rcon: authentication rejected by server"
	}
	return fmt.Sprintf("rcon: error authenticating: unexpected response type %d", e.Type)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuthFailed }

// CommandError reports a command answered with a packet type other than
// TypeResponseValue.
type CommandError struct {
	Type PacketType
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("rcon: error sending command: unexpected response type %d", e.Type)
}

func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

// ConnectError wraps a failure to open the transport.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("rcon: failed to connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedFrame}, args...)...)
}
