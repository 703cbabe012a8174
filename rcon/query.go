package rcon

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Querier sends a request and returns the server's decoded response. Session
// implements it; helpers built on top of RCON commands take a Querier so they
// work with any implementation.
type Querier interface {
	Send(req Request) (*Packet, error)
}

var _ Querier = (*Session)(nil)

// ErrUnknownCvar is returned by Cvar when the reply does not carry a value.
var ErrUnknownCvar = errors.New("rcon: unknown cvar")

// Source replies `"sv_gravity" = "800" ( def. "800" )`, GoldSrc replies
// `"sv_gravity" is "800"`.
var cvarValue = regexp.MustCompile(`^\s*"?([^"\s]+)"?\s+(?:=|is)\s+"([^"]*)"`)

// Cvar reads a console variable by sending its name as a command.
func Cvar(q Querier, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("rcon: cvar name is empty")
	}
	resp, err := q.Send(Command(name))
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(resp.Body, "\n") {
		m := cvarValue.FindStringSubmatch(line)
		if m != nil && strings.EqualFold(m[1], name) {
			return m[2], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCvar, name)
}
