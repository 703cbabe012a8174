package rcon

import "time"

const (
	DefaultHost     = "localhost"
	DefaultPort     = "25575"
	DefaultReadWait = 10 * time.Second

	// HeaderSize is what the read loop takes in its first transport read:
	// size, id, type and the first two body bytes.
	HeaderSize = 4 + 4 + 4 + 2

	// MinPacketSize is the smallest legal value of the size field: id, type and
	// the two NUL terminators of an empty body.
	MinPacketSize = 4 + 4 + 2

	// MaxPacketSize caps the size field in both directions.
	MaxPacketSize = 4096

	authFailedID int32 = -1
)
