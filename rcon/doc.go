// Package rcon implements a client for the Source RCON protocol: packet framing,
// the authenticate-then-command session and the read loop that reassembles
// server responses from a stream transport.
//
// A Session is not safe for concurrent use. Callers that need concurrency should
// serialize access or use one Session per goroutine.
package rcon
