package main

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// shutdown runs cleanup registered by run when a signal arrives, before the
// process exits. The session is left alone: it belongs to the main goroutine
// and its socket goes away with the process.
type shutdown struct {
	mu      sync.Mutex
	closers []func() error
}

func (s *shutdown) add(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

// close runs the registered closers newest first, at most once each.
func (s *shutdown) close() {
	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		_ = closers[i]()
	}
}

// watch blocks until sig fires, cleans up and calls exit.
func (s *shutdown) watch(sig <-chan os.Signal, out io.Writer, exit func(int)) {
	<-sig
	fmt.Fprintln(out, "\nDisconnecting...")
	s.close()
	exit(0)
}
