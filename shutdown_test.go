package main

import (
	"bytes"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestShutdownWatch(t *testing.T) {
	var (
		s     shutdown
		order []string
		code  = -1
		out   bytes.Buffer
	)
	s.add(func() error { order = append(order, "first"); return nil })
	s.add(func() error { order = append(order, "prompt"); return nil })

	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM
	s.watch(sig, &out, func(c int) { code = c })

	if code != 0 {
		t.Fatalf("unexpected exit code %d", code)
	}
	if strings.Join(order, ",") != "prompt,first" {
		t.Fatalf("closers ran in order %q", order)
	}
	if !strings.Contains(out.String(), "Disconnecting...") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestShutdownCloseRunsOnce(t *testing.T) {
	var (
		s     shutdown
		calls int
	)
	s.add(func() error { calls++; return nil })

	s.close()
	s.close()
	if calls != 1 {
		t.Fatalf("closer ran %d times", calls)
	}
}
