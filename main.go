package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"rcon-go/internal/console"
	"rcon-go/rcon"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	config, err := console.ParseArgs(args, os.Getenv)
	switch {
	case errors.Is(err, console.ErrHelp):
		console.PrintHelp(os.Stdout)
		return 0
	case errors.Is(err, console.ErrVersion):
		fmt.Printf("%s %s\n", console.AppName, console.Version)
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Try '%s -h' for help.\n", console.AppName)
		return 1
	}

	logger := console.NewLogger(os.Stderr, config.LogLevel)

	session := rcon.NewSession(config.Host, config.Port, rcon.SessionConfig{
		ReadWait:      config.ReadWait,
		Logger:        &logger,
		ReturnPackets: config.RawOutput,
	})
	defer session.Disconnect()

	// Handle interrupt signals gracefully
	var cleanup shutdown
	setupSignalHandler(&cleanup)

	if _, err := session.Authenticate(config.Password); err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
		return 1
	}

	c := console.New(session, config, os.Stdout, os.Stderr, logger)
	if !config.TerminalMode {
		return c.RunCommands(config.Commands)
	}

	prompt, err := console.NewPrompt(os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Terminal setup failed: %v\n", err)
		return 1
	}
	// readline restores the terminal mode on Close.
	closePrompt := sync.OnceValue(prompt.Close)
	defer closePrompt()
	cleanup.add(closePrompt)

	// Commands given alongside -t run before the prompt opens.
	if code := c.RunCommands(config.Commands); code != 0 {
		return code
	}
	return c.RunTerminal(prompt)
}

func setupSignalHandler(cleanup *shutdown) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go cleanup.watch(sigChan, os.Stdout, os.Exit)
}
