package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"rcon-go/rcon"
)

// Commander runs one RCON command. *rcon.Session implements it.
type Commander interface {
	Command(text string) (*rcon.Response, error)
}

// LineReader yields terminal input lines. *readline.Instance implements it.
type LineReader interface {
	Readline() (string, error)
}

// Console drives a Commander from batch arguments or an interactive prompt.
type Console struct {
	cmd    Commander
	cfg    Config
	out    io.Writer
	errOut io.Writer
	log    zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func New(cmd Commander, cfg Config, out, errOut io.Writer, log zerolog.Logger) *Console {
	return &Console{
		cmd:    cmd,
		cfg:    cfg,
		out:    out,
		errOut: errOut,
		log:    log,
		sleep:  time.Sleep,
	}
}

// Execute sends one command and prints its response.
func (c *Console) Execute(command string) error {
	resp, err := c.cmd.Command(command)
	if err != nil {
		return err
	}
	if p := resp.Packet; p != nil {
		c.log.Debug().
			Int32("id", p.ID).
			Int32("type", int32(p.Type)).
			Int("bytes", len(p.Body)).
			Msg("response packet")
	}
	if c.cfg.SilentMode {
		return nil
	}
	if p := resp.Packet; c.cfg.RawOutput && p != nil {
		fmt.Fprintf(c.out, "[id=%d type=%d size=%d]\n", p.ID, p.Type, p.Size)
	}
	fmt.Fprint(c.out, Render(resp.Body, c.cfg.RawOutput, !c.cfg.DisableColor))
	return nil
}

// RunCommands executes commands in order, waiting between them if configured.
// It stops at the first failure and returns a process exit code.
func (c *Console) RunCommands(commands []string) int {
	for i, command := range commands {
		if err := c.Execute(command); err != nil {
			fmt.Fprintf(c.errOut, "Command failed: %v\n", err)
			return 1
		}

		if i < len(commands)-1 && c.cfg.Wait > 0 {
			c.sleep(c.cfg.Wait)
		}
	}
	return 0
}

// RunTerminal reads commands from in until Q, EOF, interrupt or "stop".
func (c *Console) RunTerminal(in LineReader) int {
	fmt.Fprintln(c.out, "Logged in.")
	fmt.Fprintln(c.out, "Type 'Q' or press Ctrl-D / Ctrl-C to disconnect.")

	for {
		line, err := in.Readline()
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, readline.ErrInterrupt):
			return 0
		case err != nil:
			fmt.Fprintf(c.errOut, "Input error: %v\n", err)
			return 1
		}

		command := strings.TrimSpace(line)
		if command == "" {
			continue
		}
		if strings.EqualFold(command, "q") {
			return 0
		}

		if err := c.Execute(command); err != nil {
			fmt.Fprintf(c.errOut, "Error: %v\n", err)
			if errors.Is(err, rcon.ErrConnectionClosed) {
				return 1
			}
		}

		// The server drops the connection on stop; leave before it does.
		if strings.EqualFold(command, "stop") {
			return 0
		}
	}
}

// NewPrompt opens a readline prompt with in-memory history.
func NewPrompt(stdout, stderr io.Writer) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "Q",
		Stdout:          stdout,
		Stderr:          stderr,
		HistoryLimit:    500,
	})
}
