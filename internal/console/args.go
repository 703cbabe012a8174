package console

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrHelp    = errors.New("help requested")
	ErrVersion = errors.New("version requested")
)

// ParseArgs builds the configuration from command-line arguments (without the
// program name), the environment and an optional config file. Later sources
// win: defaults, file, environment, flags.
func ParseArgs(args []string, getenv func(string) string) (Config, error) {
	var (
		flags    = map[string]string{}
		commands []string
		file     string
	)
	cfg := DefaultConfig()

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !strings.HasPrefix(arg, "-") || arg == "-" {
			commands = append(commands, arg)
			continue
		}

		switch arg {
		case "-H", "-P", "-p", "-w", "-l", "-f":
			if i+1 >= len(args) {
				return Config{}, fmt.Errorf("option %s requires a value", arg)
			}
			i++
			if arg == "-f" {
				file = args[i]
			} else {
				flags[arg] = args[i]
			}
		case "-t":
			cfg.TerminalMode = true
		case "-s":
			cfg.SilentMode = true
		case "-c":
			cfg.DisableColor = true
		case "-r":
			cfg.RawOutput = true
		case "-v":
			return Config{}, ErrVersion
		case "-h":
			return Config{}, ErrHelp
		default:
			return Config{}, fmt.Errorf("unknown option: %s", arg)
		}
	}

	if file != "" {
		fromFile, err := LoadFile(file, cfg)
		if err != nil {
			return Config{}, err
		}
		// Switches given on the command line stay set.
		fromFile.TerminalMode = fromFile.TerminalMode || cfg.TerminalMode
		fromFile.SilentMode = fromFile.SilentMode || cfg.SilentMode
		fromFile.DisableColor = fromFile.DisableColor || cfg.DisableColor
		fromFile.RawOutput = fromFile.RawOutput || cfg.RawOutput
		cfg = fromFile
	}

	cfg = ApplyEnv(cfg, getenv)

	if v, ok := flags["-H"]; ok {
		cfg.Host = v
	}
	if v, ok := flags["-P"]; ok {
		cfg.Port = v
	}
	if v, ok := flags["-p"]; ok {
		cfg.Password = v
	}
	if v, ok := flags["-l"]; ok {
		cfg.LogLevel = v
	}
	if v, ok := flags["-w"]; ok {
		d, err := ParseWait(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Wait = d
	}

	if cfg.Password == "" {
		return Config{}, errors.New("you must provide password (-p password)")
	}

	cfg.Commands = commands
	// Enable terminal mode if no commands given
	if len(commands) == 0 {
		cfg.TerminalMode = true
	}
	return cfg, nil
}
