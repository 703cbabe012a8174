package console

import (
	"fmt"
	"io"
)

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `Usage: %s [OPTIONS] [COMMANDS]

Send rcon commands to a Source RCON server (Minecraft, Source engine games).

Options:
  -H		Server address (default: %s)
  -P		Port (default: %s)
  -p		Rcon password
  -f		TOML config file
  -t		Terminal mode
  -s		Silent mode
  -c		Disable colors
  -r		Output raw packets (id, type and size header, then the body unformatted)
  -w		Wait for specified duration between each command (1-%ds, e.g. 5 or 1500ms)
  -l		Log level (trace, debug, info, warn, error)
  -h		Print usage
  -v		Version information

Server address, port and password can be set with following environment variables:
  MCRCON_HOST
  MCRCON_PORT
  MCRCON_PASS

- %s will start in terminal mode if no commands are given
- Precedence: command-line options, then environment, then config file
- Rcon commands with spaces must be enclosed in quotes

Example:
	%s -H my.minecraft.server -p password -w 5 "say Server is restarting!" save-all stop

`, AppName, DefaultConfig().Host, DefaultConfig().Port, MaxWaitTime, AppName, AppName)
}
