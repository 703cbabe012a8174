package console

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"rcon-go/rcon"
)

const (
	AppName     = "rcon-go"
	Version     = "0.2.0"
	MaxWaitTime = 600
)

// Config holds the application configuration.
type Config struct {
	Host         string
	Port         string
	Password     string
	TerminalMode bool
	SilentMode   bool
	DisableColor bool
	RawOutput    bool
	Wait         time.Duration
	ReadWait     time.Duration
	LogLevel     string
	Commands     []string
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() Config {
	return Config{
		Host:     rcon.DefaultHost,
		Port:     rcon.DefaultPort,
		ReadWait: rcon.DefaultReadWait,
		LogLevel: "warn",
	}
}

type fileConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Password      string `toml:"password"`
	Wait          string `toml:"wait"`
	ReadTimeout   string `toml:"read_timeout"`
	DisableColors bool   `toml:"disable_colors"`
	RawOutput     bool   `toml:"raw_output"`
	Silent        bool   `toml:"silent"`
	LogLevel      string `toml:"log_level"`
}

// LoadFile layers the TOML file at path over cfg. Keys absent from the file
// leave cfg untouched.
func LoadFile(path string, cfg Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("host") {
		if host := strings.TrimSpace(raw.Host); host != "" {
			cfg.Host = host
		}
	}
	if meta.IsDefined("port") {
		if raw.Port <= 0 || raw.Port > 65535 {
			return Config{}, fmt.Errorf("load config %s: port %d out of range", path, raw.Port)
		}
		cfg.Port = strconv.Itoa(raw.Port)
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("wait") {
		d, err := ParseWait(raw.Wait)
		if err != nil {
			return Config{}, fmt.Errorf("parse wait: %w", err)
		}
		cfg.Wait = d
	}
	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("parse read_timeout: must be positive, got %s", d)
		}
		cfg.ReadWait = d
	}
	if meta.IsDefined("disable_colors") {
		cfg.DisableColor = raw.DisableColors
	}
	if meta.IsDefined("raw_output") {
		cfg.RawOutput = raw.RawOutput
	}
	if meta.IsDefined("silent") {
		cfg.SilentMode = raw.Silent
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from MCRCON_HOST, MCRCON_PORT and MCRCON_PASS.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("MCRCON_HOST"); v != "" {
		cfg.Host = v
	}
	if v := getenv("MCRCON_PORT"); v != "" {
		cfg.Port = v
	}
	if v := getenv("MCRCON_PASS"); v != "" {
		cfg.Password = v
	}
	return cfg
}

// ParseWait accepts whole seconds ("5") or a Go duration ("1500ms") between
// one second and MaxWaitTime seconds.
func ParseWait(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	d, err := time.ParseDuration(s)
	if err != nil {
		secs, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, fmt.Errorf("invalid wait value: %q", s)
		}
		d = time.Duration(secs) * time.Second
	}
	if d < time.Second || d > MaxWaitTime*time.Second {
		return 0, fmt.Errorf("wait value out of range (1-%ds)", MaxWaitTime)
	}
	return d, nil
}
