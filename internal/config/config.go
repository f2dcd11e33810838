// Package config loads the TOML configuration driving the daemon:
// which backend to open, the hotkeys to register with their actions,
// abbreviations, and suppressed sequences.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration wraps time.Duration for TOML string values like "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Hotkey binds a key spec to exactly one action.
type Hotkey struct {
	Spec     string   `toml:"spec"`
	Send     string   `toml:"send,omitempty"`
	Write    string   `toml:"write,omitempty"`
	Script   string   `toml:"script,omitempty"`
	Blocking bool     `toml:"blocking,omitempty"`
	Timeout  Duration `toml:"timeout,omitempty"`
}

// Abbreviation expands a typed source word into replacement text.
type Abbreviation struct {
	Source      string   `toml:"source"`
	Replacement string   `toml:"replacement"`
	MatchSuffix bool     `toml:"match_suffix,omitempty"`
	Timeout     Duration `toml:"timeout,omitempty"`
}

// Suppression blocks a key-name sequence from reaching other programs.
type Suppression struct {
	Sequence []string `toml:"sequence"`
	Timeout  Duration `toml:"timeout,omitempty"`
}

// Config is the full daemon configuration.
type Config struct {
	LogLevel string `toml:"log_level,omitempty"`
	Backend  string `toml:"backend,omitempty"`

	Hotkeys       []Hotkey       `toml:"hotkey,omitempty"`
	Abbreviations []Abbreviation `toml:"abbreviation,omitempty"`
	Suppress      []Suppression  `toml:"suppress,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Backend:  "auto",
	}
}

// Load reads and validates a TOML configuration file. Fields not set
// in the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates TOML configuration bytes.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks structural constraints the decoder cannot express.
func (c Config) Validate() error {
	for i, h := range c.Hotkeys {
		if h.Spec == "" {
			return fmt.Errorf("config: hotkey %d: missing spec", i)
		}
		actions := 0
		for _, set := range []bool{h.Send != "", h.Write != "", h.Script != ""} {
			if set {
				actions++
			}
		}
		if actions != 1 {
			return fmt.Errorf("config: hotkey %d (%s): exactly one of send, write, script required", i, h.Spec)
		}
	}
	for i, a := range c.Abbreviations {
		if a.Source == "" {
			return fmt.Errorf("config: abbreviation %d: missing source", i)
		}
		if a.Replacement == "" {
			return fmt.Errorf("config: abbreviation %d (%s): missing replacement", i, a.Source)
		}
	}
	for i, s := range c.Suppress {
		if len(s.Sequence) == 0 {
			return fmt.Errorf("config: suppress %d: empty sequence", i)
		}
	}
	return nil
}
