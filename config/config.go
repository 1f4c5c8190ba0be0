// Package config reads the operator settings of the debug facade from DEBUG_*
// environment variables and, optionally, a YAML or TOML file. Environment
// variables always override the file.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Output destinations.
const (
	OUTPUT_STDERR = "stderr"
	OUTPUT_STDOUT = "stdout"
	OUTPUT_FILE   = "file"
)

// Spec stores.
const (
	STORE_NONE = "none"
	STORE_ENV  = "env"
	STORE_FILE = "file"
)

// Config holds every knob the auto wiring understands.
type Config struct {
	// Namespaces is the enable specification, e.g. "http,worker:*,-worker:noisy".
	Namespaces string `yaml:"namespaces" toml:"namespaces" env:"DEBUG" env-description:"namespaces to enable"`

	// Colors forces colored output on (yes/on/true/enabled/1) or off
	// (no/off/false/disabled/0). Empty means detect from the terminal.
	Colors string `yaml:"colors" toml:"colors" env:"DEBUG_COLORS" env-description:"force colors on or off" validate:"omitempty,colorflag"`

	// HideDate drops the date from colorless lines.
	HideDate Flag `yaml:"hideDate" toml:"hide_date" env:"DEBUG_HIDE_DATE" env-description:"omit the date from plain lines"`

	// Depth limits nesting shown by %o and %O, 0 is unlimited.
	Depth int `yaml:"depth" toml:"depth" env:"DEBUG_DEPTH" env-description:"inspect depth of %o and %O" env-default:"2" validate:"min=0"`

	// Output is stderr, stdout or file.
	Output string `yaml:"output" toml:"output" env:"DEBUG_OUTPUT" env-description:"stderr, stdout or file" env-default:"stderr" validate:"oneof=stderr stdout file"`

	// Format of the lines: text renders for terminals, json emits structured
	// records.
	Format string `yaml:"format" toml:"format" env:"DEBUG_FORMAT" env-description:"text or json" env-default:"text" validate:"oneof=text json"`

	// Layout of colorless text lines ({{date}}{{namespace}} {{message}} by default).
	Layout string `yaml:"layout" toml:"layout" env:"DEBUG_LAYOUT" env-description:"plain line template"`

	File FileConfig `yaml:"file" toml:"file"`

	// Store keeps the last enabled spec between runs: none, env or file.
	Store string `yaml:"store" toml:"store" env:"DEBUG_STORE" env-description:"none, env or file" env-default:"env" validate:"oneof=none env file"`

	// StorePath is the .yaml/.yml/.toml file used by the file store.
	StorePath string `yaml:"storePath" toml:"store_path" env:"DEBUG_STORE_PATH" env-description:"spec file for the file store" validate:"required_if=Store file"`

	// Watch re-enables the spec whenever the store file changes.
	Watch Flag `yaml:"watch" toml:"watch" env:"DEBUG_WATCH" env-description:"reload the spec file on change"`

	// Metrics counts rendered lines per namespace with Prometheus collectors.
	Metrics Flag `yaml:"metrics" toml:"metrics" env:"DEBUG_METRICS" env-description:"count lines with Prometheus"`

	// Queue renders asynchronously through a buffer of that many lines, 0 keeps
	// rendering on the calling goroutine.
	Queue int `yaml:"queue" toml:"queue" env:"DEBUG_QUEUE" env-description:"async buffer size, 0 renders inline" validate:"min=0"`
}

// Flag is a switch read from the environment with the DEBUG_COLORS word set:
// yes/on/true/enabled, no/off/false/disabled or a number. An empty value
// leaves it off.
type Flag bool

// SetValue implements cleanenv.Setter.
func (f *Flag) SetValue(value string) error {
	if strings.TrimSpace(value) == "" {
		*f = false
		return nil
	}
	use, set := ParseColors(value)
	if !set {
		return errors.New(_ERROR_MESSAGE_BAD_FLAG + value)
	}
	*f = Flag(use)
	return nil
}

const _ERROR_MESSAGE_BAD_FLAG = "expected yes/on/true/enabled, no/off/false/disabled or a number, got "

// FileConfig is the rotating file output.
type FileConfig struct {
	Path       string `yaml:"path" toml:"path" env:"DEBUG_FILE" env-description:"rotating output file"`
	MaxSize    int    `yaml:"maxSize" toml:"max_size" env:"DEBUG_FILE_MAX_SIZE" env-default:"100" validate:"min=0"`
	MaxBackups int    `yaml:"maxBackups" toml:"max_backups" env:"DEBUG_FILE_MAX_BACKUPS" env-default:"3" validate:"min=0"`
	MaxAge     int    `yaml:"maxAge" toml:"max_age" env:"DEBUG_FILE_MAX_AGE" env-default:"7" validate:"min=0"`
	Compress   Flag   `yaml:"compress" toml:"compress" env:"DEBUG_FILE_COMPRESS"`
}

// Defaults returns the configuration Load produces with no DEBUG_* variable set.
func Defaults() *Config {
	return &Config{
		Depth:  2,
		Output: OUTPUT_STDERR,
		Format: "text",
		Store:  STORE_ENV,
		File:   FileConfig{MaxSize: 100, MaxBackups: 3, MaxAge: 7},
	}
}

// Load reads the configuration from environment variables only.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading debug environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads the configuration from a YAML or TOML file, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading debug config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Usage describes the environment variables, for --help output.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

// ColorMode resolves Colors: set reports whether the value forces a choice,
// use is that choice.
func (c *Config) ColorMode() (use, set bool) {
	return ParseColors(c.Colors)
}

// ParseColors understands the usual DEBUG_COLORS words, plus numbers (non-zero
// is on). Anything else leaves the choice to detection.
func ParseColors(value string) (use, set bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return false, false
	case "yes", "on", "true", "enabled":
		return true, true
	case "no", "off", "false", "disabled":
		return false, true
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return false, false
	}
	return n != 0, true
}
