// Package config loads texlog settings from a .texlog.toml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".texlog.toml"

// Defaults applied when a setting is absent.
const (
	DefaultFormat       = "auto"
	DefaultSeparator    = " "
	DefaultContextLines = 2
)

// Config represents the settings stored in .texlog.toml.
type Config struct {
	// Format is the output format for parse and tail.
	// Defaults to "auto" when not specified.
	Format string `toml:"format"`

	// Separator joins continuation lines onto a message.
	// Defaults to a single space; "" concatenates directly.
	Separator *string `toml:"separator"`

	// ContextLines is the number of trailing context lines to retain.
	// Reserved; defaults to 2.
	ContextLines *int `toml:"context_lines"`

	// Jobs bounds how many logs are parsed concurrently. 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`

	// FailOn lists diagnostic kinds that make parse exit with an error.
	FailOn []string `toml:"fail_on"`

	// IncludeKinds and ExcludeKinds filter printed diagnostics.
	IncludeKinds []string `toml:"include_kinds"`
	ExcludeKinds []string `toml:"exclude_kinds"`

	Tail TailConfig `toml:"tail"`
}

// TailConfig contains settings for following a running build.
type TailConfig struct {
	// Poll uses polling instead of filesystem notifications.
	Poll bool `toml:"poll"`

	// FromEnd skips the content already in the log.
	FromEnd bool `toml:"from_end"`
}

// GetFormat returns the configured format, defaulting to "auto".
func (c *Config) GetFormat() string {
	if f := strings.TrimSpace(c.Format); f != "" {
		return f
	}
	return DefaultFormat
}

// GetSeparator returns the continuation separator, defaulting to a single space.
func (c *Config) GetSeparator() string {
	if c.Separator == nil {
		return DefaultSeparator
	}
	return *c.Separator
}

// GetContextLines returns the reserved context line count, defaulting to 2.
func (c *Config) GetContextLines() int {
	if c.ContextLines == nil || *c.ContextLines < 0 {
		return DefaultContextLines
	}
	return *c.ContextLines
}

// Load reads the configuration at path. An empty path looks for FileName in
// the working directory; a missing default file yields the zero Config.
// An explicitly named file must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if cfg.Jobs < 0 {
		return nil, fmt.Errorf("%s: jobs must be non-negative, got %d", path, cfg.Jobs)
	}

	return &cfg, nil
}
