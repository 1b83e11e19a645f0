// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config resolves backlog CLI settings from defaults, an optional YAML
// file, OPENSPEC_BACKLOG_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/bartekus/openspec-backlog/internal/backlog"
	"github.com/bartekus/openspec-backlog/internal/changeid"
)

const (
	FormatText = "text"
	FormatJSON = "json"

	// FileName is looked up in the project root when --config is not given.
	FileName = ".openspec-backlog.yaml"

	EnvPrefix = "OPENSPEC_BACKLOG"

	DefaultWindow = 30
	MaxWindow     = 10000
	DefaultWidth  = 60
	DefaultTop    = 10
)

// Config is the resolved run configuration.
type Config struct {
	BaseDir string   `mapstructure:"base_dir"`
	Format  string   `mapstructure:"format"`
	Window  int      `mapstructure:"window"`
	Status  []string `mapstructure:"status"`
	Since   string   `mapstructure:"since"`
	Width   int      `mapstructure:"width"`
	Top     int      `mapstructure:"top"`
	Output  string   `mapstructure:"output"`
	Verbose bool     `mapstructure:"verbose"`
}

// Error reports an invalid setting. The CLI maps it to exit code 2.
type Error struct {
	Key    string
	Value  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Format: FormatText,
		Window: DefaultWindow,
		Width:  DefaultWidth,
		Top:    DefaultTop,
	}
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"base-dir": "base_dir",
	"format":   "format",
	"window":   "window",
	"status":   "status",
	"since":    "since",
	"width":    "width",
	"top":      "top",
	"output":   "output",
	"verbose":  "verbose",
}

// RegisterFlags adds the report flags to fs with their built-in defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	def := DefaultConfig()
	fs.String("base-dir", "", "project root or openspec directory (default: auto-detected)")
	fs.String("format", def.Format, "output format: text or json")
	fs.Int("window", def.Window, "burndown window in days")
	fs.StringSlice("status", nil, "only include these statuses (planned, in-progress, done, unknown)")
	fs.String("since", "", "only include changes dated on or after YYYY-MM-DD")
	fs.Int("width", def.Width, "maximum line width; 0 detects the terminal width")
	fs.Int("top", def.Top, "number of oldest open changes to list")
	fs.String("output", "", "write the report to this file instead of stdout")
}

// Load merges all configuration sources. configFile, when set, must exist;
// otherwise FileName is read from projectDir if present. Flags in fs that
// were not set on the command line do not override lower layers.
func Load(fs *pflag.FlagSet, configFile, projectDir string) (*Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("base_dir", def.BaseDir)
	v.SetDefault("format", def.Format)
	v.SetDefault("window", def.Window)
	v.SetDefault("status", []string{})
	v.SetDefault("since", "")
	v.SetDefault("width", def.Width)
	v.SetDefault("top", def.Top)
	v.SetDefault("output", "")
	v.SetDefault("verbose", false)

	if err := loadFile(v, configFile, projectDir); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Key: "configuration", Reason: err.Error(), Err: err}
	}
	cfg.Status = splitList(cfg.Status)
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	return cfg, nil
}

func loadFile(v *viper.Viper, configFile, projectDir string) error {
	path := configFile
	if path == "" {
		if projectDir == "" {
			return nil
		}
		path = filepath.Join(projectDir, FileName)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return &Error{Key: "config file", Value: path, Reason: err.Error(), Err: err}
	}
	return nil
}

// splitList flattens comma separated entries ("planned,done") and drops blanks.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks every setting and returns the first problem as *Error.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return &Error{Key: "format", Value: c.Format, Reason: "must be text or json"}
	}
	if c.Window < 0 {
		return &Error{Key: "window", Value: fmt.Sprint(c.Window), Reason: "must not be negative"}
	}
	if c.Window > MaxWindow {
		return &Error{Key: "window", Value: fmt.Sprint(c.Window), Reason: fmt.Sprintf("must be at most %d days", MaxWindow)}
	}
	if c.Top < 0 {
		return &Error{Key: "top", Value: fmt.Sprint(c.Top), Reason: "must not be negative"}
	}
	if c.Width < 0 {
		return &Error{Key: "width", Value: fmt.Sprint(c.Width), Reason: "must not be negative"}
	}
	if _, err := c.Statuses(); err != nil {
		return err
	}
	if _, err := c.SinceDate(time.UTC); err != nil {
		return err
	}
	return nil
}

// Statuses parses the status filter. An empty result means no filtering.
func (c *Config) Statuses() ([]backlog.Status, error) {
	out := make([]backlog.Status, 0, len(c.Status))
	for _, raw := range c.Status {
		s, err := backlog.ParseStatus(raw)
		if err != nil {
			return nil, &Error{Key: "status", Value: raw, Reason: "expected planned, in-progress, done or unknown", Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}

// WantsDone reports whether the status filter explicitly asks for done changes.
func (c *Config) WantsDone() bool {
	statuses, err := c.Statuses()
	if err != nil {
		return false
	}
	for _, s := range statuses {
		if s == backlog.StatusDone {
			return true
		}
	}
	return false
}

// SinceDate parses the since filter as a calendar date in loc. Nil means unset.
func (c *Config) SinceDate(loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(c.Since) == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(changeid.DateLayout, strings.TrimSpace(c.Since), loc)
	if err != nil {
		return nil, &Error{Key: "since", Value: c.Since, Reason: "expected YYYY-MM-DD", Err: err}
	}
	return &d, nil
}

// ResolveWidth returns the configured width, detecting the terminal width of
// fd when the setting is 0. Non-terminals fall back to DefaultWidth.
// Reports written to --output never take the terminal's width.
func (c *Config) ResolveWidth(fd uintptr) int {
	if c.Width > 0 {
		return c.Width
	}
	if c.Output != "" {
		return DefaultWidth
	}
	return terminalWidth(fd)
}

var terminalWidth = TerminalWidth

// TerminalWidth reports the column count of fd, or DefaultWidth.
func TerminalWidth(fd uintptr) int {
	if !term.IsTerminal(int(fd)) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}
