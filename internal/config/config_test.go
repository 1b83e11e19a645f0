// SPDX-License-Identifier: AGPL-3.0-or-later
package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/openspec-backlog/internal/backlog"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.BoolP("verbose", "v", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, FormatText, cfg.Format)
	assert.Equal(t, 30, cfg.Window)
	assert.Equal(t, 60, cfg.Width)
	assert.Equal(t, 10, cfg.Top)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlags(t), "", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Format, cfg.Format)
	assert.Equal(t, DefaultWindow, cfg.Window)
	assert.Equal(t, DefaultWidth, cfg.Width)
	assert.Equal(t, DefaultTop, cfg.Top)
	assert.Empty(t, cfg.Status)
	assert.False(t, cfg.Verbose)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "format: json\nwindow: 7\nwidth: 90\nstatus: [planned]\n")

	cfg, err := Load(newFlags(t), "", dir)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 7, cfg.Window)
	assert.Equal(t, 90, cfg.Width)
	assert.Equal(t, []string{"planned"}, cfg.Status)

	t.Setenv("OPENSPEC_BACKLOG_WINDOW", "14")
	t.Setenv("OPENSPEC_BACKLOG_STATUS", "done,in-progress")
	cfg, err = Load(newFlags(t), "", dir)
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Window)
	assert.Equal(t, []string{"done", "in-progress"}, cfg.Status)
	assert.Equal(t, 90, cfg.Width)

	cfg, err = Load(newFlags(t, "--window", "3", "--status", "unknown,planned", "--format", "TEXT"), "", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Window)
	assert.Equal(t, []string{"unknown", "planned"}, cfg.Status)
	assert.Equal(t, FormatText, cfg.Format)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("top: 3\nverbose: true\nbase_dir: /tmp/x\n"), 0o600))

	cfg, err := Load(newFlags(t), path, "")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Top)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/tmp/x", cfg.BaseDir)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(newFlags(t), filepath.Join(dir, "missing.yaml"), "")
	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "config file", cfgErr.Key)

	writeConfig(t, dir, "format: [unclosed\n")
	_, err = Load(newFlags(t), "", dir)
	require.True(t, errors.As(err, &cfgErr))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"bad format", func(c *Config) { c.Format = "xml" }, "format"},
		{"negative window", func(c *Config) { c.Window = -1 }, "window"},
		{"huge window", func(c *Config) { c.Window = 1_000_000_000 }, "window"},
		{"negative top", func(c *Config) { c.Top = -2 }, "top"},
		{"negative width", func(c *Config) { c.Width = -5 }, "width"},
		{"unknown status", func(c *Config) { c.Status = []string{"planned", "blocked"} }, "status"},
		{"bad since", func(c *Config) { c.Since = "2025-13-40" }, "since"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}

	cfg := DefaultConfig()
	cfg.Window = MaxWindow
	cfg.Width = 0
	cfg.Status = []string{"in_progress"}
	cfg.Since = "2025-10-01"
	assert.NoError(t, cfg.Validate())
}

func TestStatusesAndSince(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Status = []string{"Done", "in_progress"}
	statuses, err := cfg.Statuses()
	require.NoError(t, err)
	assert.Equal(t, []backlog.Status{backlog.StatusDone, backlog.StatusInProgress}, statuses)
	assert.True(t, cfg.WantsDone())

	cfg.Status = []string{"planned"}
	assert.False(t, cfg.WantsDone())

	since, err := cfg.SinceDate(time.UTC)
	require.NoError(t, err)
	assert.Nil(t, since)

	cfg.Since = "2025-10-01"
	since, err = cfg.SinceDate(time.UTC)
	require.NoError(t, err)
	require.NotNil(t, since)
	assert.Equal(t, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC), *since)
}

func TestResolveWidth(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	require.NoError(t, err)
	defer f.Close()

	cfg := DefaultConfig()
	cfg.Width = 120
	assert.Equal(t, 120, cfg.ResolveWidth(f.Fd()))

	cfg.Width = 0
	assert.Equal(t, DefaultWidth, cfg.ResolveWidth(f.Fd()))
}

func TestResolveWidth_OutputFileIgnoresTerminal(t *testing.T) {
	orig := terminalWidth
	terminalWidth = func(uintptr) int { return 132 }
	t.Cleanup(func() { terminalWidth = orig })

	cfg := DefaultConfig()
	cfg.Width = 0
	assert.Equal(t, 132, cfg.ResolveWidth(0))

	cfg.Output = filepath.Join(t.TempDir(), "report.txt")
	assert.Equal(t, DefaultWidth, cfg.ResolveWidth(0))

	cfg.Width = 90
	assert.Equal(t, 90, cfg.ResolveWidth(0))
}
