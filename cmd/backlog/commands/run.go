// SPDX-License-Identifier: AGPL-3.0-or-later

/*
OpenSpec Backlog - scans an OpenSpec changes tree and reports backlog health as plain ASCII or JSON.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bartekus/openspec-backlog/cmd/backlog/internal/clierr"
	model "github.com/bartekus/openspec-backlog/internal/backlog"
	"github.com/bartekus/openspec-backlog/internal/config"
	"github.com/bartekus/openspec-backlog/internal/projection"
	"github.com/bartekus/openspec-backlog/internal/projectroot"
	report "github.com/bartekus/openspec-backlog/internal/reports/backlog"
	"github.com/bartekus/openspec-backlog/internal/scanner"
)

// now is replaced in tests.
var now = time.Now

// scanResult is what every report command starts from.
type scanResult struct {
	cfg     *config.Config
	logger  *slog.Logger
	today   time.Time
	records []model.ChangeRecord
}

// loadAndScan resolves configuration, scans the changes tree and applies the
// status and since filters.
func loadAndScan(cmd *cobra.Command) (*scanResult, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, clierr.Config("get config flag", err)
	}

	projectDir, rootErr := projectroot.Find(".")
	if rootErr != nil {
		projectDir = ""
	}

	cfg, err := config.Load(cmd.Flags(), configFile, projectDir)
	if err != nil {
		return nil, clierr.Config("loading configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, clierr.Config("invalid configuration", err)
	}

	level := slog.LevelError
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	baseDir := cfg.BaseDir
	if baseDir == "" {
		if rootErr != nil {
			return nil, clierr.New(clierr.CodeConfig, "no --base-dir given and no project root above the working directory")
		}
		baseDir = projectDir
	}
	logger.Debug("scanning", "base_dir", baseDir, "include_archive", cfg.WantsDone())

	s := scanner.New(baseDir, scanner.Options{
		Now:            now,
		Location:       time.Local,
		IncludeArchive: cfg.WantsDone(),
		Logger:         logger,
	})
	records, err := s.Scan(cmd.Context())
	if err != nil {
		var cfgErr *scanner.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, clierr.Config("invalid base directory", err)
		}
		return nil, clierr.Failure("scanning changes", err)
	}

	statuses, _ := cfg.Statuses()
	since, _ := cfg.SinceDate(time.Local)
	filtered := report.Filter{Statuses: statuses, Since: since}.Apply(records)
	logger.Debug("scan complete", "changes", len(records), "selected", len(filtered))

	return &scanResult{
		cfg:     cfg,
		logger:  logger,
		today:   s.Today(),
		records: filtered,
	}, nil
}

// emit writes data to --output atomically, or to the command's stdout.
func emit(cmd *cobra.Command, cfg *config.Config, data []byte) error {
	if cfg.Output != "" {
		if err := projection.AtomicWrite(cfg.Output, data); err != nil {
			return clierr.Failure("write output", err)
		}
		return nil
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return clierr.Failure("write output", err)
	}
	return nil
}

func outputWidth(cfg *config.Config) int {
	return cfg.ResolveWidth(os.Stdout.Fd())
}

func versionString() string {
	if v := os.Getenv("BACKLOG_VERSION"); v != "" {
		return v
	}
	return "0.0.0-dev"
}

func marshalErr(what string, err error) error {
	return clierr.Failure(fmt.Sprintf("encode %s", what), err)
}
