// SPDX-License-Identifier: AGPL-3.0-or-later

/*
OpenSpec Backlog - scans an OpenSpec changes tree and reports backlog health as plain ASCII or JSON.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/openspec-backlog/cmd/backlog/internal/clierr"
	"github.com/bartekus/openspec-backlog/internal/config"
	report "github.com/bartekus/openspec-backlog/internal/reports/backlog"
)

// NewRootCmd constructs the backlog root Cobra command. Run without a
// subcommand it prints the backlog report.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backlog",
		Short: "Backlog health report for OpenSpec change proposals",
		Long: `Scan openspec/changes, classify every change as planned, in-progress, done
or unknown, and print counts, ages, the oldest open changes and an ASCII chart
of open items over the last --window days.

Settings are read from flags, OPENSPEC_BACKLOG_* environment variables and
.openspec-backlog.yaml in the project root, in that order of precedence.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runReport,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Config("invalid flag", err)
	})

	// Global flags
	cmd.PersistentFlags().String("config", "", "path to a YAML config file (default: .openspec-backlog.yaml in the project root)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "log degraded change records to stderr")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of backlog",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "backlog version %s\n", versionString())
		},
	})
	cmd.AddCommand(NewListCommand())

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	res, err := loadAndScan(cmd)
	if err != nil {
		return err
	}

	r := report.Build(res.records, res.today, res.cfg.Window, res.cfg.Top)

	var data []byte
	switch res.cfg.Format {
	case config.FormatJSON:
		data, err = r.JSON()
		if err != nil {
			return marshalErr("report", err)
		}
	default:
		data = []byte(report.RenderText(r, outputWidth(res.cfg)))
	}
	return emit(cmd, res.cfg, data)
}
