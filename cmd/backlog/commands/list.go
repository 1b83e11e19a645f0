// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/openspec-backlog/internal/config"
	report "github.com/bartekus/openspec-backlog/internal/reports/backlog"
)

// NewListCommand returns the `backlog list` command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every change with its status, age, owner and title",
		Long: `List one row per change directory, honoring --status and --since.
With --format json only the changes array of the report is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadAndScan(cmd)
			if err != nil {
				return err
			}

			var data []byte
			switch res.cfg.Format {
			case config.FormatJSON:
				data, err = report.ChangesDocument(res.records)
				if err != nil {
					return marshalErr("changes", err)
				}
			default:
				data = []byte(report.RenderList(res.records, outputWidth(res.cfg)))
			}
			return emit(cmd, res.cfg, data)
		},
	}
}
