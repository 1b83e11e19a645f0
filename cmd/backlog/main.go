// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/bartekus/openspec-backlog/cmd/backlog/commands"
	"github.com/bartekus/openspec-backlog/cmd/backlog/internal/clierr"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "backlog:", err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
