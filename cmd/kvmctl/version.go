/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/kvmodels"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the kvmctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info := kvmodels.GetVersionInfo()
		fmt.Printf("kvmctl %s (commit %s, built %s)\n", info.Version, info.GitCommit, info.BuildDate)
	},
}
