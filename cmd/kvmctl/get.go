/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <model> <id>",
	Short: "Get a record by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := manager(args[0])
		if err != nil {
			return err
		}
		inst, err := m.Get(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		return printInstance(inst)
	},
}
