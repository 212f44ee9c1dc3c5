/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <model> <id> <json-values>",
	Short: "Update fields of a record",
	Long: `Update rewrites only the supplied fields of an existing record, leaving
the rest untouched.

Example:
  kvmctl update Task 7f1c... '{"status": "completed"}'`,
	Args: cobra.ExactArgs(3),
	RunE: runUpdate,
}

func runUpdate(cmd *cobra.Command, args []string) error {
	m, err := manager(args[0])
	if err != nil {
		return err
	}
	values, err := parseValues(args[2])
	if err != nil {
		return err
	}
	inst, err := m.Update(cmd.Context(), args[1], values)
	if err != nil {
		return err
	}
	return printInstance(inst)
}
