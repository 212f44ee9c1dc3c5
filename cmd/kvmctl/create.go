/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <model> <json-values>",
	Short: "Create a record",
	Long: `Create validates the supplied field values against the model, fills in
declared defaults, assigns a fresh id, and writes the record.

Example:
  kvmctl create BotSession '{"session_token": "abc", "is_active": true}'`,
	Args: cobra.ExactArgs(2),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	m, err := manager(args[0])
	if err != nil {
		return err
	}
	values, err := parseValues(args[1])
	if err != nil {
		return err
	}
	inst, err := m.Create(cmd.Context(), values)
	if err != nil {
		return err
	}
	return printInstance(inst)
}
