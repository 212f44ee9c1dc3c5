/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagDeleteAll bool

var deleteCmd = &cobra.Command{
	Use:   "delete <model> [id]",
	Short: "Delete a record, or every record of a model with --all",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&flagDeleteAll, "all", false, "delete every record of the model")
}

func runDelete(cmd *cobra.Command, args []string) error {
	m, err := manager(args[0])
	if err != nil {
		return err
	}
	if flagDeleteAll {
		if len(args) > 1 {
			return fmt.Errorf("--all takes no id argument")
		}
		return m.DeleteAll(cmd.Context())
	}
	if len(args) < 2 {
		return fmt.Errorf("an id is required unless --all is given")
	}
	return m.Delete(cmd.Context(), args[1])
}
