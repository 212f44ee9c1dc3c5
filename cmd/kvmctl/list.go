/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/kvmodels"
)

var (
	flagSortBy     string
	flagDescending bool
	flagCount      bool
)

var listCmd = &cobra.Command{
	Use:   "list <model> [field__operator=value ...]",
	Short: "List records, optionally filtered",
	Long: `List enumerates a model's records and prints those matching every
filter. Filter values parse as JSON where possible, so numbers and booleans
compare as such.

Example:
  kvmctl list Task status=in_work
  kvmctl list BotSession created__gte=2026-01-01T00:00:00Z --sort-by created`,
	Args: cobra.MinimumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&flagSortBy, "sort-by", "", "sort results by this field")
	listCmd.Flags().BoolVar(&flagDescending, "descending", false, "sort in descending order")
	listCmd.Flags().BoolVar(&flagCount, "count", false, "print only the number of matches")
}

func runList(cmd *cobra.Command, args []string) error {
	m, err := manager(args[0])
	if err != nil {
		return err
	}
	filters, err := parseFilters(args[1:])
	if err != nil {
		return err
	}

	cur, err := m.Query(cmd.Context(), filters)
	if err != nil {
		return err
	}

	if flagCount {
		n, err := cur.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	}

	instances, err := cur.All(cmd.Context())
	if err != nil {
		return err
	}
	if flagSortBy != "" {
		if err := kvmodels.SortBy(instances, flagSortBy, flagDescending); err != nil {
			return err
		}
	}
	for _, inst := range instances {
		if err := printInstance(inst); err != nil {
			return err
		}
	}
	return nil
}
