/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/kvmodels/store"
)

var flagScan bool

var keysCmd = &cobra.Command{
	Use:   "keys <pattern>",
	Short: "List raw keys matching a pattern",
	Long: `Keys enumerates the raw key space under the configured backend. A
pattern is a literal prefix optionally ending in *.

Example:
  kvmctl keys 'myapp:BotSession:*' --scan`,
	Args: cobra.ExactArgs(1),
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().BoolVar(&flagScan, "scan", false, "enumerate incrementally instead of one bulk listing")
}

func runKeys(cmd *cobra.Command, args []string) error {
	it, err := store.Enumerate(cmd.Context(), kv, args[0], flagScan, settings.ScanCount)
	if err != nil {
		return err
	}
	keys, err := store.CollectKeys(cmd.Context(), it)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}
