/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// kvmctl is a small operator CLI for kvmodels deployments: it loads model
// definitions and backend settings from configuration and exposes record
// CRUD plus raw key inspection against the configured store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// flagConfig is set by the --config flag.
	flagConfig string

	// flagSchema overrides the schema_file setting.
	flagSchema string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kvmctl",
	Short: "kvmctl manages kvmodels records in a key-value store",
	Long: `kvmctl connects to the key-value backend named in the configuration,
loads the declared models, and manages their records: create, get, list
with filters, update, and delete. The keys subcommand inspects the raw
key space underneath.`,
	PersistentPreRunE: initEnv,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeEnv()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: ./kvmodels.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagSchema, "schema", "", "model definition file (default: schema_file from config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(keysCmd)
}
