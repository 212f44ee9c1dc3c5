/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/kvmodels"
	"github.com/suparena/kvmodels/config"
	"github.com/suparena/kvmodels/schema"
	"github.com/suparena/kvmodels/store"
	"github.com/suparena/kvmodels/store/ddb"
	"github.com/suparena/kvmodels/store/memory"
	"github.com/suparena/kvmodels/store/redis"
	"github.com/suparena/kvmodels/store/sqlite"
)

// Global CLI state, initialized by initEnv before any subcommand runs.
var (
	settings *config.Settings
	kv       store.KV
	registry *kvmodels.Registry
	closer   func() error
)

// initEnv loads settings, opens the configured backend, and builds one
// manager per declared model.
func initEnv(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	settings, err = config.Load(flagConfig)
	if err != nil {
		return err
	}

	kv, closer, err = openStore(settings)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", settings.Backend, err)
	}

	schemaFile := settings.SchemaFile
	if flagSchema != "" {
		schemaFile = flagSchema
	}
	if schemaFile == "" {
		return fmt.Errorf("no model definition file: set schema_file in config or pass --schema")
	}
	f, err := os.Open(schemaFile)
	if err != nil {
		return fmt.Errorf("open model definitions: %w", err)
	}
	defer f.Close()

	schemas, err := schema.LoadYAML(f)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	registry = kvmodels.NewRegistry()
	for _, s := range schemas {
		_, err := kvmodels.New(kv, s, settings.Manager(),
			kvmodels.WithRegistry(registry),
			kvmodels.WithLogger(logger.Sugar()))
		if err != nil {
			return err
		}
	}
	return nil
}

// closeEnv releases the backend connection, if the backend holds one.
func closeEnv() error {
	if closer != nil {
		return closer()
	}
	return nil
}

// openStore connects to the backend named in the settings.
func openStore(s *config.Settings) (store.KV, func() error, error) {
	switch s.Backend {
	case config.BackendMemory:
		return memory.New(), nil, nil
	case config.BackendRedis:
		r := redis.Open(s.Redis.Addr, s.Redis.DB)
		return r, r.Close, nil
	case config.BackendSQLite:
		db, err := sqlite.Open(s.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case config.BackendDDB:
		d, err := ddb.Open(s.DDB.AccessKey, s.DDB.SecretKey, s.DDB.Region, s.DDB.Table)
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", s.Backend)
}

// manager looks up the registered manager for a model name.
func manager(model string) (*kvmodels.Manager, error) {
	m, err := registry.Manager(model)
	if err != nil {
		return nil, fmt.Errorf("unknown model %q (declared: %v)", model, registry.Models())
	}
	return m, nil
}
