/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads kvmodels deployment settings from a YAML file and
// KVMODELS_* environment variables. Environment variables win over file
// values; a missing file is not an error.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/suparena/kvmodels"
	"github.com/suparena/kvmodels/errors"
)

const (
	envPrefix      = "KVMODELS"
	configFileName = "kvmodels"
	configFileType = "yaml"

	// Backend names accepted by Settings.Backend.
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendDDB    = "dynamodb"
)

// RedisSettings holds the Redis connection parameters.
type RedisSettings struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

// SQLiteSettings holds the SQLite database location.
type SQLiteSettings struct {
	Path string `mapstructure:"path"`
}

// DDBSettings holds the DynamoDB credentials and table name.
type DDBSettings struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Region    string `mapstructure:"region"`
	Table     string `mapstructure:"table"`
}

// Settings is the full deployment configuration: which backend to connect
// to, how to connect to it, and the per-manager behavior knobs.
type Settings struct {
	Backend            string `mapstructure:"backend"`
	Prefix             string `mapstructure:"prefix"`
	SchemaFile         string `mapstructure:"schema_file"`
	UseScan            bool   `mapstructure:"use_scan"`
	NonBlocking        bool   `mapstructure:"non_blocking"`
	IgnoreDecodeErrors bool   `mapstructure:"ignore_decode_errors"`
	ScanCount          int64  `mapstructure:"scan_count"`

	Redis  RedisSettings  `mapstructure:"redis"`
	SQLite SQLiteSettings `mapstructure:"sqlite"`
	DDB    DDBSettings    `mapstructure:"ddb"`
}

// Manager converts the deployment settings into a Manager construction
// config.
func (s *Settings) Manager() kvmodels.Config {
	return kvmodels.Config{
		Prefix:             s.Prefix,
		IgnoreDecodeErrors: s.IgnoreDecodeErrors,
		UseScan:            s.UseScan,
		NonBlocking:        s.NonBlocking,
		ScanCount:          s.ScanCount,
	}
}

// Load reads settings from the named YAML file, or from ./kvmodels.yaml when
// path is empty, merged with KVMODELS_* environment variables
// (KVMODELS_BACKEND, KVMODELS_REDIS_ADDR, ...).
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetDefault("backend", BackendMemory)
	v.SetDefault("prefix", "")
	v.SetDefault("use_scan", false)
	v.SetDefault("non_blocking", false)
	v.SetDefault("ignore_decode_errors", false)
	v.SetDefault("scan_count", 0)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("sqlite.path", "kvmodels.db")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigurationError("config", fmt.Sprintf("read %s: %v", path, err))
		}
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.NewConfigurationError("config", fmt.Sprintf("read config: %v", err))
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.NewConfigurationError("config", fmt.Sprintf("unmarshal config: %v", err))
	}

	switch s.Backend {
	case BackendMemory, BackendRedis, BackendSQLite, BackendDDB:
	default:
		return nil, errors.NewConfigurationError("backend", fmt.Sprintf("unknown backend %q", s.Backend))
	}
	return &s, nil
}
