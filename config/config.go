/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads studentdb settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/tomoncle/studentdb/database"
	"github.com/tomoncle/studentdb/utils"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit path is given. A missing default file
// is not an error; a missing explicit file is.
const DefaultPath = "configs/studentdb.yaml"

// LogConfig controls console format, level and the optional rolling file.
type LogConfig struct {
	Level      string `yaml:"level" json:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" json:"format" env:"LOG_FORMAT"`
	File       string `yaml:"file" json:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups" env:"LOG_MAX_BACKUPS"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
	Compress   bool   `yaml:"compress" json:"compress" env:"LOG_COMPRESS"`
}

type Config struct {
	Database database.ConnectionConfig `yaml:"database" json:"database"`
	Log      LogConfig                 `yaml:"log" json:"log"`
}

func Default() *Config {
	return &Config{
		Database: *database.DefaultConnectionConfig(),
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
	}
}

// Load builds a Config from defaults, then the YAML file at path, then DB_*
// and LOG_* environment variables. Each layer only replaces what it sets.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that can never produce a connection.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "mysql", "postgres", "postgresql":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required for %s", c.Database.Type)
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database.port %d is out of range", c.Database.Port)
		}
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database.type %q", c.Database.Type)
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	return nil
}

// DatabaseConfig returns the settings consumed by database.InitDB.
func (c *Config) DatabaseConfig() *database.Config {
	return &database.Config{ConnectionConfig: c.Database}
}

// ApplyLogging pushes the log settings into the shared logger registry.
func (c *Config) ApplyLogging() error {
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	utils.ConfigureLogLevel(c.Log.Level)
	return utils.ConfigureFileLog(utils.FileLogConfig{
		Filename:   c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
		Compress:   c.Log.Compress,
	})
}
