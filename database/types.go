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

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// AbstractDatabaseManager defines the operations for managing a database
// connection, creating tables for registered models, and reporting health.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	CreateTables(ctx context.Context) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// ConnectionConfig describes how to connect to a database and tune its pool.
// The env tags name the variables that override file values.
type ConnectionConfig struct {
	Type            string        `yaml:"type" json:"type" env:"DB_TYPE"`       // mysql, postgres, sqlite
	Driver          string        `yaml:"driver" json:"driver" env:"DB_DRIVER"` // postgres only: pq, pgx
	Host            string        `yaml:"host" json:"host" env:"DB_HOST"`
	Port            int           `yaml:"port" json:"port" env:"DB_PORT"`
	Username        string        `yaml:"username" json:"username" env:"DB_USERNAME"`
	Password        string        `yaml:"password" json:"-" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" json:"dbname" env:"DB_NAME"`
	SSLMode         string        `yaml:"sslmode" json:"sslmode" env:"DB_SSLMODE"`
	Charset         string        `yaml:"charset" json:"charset" env:"DB_CHARSET"` // MySQL: utf8, utf8mb4
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" json:"connect_timeout" env:"DB_CONNECT_TIMEOUT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout" env:"DB_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout" env:"DB_WRITE_TIMEOUT"`
	ShowSQL         bool          `yaml:"show_sql" json:"show_sql" env:"DB_SHOW_SQL"`
	GenerateDDL     bool          `yaml:"generate_ddl" json:"generate_ddl" env:"DB_GENERATE_DDL"`
	SlowQueryTime   time.Duration `yaml:"slow_query_time" json:"slow_query_time" env:"DB_SLOW_QUERY_TIME"`
}

// Config aggregates the settings needed by InitDB.
type Config struct {
	ConnectionConfig ConnectionConfig `yaml:"database" json:"connection_config"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
// SQL statements are logged and schema generation stays off.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Type:            "mysql",
		Host:            "127.0.0.1",
		Port:            3306,
		DBName:          "test",
		Charset:         "utf8",
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		ShowSQL:         true,
		GenerateDDL:     false,
		SlowQueryTime:   time.Second * 2,
	}
}
