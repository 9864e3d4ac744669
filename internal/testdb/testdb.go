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

// Package testdb opens throwaway in-memory SQLite databases for tests.
package testdb

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/studentdb/database"
	_ "github.com/tomoncle/studentdb/entity"
	"github.com/uptrace/bun"
)

var seq atomic.Int64

// Config returns a SQLite connection config for a private in-memory database
// named after t. One connection keeps the shared-cache database alive and
// serializes access.
func Config(t testing.TB) *database.ConnectionConfig {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.ConnMaxLifetime = 0
	cfg.ConnMaxIdleTime = 0
	cfg.ShowSQL = false
	return cfg
}

// Open connects a fresh database with every registered table created and
// closes it when the test ends.
func Open(t testing.TB) *bun.DB {
	t.Helper()
	factory := database.NewDatabaseFactory()
	_, err := factory.CreateFromConfig(Config(t))
	require.NoError(t, err)
	require.NoError(t, factory.InitializeDatabase(context.Background(), true))
	t.Cleanup(func() { _ = factory.Close() })
	return factory.GetDB()
}
