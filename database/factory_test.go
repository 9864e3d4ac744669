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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_PASSWORD", "from-env")
	t.Setenv("DB_SHOW_SQL", "false")
	t.Setenv("DB_GENERATE_DDL", "true")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")

	cfg := DefaultConnectionConfig()
	cfg.Username = "from-file"
	require.NoError(t, OverrideFromEnv(cfg))

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 3307, cfg.Port)
	assert.Equal(t, "from-env", cfg.Password)
	assert.Equal(t, "from-file", cfg.Username)
	assert.False(t, cfg.ShowSQL)
	assert.True(t, cfg.GenerateDDL)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, "mysql", cfg.Type)
}

func TestOverrideFromEnvInvalidValue(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-number")
	assert.Error(t, OverrideFromEnv(DefaultConnectionConfig()))
}

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()
	assert.True(t, cfg.ShowSQL)
	assert.False(t, cfg.GenerateDDL)
	assert.Equal(t, "utf8", cfg.Charset)
}

func TestCreateFromConfigRejects(t *testing.T) {
	f := NewDatabaseFactory()

	_, err := f.CreateFromConfig(nil)
	assert.True(t, IsInfrastructure(err))

	cfg := DefaultConnectionConfig()
	cfg.Type = "oracle"
	_, err = f.CreateFromConfig(cfg)
	require.Error(t, err)
	assert.True(t, IsInfrastructure(err))
	assert.Contains(t, err.Error(), "unsupported database type: oracle")
	assert.Nil(t, f.GetManager())
}

func TestFactoryWithoutManager(t *testing.T) {
	f := NewDatabaseFactory()
	ctx := context.Background()

	assert.True(t, IsInfrastructure(f.InitializeDatabase(ctx, false)))
	assert.Nil(t, f.GetDB())
	assert.NoError(t, f.Close())
	assert.False(t, f.GetHealthStatus(ctx).Healthy)
	assert.Equal(t, &DBStats{}, f.GetStats())
}

func TestConnectFailureIsInfrastructure(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.ConnectTimeout = time.Second

	f := NewDatabaseFactory()
	_, err := f.CreateFromConfig(cfg)
	require.NoError(t, err)

	err = f.InitializeDatabase(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.Nil(t, f.GetDB())
}
