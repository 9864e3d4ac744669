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

// Package studentdb wires configuration, the database connection and the
// Student repository together.
package studentdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomoncle/studentdb/config"
	"github.com/tomoncle/studentdb/database"
	"github.com/tomoncle/studentdb/repository"
	"github.com/tomoncle/studentdb/utils"
	"github.com/uptrace/bun"
)

// Version is reported by the CLI.
const Version = "0.1.0"

// Service owns one database connection and the repositories built on it.
// It is safe for concurrent use.
type Service struct {
	factory *database.BaseDatabaseFactory
	db      *bun.DB
	logger  database.Logger

	once     sync.Once
	students repository.StudentRepository
}

// Open applies cfg's logging settings, connects and, when GenerateDDL is set,
// creates missing tables. Any failure is returned wrapped in
// database.ErrInfrastructure and leaves nothing open.
func Open(ctx context.Context, cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.ApplyLogging(); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	start := time.Now()
	dbCfg := cfg.DatabaseConfig()
	factory := database.NewDatabaseFactory()
	if _, err := factory.CreateFromConfig(&dbCfg.ConnectionConfig); err != nil {
		return nil, err
	}
	if err := factory.InitializeDatabase(ctx, dbCfg.ConnectionConfig.GenerateDDL); err != nil {
		_ = factory.Close()
		return nil, err
	}

	s := NewService(factory.GetDB())
	s.factory = factory
	s.logger.Info("Service started", "type", dbCfg.ConnectionConfig.Type, "elapsed", utils.Since(start))
	return s, nil
}

// NewService wraps an already connected database. Close does not close db.
func NewService(db *bun.DB) *Service {
	return &Service{db: db, logger: database.GetLogger()}
}

// Students returns the Student repository.
func (s *Service) Students() repository.StudentRepository {
	s.once.Do(func() { s.students = repository.NewStudentRepository(s.db) })
	return s.students
}

func (s *Service) DB() *bun.DB {
	return s.db
}

// InitSchema creates every registered table that does not exist yet.
func (s *Service) InitSchema(ctx context.Context) error {
	return database.CreateTables(ctx, s.db, s.logger)
}

// Health pings the database. A Service built with NewService reports only the
// ping result.
func (s *Service) Health(ctx context.Context) *database.HealthStatus {
	if s.factory != nil {
		return s.factory.GetHealthStatus(ctx)
	}
	start := time.Now()
	err := s.db.PingContext(ctx)
	status := &database.HealthStatus{
		Healthy:       err == nil,
		Connected:     err == nil,
		ResponseTime:  time.Since(start),
		LastCheckTime: time.Now(),
	}
	if err != nil {
		status.LastError = err.Error()
	}
	return status
}

func (s *Service) Stats() *database.DBStats {
	if s.factory != nil {
		return s.factory.GetStats()
	}
	st := s.db.Stats()
	return &database.DBStats{
		MaxOpenConns: st.MaxOpenConnections,
		OpenConns:    st.OpenConnections,
		InUse:        st.InUse,
		Idle:         st.Idle,
		WaitCount:    st.WaitCount,
		WaitDuration: st.WaitDuration,
	}
}

// Close releases the connection opened by Open.
func (s *Service) Close() error {
	if s.factory == nil {
		return nil
	}
	s.logger.Info("Service stopped")
	return s.factory.Close()
}
