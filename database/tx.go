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

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// TxFunc is the unit of work run by TxManager.
type TxFunc func(ctx context.Context, tx bun.Tx) error

// TxManager scopes work to a single transaction on one database: commit when
// fn returns nil, roll back on error or panic. It never retries.
type TxManager struct {
	db     *bun.DB
	logger Logger
}

// NewTxManager returns a transaction manager for db. A nil logger falls back
// to the package logger.
func NewTxManager(db *bun.DB, logger Logger) *TxManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &TxManager{db: db, logger: logger}
}

// DB returns the database the manager opens transactions on.
func (m *TxManager) DB() *bun.DB {
	return m.db
}

// RunInTx runs fn in a read-write transaction with the store's default
// isolation level.
func (m *TxManager) RunInTx(ctx context.Context, fn TxFunc) error {
	return m.run(ctx, nil, fn)
}

// ReadOnly runs fn in a read-only transaction where the dialect supports it.
// SQLite drivers reject the option, so it is omitted there.
func (m *TxManager) ReadOnly(ctx context.Context, fn TxFunc) error {
	var opts *sql.TxOptions
	if m.db != nil && m.db.Dialect().Name() != dialect.SQLite {
		opts = &sql.TxOptions{ReadOnly: true}
	}
	return m.run(ctx, opts, fn)
}

func (m *TxManager) run(ctx context.Context, opts *sql.TxOptions, fn TxFunc) (err error) {
	if m.db == nil {
		return WrapInfra("begin transaction", errNotInitialized)
	}
	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return WrapInfra("begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			m.logger.Error("Failed to rollback transaction", "error", rollbackErr)
		} else {
			m.logger.Debug("Transaction rolled back", "cause", err)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return WrapInfra("commit transaction", err)
	}
	committed = true
	return nil
}
