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
	"fmt"
	"os"

	"github.com/uptrace/bun"
)

// CreateTables issues CREATE TABLE IF NOT EXISTS for every registered model
// inside one transaction. Existing tables are never altered.
func CreateTables(ctx context.Context, db *bun.DB, logger Logger) error {
	if _, ok := os.LookupEnv("BUNDEBUG_DDL"); !ok {
		EnableSQLLogSilent(true)
		defer EnableSQLLogSilent(false)
	}

	tm := NewTxManager(db, logger)
	err := tm.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range RegisteredModelInstances() {
			_, err := tx.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
			if logger != nil {
				logger.Debug("Table ensured", "model", fmt.Sprintf("%T", model))
			}
		}
		return nil
	})
	if err != nil {
		return WrapInfra("create tables", err)
	}
	if logger != nil {
		logger.Info("Database tables ensured", "count", len(RegisteredModelInstances()))
	}
	return nil
}

// DropTables drops every registered model table if it exists. Tests use it to
// reset state.
func DropTables(ctx context.Context, db *bun.DB) error {
	models := RegisteredModelInstances()
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return WrapInfra("drop tables", err)
		}
	}
	return nil
}
