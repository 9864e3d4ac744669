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
	"errors"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var sqlLogSilent atomic.Bool

// EnableSQLLogSilent suppresses statement logging, e.g. while creating tables.
func EnableSQLLogSilent(b bool) {
	sqlLogSilent.Store(b)
}

var (
	selectColor = color.New(color.FgGreen)
	insertColor = color.New(color.FgBlue)
	updateColor = color.New(color.FgYellow)
	deleteColor = color.New(color.FgMagenta)
	otherColor  = color.New(color.FgRed)
	errorColor  = color.New(color.BgRed, color.FgWhite)
)

// SQLLogHook logs every executed statement, which is what show_sql turns on.
type SQLLogHook struct {
	logger Logger
}

var _ bun.QueryHook = (*SQLLogHook)(nil)

// NewSQLLogHook returns a query hook writing statements to logger.
func NewSQLLogHook(logger Logger) *SQLLogHook {
	return &SQLLogHook{logger: logger}
}

func (h *SQLLogHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SQLLogHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if sqlLogSilent.Load() || h.logger == nil {
		return
	}
	dur := time.Since(event.StartTime).Round(time.Microsecond)
	query := colorizeOperation(event.Operation(), event.Query)

	switch {
	case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows):
		h.logger.Info("[SQL] "+query, "duration", dur)
	default:
		typ := reflect.TypeOf(event.Err).String()
		h.logger.Error("[SQL] "+query, "duration", dur, "error", errorColor.Sprintf(" %s: %s ", typ, event.Err.Error()))
	}
}

func colorizeOperation(operation, query string) string {
	switch operation {
	case "SELECT":
		return selectColor.Sprint(query)
	case "INSERT":
		return insertColor.Sprint(query)
	case "UPDATE":
		return updateColor.Sprint(query)
	case "DELETE":
		return deleteColor.Sprint(query)
	default:
		return otherColor.Sprint(query)
	}
}

type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil {
		return
	}

	duration := time.Since(event.StartTime)
	if duration > h.slowTime {
		h.logger.Warn("Database slow query detected",
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}
