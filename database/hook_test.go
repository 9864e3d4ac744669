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
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func captureLogger() (*DefaultLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	return NewDefaultLogger(l), buf
}

func TestSQLLogHook(t *testing.T) {
	logger, buf := captureLogger()
	hook := NewSQLLogHook(logger)
	ctx := context.Background()

	event := &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()}
	hook.AfterQuery(hook.BeforeQuery(ctx, event), event)
	assert.Contains(t, buf.String(), "SELECT 1")
	assert.Contains(t, buf.String(), "level=info")

	buf.Reset()
	event = &bun.QueryEvent{Query: "INSERT INTO t VALUES (1)", StartTime: time.Now(), Err: errors.New("UNIQUE constraint failed")}
	hook.AfterQuery(ctx, event)
	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "UNIQUE constraint failed")
}

func TestSQLLogHookSilent(t *testing.T) {
	logger, buf := captureLogger()
	hook := NewSQLLogHook(logger)

	EnableSQLLogSilent(true)
	defer EnableSQLLogSilent(false)
	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	assert.Empty(t, buf.String())
}

func TestSlowQueryHook(t *testing.T) {
	logger, buf := captureLogger()
	hook := &slowQueryHook{slowTime: 10 * time.Millisecond, logger: logger}

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT fast", StartTime: time.Now()})
	assert.Empty(t, buf.String())

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT slow", StartTime: time.Now().Add(-time.Second)})
	assert.Contains(t, buf.String(), "slow query")
	assert.Contains(t, buf.String(), "SELECT slow")
}

func TestToFields(t *testing.T) {
	fields := toFields([]interface{}{"a", 1, "b"})
	assert.Equal(t, 1, fields["a"])
	assert.Equal(t, "(MISSING)", fields["b"])
}
