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
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWrapInfra(t *testing.T) {
	assert.NoError(t, WrapInfra("op", nil))

	cause := errors.New("connection refused")
	err := WrapInfra("ping", cause)
	assert.True(t, IsInfrastructure(err))
	assert.ErrorIs(t, err, ErrInfrastructure)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "database infrastructure error: ping: connection refused", err.Error())

	// Already tagged errors are not wrapped twice.
	assert.Same(t, err, WrapInfra("outer", err))

	wrapped := fmt.Errorf("save: %w", err)
	assert.True(t, IsInfrastructure(wrapped))
	assert.False(t, IsInfrastructure(cause))
}

func TestIsSqlErrorMySQL(t *testing.T) {
	tests := map[uint16]SQLError{
		1062: DuplicateKeyErr,
		1048: NotNullViolationErr,
		1054: NoColumnErr,
		1216: ForeignKeyViolationErr,
		1265: DataTruncatedErr,
		9999: UnknownErr,
	}
	for code, want := range tests {
		is, got := IsSqlError(&mysql.MySQLError{Number: code, Message: "x"})
		assert.True(t, is, code)
		assert.Equal(t, want, got, code)
	}
}

func TestIsSqlErrorPostgres(t *testing.T) {
	is, got := IsSqlError(&pq.Error{Code: "23505"})
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, got)

	is, got = IsSqlError(WrapInfra("save", &pgconn.PgError{Code: "42P01"}))
	assert.True(t, is)
	assert.Equal(t, NoTableErr, got)
}

func TestIsSqlErrorSQLiteMessages(t *testing.T) {
	tests := map[string]SQLError{
		"UNIQUE constraint failed: tab_student.student_id": DuplicateKeyErr,
		"no such table: tab_student":                       NoTableErr,
		"no such column: age":                              NoColumnErr,
		"NOT NULL constraint failed: tab_student.sex":      NotNullViolationErr,
		"table tab_student already exists":                 ExistTableErr,
	}
	for msg, want := range tests {
		is, got := IsSqlError(errors.New(msg))
		assert.True(t, is, msg)
		assert.Equal(t, want, got, msg)
	}

	is, _ := IsSqlError(errors.New("something else"))
	assert.False(t, is)
	is, _ = IsSqlError(nil)
	assert.False(t, is)
}

func TestIsSqlErrorNoRows(t *testing.T) {
	is, got := IsSqlError(fmt.Errorf("find: %w", sql.ErrNoRows))
	assert.True(t, is)
	assert.Equal(t, NoRowsErr, got)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: t.id")))
	assert.False(t, IsDuplicateKey(errors.New("no such table: t")))
}
