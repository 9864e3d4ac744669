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

package repository

import (
	"context"

	"github.com/tomoncle/studentdb/database"
	"github.com/tomoncle/studentdb/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for an entity T keyed by ID.
// Every call runs in its own transaction. Lookups report absence through the
// boolean, never through the error.
type CrudRepository[T any, ID any] interface {
	// Save inserts entity or, when its primary key exists, overwrites the
	// stored row's other columns.
	Save(ctx context.Context, entity *T) (*T, error)

	// SaveAll saves every entity in a single transaction.
	SaveAll(ctx context.Context, entities ...*T) error

	FindByID(ctx context.Context, id ID) (*T, bool, error)

	ExistsByID(ctx context.Context, id ID) (bool, error)

	// FindAll returns every row ordered by primary key.
	FindAll(ctx context.Context) ([]*T, error)

	Count(ctx context.Context) (int, error)

	// DeleteByID removes the row with id. Deleting a missing id is a no-op.
	DeleteByID(ctx context.Context, id ID) error
}

// TransactionRepository runs the write and lookup operations on a caller's
// transaction so several of them can share one commit.
type TransactionRepository[T any, ID any] interface {
	SaveWithTx(ctx context.Context, tx bun.IDB, entity *T) (*T, error)
	FindByIDWithTx(ctx context.Context, tx bun.IDB, id ID) (*T, bool, error)
	DeleteByIDWithTx(ctx context.Context, tx bun.IDB, id ID) error
}

// PagingAndSortingRepository defines sorted and paginated listings.
type PagingAndSortingRepository[T any, ID any] interface {
	FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error)

	// FindPage returns one page plus total count metadata. The primary key
	// breaks ties after any requested order so that pages are stable. A page
	// past the last row returns empty content with the real totals.
	FindPage(ctx context.Context, page *types.PageRequest) (*types.Page[T], error)
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for derived finders.
type Repository[T any, ID any] interface {
	CrudRepository[T, ID]
	PagingAndSortingRepository[T, ID]
	TransactionRepository[T, ID]
	TxManager() *database.TxManager
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
