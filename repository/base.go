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
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/studentdb/database"
	"github.com/tomoncle/studentdb/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any, ID any] struct {
	db     *bun.DB
	tm     *database.TxManager
	table  *schema.Table
	pk     *schema.Field
	logger database.Logger
}

// NewRepository returns a generic repository for T backed by db. T must be a
// Bun model with exactly one primary key column; anything else panics.
func NewRepository[T any, ID any](db *bun.DB) Repository[T, ID] {
	table := db.Table(reflect.TypeFor[T]())
	if len(table.PKs) != 1 {
		panic(fmt.Sprintf("repository: %s must have exactly one primary key, has %d", table.TypeName, len(table.PKs)))
	}
	logger := database.GetLogger()
	return &baseRepositoryImpl[T, ID]{
		db:     db,
		tm:     database.NewTxManager(db, logger),
		table:  table,
		pk:     table.PKs[0],
		logger: logger,
	}
}

func (r *baseRepositoryImpl[T, ID]) TxManager() *database.TxManager { return r.tm }

func (r *baseRepositoryImpl[T, ID]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T, ID]) NewSelect() *bun.SelectQuery {
	return r.db.NewSelect().Model((*T)(nil))
}

func (r *baseRepositoryImpl[T, ID]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T, ID]) NewUpdate() *bun.UpdateQuery {
	return r.db.NewUpdate().Model((*T)(nil))
}

func (r *baseRepositoryImpl[T, ID]) NewDelete() *bun.DeleteQuery {
	return r.db.NewDelete().Model((*T)(nil))
}

func (r *baseRepositoryImpl[T, ID]) pkIdent() bun.Ident { return bun.Ident(r.pk.Name) }

func (r *baseRepositoryImpl[T, ID]) Save(ctx context.Context, entity *T) (*T, error) {
	var saved *T
	err := r.tm.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		saved, err = r.SaveWithTx(ctx, tx, entity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *baseRepositoryImpl[T, ID]) SaveAll(ctx context.Context, entities ...*T) error {
	if len(entities) == 0 {
		return nil
	}
	return r.tm.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return r.upsert(ctx, tx, entities)
	})
}

func (r *baseRepositoryImpl[T, ID]) SaveWithTx(ctx context.Context, tx bun.IDB, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("save %s: entity is nil", r.table.TypeName)
	}
	if err := r.upsert(ctx, tx, []*T{entity}); err != nil {
		return nil, err
	}
	return entity, nil
}

// upsert writes entities keyed on the primary key using the dialect's native
// conflict clause.
func (r *baseRepositoryImpl[T, ID]) upsert(ctx context.Context, tx bun.IDB, entities []*T) error {
	for _, e := range entities {
		if e == nil {
			return fmt.Errorf("save %s: entity is nil", r.table.TypeName)
		}
	}

	q := tx.NewInsert().Model(&entities)
	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		if len(r.table.DataFields) == 0 {
			q = q.On("CONFLICT (?) DO NOTHING", r.pkIdent())
			break
		}
		q = q.On("CONFLICT (?) DO UPDATE", r.pkIdent())
		for _, f := range r.table.DataFields {
			q = q.Set("? = EXCLUDED.?", bun.Ident(f.Name), bun.Ident(f.Name))
		}
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		q = q.On("DUPLICATE KEY UPDATE")
		if len(r.table.DataFields) == 0 {
			q = q.Set("? = ?", r.pkIdent(), r.pkIdent())
		}
		for _, f := range r.table.DataFields {
			q = q.Set("? = VALUES(?)", bun.Ident(f.Name), bun.Ident(f.Name))
		}
	default:
		return database.WrapInfra("save", fmt.Errorf("dialect %s supports no upsert clause", r.db.Dialect().Name()))
	}

	if _, err := q.Exec(ctx); err != nil {
		return database.WrapInfra("save "+r.table.TypeName, err)
	}
	return nil
}

func (r *baseRepositoryImpl[T, ID]) FindByID(ctx context.Context, id ID) (*T, bool, error) {
	var (
		entity *T
		found  bool
	)
	err := r.tm.ReadOnly(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		entity, found, err = r.FindByIDWithTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return entity, found, nil
}

func (r *baseRepositoryImpl[T, ID]) FindByIDWithTx(ctx context.Context, tx bun.IDB, id ID) (*T, bool, error) {
	entity := new(T)
	err := tx.NewSelect().Model(entity).Where("? = ?", r.pkIdent(), id).Limit(1).Scan(ctx)
	return scanOne(entity, err, "find "+r.table.TypeName+" by id")
}

func (r *baseRepositoryImpl[T, ID]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	var exists bool
	err := r.tm.ReadOnly(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		exists, err = tx.NewSelect().Model((*T)(nil)).Where("? = ?", r.pkIdent(), id).Exists(ctx)
		return database.WrapInfra("exists "+r.table.TypeName, err)
	})
	return exists, err
}

func (r *baseRepositoryImpl[T, ID]) FindAll(ctx context.Context) ([]*T, error) {
	return r.FindAllSorted(ctx, types.Unsorted())
}

func (r *baseRepositoryImpl[T, ID]) FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error) {
	orders, err := r.orderExprs(sort)
	if err != nil {
		return nil, err
	}
	entities := make([]*T, 0)
	err = r.tm.ReadOnly(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewSelect().Model(&entities)
		for _, o := range orders {
			q = q.OrderExpr(o.query, o.column)
		}
		return database.WrapInfra("find all "+r.table.TypeName, q.Scan(ctx))
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T, ID]) Count(ctx context.Context) (int, error) {
	var total int
	err := r.tm.ReadOnly(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		total, err = tx.NewSelect().Model((*T)(nil)).Count(ctx)
		return database.WrapInfra("count "+r.table.TypeName, err)
	})
	return total, err
}

func (r *baseRepositoryImpl[T, ID]) FindPage(ctx context.Context, req *types.PageRequest) (*types.Page[T], error) {
	if req == nil {
		req = types.NewUnsortedPageRequest(0, types.DefaultPageSize)
	}
	orders, err := r.orderExprs(req.GetSort())
	if err != nil {
		return nil, err
	}

	var (
		entities []*T
		total    int
	)
	err = r.tm.ReadOnly(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		total, err = tx.NewSelect().Model((*T)(nil)).Count(ctx)
		if err != nil || total <= req.GetOffset() {
			return database.WrapInfra("count "+r.table.TypeName, err)
		}
		q := tx.NewSelect().
			Model(&entities).
			Offset(req.GetOffset()).
			Limit(req.GetPageSize())
		for _, o := range orders {
			q = q.OrderExpr(o.query, o.column)
		}
		return database.WrapInfra("page "+r.table.TypeName, q.Scan(ctx))
	})
	if err != nil {
		return nil, err
	}
	return types.NewPage(entities, req, total), nil
}

func (r *baseRepositoryImpl[T, ID]) DeleteByID(ctx context.Context, id ID) error {
	return r.tm.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return r.DeleteByIDWithTx(ctx, tx, id)
	})
}

func (r *baseRepositoryImpl[T, ID]) DeleteByIDWithTx(ctx context.Context, tx bun.IDB, id ID) error {
	res, err := tx.NewDelete().Model((*T)(nil)).Where("? = ?", r.pkIdent(), id).Exec(ctx)
	if err != nil {
		return database.WrapInfra("delete "+r.table.TypeName, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		r.logger.Debug("Delete matched no rows", "table", r.table.Name, "id", id)
	}
	return nil
}

type orderExpr struct {
	query  string
	column bun.Ident
}

// orderExprs resolves sort properties against the table schema. The primary
// key is appended in ascending order unless already present, so rows that tie
// on every requested property still come back in a fixed order.
func (r *baseRepositoryImpl[T, ID]) orderExprs(sort types.Sort) ([]orderExpr, error) {
	orders := sort.Orders()
	exprs := make([]orderExpr, 0, len(orders)+1)
	hasPK := false
	for _, o := range orders {
		field, ok := r.lookupField(o.Property)
		if !ok {
			return nil, fmt.Errorf("%w: %q on %s", types.ErrUnknownSortField, o.Property, r.table.TypeName)
		}
		hasPK = hasPK || field == r.pk
		exprs = append(exprs, orderExpr{query: "? " + o.Direction.String(), column: bun.Ident(field.Name)})
	}
	if !hasPK {
		exprs = append(exprs, orderExpr{query: "? ASC", column: r.pkIdent()})
	}
	return exprs, nil
}

// lookupField matches a property against the column name, the Go field name
// and the column name without underscores, ignoring case, so "studentId",
// "StudentID" and "student_id" all resolve to the same column.
func (r *baseRepositoryImpl[T, ID]) lookupField(property string) (*schema.Field, bool) {
	p := strings.TrimSpace(property)
	if p == "" {
		return nil, false
	}
	for _, f := range r.table.Fields {
		if strings.EqualFold(f.Name, p) ||
			strings.EqualFold(f.GoName, p) ||
			strings.EqualFold(strings.ReplaceAll(f.Name, "_", ""), p) {
			return f, true
		}
	}
	return nil, false
}

func scanOne[T any](entity *T, err error, op string) (*T, bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, database.WrapInfra(op, err)
	}
	return entity, true, nil
}
