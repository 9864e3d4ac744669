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
	"github.com/tomoncle/studentdb/entity"
	"github.com/uptrace/bun"
)

// StudentRepository is the Student data-access contract: the generic
// operations keyed by student_id plus name lookups.
type StudentRepository interface {
	Repository[entity.Student, int]

	// FindByName returns the student whose name matches exactly. When several
	// rows share the name the one with the lowest student_id wins.
	FindByName(ctx context.Context, name string) (*entity.Student, bool, error)

	// FindAllByName returns every student with the name, ordered by id.
	FindAllByName(ctx context.Context, name string) ([]*entity.Student, error)
}

type studentRepository struct {
	Repository[entity.Student, int]
}

func NewStudentRepository(db *bun.DB) StudentRepository {
	return &studentRepository{Repository: NewRepository[entity.Student, int](db)}
}

func (r *studentRepository) FindByName(ctx context.Context, name string) (*entity.Student, bool, error) {
	var (
		student *entity.Student
		found   bool
	)
	err := r.TxManager().ReadOnly(ctx, func(ctx context.Context, tx bun.Tx) error {
		s := new(entity.Student)
		err := tx.NewSelect().
			Model(s).
			Where("? = ?", bun.Ident("student_name"), name).
			OrderExpr("? ASC", bun.Ident("student_id")).
			Limit(1).
			Scan(ctx)
		student, found, err = scanOne(s, err, "find student by name")
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return student, found, nil
}

func (r *studentRepository) FindAllByName(ctx context.Context, name string) ([]*entity.Student, error) {
	students := make([]*entity.Student, 0)
	err := r.TxManager().ReadOnly(ctx, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&students).
			Where("? = ?", bun.Ident("student_name"), name).
			OrderExpr("? ASC", bun.Ident("student_id")).
			Scan(ctx)
		return database.WrapInfra("find students by name", err)
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}
