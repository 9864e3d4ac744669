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

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/studentdb/database"
	"github.com/tomoncle/studentdb/entity"
	"github.com/tomoncle/studentdb/internal/testdb"
	"github.com/tomoncle/studentdb/repository"
	"github.com/tomoncle/studentdb/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func newStudentRepo(t *testing.T) repository.StudentRepository {
	t.Helper()
	return repository.NewStudentRepository(testdb.Open(t))
}

func seed(t *testing.T, repo repository.StudentRepository, n int) {
	t.Helper()
	students := make([]*entity.Student, 0, n)
	for i := 1; i <= n; i++ {
		students = append(students, entity.NewStudent(i, fmt.Sprintf("student-%02d", i), entity.Sex(i%3)))
	}
	require.NoError(t, repo.SaveAll(context.Background(), students...))
}

func TestSaveThenFindByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)

	saved, err := repo.Save(ctx, entity.NewStudent(1, "rain", entity.SexMale))
	require.NoError(t, err)
	assert.Equal(t, 1, saved.StudentID)

	got, ok, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.StudentID)
	assert.Equal(t, "rain", got.StudentName)
	assert.Equal(t, entity.SexMale, got.Sex)
}

func TestFindByIDMissing(t *testing.T) {
	t.Parallel()
	repo := newStudentRepo(t)

	got, ok, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFindByName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	_, err := repo.Save(ctx, entity.NewStudent(1, "rain", entity.SexMale))
	require.NoError(t, err)

	got, ok, err := repo.FindByName(ctx, "rain")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.StudentID)

	got, ok, err = repo.FindByName(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFindByNameDuplicatesReturnsLowestID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	require.NoError(t, repo.SaveAll(ctx,
		entity.NewStudent(7, "twin", entity.SexFemale),
		entity.NewStudent(3, "twin", entity.SexMale),
		entity.NewStudent(5, "other", entity.SexMale),
	))

	got, ok, err := repo.FindByName(ctx, "twin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.StudentID)

	all, err := repo.FindAllByName(ctx, "twin")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 3, all[0].StudentID)
	assert.Equal(t, 7, all[1].StudentID)

	none, err := repo.FindAllByName(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFindPageSortedDescending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	seed(t, repo, 15)

	page, err := repo.FindPage(ctx, types.NewPageRequest(0, 10, types.SortBy(types.DESC, "studentId")))
	require.NoError(t, err)
	require.Len(t, page.Content, 10)
	assert.Equal(t, 15, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	for i := 1; i < len(page.Content); i++ {
		assert.Greater(t, page.Content[i-1].StudentID, page.Content[i].StudentID)
	}
	assert.Equal(t, 15, page.Content[0].StudentID)
	assert.True(t, page.IsFirst())
	assert.True(t, page.HasNext())

	last, err := repo.FindPage(ctx, types.NewPageRequest(1, 10, types.SortBy(types.DESC, "studentId")))
	require.NoError(t, err)
	require.Len(t, last.Content, 5)
	assert.Equal(t, 5, last.Content[0].StudentID)
	assert.Equal(t, 1, last.Content[4].StudentID)
	assert.True(t, last.IsLast())
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrevious())
}

func TestFindPageFewerRowsThanSize(t *testing.T) {
	t.Parallel()
	repo := newStudentRepo(t)
	seed(t, repo, 3)

	page, err := repo.FindPage(context.Background(), types.NewPageRequest(0, 10, types.SortBy(types.DESC, "studentId")))
	require.NoError(t, err)
	assert.Len(t, page.Content, 3)
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
}

func TestFindPageBeyondLastPage(t *testing.T) {
	t.Parallel()
	repo := newStudentRepo(t)
	seed(t, repo, 4)

	page, err := repo.FindPage(context.Background(), types.NewUnsortedPageRequest(5, 2))
	require.NoError(t, err)
	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
	assert.Equal(t, 4, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 5, page.Number)
}

func TestFindPageUnsortedUsesPrimaryKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	require.NoError(t, repo.SaveAll(ctx,
		entity.NewStudent(9, "c", entity.SexMale),
		entity.NewStudent(2, "a", entity.SexMale),
		entity.NewStudent(4, "b", entity.SexMale),
	))

	page, err := repo.FindPage(ctx, nil)
	require.NoError(t, err)
	require.Len(t, page.Content, 3)
	assert.Equal(t, []int{2, 4, 9}, ids(page.Content))
	assert.Equal(t, types.DefaultPageSize, page.Size)
}

func TestFindPageClampsInvalidRequest(t *testing.T) {
	t.Parallel()
	repo := newStudentRepo(t)
	seed(t, repo, 12)

	page, err := repo.FindPage(context.Background(), types.NewUnsortedPageRequest(-3, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, page.Number)
	assert.Equal(t, types.DefaultPageSize, page.Size)
	assert.Len(t, page.Content, 10)
	assert.Equal(t, 2, page.TotalPages)
}

func TestFindPageHugePageNumber(t *testing.T) {
	t.Parallel()
	repo := newStudentRepo(t)
	seed(t, repo, 3)

	page, err := repo.FindPage(context.Background(), types.NewPageRequest(math.MaxInt/5, 10, types.SortBy(types.ASC, "studentId")))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt/5, page.Number)
	assert.Empty(t, page.Content)
	assert.Equal(t, 3, page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext())
}

func TestFindPageTiesOrderedByPrimaryKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	// Inserted out of id order so that insertion order cannot pass for id order.
	for _, id := range []int{5, 2, 6, 1, 4, 3} {
		_, err := repo.Save(ctx, entity.NewStudent(id, fmt.Sprintf("s%d", id), entity.SexMale))
		require.NoError(t, err)
	}

	var got []int
	req := types.NewPageRequest(0, 4, types.SortBy(types.DESC, "sex"))
	for {
		page, err := repo.FindPage(ctx, req)
		require.NoError(t, err)
		got = append(got, ids(page.Content)...)
		if !page.HasNext() {
			break
		}
		req = types.NewPageRequest(page.Number+1, page.Size, req.GetSort())
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, got)

	students, err := repo.FindAllSorted(ctx, types.SortBy(types.ASC, "studentName"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(students))
}

func TestSortPropertyResolution(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	require.NoError(t, repo.SaveAll(ctx,
		entity.NewStudent(1, "carol", entity.SexFemale),
		entity.NewStudent(2, "alice", entity.SexFemale),
		entity.NewStudent(3, "bob", entity.SexMale),
	))

	for _, property := range []string{"studentName", "StudentName", "student_name", "STUDENTNAME"} {
		students, err := repo.FindAllSorted(ctx, types.SortBy(types.ASC, property))
		require.NoError(t, err, property)
		assert.Equal(t, []int{2, 3, 1}, ids(students), property)
	}

	students, err := repo.FindAllSorted(ctx, types.SortBy(types.DESC, "sex").And(types.SortBy(types.ASC, "studentId")))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(students))
}

func TestUnknownSortFieldRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)

	_, err := repo.FindAllSorted(ctx, types.SortBy(types.ASC, "age"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownSortField)
	assert.False(t, database.IsInfrastructure(err))

	_, err = repo.FindPage(ctx, types.NewPageRequest(0, 10, types.SortBy(types.ASC, "student_name; DROP TABLE tab_student")))
	assert.ErrorIs(t, err, types.ErrUnknownSortField)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	_, err := repo.Save(ctx, entity.NewStudent(1, "rain", entity.SexMale))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteByID(ctx, 1))
	_, ok, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting again is a no-op.
	assert.NoError(t, repo.DeleteByID(ctx, 1))
	assert.NoError(t, repo.DeleteByID(ctx, 999))
}

func TestSaveOverwritesExistingRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	_, err := repo.Save(ctx, entity.NewStudent(1, "rain", entity.SexMale))
	require.NoError(t, err)

	_, err = repo.Save(ctx, entity.NewStudent(1, "snow", entity.SexFemale))
	require.NoError(t, err)

	got, ok, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "snow", got.StudentName)
	assert.Equal(t, entity.SexFemale, got.Sex)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveAllUpsertsBatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	seed(t, repo, 3)

	require.NoError(t, repo.SaveAll(ctx,
		entity.NewStudent(2, "renamed", entity.SexUnknown),
		entity.NewStudent(4, "new", entity.SexMale),
	))
	require.NoError(t, repo.SaveAll(ctx))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, ids(all))
	assert.Equal(t, "renamed", all[1].StudentName)
}

func TestSaveNilEntity(t *testing.T) {
	t.Parallel()
	repo := newStudentRepo(t)

	_, err := repo.Save(context.Background(), nil)
	assert.Error(t, err)
	assert.Error(t, repo.SaveAll(context.Background(), entity.NewStudent(1, "a", entity.SexMale), nil))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestExistsAndCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	seed(t, repo, 5)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	ok, err := repo.ExistsByID(ctx, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByID(ctx, 6)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindAllEmpty(t *testing.T) {
	t.Parallel()
	repo := newStudentRepo(t)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestWithTxSharesOneCommit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	boom := errors.New("boom")

	err := repo.TxManager().RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := repo.SaveWithTx(ctx, tx, entity.NewStudent(1, "a", entity.SexMale)); err != nil {
			return err
		}
		if _, err := repo.SaveWithTx(ctx, tx, entity.NewStudent(2, "b", entity.SexMale)); err != nil {
			return err
		}
		got, ok, err := repo.FindByIDWithTx(ctx, tx, 2)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "b", got.StudentName)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "rolled back transaction must leave no rows")

	err = repo.TxManager().RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := repo.SaveWithTx(ctx, tx, entity.NewStudent(1, "a", entity.SexMale)); err != nil {
			return err
		}
		return repo.DeleteByIDWithTx(ctx, tx, 1)
	})
	require.NoError(t, err)
	ok, err := repo.ExistsByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueryBuilders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newStudentRepo(t)
	seed(t, repo, 6)

	var males []*entity.Student
	err := repo.NewSelect().Where("sex = ?", entity.SexMale).Order("student_id").Scan(ctx, &males)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, ids(males))

	_, err = repo.NewUpdate().Set("student_name = ?", "x").Where("student_id = ?", 1).Exec(ctx)
	require.NoError(t, err)
	_, err = repo.NewDelete().Where("student_id > ?", 4).Exec(ctx)
	require.NoError(t, err)

	got, ok, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", got.StudentName)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, dialect.SQLite, repo.Dialect().Name())
}

type pairKey struct {
	bun.BaseModel `bun:"table:pair_key"`

	Left  int `bun:"left_id,pk"`
	Right int `bun:"right_id,pk"`
}

func TestNewRepositoryRequiresSinglePrimaryKey(t *testing.T) {
	t.Parallel()
	db := testdb.Open(t)
	assert.Panics(t, func() { repository.NewRepository[pairKey, int](db) })
}

func ids(students []*entity.Student) []int {
	out := make([]int, len(students))
	for i, s := range students {
		out[i] = s.StudentID
	}
	return out
}
