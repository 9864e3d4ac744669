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

package entity

import (
	"fmt"

	"github.com/tomoncle/studentdb/database"
	"github.com/uptrace/bun"
)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Student)(nil), 1))
}

// Student is one row of tab_student. StudentID is assigned by the caller.
type Student struct {
	bun.BaseModel `bun:"table:tab_student,alias:s"`

	StudentID   int    `bun:"student_id,pk" json:"studentId"`
	StudentName string `bun:"student_name" json:"studentName"`
	Sex         Sex    `bun:"sex" json:"sex"`
}

func NewStudent(id int, name string, sex Sex) *Student {
	return &Student{StudentID: id, StudentName: name, Sex: sex}
}

func (s *Student) String() string {
	return fmt.Sprintf("Student{studentId=%d, studentName='%s', sex=%d}", s.StudentID, s.StudentName, s.Sex.Number())
}
