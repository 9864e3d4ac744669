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
	"strconv"

	"github.com/tomoncle/studentdb/types"
)

// Sex is the integer code stored in tab_student.sex. Codes outside the known
// set are kept as-is; the store does not constrain them.
type Sex int

const (
	SexUnknown Sex = iota
	SexMale
	SexFemale
)

var _ types.BaseEnum = SexUnknown

var sexNames = map[Sex][2]string{
	SexUnknown: {"unknown", "not specified"},
	SexMale:    {"male", "male"},
	SexFemale:  {"female", "female"},
}

// Sexes lists the known codes in ascending order.
func Sexes() []Sex { return []Sex{SexUnknown, SexMale, SexFemale} }

// ParseSex accepts a code ("1") or a name ("male").
func ParseSex(s string) (Sex, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return Sex(n), true
	}
	return types.EnumByName(Sexes(), s)
}

func (s Sex) IsValid() bool {
	_, ok := sexNames[s]
	return ok
}

func (s Sex) Number() int { return int(s) }

func (s Sex) Name() string {
	if n, ok := sexNames[s]; ok {
		return n[0]
	}
	return types.IllegalName
}

func (s Sex) Desc() string {
	if n, ok := sexNames[s]; ok {
		return n[1]
	}
	return types.IllegalDesc
}

func (s Sex) String() string { return s.Name() }
