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

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSortField is returned when a sort property does not name a column
// of the entity being listed.
var ErrUnknownSortField = errors.New("unknown sort field")

type Direction int

const (
	ASC Direction = iota
	DESC
)

func (d Direction) String() string {
	if d == DESC {
		return "DESC"
	}
	return "ASC"
}

// ParseDirection accepts "asc"/"desc" in any case; empty means ASC.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return ASC, nil
	case "DESC":
		return DESC, nil
	default:
		return ASC, fmt.Errorf("invalid sort direction %q", s)
	}
}

// Order is one property and its direction.
type Order struct {
	Property  string
	Direction Direction
}

// Sort is an ordered list of Orders. The zero value is unsorted.
type Sort struct {
	orders []Order
}

// SortBy orders by each property in turn, all in the same direction.
func SortBy(dir Direction, properties ...string) Sort {
	orders := make([]Order, 0, len(properties))
	for _, p := range properties {
		orders = append(orders, Order{Property: p, Direction: dir})
	}
	return Sort{orders: orders}
}

func Unsorted() Sort { return Sort{} }

// And appends other's orders after s's.
func (s Sort) And(other Sort) Sort {
	orders := make([]Order, 0, len(s.orders)+len(other.orders))
	orders = append(orders, s.orders...)
	orders = append(orders, other.orders...)
	return Sort{orders: orders}
}

func (s Sort) Orders() []Order {
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s Sort) IsSorted() bool { return len(s.orders) > 0 }

func (s Sort) String() string {
	if !s.IsSorted() {
		return "UNSORTED"
	}
	parts := make([]string, len(s.orders))
	for i, o := range s.orders {
		parts[i] = o.Property + ": " + o.Direction.String()
	}
	return strings.Join(parts, ", ")
}
