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

import "math"

const DefaultPageSize = 10

// PageRequest asks for one zero-based page of a listing in a given order.
type PageRequest struct {
	page     int
	pageSize int
	sort     Sort
}

// NewPageRequest constructs a PageRequest. A negative page is read as 0 and a
// size below 1 as DefaultPageSize.
func NewPageRequest(page int, pageSize int, sort Sort) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, sort: sort}
}

// NewUnsortedPageRequest constructs a PageRequest without ordering.
func NewUnsortedPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, Unsorted())
}

func (p *PageRequest) GetPage() int {
	if p.page < 0 {
		return 0
	}
	return p.page
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		return DefaultPageSize
	}
	return p.pageSize
}

// GetOffset is the number of rows before this page. It saturates at
// math.MaxInt when page*size does not fit in an int.
func (p *PageRequest) GetOffset() int {
	page, size := p.GetPage(), p.GetPageSize()
	if page > math.MaxInt/size {
		return math.MaxInt
	}
	return page * size
}

func (p *PageRequest) GetSort() Sort {
	return p.sort
}

// Page is one slice of a larger result set plus the count metadata derived
// from a separate COUNT query.
type Page[T any] struct {
	Content       []*T `json:"content"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	TotalElements int  `json:"total_elements"`
	TotalPages    int  `json:"total_pages"`
}

// NewPage builds a Page for req from its content and the total row count.
func NewPage[T any](content []*T, req *PageRequest, total int) *Page[T] {
	if content == nil {
		content = make([]*T, 0)
	}
	size := req.GetPageSize()
	pages := 0
	if total > 0 {
		pages = (total-1)/size + 1
	}
	return &Page[T]{
		Content:       content,
		Number:        req.GetPage(),
		Size:          size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// NumberOfElements is the length of this page's content.
func (p *Page[T]) NumberOfElements() int { return len(p.Content) }

func (p *Page[T]) IsFirst() bool { return p.Number == 0 }

func (p *Page[T]) IsLast() bool { return !p.HasNext() }

func (p *Page[T]) HasNext() bool { return p.Number < p.TotalPages-1 }

func (p *Page[T]) HasPrevious() bool { return p.Number > 0 }
