// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blockfrost

import (
	"strconv"
)

const (
	DefaultPaginationCount = 100
	MaxPaginationCount     = 100
	DefaultPaginationPage  = 1
	PaginationOrderAsc     = "asc"
	PaginationOrderDesc    = "desc"
)

// PaginationParams selects one page of a paginated listing
type PaginationParams struct {
	Count int
	Page  int
	Order string
}

// DefaultPagination returns the first page at the provider's maximum page
// size, newest first
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Count: DefaultPaginationCount,
		Page:  DefaultPaginationPage,
		Order: PaginationOrderDesc,
	}
}

// Next returns the params for the following page
func (p PaginationParams) Next() PaginationParams {
	next := p.normalize()
	next.Page++
	return next
}

// normalize applies defaults and bounds clamping
func (p PaginationParams) normalize() PaginationParams {
	if p.Count < 1 {
		p.Count = DefaultPaginationCount
	}
	if p.Count > MaxPaginationCount {
		p.Count = MaxPaginationCount
	}
	if p.Page < 1 {
		p.Page = DefaultPaginationPage
	}
	if p.Order != PaginationOrderAsc && p.Order != PaginationOrderDesc {
		p.Order = PaginationOrderDesc
	}
	return p
}

// queryParams renders the params as URL query values
func (p PaginationParams) queryParams() map[string]string {
	p = p.normalize()
	return map[string]string{
		"count": strconv.Itoa(p.Count),
		"page":  strconv.Itoa(p.Page),
		"order": p.Order,
	}
}
