// Package pagination implements the page/limit contract shared by every list
// endpoint: a count query plus a page-slice query, wrapped in {data, meta}.
package pagination

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

var ErrInvalidSort = errors.New("invalid orderBy")

type Params struct {
	Page  int
	Limit int
}

// ParseParams coerces raw query values. Missing, non-numeric or non-positive
// values fall back to the defaults; limit is capped at MaxLimit.
func ParseParams(page, limit string) Params {
	p := Params{Page: atoiDefault(page, DefaultPage), Limit: atoiDefault(limit, DefaultLimit)}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Params) normalized() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

type Meta struct {
	Total       int64 `json:"total"`
	LastPage    int   `json:"lastPage"`
	CurrentPage int   `json:"currentPage"`
	PerPage     int   `json:"perPage"`
	Prev        *int  `json:"prev"`
	Next        *int  `json:"next"`
}

type Result[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewMeta(total int64, p Params) Meta {
	p = p.normalized()
	lastPage := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	m := Meta{Total: total, LastPage: lastPage, CurrentPage: p.Page, PerPage: p.Limit}
	if p.Page > 1 {
		prev := p.Page - 1
		m.Prev = &prev
	}
	if p.Page < lastPage {
		next := p.Page + 1
		m.Next = &next
	}
	return m
}

// Sort is a validated ORDER BY on a single whitelisted column. The zero value
// orders by id descending.
type Sort struct {
	Column string
	Desc   bool
}

// ParseSort reads the field_direction form (e.g. "createdAt_desc"). allowed
// maps API field names to column names.
func ParseSort(raw string, allowed map[string]string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Sort{}, nil
	}
	i := strings.LastIndexByte(raw, '_')
	if i <= 0 || i == len(raw)-1 {
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}
	col, ok := allowed[raw[:i]]
	if !ok {
		return Sort{}, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, raw[:i])
	}
	switch strings.ToLower(raw[i+1:]) {
	case "asc":
		return Sort{Column: col}, nil
	case "desc":
		return Sort{Column: col, Desc: true}, nil
	}
	return Sort{}, fmt.Errorf("%w: direction %q", ErrInvalidSort, raw[i+1:])
}

func (s Sort) Apply(q *gorm.DB) *gorm.DB {
	if s.Column == "" || s.Column == "id" {
		return q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: s.Column == "" || s.Desc})
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
}

// Paginate runs a count and a page fetch over q as two independent queries.
// q must carry the model and filters but no ordering, limit or offset.
// preload only applies to the page fetch.
func Paginate[T any](ctx context.Context, q *gorm.DB, p Params, s Sort, preload ...string) (*Result[T], error) {
	p = p.normalized()

	var total int64
	if err := q.Session(&gorm.Session{}).WithContext(ctx).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	items := make([]T, 0, p.Limit)
	page := s.Apply(q.Session(&gorm.Session{}).WithContext(ctx))
	for _, name := range preload {
		page = page.Preload(name)
	}
	if err := page.Offset(p.Offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("find page: %w", err)
	}
	return &Result[T]{Data: items, Meta: NewMeta(total, p)}, nil
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v > 0 {
		return v
	}
	return def
}
