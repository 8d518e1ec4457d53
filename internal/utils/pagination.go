package utils

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaginateOptions is the "options" object accepted by list endpoints.
type PaginateOptions struct {
	Page       int         `json:"page" validate:"omitempty,min=1"`
	Limit      int         `json:"limit" validate:"omitempty,min=1"`
	Sort       interface{} `json:"sort"`
	Select     interface{} `json:"select"`
	Pagination *bool       `json:"pagination"`
	// Populate is accepted for compatibility and ignored.
	Populate interface{} `json:"populate"`
}

type Paginator struct {
	ItemCount   int64  `json:"itemCount"`
	Offset      int64  `json:"offset"`
	PerPage     int64  `json:"perPage"`
	PageCount   int64  `json:"pageCount"`
	CurrentPage int64  `json:"currentPage"`
	SlNo        int64  `json:"slNo"`
	HasPrevPage bool   `json:"hasPrevPage"`
	HasNextPage bool   `json:"hasNextPage"`
	Prev        *int64 `json:"prev"`
	Next        *int64 `json:"next"`
}

type PaginatedResult[T any] struct {
	Data      []*T       `json:"data"`
	Paginator *Paginator `json:"paginator"`
}

func (o *PaginateOptions) Paginated() bool {
	return o == nil || o.Pagination == nil || *o.Pagination
}

func (o *PaginateOptions) GetPage() int64 {
	if o == nil || o.Page < 1 {
		return DefaultPage
	}
	return int64(o.Page)
}

func (o *PaginateOptions) GetLimit() int64 {
	if o == nil || o.Limit < 1 {
		return DefaultLimit
	}
	return int64(o.Limit)
}

func (o *PaginateOptions) GetSkip() int64 {
	return (o.GetPage() - 1) * o.GetLimit()
}

// FindOptions translates the options into driver find options. Skip and
// limit are only applied when pagination is on.
func (o *PaginateOptions) FindOptions() (*options.FindOptions, error) {
	opts := options.Find()
	if o == nil {
		return opts.SetSkip(0).SetLimit(DefaultLimit), nil
	}

	if o.Sort != nil {
		sortDoc, err := ParseSort(o.Sort)
		if err != nil {
			return nil, err
		}
		if len(sortDoc) > 0 {
			opts.SetSort(sortDoc)
		}
	}

	if o.Select != nil {
		projection, err := ParseSelect(o.Select)
		if err != nil {
			return nil, err
		}
		if len(projection) > 0 {
			opts.SetProjection(projection)
		}
	}

	if o.Paginated() {
		opts.SetSkip(o.GetSkip()).SetLimit(o.GetLimit())
	}

	return opts, nil
}

// NewPaginator builds the paginator block for a result of total matches.
func NewPaginator(o *PaginateOptions, total int64) *Paginator {
	page, limit := o.GetPage(), o.GetLimit()
	if !o.Paginated() {
		page, limit = 1, total
	}

	pageCount := int64(1)
	if limit > 0 {
		pageCount = int64(math.Ceil(float64(total) / float64(limit)))
		if pageCount == 0 {
			pageCount = 1
		}
	}

	p := &Paginator{
		ItemCount:   total,
		Offset:      (page - 1) * limit,
		PerPage:     limit,
		PageCount:   pageCount,
		CurrentPage: page,
		SlNo:        (page-1)*limit + 1,
		HasPrevPage: page > 1,
		HasNextPage: page < pageCount,
	}

	if p.HasPrevPage {
		prev := page - 1
		p.Prev = &prev
	}
	if p.HasNextPage {
		next := page + 1
		p.Next = &next
	}

	return p
}

// ParseSort accepts "name -createdAt" or {"name": 1, "createdAt": "desc"}.
// Object keys are applied in lexical order.
func ParseSort(v interface{}) (bson.D, error) {
	switch s := v.(type) {
	case string:
		var out bson.D
		for _, field := range strings.Fields(s) {
			dir := 1
			if strings.HasPrefix(field, "-") {
				dir, field = -1, field[1:]
			} else if strings.HasPrefix(field, "+") {
				field = field[1:]
			}
			if field == "" {
				continue
			}
			out = append(out, bson.E{Key: field, Value: dir})
		}
		return out, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make(bson.D, 0, len(keys))
		for _, k := range keys {
			dir, err := sortDirection(s[k])
			if err != nil {
				return nil, fmt.Errorf("invalid sort for %q: %w", k, err)
			}
			out = append(out, bson.E{Key: k, Value: dir})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("sort must be a string or an object")
	}
}

func sortDirection(v interface{}) (int, error) {
	switch d := v.(type) {
	case float64:
		if d < 0 {
			return -1, nil
		}
		return 1, nil
	case int:
		if d < 0 {
			return -1, nil
		}
		return 1, nil
	case int64:
		if d < 0 {
			return -1, nil
		}
		return 1, nil
	case string:
		switch strings.ToLower(d) {
		case "asc", "ascending", "1":
			return 1, nil
		case "desc", "descending", "-1":
			return -1, nil
		}
	}
	return 0, fmt.Errorf("unsupported direction %v", v)
}

// ParseSelect accepts "name -password", ["name", "pool"] or {"name": 1}.
func ParseSelect(v interface{}) (bson.M, error) {
	out := bson.M{}

	switch s := v.(type) {
	case string:
		for _, field := range strings.Fields(s) {
			include := 1
			if strings.HasPrefix(field, "-") {
				include, field = 0, field[1:]
			} else if strings.HasPrefix(field, "+") {
				field = field[1:]
			}
			if field == "" {
				continue
			}
			out[field] = include
		}
	case []interface{}:
		for _, f := range s {
			name, ok := f.(string)
			if !ok {
				return nil, fmt.Errorf("select entries must be strings")
			}
			if name == "" {
				continue
			}
			out[name] = 1
		}
	case map[string]interface{}:
		for k, val := range s {
			if k == "" {
				continue
			}
			switch n := val.(type) {
			case float64:
				out[k] = int(n)
			case bool:
				if n {
					out[k] = 1
				} else {
					out[k] = 0
				}
			default:
				out[k] = val
			}
		}
	default:
		return nil, fmt.Errorf("select must be a string, an array or an object")
	}

	return out, nil
}
