package filters

import (
	"errors"
	"strings"
)

const (
	AscSort  = "ASC"
	DescSort = "DESC"
)

type Filters struct {
	Page         int      `schema:"page"`
	PageSize     int      `schema:"page_size"`
	Sort         string   `schema:"sort"`
	SortSafelist []string `schema:"-"`
}

func (f *Filters) Normalize(defaultSort string) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
	if f.Sort == "" {
		f.Sort = defaultSort
	}
}

func (f *Filters) Valid() bool {
	s := strings.TrimPrefix(f.Sort, "-")
	for _, safeValue := range f.SortSafelist {
		if strings.EqualFold(s, safeValue) {
			return true
		}
	}
	return false
}

// SortColumn returns the canonical safelist entry, not the raw user value,
// so callers can use it in ORDER BY and map lookups regardless of the
// case the client sent.
func (f *Filters) SortColumn() string {
	s := strings.TrimPrefix(f.Sort, "-")
	for _, safeValue := range f.SortSafelist {
		if strings.EqualFold(s, safeValue) {
			return safeValue
		}
	}
	panic(errors.New("Unknown sort column: " + f.Sort))
}

func (f *Filters) SortDirection() string {
	if strings.HasPrefix(f.Sort, "-") {
		return DescSort
	}
	return AscSort
}

func (f *Filters) Limit() int {
	return f.PageSize
}

func (f *Filters) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type Metadata struct {
	CurrentPage  int `json:"current_page"`
	PageSize     int `json:"page_size"`
	TotalRecords int `json:"total_records"`
}

func NewMetadata(f Filters, totalRecords int) Metadata {
	return Metadata{
		CurrentPage:  f.Page,
		PageSize:     f.PageSize,
		TotalRecords: totalRecords,
	}
}
