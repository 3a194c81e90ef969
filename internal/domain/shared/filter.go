package shared

import "strings"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter carries the paging, ordering and free-text search shared by list
// queries. Page is 1-based.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: DefaultPageSize, OrderBy: "created_at", OrderDir: "desc"}
}

// Limit clamps PageSize to 1..MaxPageSize, using DefaultPageSize when unset
func (f Filter) Limit() int {
	if f.PageSize <= 0 {
		return DefaultPageSize
	}
	return min(f.PageSize, MaxPageSize)
}

func (f Filter) Offset() int {
	return max(f.Page-1, 0) * f.Limit()
}

// SearchPattern returns a lowercase LIKE pattern for Search, or "" when
// there is nothing to search for
func (f Filter) SearchPattern() string {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return ""
	}
	return "%" + term + "%"
}
