package shared

const (
	// DefaultPageSize applies when a list request omits page_size
	DefaultPageSize = 20
	// MaxPageSize caps page_size on list endpoints
	MaxPageSize = 100
)

// Filter carries the paging, ordering and search options shared by list
// queries. A zero PageSize means "no limit".
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter returns the first page ordered newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: DefaultPageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// Paged reports whether the filter restricts the result to one page
func (f Filter) Paged() bool {
	return f.PageSize > 0
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Clamp fills in a missing page and bounds PageSize to (0, MaxPageSize]
func (f Filter) Clamp() Filter {
	if f.Page <= 0 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = DefaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
	return f
}
