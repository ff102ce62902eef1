package repositories

// ItemFilters defines the available filters for item listings.
type ItemFilters struct {
	// Query matches name, SKU and notes, case-insensitively.
	Query   string
	Status  string
	Company string
	Owner   string

	Page     int
	PageSize int
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Normalize clamps pagination to sane bounds.
func (f *ItemFilters) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Offset returns the row offset for the current page.
func (f *ItemFilters) Offset() int {
	return (f.Page - 1) * f.PageSize
}
