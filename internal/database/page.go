package database

// DefaultPageSize is the number of rows returned per page by list queries.
const DefaultPageSize = 30

// MaxPageSize caps caller-supplied limits.
const MaxPageSize = 100

// MaxPageNumber caps caller-supplied page numbers so offsets stay in range.
const MaxPageNumber = 1 << 20

// Page selects a window of a list query. Number is 1-based.
type Page struct {
	Number int
	Limit  int
}

// Normalize fills in defaults and clamps out-of-range values.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Limit
}

// Result holds one page of a list query.
type Result[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

// NewResult builds a Result, replacing a nil slice with an empty one.
func NewResult[T any](items []T, total int, p Page) *Result[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Result[T]{Items: items, Total: total, Page: p.Number, Limit: p.Limit}
}
