// Package pagination provides the page/limit model shared by every listing.
package pagination

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Params identifies one page of a listing. Use Normalize before querying.
type Params struct {
	Page  int64
	Limit int64
}

// Normalize clamps Params to sane values: page >= 1, 1 <= limit <= 100,
// defaulting to 20 items per page.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int64 {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Page holds one page of results plus the totals the client needs to render
// a pager.
type Page[T any] struct {
	Items     []T
	Page      int64
	Limit     int64
	TotalRows int64
}

// TotalPages derives the page count from TotalRows and Limit.
func (p Page[T]) TotalPages() int64 {
	if p.Limit <= 0 {
		return 0
	}
	return (p.TotalRows + p.Limit - 1) / p.Limit
}

// NewPage builds a Page from items, the request params, and the total row
// count reported by the store.
func NewPage[T any](items []T, params Params, totalRows int64) Page[T] {
	n := params.Normalize()
	return Page[T]{
		Items:     items,
		Page:      n.Page,
		Limit:     n.Limit,
		TotalRows: totalRows,
	}
}
