// Package query carries cross-domain query primitives shared by repositories.
package query

// Pagination describes a bounded window over an ordered record set.
// Offset-based windows set Offset; cursor-based windows set After.
type Pagination struct {
	Limit  *int
	Offset *int
	Order  string
	After  *uint
}

// LimitOrDefault returns the requested limit bounded to [1, max], or def when
// unset.
func (p *Pagination) LimitOrDefault(def, max int) int {
	if p == nil || p.Limit == nil {
		return def
	}
	limit := *p.Limit
	if limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// OffsetOrZero returns the requested offset, never negative.
func (p *Pagination) OffsetOrZero() int {
	if p == nil || p.Offset == nil || *p.Offset < 0 {
		return 0
	}
	return *p.Offset
}

// Descending reports whether the window is ordered newest-first.
func (p *Pagination) Descending() bool {
	return p == nil || p.Order != "asc"
}
