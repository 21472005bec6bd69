package domain

// PaginationParams holds 1-based page pagination for list queries. The
// delivery layer is responsible for clamping both fields to sane ranges.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset converts the page number to a 0-based row offset.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
