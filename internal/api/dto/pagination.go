package dto

// Pagination echoes the coerced paging inputs plus computed totals.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes pages = ceil(total/limit). Handlers coerce
// page and limit before calling; the clamp here only keeps the math
// defined, it applies no default of its own.
func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	pages := (total + limit - 1) / limit
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
