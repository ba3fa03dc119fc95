package calendar

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is one window over an ordered list.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"` // 1-based
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	HasPrev  bool `json:"hasPrev"`
	Total    int  `json:"total"`
}

// Paginate cuts items into the requested page. Non-positive page or pageSize
// fall back to the first page and the default size; pageSize is capped at
// maxPageSize. A page past the end is empty.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	total := len(items)

	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageSize = min(pageSize, maxPageSize)
	if page <= 0 {
		page = 1
	}

	// compare page counts before multiplying so huge page numbers cannot overflow
	pages := (total + pageSize - 1) / pageSize
	start := total
	if page-1 < pages {
		start = (page - 1) * pageSize
	}
	end := min(start+pageSize, total)

	return Page[T]{
		Items:    items[start:end],
		Page:     page,
		PageSize: pageSize,
		HasNext:  end < total,
		HasPrev:  page > 1,
		Total:    total,
	}
}
