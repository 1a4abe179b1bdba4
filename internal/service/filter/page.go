package filter

// Page is one slice of a filtered listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// Paginate slices items into 1-based pages of size. Pages past the end are
// empty; a non-positive size returns everything on one page.
func Paginate[T any](items []T, page, size int) Page[T] {
	total := len(items)
	if size <= 0 {
		size = total
		if size == 0 {
			size = 1
		}
	}
	if page < 1 {
		page = 1
	}

	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	}

	start := (page - 1) * size
	if start >= total {
		return p
	}
	end := start + size
	if end > total {
		end = total
	}
	p.Items = items[start:end]
	return p
}
