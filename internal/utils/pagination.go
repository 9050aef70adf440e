package utils

// ElementsPerPage is the fixed page size for every listing.
const ElementsPerPage = 10

// PageInfo describes the position of a page within the full result list.
type PageInfo struct {
	Page       int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Paginate slices items into the requested 1-based page. A page below 1 is
// treated as 1 and a page past the end is clamped to the last page, so the
// helper never errors. An empty list yields one empty page.
func Paginate[T any](items []T, perPage, page int) ([]T, PageInfo) {
	if perPage < 1 {
		perPage = 1
	}

	totalPages := (len(items) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return items[start:end], PageInfo{
		Page:       page,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}
