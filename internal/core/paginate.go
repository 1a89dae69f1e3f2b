package core

// DefaultPageSize is the number of sales per list page.
const DefaultPageSize = 20

// Page is one slice of a filtered and sorted sequence.
type Page struct {
	Items      []Sale `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
	Total      int    `json:"total"`
	Start      int    `json:"start"` // offset of the first item, 0-based
	End        int    `json:"end"`   // offset after the last item
}

// TotalPages returns ceil(total/size), with at least one page for an empty sequence.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total == 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Paginate returns the requested 1-based page of sales. Pages past the end
// clamp to the last page and pages below 1 clamp to 1. A size <= 0 uses
// DefaultPageSize.
func Paginate(sales []Sale, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(sales)
	pages := TotalPages(total, size)

	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := min(start+size, total)

	items := make([]Sale, end-start)
	copy(items, sales[start:end])

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
		Start:      start,
		End:        end,
	}
}
