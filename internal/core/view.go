package core

import "fmt"

// ViewState is the list state a UI keeps between interactions: filters,
// sort, and the current page. Filter changes reset the page; sort changes don't.
type ViewState struct {
	Filters    Filters   `json:"filters"`
	SortColumn string    `json:"sort,omitempty"`
	SortDir    Direction `json:"dir,omitempty"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
}

// NewViewState returns an unfiltered, unsorted view on page 1.
func NewViewState() ViewState {
	return ViewState{SortDir: Asc, Page: 1, PageSize: DefaultPageSize}
}

// SetFilters replaces the filters and goes back to page 1.
func (v *ViewState) SetFilters(f Filters) {
	v.Filters = f
	v.Page = 1
}

// SetSearch changes only the search text and goes back to page 1.
func (v *ViewState) SetSearch(search string) {
	v.Filters.Search = search
	v.Page = 1
}

// ClearFilters removes every filter and goes back to page 1.
func (v *ViewState) ClearFilters() {
	v.SetFilters(Filters{})
}

// SetSort selects a sort column. Selecting the current column again flips the
// direction; a new column starts ascending. The page is kept.
func (v *ViewState) SetSort(column string) {
	if v.SortColumn == column {
		v.SortDir = v.SortDir.Toggle()
		return
	}
	v.SortColumn = column
	v.SortDir = Asc
}

// GoToPage moves to page n. Out of range pages clamp when the view is applied.
func (v *ViewState) GoToPage(n int) {
	v.Page = n
}

// Apply runs filter, sort and pagination over all, and stores the clamped page.
func (v *ViewState) Apply(all []Sale) Page {
	matched := Filter(all, v.Filters)
	if v.SortColumn != "" {
		matched = Sort(matched, v.SortColumn, v.SortDir)
	}
	p := Paginate(matched, v.Page, v.PageSize)
	v.Page = p.Page
	return p
}

// CountLabel renders the record count line, e.g. "20 sur 45 enregistrements".
func CountLabel(shown, total int) string {
	return fmt.Sprintf("%d sur %d enregistrements", shown, total)
}

// FilterLabel renders the active filter summary.
func FilterLabel(f Filters) string {
	n := f.ActiveCount()
	if n == 0 {
		return "Aucun filtre actif"
	}
	return fmt.Sprintf("%d filtre(s) actif(s)", n)
}
