package core

import (
	"slices"
	"time"
)

// Stats are the dashboard counters.
type Stats struct {
	Total           int `json:"total"`
	ThisMonth       int `json:"thisMonth"`
	ThisYear        int `json:"thisYear"`
	UniqueBuildings int `json:"uniqueBuildings"`
}

// ComputeStats counts sales overall, in now's month and year, and the number
// of distinct buildings. Sales without a parseable date only count toward Total.
func ComputeStats(sales []Sale, now time.Time) Stats {
	st := Stats{Total: len(sales)}
	buildings := make(map[string]struct{})

	for _, s := range sales {
		d, ok := ParseDate(s.DateAchat)
		if !ok {
			continue
		}
		if d.Year() == now.Year() {
			st.ThisYear++
			if d.Month() == now.Month() {
				st.ThisMonth++
			}
		}
		if b := s.Building(); b != "" {
			buildings[b] = struct{}{}
		}
	}

	st.UniqueBuildings = len(buildings)
	return st
}

// Buildings returns the sorted distinct building codes, the source of the
// building filter choices.
func Buildings(sales []Sale) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, s := range sales {
		b := s.Building()
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	slices.Sort(out)
	return out
}

// SalesByMonth counts sales per "YYYY-MM" month.
func SalesByMonth(sales []Sale) map[string]int {
	out := make(map[string]int)
	for _, s := range sales {
		d, ok := ParseDate(s.DateAchat)
		if !ok {
			continue
		}
		out[d.Format("2006-01")]++
	}
	return out
}

// ExportSelection picks what an export covers: the filtered view when it is
// narrower than the full collection, otherwise everything.
func ExportSelection(all, filtered []Sale) []Sale {
	if len(filtered) < len(all) {
		return filtered
	}
	return all
}
