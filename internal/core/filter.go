package core

import (
	"strings"
	"time"
)

// Filters is the set of active list filters. Empty fields are inactive.
type Filters struct {
	Search   string `json:"search,omitempty"`
	Building string `json:"building,omitempty"`
	DateFrom string `json:"dateFrom,omitempty"`
	DateTo   string `json:"dateTo,omitempty"`
	Prix     Price  `json:"prix,omitempty"`
}

// ActiveCount returns the number of non-empty filter entries.
func (f Filters) ActiveCount() int {
	n := 0
	for _, v := range []string{f.Search, f.Building, f.DateFrom, f.DateTo, string(f.Prix)} {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return f.ActiveCount() == 0
}

// Filter returns the sales matching every active filter, in their original order.
// The input slice is not modified.
//
// Date bounds accept the same forms as import. An unparseable bound is ignored;
// callers that take bounds from users should reject them first with ParseDate.
func Filter(sales []Sale, f Filters) []Sale {
	m := newMatcher(f)
	out := make([]Sale, 0, len(sales))
	for _, s := range sales {
		if m.match(s) {
			out = append(out, s)
		}
	}
	return out
}

type matcher struct {
	search   string
	building string
	from     time.Time
	hasFrom  bool
	to       time.Time
	hasTo    bool
	prix     Price
}

func newMatcher(f Filters) matcher {
	m := matcher{
		search:   strings.ToLower(strings.TrimSpace(f.Search)),
		building: strings.TrimSpace(f.Building),
		prix:     Price(strings.TrimSpace(string(f.Prix))),
	}
	m.from, m.hasFrom = ParseDate(f.DateFrom)
	m.to, m.hasTo = ParseDate(f.DateTo)
	return m
}

func (m matcher) match(s Sale) bool {
	if m.search != "" && !m.matchSearch(s) {
		return false
	}
	if m.building != "" && s.Building() != m.building {
		return false
	}
	if m.hasFrom || m.hasTo {
		d, ok := ParseDate(s.DateAchat)
		if !ok {
			return false
		}
		// Dates are civil days, so an inclusive "to" bound covers the whole day.
		if m.hasFrom && d.Before(m.from) {
			return false
		}
		if m.hasTo && d.After(m.to) {
			return false
		}
	}
	if m.prix != "" && s.Prix != m.prix {
		return false
	}
	return true
}

func (m matcher) matchSearch(s Sale) bool {
	fields := []string{
		s.Nom,
		s.Prenom,
		s.Telephone,
		s.Appartement,
		FormatDisplayDate(s.DateAchat),
		s.Prix.Label(),
	}
	for _, v := range fields {
		if strings.Contains(strings.ToLower(v), m.search) {
			return true
		}
	}
	return false
}
