package core

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns Desc for "desc" (any case) and Asc otherwise.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// IsSortable reports whether column is a key Sort understands.
func IsSortable(column string) bool {
	return slices.Contains(Columns, column)
}

// Sort returns a sorted copy of sales. Dates compare chronologically, prices
// by tier value, everything else as case-insensitive French text. The sort is
// stable, so equal keys keep their input order. An unknown column returns the
// copy in input order.
func Sort(sales []Sale, column string, dir Direction) []Sale {
	out := slices.Clone(sales)
	if !IsSortable(column) {
		return out
	}

	cmp := comparator(column)
	if dir == Desc {
		asc := cmp
		cmp = func(a, b Sale) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

func comparator(column string) func(a, b Sale) int {
	switch column {
	case ColumnDateAchat:
		return func(a, b Sale) int {
			da, _ := ParseDate(a.DateAchat)
			db, _ := ParseDate(b.DateAchat)
			return da.Compare(db)
		}
	case ColumnPrix:
		return func(a, b Sale) int {
			return a.Prix.SortValue() - b.Prix.SortValue()
		}
	default:
		// Collators keep internal buffers; one per sort.
		c := collate.New(language.French, collate.IgnoreCase)
		return func(a, b Sale) int {
			return c.CompareString(a.Field(column), b.Field(column))
		}
	}
}
