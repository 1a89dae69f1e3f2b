package core

// convert.go normalizes user-provided values: dates typed or exported in
// French or ISO form, phone numbers with spacing, and spreadsheet cell
// artifacts. Import, filtering and validation all go through these helpers
// so a value accepted in one place is accepted everywhere.

import (
	"strings"
	"time"
	"unicode"
)

// ISODate is the storage layout of Sale.DateAchat.
const ISODate = "2006-01-02"

// DisplayDate is the DD/MM/YYYY layout used on screen and in exports.
const DisplayDate = "02/01/2006"

// dateLayouts are tried in order. Day-first layouts only: the file contract
// never carries month-first dates.
var dateLayouts = []string{
	ISODate,
	"02/01/2006", "2/1/2006",
	"02-01-2006", "2-1-2006",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ParseDate parses any accepted date form into a civil date at midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// NormalizeDate converts any accepted date form to YYYY-MM-DD.
// The second result is false when s is not a valid calendar date.
func NormalizeDate(s string) (string, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return strings.TrimSpace(s), false
	}
	return t.Format(ISODate), true
}

// FormatDisplayDate renders a stored date as DD/MM/YYYY.
// Unparseable input is returned as is.
func FormatDisplayDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(DisplayDate)
}

// CivilDate truncates t to its calendar day in t's own location,
// expressed at midnight UTC so it compares with ParseDate results.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StripSpaces removes all whitespace, including inside the value.
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// DigitsOnly keeps the ASCII digits of s, so "06-12.34 56 78" becomes
// "0612345678".
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace, including non-breaking spaces
// - Removes Excel formula prefix (="...")
func CleanCell(s string) string {
	s = strings.TrimFunc(s, unicode.IsSpace)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return s
}
