package importer

import (
	"encoding/csv"
	"strings"

	"github.com/JonMunkholm/ventes/internal/core"
)

// readDelimited splits text into records and fields. Each record picks its
// own delimiter: ';' when one appears outside quotes, ',' otherwise, so a
// file mixing both still reads. Blank records are dropped and the rest are
// numbered from 1 in the order they remain.
func readDelimited(text string) ([]Row, error) {
	var rows []Row
	for _, rec := range splitRecords(text) {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		fields, err := parseRecord(rec, recordDelimiter(rec))
		if err != nil {
			return nil, &core.FormatError{Reason: "ligne CSV illisible", Err: err}
		}
		rows = append(rows, Row{Line: len(rows) + 1, Cells: fields})
	}
	return rows, nil
}

// parseRecord reads one record with encoding/csv. Quoted fields may hold
// the delimiter, doubled quotes and newlines.
func parseRecord(rec string, delim rune) ([]string, error) {
	r := csv.NewReader(strings.NewReader(rec))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

// splitRecords cuts text at newlines that are outside quotes.
func splitRecords(text string) []string {
	var (
		records  []string
		b        strings.Builder
		inQuotes bool
	)
	flush := func() {
		records = append(records, strings.TrimSuffix(b.String(), "\r"))
		b.Reset()
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			b.WriteByte(c)
		case c == '\n' && !inQuotes:
			flush()
		default:
			b.WriteByte(c)
		}
	}
	if b.Len() > 0 {
		flush()
	}
	return records
}

func recordDelimiter(rec string) rune {
	inQuotes := false
	for i := 0; i < len(rec); i++ {
		switch rec[i] {
		case '"':
			inQuotes = !inQuotes
		case ';':
			if !inQuotes {
				return ';'
			}
		}
	}
	return ','
}
