package importer

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/ventes/internal/core"
)

// dateColumn is the index of "Date d'achat" in the file contract.
const dateColumn = 3

// readXLSX returns the non-blank rows of the first sheet, numbered from 1
// in the order they remain. Cells are read raw
// so real date cells arrive as serial numbers and are converted here; text
// cells, which is how the exporter writes dates, pass through unchanged.
// Trailing empty cells are restored up to the header width.
func readXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &core.FormatError{Reason: "classeur illisible", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &core.FormatError{Reason: "le classeur ne contient aucune feuille"}
	}

	raw, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &core.FormatError{Reason: "lecture de la feuille " + sheets[0], Err: err}
	}

	var rows []Row
	width := 0
	for _, row := range raw {
		if isBlank(row) {
			continue
		}
		if rows == nil {
			width = len(row)
			rows = append(rows, Row{Line: 1, Cells: row})
			continue
		}
		for len(row) < width {
			row = append(row, "")
		}
		if len(row) > dateColumn {
			row[dateColumn] = serialToDate(row[dateColumn])
		}
		rows = append(rows, Row{Line: len(rows) + 1, Cells: row})
	}
	return rows, nil
}

// serialToDate converts an Excel date serial to YYYY-MM-DD and leaves
// anything else alone.
func serialToDate(v string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || serial <= 0 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format(core.ISODate)
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
