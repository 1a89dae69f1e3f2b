package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/JonMunkholm/ventes/internal/core"
)

// DefaultMaxBytes bounds an import file when the Importer has no limit set.
const DefaultMaxBytes = 10 << 20

// ErrFileTooLarge is returned when the input exceeds the importer's limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrorKind classifies a rejected row.
type ErrorKind string

const (
	KindColumns           ErrorKind = "columns"
	KindValidation        ErrorKind = "validation"
	KindDuplicateInFile   ErrorKind = "duplicate_in_file"
	KindDuplicateExisting ErrorKind = "duplicate_existing"
)

// RowError is one rejected row.
type RowError struct {
	Line        int                   `json:"line"`
	Kind        ErrorKind             `json:"kind"`
	Message     string                `json:"message"`
	Appartement string                `json:"appartement,omitempty"`
	Fields      core.ValidationErrors `json:"fields,omitempty"`
}

// Row is one non-blank record of the file with its line number.
type Row struct {
	Line  int
	Cells []string
}

// Result is the outcome of parsing one file. Accepted sales have no id yet.
type Result struct {
	Format    Format      `json:"format"`
	Accepted  []core.Sale `json:"accepted"`
	Errors    []string    `json:"errors"`
	RowErrors []RowError  `json:"rowErrors"`
	TotalRows int         `json:"totalRows"`
}

// Empty reports whether no row was accepted.
func (r Result) Empty() bool {
	return len(r.Accepted) == 0
}

// Count returns the number of row errors of the given kind.
func (r Result) Count(kind ErrorKind) int {
	n := 0
	for _, e := range r.RowErrors {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// HasWarnings reports whether any row was rejected.
func (r Result) HasWarnings() bool {
	return len(r.RowErrors) > 0
}

// Summary is the one-line outcome shown after an import.
func (r Result) Summary() string {
	inFile := r.Count(KindDuplicateInFile)
	existing := r.Count(KindDuplicateExisting)
	invalid := r.Count(KindValidation) + r.Count(KindColumns)

	if r.Empty() {
		msg := "Aucune donnée valide à importer."
		if inFile > 0 || existing > 0 {
			msg += " Tous les appartements sont en doublon."
		}
		return msg
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d vente(s) importée(s) avec succès", len(r.Accepted))
	if inFile > 0 {
		fmt.Fprintf(&b, ". %d doublon(s) détecté(s) dans le fichier", inFile)
	}
	if existing > 0 {
		fmt.Fprintf(&b, ". %d appartement(s) déjà existant(s) ignoré(s)", existing)
	}
	if invalid > 0 {
		fmt.Fprintf(&b, ". %d erreur(s) de validation", invalid)
	}
	return b.String()
}

// Importer parses import files. The zero value is ready to use.
type Importer struct {
	// MaxBytes caps the file size; <= 0 means DefaultMaxBytes.
	MaxBytes int64
}

// Import parses r with the default Importer.
func Import(ctx context.Context, r io.Reader, filename string, existing []core.Sale, today time.Time) (Result, error) {
	var im Importer
	return im.Import(ctx, r, filename, existing, today)
}

// Import reads a whole file, checks its header and runs every data row
// through normalization, strict validation and unit-code deduplication
// against earlier rows and against existing.
//
// A bad header, an unreadable file or a missing table fails the whole file
// with a *core.FormatError and nothing is accepted. Row problems are
// collected in the Result instead.
func (im Importer) Import(ctx context.Context, r io.Reader, filename string, existing []core.Sale, today time.Time) (Result, error) {
	limit := im.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", filename, err)
	}
	if int64(len(data)) > limit {
		return Result{}, fmt.Errorf("%s exceeds %d bytes: %w", filename, limit, ErrFileTooLarge)
	}

	format := DetectFormat(filename, data)
	rows, err := extract(format, data)
	if err != nil {
		return Result{}, err
	}
	if len(rows) == 0 {
		return Result{}, &core.FormatError{Reason: "le fichier est vide"}
	}
	if !headerMatches(rows[0].Cells) {
		return Result{}, &core.FormatError{
			Reason: "en-tête attendu: " + strings.Join(core.Headers, ", "),
		}
	}

	res, err := processRows(ctx, rows[1:], existing, today)
	if err != nil {
		return Result{}, err
	}
	res.Format = format
	return res, nil
}

// extract returns the header row followed by the data rows, each carrying
// the line number reported in row errors.
func extract(format Format, data []byte) ([]Row, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(data)
	case FormatHTMLTable:
		return readHTMLTable(cleanText(data))
	default:
		return readDelimited(string(cleanText(data)))
	}
}

// headerMatches compares labels case-insensitively after NFC normalization,
// so a decomposed "é" from some spreadsheet tools still matches.
func headerMatches(cells []string) bool {
	if len(cells) != len(core.Headers) {
		return false
	}
	for i, want := range core.Headers {
		got := norm.NFC.String(core.CleanCell(cells[i]))
		if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

// processRows is the one routine every format goes through.
func processRows(ctx context.Context, rows []Row, existing []core.Sale, today time.Time) (Result, error) {
	existingIDs := make(map[string]string, len(existing))
	for _, s := range existing {
		existingIDs[s.UnitKey()] = s.ID
	}
	seen := make(map[string]int)

	var invalid, inFile, dupExisting []RowError
	res := Result{Accepted: []core.Sale{}, TotalRows: len(rows)}

	for i, row := range rows {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}

		if len(row.Cells) != len(core.Headers) {
			invalid = append(invalid, RowError{
				Line:    row.Line,
				Kind:    KindColumns,
				Message: fmt.Sprintf("Ligne %d: Nombre de colonnes incorrect", row.Line),
			})
			continue
		}

		sale := buildSale(row.Cells)
		if errs := core.ValidateStrict(sale, today); errs != nil {
			invalid = append(invalid, RowError{
				Line:        row.Line,
				Kind:        KindValidation,
				Message:     fmt.Sprintf("Ligne %d: %s", row.Line, errs[0].Message),
				Appartement: sale.Appartement,
				Fields:      errs,
			})
			continue
		}

		key := sale.UnitKey()
		if _, ok := seen[key]; ok {
			inFile = append(inFile, RowError{
				Line:        row.Line,
				Kind:        KindDuplicateInFile,
				Message:     fmt.Sprintf("Ligne %d: Appartement %q déjà présent dans le fichier", row.Line, sale.Appartement),
				Appartement: sale.Appartement,
			})
			continue
		}
		if _, ok := existingIDs[key]; ok {
			dupExisting = append(dupExisting, RowError{
				Line:        row.Line,
				Kind:        KindDuplicateExisting,
				Message:     fmt.Sprintf("Ligne %d: Appartement %q existe déjà dans la base de données", row.Line, sale.Appartement),
				Appartement: sale.Appartement,
			})
			continue
		}

		seen[key] = row.Line
		res.Accepted = append(res.Accepted, sale)
	}

	res.RowErrors = make([]RowError, 0, len(invalid)+len(inFile)+len(dupExisting))
	res.RowErrors = append(res.RowErrors, invalid...)
	res.RowErrors = append(res.RowErrors, inFile...)
	res.RowErrors = append(res.RowErrors, dupExisting...)

	res.Errors = make([]string, len(res.RowErrors))
	for i, e := range res.RowErrors {
		res.Errors[i] = e.Message
	}
	return res, nil
}

func buildSale(cells []string) core.Sale {
	c := make([]string, len(cells))
	for i, v := range cells {
		c[i] = core.CleanCell(v)
	}
	date, _ := core.NormalizeDate(c[3])
	return core.Sale{
		Nom:         c[0],
		Prenom:      c[1],
		Telephone:   core.DigitsOnly(c[2]),
		DateAchat:   date,
		Appartement: c[4],
		Prix:        core.ParsePriceLabel(c[5]),
	}
}
