// Package application is the use-case layer over the sales store: it
// normalizes and validates input, enforces unit-code uniqueness, runs
// imports and exports, and serializes every write to the collection.
// The HTTP server and the CLI both drive it.
package application

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/ventes/internal/config"
	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/exporter"
	"github.com/JonMunkholm/ventes/internal/importer"
	"github.com/JonMunkholm/ventes/internal/logging"
	"github.com/JonMunkholm/ventes/internal/store"
)

// DefaultImportTimeout bounds one import when Options leaves it unset.
const DefaultImportTimeout = 2 * time.Minute

// Options configure a Service. Zero values use defaults.
type Options struct {
	// MaxWait is how long a write waits for another one to finish.
	MaxWait time.Duration
	// MaxFileSize caps import files.
	MaxFileSize int64
	// ImportTimeout bounds parsing plus the store write of one import.
	ImportTimeout time.Duration
	// Now is the clock; tests pin it.
	Now func() time.Time
}

// Service implements the sales operations.
type Service struct {
	store         *store.RecordStore
	writes        *core.WriteLimiter
	importer      importer.Importer
	importTimeout time.Duration
	now           func() time.Time
}

// NewService creates a Service over rs.
func NewService(rs *store.RecordStore, opts Options) *Service {
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultImportTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:         rs,
		writes:        core.NewWriteLimiter(opts.MaxWait),
		importer:      importer.Importer{MaxBytes: opts.MaxFileSize},
		importTimeout: opts.ImportTimeout,
		now:           opts.Now,
	}
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}

// WritesBusy reports whether a write currently holds the slot.
func (s *Service) WritesBusy() bool {
	return s.writes.Busy()
}

// WaitForWrites blocks until the active write, if any, finishes.
func (s *Service) WaitForWrites(ctx context.Context) error {
	return s.writes.WaitForDrain(ctx)
}

// withWrite runs fn holding the write slot.
func (s *Service) withWrite(ctx context.Context, fn func() error) error {
	if err := s.writes.Acquire(ctx); err != nil {
		return err
	}
	defer s.writes.Release()
	return fn()
}

// =============================================================================
// Reads
// =============================================================================

// All returns every sale in insertion order.
func (s *Service) All(ctx context.Context) ([]core.Sale, error) {
	return s.store.GetAll(ctx)
}

// Get returns one sale or core.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (core.Sale, error) {
	return s.store.Get(ctx, id)
}

// ListResult is one displayable page with the counters shown around it.
type ListResult struct {
	core.Page
	StoreTotal    int    `json:"storeTotal"`
	ActiveFilters int    `json:"activeFilters"`
	CountLabel    string `json:"countLabel"`
	FilterLabel   string `json:"filterLabel"`
	Sort          string `json:"sort,omitempty"`
	Dir           string `json:"dir,omitempty"`
}

// List applies the view's filters, sort and pagination to the collection.
func (s *Service) List(ctx context.Context, view core.ViewState) (ListResult, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return ListResult{}, err
	}

	page := view.Apply(all)
	res := ListResult{
		Page:          page,
		StoreTotal:    len(all),
		ActiveFilters: view.Filters.ActiveCount(),
		CountLabel:    core.CountLabel(page.Total, len(all)),
		FilterLabel:   core.FilterLabel(view.Filters),
		Sort:          view.SortColumn,
	}
	if view.SortColumn != "" {
		res.Dir = string(view.SortDir)
	}
	return res, nil
}

// Stats computes the dashboard counters as of now.
func (s *Service) Stats(ctx context.Context) (core.Stats, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(all, s.now()), nil
}

// Buildings returns the distinct building codes.
func (s *Service) Buildings(ctx context.Context) ([]string, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.Buildings(all), nil
}

// SalesByMonth counts sales per YYYY-MM.
func (s *Service) SalesByMonth(ctx context.Context) (map[string]int, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return core.SalesByMonth(all), nil
}

// =============================================================================
// Mutations
// =============================================================================

// Normalize trims text fields, converts the date to YYYY-MM-DD and the price
// to its token, and strips whitespace from the phone number. Values that
// cannot be converted are kept so validation can report them.
func Normalize(sale core.Sale) core.Sale {
	date, _ := core.NormalizeDate(sale.DateAchat)
	return core.Sale{
		ID:          sale.ID,
		Nom:         strings.TrimSpace(sale.Nom),
		Prenom:      strings.TrimSpace(sale.Prenom),
		Telephone:   core.StripSpaces(sale.Telephone),
		DateAchat:   date,
		Appartement: strings.TrimSpace(sale.Appartement),
		Prix:        core.ParsePriceLabel(string(sale.Prix)),
	}
}

// Add validates sale and stores it with a fresh id. Validation failures are
// core.ValidationErrors; a unit code already in use is a *core.DuplicateError.
func (s *Service) Add(ctx context.Context, sale core.Sale) (core.Sale, error) {
	sale = Normalize(sale)
	if errs := core.ValidateStrict(sale, s.now()); errs != nil {
		return core.Sale{}, errs
	}

	var added core.Sale
	err := s.withWrite(ctx, func() error {
		all, err := s.store.GetAll(ctx)
		if err != nil {
			return err
		}
		if err := core.CheckUnique(all, sale.Appartement, ""); err != nil {
			return err
		}
		added, err = s.store.Add(ctx, sale)
		return err
	})
	if err != nil {
		return core.Sale{}, err
	}

	logging.FromContext(ctx).Info("sale added", "id", added.ID, "appartement", added.Appartement)
	return added, nil
}

// Update replaces the sale with id. The unit code may stay the same; it may
// not collide with another sale.
func (s *Service) Update(ctx context.Context, id string, sale core.Sale) (core.Sale, error) {
	sale = Normalize(sale)

	var updated core.Sale
	err := s.withWrite(ctx, func() error {
		all, err := s.store.GetAll(ctx)
		if err != nil {
			return err
		}
		if !containsID(all, id) {
			return core.ErrNotFound
		}
		if errs := core.ValidateStrict(sale, s.now()); errs != nil {
			return errs
		}
		if err := core.CheckUnique(all, sale.Appartement, id); err != nil {
			return err
		}
		updated, err = s.store.Update(ctx, id, sale)
		return err
	})
	if err != nil {
		return core.Sale{}, err
	}

	logging.FromContext(ctx).Info("sale updated", "id", id, "appartement", updated.Appartement)
	return updated, nil
}

// Delete removes the sale with id, or returns core.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.withWrite(ctx, func() error {
		ok, err := s.store.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return core.ErrNotFound
		}
		logging.FromContext(ctx).Info("sale deleted", "id", id)
		return nil
	})
}

// Clear removes every sale and returns how many there were.
func (s *Service) Clear(ctx context.Context) (int, error) {
	var n int
	err := s.withWrite(ctx, func() error {
		var err error
		if n, err = s.store.Count(ctx); err != nil {
			return err
		}
		return s.store.Clear(ctx)
	})
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Warn("all sales cleared", "count", n)
	return n, nil
}

func containsID(sales []core.Sale, id string) bool {
	for _, s := range sales {
		if s.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// Import / export
// =============================================================================

// ImportOutcome is what a finished import reports back.
type ImportOutcome struct {
	importer.Result
	Imported   int    `json:"imported"`
	Message    string `json:"message"`
	HasWarning bool   `json:"hasWarning"`
}

// Import parses a file against the current collection and stores every
// accepted row in one write. When nothing is accepted the outcome still
// carries the row errors and the error is core.ErrNothingToImport.
func (s *Service) Import(ctx context.Context, r io.Reader, filename string) (ImportOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	logger := logging.WithFields(ctx, "file", filename)

	var out ImportOutcome
	err := s.withWrite(ctx, func() error {
		existing, err := s.store.GetAll(ctx)
		if err != nil {
			return err
		}

		res, err := s.importer.Import(ctx, r, filename, existing, s.now())
		if err != nil {
			return err
		}
		out = ImportOutcome{
			Result:     res,
			Message:    res.Summary(),
			HasWarning: res.HasWarnings(),
		}
		if res.Empty() {
			return core.ErrNothingToImport
		}

		added, err := s.store.AddAll(ctx, res.Accepted)
		if err != nil {
			return err
		}
		out.Accepted = added
		out.Imported = len(added)
		return nil
	})
	if err != nil {
		logger.Warn("import rejected",
			"error", err,
			"rows", out.TotalRows,
			"row_errors", len(out.RowErrors),
		)
		return out, err
	}

	logger.Info("import completed",
		"format", out.Format.String(),
		"rows", out.TotalRows,
		"imported", out.Imported,
		"row_errors", len(out.RowErrors),
	)
	return out, nil
}

// ExportRequest selects what an export covers and how it is ordered.
type ExportRequest struct {
	Format  exporter.Format
	Filters core.Filters
	Sort    string
	Dir     core.Direction
}

// Export writes the filtered view, or everything when no filter narrows it,
// and returns the download filename.
func (s *Service) Export(ctx context.Context, w io.Writer, req ExportRequest) (string, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return "", err
	}

	sales := core.ExportSelection(all, core.Filter(all, req.Filters))
	if req.Sort != "" {
		sales = core.Sort(sales, req.Sort, req.Dir)
	}

	now := s.now()
	if err := exporter.Export(ctx, w, sales, req.Format, now); err != nil {
		return "", fmt.Errorf("export %s: %w", req.Format, err)
	}

	logging.FromContext(ctx).Info("export completed", "format", string(req.Format), "count", len(sales))
	return exporter.Filename(req.Format, now), nil
}

// Open builds the configured store and a Service over it.
func Open(ctx context.Context, cfg *config.Config) (*Service, error) {
	blobs, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	rs := store.NewRecordStore(blobs, store.Options{
		Key:          cfg.Store.Key,
		MaxBlobBytes: cfg.Store.MaxBlobBytes,
	})
	return NewService(rs, Options{
		MaxWait:       cfg.Upload.MaxWaitTime,
		MaxFileSize:   cfg.Upload.MaxFileSize,
		ImportTimeout: cfg.Upload.Timeout,
	}), nil
}
