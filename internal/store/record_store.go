package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/logging"
)

// DefaultKey is the blob key the collection lives under.
const DefaultKey = "apartment_sales"

// DefaultMaxBlobBytes is the serialized size limit when none is configured.
const DefaultMaxBlobBytes = 5 << 20

// Options configure a RecordStore. Zero values use the defaults.
type Options struct {
	Key          string
	MaxBlobBytes int64
}

// RecordStore is the durable sales collection. Every method reads the whole
// blob and mutations write it back in one Save, so the stored collection is
// always either the old or the new array.
type RecordStore struct {
	blobs    BlobStore
	key      string
	maxBytes int64

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewRecordStore returns a store over blobs.
func NewRecordStore(blobs BlobStore, opts Options) *RecordStore {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.MaxBlobBytes <= 0 {
		opts.MaxBlobBytes = DefaultMaxBlobBytes
	}
	return &RecordStore{
		blobs:    blobs,
		key:      opts.Key,
		maxBytes: opts.MaxBlobBytes,
	}
}

// NewID returns a fresh time-ordered sale id.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// GetAll returns every sale in insertion order. A missing blob is an empty
// collection; so is a blob that does not decode, which is logged.
func (s *RecordStore) GetAll(ctx context.Context) ([]core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Count returns the number of stored sales.
func (s *RecordStore) Count(ctx context.Context) (int, error) {
	sales, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(sales), nil
}

// Get returns the sale with id, or core.ErrNotFound.
func (s *RecordStore) Get(ctx context.Context, id string) (core.Sale, error) {
	sales, err := s.GetAll(ctx)
	if err != nil {
		return core.Sale{}, err
	}
	i := indexOf(sales, id)
	if i < 0 {
		return core.Sale{}, core.ErrNotFound
	}
	return sales[i], nil
}

// Add assigns a fresh id to sale, appends it and persists.
func (s *RecordStore) Add(ctx context.Context, sale core.Sale) (core.Sale, error) {
	added, err := s.AddAll(ctx, []core.Sale{sale})
	if err != nil {
		return core.Sale{}, err
	}
	return added[0], nil
}

// AddAll appends every sale with a fresh id in a single write.
// Nothing is stored if the write fails.
func (s *RecordStore) AddAll(ctx context.Context, sales []core.Sale) ([]core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	added := make([]core.Sale, len(sales))
	for i, sale := range sales {
		id, err := NewID()
		if err != nil {
			return nil, err
		}
		sale.ID = id
		added[i] = sale
	}

	if err := s.save(ctx, append(current, added...)); err != nil {
		return nil, err
	}
	return added, nil
}

// Update replaces the sale with id in place. The stored id is kept whatever
// sale.ID holds.
func (s *RecordStore) Update(ctx context.Context, id string, sale core.Sale) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return core.Sale{}, err
	}
	i := indexOf(current, id)
	if i < 0 {
		return core.Sale{}, core.ErrNotFound
	}

	sale.ID = id
	current[i] = sale
	if err := s.save(ctx, current); err != nil {
		return core.Sale{}, err
	}
	return sale, nil
}

// Delete removes the sale with id and reports whether it existed.
// Deleting an unknown id writes nothing.
func (s *RecordStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(current, id)
	if i < 0 {
		return false, nil
	}

	if err := s.save(ctx, slices.Delete(current, i, i+1)); err != nil {
		return false, err
	}
	return true, nil
}

// Save overwrites the whole collection.
func (s *RecordStore) Save(ctx context.Context, sales []core.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, sales)
}

// Clear removes the stored collection.
func (s *RecordStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear sales: %w", err)
	}
	return nil
}

// Close releases the underlying blob store.
func (s *RecordStore) Close() error {
	return s.blobs.Close()
}

func (s *RecordStore) load(ctx context.Context) ([]core.Sale, error) {
	data, err := s.blobs.Load(ctx, s.key)
	if errors.Is(err, ErrBlobNotFound) {
		return []core.Sale{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	var sales []core.Sale
	if err := json.Unmarshal(data, &sales); err != nil {
		logging.FromContext(ctx).Warn("stored sales are unreadable, treating as empty",
			"key", s.key,
			"bytes", len(data),
			"error", err,
		)
		return []core.Sale{}, nil
	}
	if sales == nil {
		sales = []core.Sale{}
	}
	return sales, nil
}

func (s *RecordStore) save(ctx context.Context, sales []core.Sale) error {
	if sales == nil {
		sales = []core.Sale{}
	}
	data, err := json.Marshal(sales)
	if err != nil {
		return fmt.Errorf("encode sales: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return fmt.Errorf("save %d sales (%d bytes, limit %d): %w",
			len(sales), len(data), s.maxBytes, core.ErrCapacityExceeded)
	}
	if err := s.blobs.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save sales: %w", err)
	}
	return nil
}

func indexOf(sales []core.Sale, id string) int {
	return slices.IndexFunc(sales, func(s core.Sale) bool { return s.ID == id })
}
