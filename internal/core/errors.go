package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no sale has the requested id.
	ErrNotFound = errors.New("sale not found")

	// ErrCapacityExceeded is returned when the store rejects a write because
	// the serialized collection is too large.
	ErrCapacityExceeded = errors.New("storage capacity exceeded")

	// ErrNothingToImport is returned when an import yields zero accepted rows.
	ErrNothingToImport = errors.New("nothing to import")

	// ErrNothingToExport is returned when an export is requested for an empty sequence.
	ErrNothingToExport = errors.New("nothing to export")

	// ErrDuplicate is matched by every *DuplicateError.
	ErrDuplicate = errors.New("duplicate unit code")
)

// FormatError aborts a whole import: bad header, no rows, unreadable file.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid file format: %s: %v", e.Reason, e.Err)
	}
	return "invalid file format: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// DuplicateError reports a unit code that collides with an existing sale.
type DuplicateError struct {
	Appartement string
	ExistingID  string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate unit code %q (existing sale %s)", e.Appartement, e.ExistingID)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// ValidationErrors is the full list of field failures for one sale.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages returns the user-facing message of each failure, in order.
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return msgs
}

// CheckUnique returns a *DuplicateError if another sale in sales already uses
// appartement. The sale with id excludeID is ignored so an update can keep
// its own unit code; pass "" when adding.
func CheckUnique(sales []Sale, appartement, excludeID string) error {
	key := UnitKey(appartement)
	for _, s := range sales {
		if excludeID != "" && s.ID == excludeID {
			continue
		}
		if s.UnitKey() == key {
			return &DuplicateError{Appartement: appartement, ExistingID: s.ID}
		}
	}
	return nil
}
