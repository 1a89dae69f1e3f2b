// Package core provides the sales record domain: the Sale model, price tiers,
// validation, and the filter/sort/pagination pipeline.
//
// This package has no storage, transport, or file-format dependencies. It can
// be used by web handlers, the CLI, the import pipeline, or tests without
// modification.
//
// # Pipeline
//
// A displayable page is produced by chaining three pure functions:
//
//	matched := core.Filter(all, filters)
//	ordered := core.Sort(matched, core.ColumnPrix, core.Asc)
//	page := core.Paginate(ordered, 1, core.DefaultPageSize)
//
// None of them modify their input slice.
//
// # Validation
//
// [Validate] checks one sale against the field rules and returns every
// failure at once. Uniqueness of the unit code is checked separately by
// [CheckUnique] because it depends on the rest of the collection.
//
// # Errors
//
// Expected business failures are sentinel errors ([ErrNotFound],
// [ErrCapacityExceeded], [ErrNothingToImport], [ErrNothingToExport]) or typed
// errors ([*FormatError], [*DuplicateError], [ValidationErrors]). [MapError]
// turns any of them into a coded [UserMessage] for display.
package core
