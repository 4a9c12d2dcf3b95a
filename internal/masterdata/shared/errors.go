package shared

import "errors"

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrValidation    = errors.New("validation failed")
	ErrInvalidID     = errors.New("invalid ID")
	ErrRequiredField = errors.New("field is required")
	// ErrInUse rejects deleting master data still referenced by
	// transactional rows (detail lines or ledger entries).
	ErrInUse = errors.New("record still referenced")
)
