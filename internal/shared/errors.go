package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInUse indicates an entity still referenced by transactional rows.
	ErrInUse = errors.New("entity still referenced")
)
