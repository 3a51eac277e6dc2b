package favorites

import "errors"

var (
	// ErrInvalidRef indicates a favorites entry of an unsupported JSON shape
	ErrInvalidRef = errors.New("favorites.invalid_ref")

	// ErrMissingID indicates an entry without any usable identifier
	ErrMissingID = errors.New("favorites.missing_id")

	// ErrInvalidItem indicates IDOf cannot derive an identifier from the value
	ErrInvalidItem = errors.New("favorites.invalid_item")
)
