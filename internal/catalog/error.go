package catalog

import "errors"

var (
	// -- Ingestion --
	ErrMissingID       = errors.New("product id is required")
	ErrMissingName     = errors.New("product name is required")
	ErrInvalidPrice    = errors.New("product price must be positive")
	ErrInvalidOriginal = errors.New("original price must exceed price")
	ErrInvalidRating   = errors.New("rating must be between 0 and 5")
	ErrInvalidReviews  = errors.New("review count must not be negative")
)
