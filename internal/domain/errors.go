package domain

import "errors"

// Error kinds returned by the repositories. Details are wrapped with %w, so
// match them with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrDuplicateBarcode  = errors.New("duplicate barcode")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrNotFound          = errors.New("not found")
	ErrInUse             = errors.New("still referenced")
)
