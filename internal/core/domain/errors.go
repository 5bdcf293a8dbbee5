package domain

import "errors"

// Ledger error taxonomy. All of these are recoverable by the caller:
// services wrap them with context, handlers map them to HTTP status
// codes. The ledger always fails closed and never clamps bad input.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidState      = errors.New("invalid status transition")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("resource not found")
)
