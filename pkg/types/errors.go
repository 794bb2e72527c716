package types

import "errors"

// Argument resolution errors. Both are caller errors, detected before any
// network interaction.
var (
	ErrMissingRequiredArguments = errors.New("missing required arguments")
	ErrAmbiguousArguments       = errors.New("ambiguous arguments")
)

// ErrUnsupportedShape indicates a resolved argument shape with no dispatch
// table entry. It is an internal invariant violation, not a caller error.
var ErrUnsupportedShape = errors.New("unsupported argument shape")

// Transaction errors.
var (
	ErrIllegalStateTransition = errors.New("illegal transaction state transition")
	ErrTransactionConflict    = errors.New("transaction conflict")
)

// Connection errors.
var (
	ErrTransportFailure      = errors.New("transport failure")
	ErrAuthenticationFailure = errors.New("authentication failure")
)
