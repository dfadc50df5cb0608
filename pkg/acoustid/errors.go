package acoustid

import (
	"github.com/mdobak/go-xerrors"
)

// Errors raised when a host hands the engine a malformed fingerprint array.
// The comparison functions themselves never fail.
var (
	ErrInvalidShape = xerrors.Message("array must be one-dimensional")
	ErrNullElement  = xerrors.Message("array must not contain nulls")
)
