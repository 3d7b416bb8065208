package common

import "github.com/go-errors/errors"

// Error kinds shared by all packages. Concrete failures wrap one of these with
// errors.Errorf("%w: ..."), so that callers can match them using errors.Is.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrInvalidModulus          = errors.New("invalid modulus")
	ErrFactorizationExhausted  = errors.New("factorization exhausted")
	ErrNotInvertible           = errors.New("not invertible")
	ErrKeyReconstructionFailed = errors.New("key reconstruction failed")
)
