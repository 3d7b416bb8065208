package rsarecover

import "github.com/closeprimes/rsarecover/internal/common"

// Error kinds returned by this package and its subpackages. Match them with errors.Is.
var (
	// ErrInvalidInput is returned for out of range or otherwise malformed arguments.
	ErrInvalidInput = common.ErrInvalidInput
	// ErrInvalidModulus is returned for moduli that cannot be a product of two odd primes.
	ErrInvalidModulus = common.ErrInvalidModulus
	// ErrFactorizationExhausted is returned when the modulus could not be factored within
	// the configured bounds, i.e. its factors are not close together. Retrying with a larger
	// fermat.Options.MaxIterations may still succeed.
	ErrFactorizationExhausted = common.ErrFactorizationExhausted
	// ErrNotInvertible is returned when the public exponent has no inverse modulo the totient.
	ErrNotInvertible = common.ErrNotInvertible
	// ErrKeyReconstructionFailed is returned when a reconstructed key does not satisfy
	// e*d = 1 (mod phi) or fails to decrypt what its public key encrypts.
	ErrKeyReconstructionFailed = common.ErrKeyReconstructionFailed
)
