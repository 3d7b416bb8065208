package rsarecover

import (
	"io"

	"github.com/go-errors/errors"

	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/internal/common"
)

// DefaultExponent is the conventional public exponent.
const DefaultExponent = 65537

// GenerateCloseKey generates a deliberately weak key: q is a random prime of
// primeBits bits and p is the next prime after it, so that the modulus is
// factored by ReconstructKey almost immediately. Never use such keys to protect
// anything.
func GenerateCloseKey(rand io.Reader, primeBits uint, e int64) (*PrivateKey, error) {
	if primeBits < 8 {
		return nil, errors.Errorf("%w: primes must have at least 8 bits", ErrInvalidInput)
	}
	if e < 3 || e%2 == 0 {
		return nil, errors.Errorf("%w: public exponent must be odd and at least 3", ErrInvalidInput)
	}
	E := big.NewInt(e)

	for {
		q, err := common.RandomPrimeInRange(rand, primeBits-1, primeBits-2)
		if err != nil {
			return nil, err
		}
		p := common.NextPrime(q)

		d, err := common.ModInverse(E, totient(p, q))
		if errors.Is(err, ErrNotInvertible) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return &PrivateKey{
			N: new(big.Int).Mul(p, q),
			E: E,
			D: d,
			P: p,
			Q: q,
		}, nil
	}
}
