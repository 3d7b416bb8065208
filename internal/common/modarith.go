package common

import (
	"github.com/closeprimes/rsarecover/big"
	"github.com/go-errors/errors"
)

// Modular arithmetic used by key reconstruction and decryption.

// ExtendedGCD returns g = gcd(a, b) together with Bézout coefficients x and y
// such that a*x + b*y = g. The gcd is never negative.
func ExtendedGCD(a, b *big.Int) (g, x, y *big.Int, err error) {
	if a.Sign() == 0 && b.Sign() == 0 {
		return nil, nil, nil, errors.Errorf("%w: gcd(0, 0) is undefined", ErrInvalidInput)
	}

	oldR, r := new(big.Int).Set(a), new(big.Int).Set(b)
	oldS, s := big.NewInt(1), big.NewInt(0)
	oldT, t := big.NewInt(0), big.NewInt(1)
	q, tmp := new(big.Int), new(big.Int)
	for r.Sign() != 0 {
		q.Quo(oldR, r)

		// (oldR, r) = (r, oldR - q*r), and likewise for s and t
		tmp.Mul(q, r)
		oldR, r = r, oldR.Sub(oldR, tmp)
		tmp.Mul(q, s)
		oldS, s = s, oldS.Sub(oldS, tmp)
		tmp.Mul(q, t)
		oldT, t = t, oldT.Sub(oldT, tmp)
	}

	if oldR.Sign() < 0 {
		oldR.Neg(oldR)
		oldS.Neg(oldS)
		oldT.Neg(oldT)
	}
	return oldR, oldS, oldT, nil
}

// ModPow computes x^y mod m by square-and-multiply, reducing after every step.
// The exponent (y) can be negative, in which case it uses the modular inverse
// of x.
func ModPow(x, y, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, errors.Errorf("%w: modulus %s must be positive", ErrInvalidInput, m)
	}
	if m.Cmp(bigONE) == 0 {
		return big.NewInt(0), nil
	}

	base := new(big.Int).Mod(x, m)
	exp := y
	if y.Sign() < 0 {
		inv, err := ModInverse(base, m)
		if err != nil {
			return nil, err
		}
		base = inv
		exp = new(big.Int).Neg(y)
	}

	result := big.NewInt(1)
	for i := exp.BitLen() - 1; i >= 0; i-- {
		result.Mul(result, result).Mod(result, m)
		if exp.Bit(i) == 1 {
			result.Mul(result, base).Mod(result, m)
		}
	}
	return result, nil
}
