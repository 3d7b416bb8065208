package common

import (
	"github.com/closeprimes/rsarecover/big"
	"github.com/go-errors/errors"
)

// squaresMod64 marks the quadratic residues modulo 64. A number whose low six
// bits are not marked cannot be a perfect square.
var squaresMod64 [64]bool

func init() {
	for i := 0; i < 64; i++ {
		squaresMod64[(i*i)%64] = true
	}
}

// ISqrt returns the floor of the square root of x, computed with integer Newton
// iteration.
func ISqrt(x *big.Int) (*big.Int, error) {
	if x.Sign() < 0 {
		return nil, errors.Errorf("%w: square root of negative number %s", ErrInvalidInput, x)
	}
	if x.Cmp(bigONE) <= 0 {
		return new(big.Int).Set(x), nil
	}

	// Start at 2^ceil(bitlen/2), which is at least the root; from there the
	// iterates decrease monotonically until they reach the floor of the root.
	r := new(big.Int).Lsh(bigONE, uint(x.BitLen()+1)/2)
	next := new(big.Int)
	for {
		next.Quo(x, r)
		next.Add(next, r)
		next.Rsh(next, 1)
		if next.Cmp(r) >= 0 {
			return r, nil
		}
		r.Set(next)
	}
}

// CeilSqrt returns the smallest integer whose square is at least x.
func CeilSqrt(x *big.Int) (*big.Int, error) {
	r, err := ISqrt(x)
	if err != nil {
		return nil, err
	}
	if new(big.Int).Mul(r, r).Cmp(x) < 0 {
		r.Add(r, bigONE)
	}
	return r, nil
}

// IsPerfectSquare reports whether x is the square of an integer.
func IsPerfectSquare(x *big.Int) (bool, error) {
	if x.Sign() < 0 {
		return false, errors.Errorf("%w: perfect square test of negative number %s", ErrInvalidInput, x)
	}
	if !squaresMod64[x.Bit(0)|x.Bit(1)<<1|x.Bit(2)<<2|x.Bit(3)<<3|x.Bit(4)<<4|x.Bit(5)<<5] {
		return false, nil
	}
	r, err := ISqrt(x)
	if err != nil {
		return false, err
	}
	return r.Mul(r, r).Cmp(x) == 0, nil
}
