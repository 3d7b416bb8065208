// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"github.com/closeprimes/rsarecover/big"
	"github.com/go-errors/errors"
)

// Often we need to refer to the same small constant big numbers, no point in
// creating them again and again.
var (
	bigONE = big.NewInt(1)
	bigTWO = big.NewInt(2)
)

// ModInverse returns the inverse of a modulo m, normalized to [0, m). It fails
// with ErrNotInvertible when a and m are not coprime.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, errors.Errorf("%w: modulus %s must be positive", ErrInvalidInput, m)
	}
	if m.Cmp(bigONE) == 0 {
		return big.NewInt(0), nil
	}

	g, x, _, err := ExtendedGCD(new(big.Int).Mod(a, m), m)
	if err != nil {
		return nil, err
	}
	if g.Cmp(bigONE) != 0 {
		// In this case, a and m aren't coprime and we cannot calculate
		// the inverse.
		return nil, errors.Errorf("%w: gcd(%s, %s) = %s", ErrNotInvertible, a, m, g)
	}

	if x.Sign() < 0 {
		x.Add(x, m)
	}
	return x, nil
}

// Crt finds a number x (mod pa*pb) such that x = a (mod pa) and x = b (mod pb)
func Crt(a *big.Int, pa *big.Int, b *big.Int, pb *big.Int) (*big.Int, error) {
	z, s2, s1, err := ExtendedGCD(pa, pb)
	if err != nil {
		return nil, err
	}
	if z.Cmp(bigONE) != 0 {
		return nil, errors.Errorf("%w: moduli %s and %s are not coprime", ErrNotInvertible, pa, pb)
	}
	result := new(big.Int).Add(
		new(big.Int).Mul(new(big.Int).Mul(a, s1), pb),
		new(big.Int).Mul(new(big.Int).Mul(b, s2), pa))

	n := new(big.Int).Mul(pa, pb)
	result.Mod(result, n)
	return result, nil
}
