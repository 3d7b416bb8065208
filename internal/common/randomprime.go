// Copyright 2016 Maarten Everts. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"io"

	"github.com/go-errors/errors"

	"github.com/closeprimes/rsarecover/big"
)

// SmallPrimes is a list of small prime numbers that allows us to rapidly
// exclude some fraction of composite candidates when searching for a prime.
// This list is truncated at the point where SmallPrimesProduct exceeds
// a uint64. It does not include two because we ensure that the candidates are
// odd by construction.
var SmallPrimes = []uint8{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
}

// SmallPrimesProduct is the product of the values in SmallPrimes and allows us
// to reduce a candidate prime by this number and then determine whether it's
// coprime with all the elements of SmallPrimes without further big.Int
// operations.
var SmallPrimesProduct = new(big.Int).SetUint64(16294579238595022365)

// primeRounds is the number of Miller-Rabin rounds for candidate primes.
const primeRounds = 20

// sieved reports whether odd p survives trial division by SmallPrimes.
func sieved(p *big.Int) bool {
	mod := new(big.Int).Mod(p, SmallPrimesProduct).Uint64()
	for _, prime := range SmallPrimes {
		if mod%uint64(prime) == 0 && p.Cmp(big.NewInt(int64(prime))) != 0 {
			return false
		}
	}
	return true
}

// RandomPrimeInRange returns a random probable prime in the range [2^start, 2^start + 2^length]
// This code is an adaption of Go's own Prime function in rand/util.go
func RandomPrimeInRange(rand io.Reader, start, length uint) (p *big.Int, err error) {
	if start < 2 {
		err = errors.Errorf("%w: prime size must be at least 2-bit", ErrInvalidInput)
		return
	}
	if length == 0 {
		err = errors.Errorf("%w: prime range must not be empty", ErrInvalidInput)
		return
	}

	b := length % 8
	if b == 0 {
		b = 8
	}

	startVal := new(big.Int).Lsh(big.NewInt(1), start)

	bytes := make([]byte, (length+7)/8)
	offset := new(big.Int)

	p = new(big.Int)

	for {
		_, err = io.ReadFull(rand, bytes)
		if err != nil {
			return nil, err
		}

		// Clear bits in the first byte to make sure the candidate has a size <= length.
		bytes[0] &= uint8(int(1<<b) - 1)

		// Make the value odd since an even number this large certainly isn't prime.
		bytes[len(bytes)-1] |= 1

		offset.SetBytes(bytes)
		p.Add(startVal, offset)

		// Multiples of the small primes are discarded before the much more
		// expensive ProbablyPrime() below.
		if !sieved(p) {
			continue
		}

		if p.ProbablyPrime(primeRounds) {
			return
		}
	}
}

// NextPrime returns the smallest probable prime strictly greater than x.
func NextPrime(x *big.Int) *big.Int {
	if x.Cmp(bigTWO) < 0 {
		return big.NewInt(2)
	}

	p := new(big.Int).Add(x, bigONE)
	if p.Bit(0) == 0 {
		if p.Cmp(bigTWO) == 0 {
			return p
		}
		p.Add(p, bigONE)
	}
	for ; ; p.Add(p, bigTWO) {
		if sieved(p) && p.ProbablyPrime(primeRounds) {
			return p
		}
	}
}
