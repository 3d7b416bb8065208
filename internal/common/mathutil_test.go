package common

import (
	"crypto/rand"
	mathRand "math/rand"
	"testing"

	"github.com/closeprimes/rsarecover/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomInt(rnd *mathRand.Rand, bits uint) *big.Int {
	limit := new(big.Int).Lsh(big.NewInt(1), bits)
	return big.Convert(new(big.Int).Go().Rand(rnd, limit.Go()))
}

func TestExtendedGCD(t *testing.T) {
	rnd := mathRand.New(mathRand.NewSource(3))
	for i := 0; i < 200; i++ {
		a := randomInt(rnd, 256)
		b := randomInt(rnd, 200)
		if i%3 == 0 {
			a.Neg(a)
		}
		if b.Sign() == 0 {
			continue
		}
		g, x, y, err := ExtendedGCD(a, b)
		require.NoError(t, err)

		ref := big.Convert(new(big.Int).Go().GCD(nil, nil, new(big.Int).Abs(a).Go(), b.Go()))
		require.Zero(t, g.Cmp(ref))

		lhs := new(big.Int).Add(new(big.Int).Mul(a, x), new(big.Int).Mul(b, y))
		require.Zero(t, lhs.Cmp(g))
	}
}

func TestExtendedGCDZero(t *testing.T) {
	g, _, y, err := ExtendedGCD(big.NewInt(0), big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, int64(5), g.Int64())
	require.Equal(t, int64(1), y.Int64())

	g, x, _, err := ExtendedGCD(big.NewInt(-7), big.NewInt(0))
	require.NoError(t, err)
	require.Equal(t, int64(7), g.Int64())
	require.Equal(t, int64(-1), x.Int64())

	_, _, _, err = ExtendedGCD(big.NewInt(0), big.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestModInverse(t *testing.T) {
	ia, err := ModInverse(big.NewInt(17), big.NewInt(3120))
	require.NoError(t, err)
	require.Equal(t, int64(2753), ia.Int64())

	ia, err = ModInverse(big.NewInt(-3), big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, int64(2), ia.Int64())

	rnd := mathRand.New(mathRand.NewSource(4))
	m := NextPrime(randomInt(rnd, 300))
	for i := 0; i < 100; i++ {
		a := randomInt(rnd, 300)
		if new(big.Int).Mod(a, m).Sign() == 0 {
			continue
		}
		ia, err := ModInverse(a, m)
		require.NoError(t, err)
		require.True(t, ia.Sign() >= 0 && ia.Cmp(m) < 0)
		require.Equal(t, int64(1), new(big.Int).Mod(new(big.Int).Mul(a, ia), m).Int64())
	}
}

func TestModInverseErrors(t *testing.T) {
	_, err := ModInverse(big.NewInt(6), big.NewInt(9))
	require.ErrorIs(t, err, ErrNotInvertible)
	_, err = ModInverse(big.NewInt(3), big.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = ModInverse(big.NewInt(3), big.NewInt(-5))
	require.ErrorIs(t, err, ErrInvalidInput)

	ia, err := ModInverse(big.NewInt(3), big.NewInt(1))
	require.NoError(t, err)
	require.Zero(t, ia.Sign())
}

func TestModPowRepeatedMultiplication(t *testing.T) {
	for base := int64(-5); base < 20; base++ {
		for exp := int64(0); exp < 25; exp++ {
			for _, m := range []int64{2, 3, 7, 10, 97, 1000} {
				expected := int64(1) % m
				for i := int64(0); i < exp; i++ {
					expected = ((expected*base)%m + m) % m
				}
				r, err := ModPow(big.NewInt(base), big.NewInt(exp), big.NewInt(m))
				require.NoError(t, err)
				require.Equal(t, expected, r.Int64(), "%d^%d mod %d", base, exp, m)
			}
		}
	}
}

func TestModPowLarge(t *testing.T) {
	rnd := mathRand.New(mathRand.NewSource(5))
	for i := 0; i < 20; i++ {
		x := randomInt(rnd, 1024)
		y := randomInt(rnd, 1024)
		m := randomInt(rnd, 1024)
		m.Add(m, bigTWO)
		r, err := ModPow(x, y, m)
		require.NoError(t, err)
		require.Zero(t, r.Cmp(new(big.Int).Exp(x, y, m)))
	}
}

func TestModPowEdgeCases(t *testing.T) {
	r, err := ModPow(big.NewInt(12345), big.NewInt(0), big.NewInt(1))
	require.NoError(t, err)
	require.Zero(t, r.Sign())

	r, err = ModPow(big.NewInt(12345), big.NewInt(6789), big.NewInt(1))
	require.NoError(t, err)
	require.Zero(t, r.Sign())

	r, err = ModPow(big.NewInt(0), big.NewInt(0), big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, int64(1), r.Int64())

	_, err = ModPow(big.NewInt(2), big.NewInt(3), big.NewInt(0))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestModPowNegativeExponent(t *testing.T) {
	// 3^-1 = 5 (mod 7), so 3^-2 = 25 = 4 (mod 7)
	r, err := ModPow(big.NewInt(3), big.NewInt(-2), big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, int64(4), r.Int64())

	_, err = ModPow(big.NewInt(3), big.NewInt(-1), big.NewInt(9))
	require.ErrorIs(t, err, ErrNotInvertible)
}

func TestCrt(t *testing.T) {
	x, err := Crt(big.NewInt(2), big.NewInt(3), big.NewInt(3), big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, int64(8), x.Int64())

	_, err = Crt(big.NewInt(1), big.NewInt(4), big.NewInt(1), big.NewInt(6))
	require.ErrorIs(t, err, ErrNotInvertible)
}

func TestNextPrime(t *testing.T) {
	cases := map[int64]int64{-3: 2, 0: 2, 1: 2, 2: 3, 3: 5, 7: 11, 13: 17, 24: 29, 89: 97}
	for x, p := range cases {
		assert.Equal(t, p, NextPrime(big.NewInt(x)).Int64(), "nextprime(%d)", x)
	}

	// 2^512 + 75 is the first prime above 2^512
	x := new(big.Int).Lsh(bigONE, 512)
	expected := new(big.Int).Add(x, big.NewInt(75))
	require.Zero(t, NextPrime(x).Cmp(expected))
}

func TestRandomPrimeInRange(t *testing.T) {
	p, err := RandomPrimeInRange(rand.Reader, 597, 120)
	require.NoError(t, err)
	require.True(t, p.ProbablyPrime(22))

	start := new(big.Int).Lsh(bigONE, 597)
	end := new(big.Int).Add(start, new(big.Int).Lsh(bigONE, 120))
	require.True(t, p.Cmp(start) >= 0)
	require.True(t, p.Cmp(end) <= 0)

	_, err = RandomPrimeInRange(rand.Reader, 1, 8)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func BenchmarkModPow1024(b *testing.B) {
	rnd := mathRand.New(mathRand.NewSource(1))
	x, y, m := randomInt(rnd, 1024), randomInt(rnd, 1024), randomInt(rnd, 1024)
	m.Add(m, bigTWO)
	for i := 0; i < b.N; i++ {
		_, _ = ModPow(x, y, m)
	}
}
