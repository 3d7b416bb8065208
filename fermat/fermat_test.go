package fermat

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/internal/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	Logger.SetLevel(logrus.FatalLevel)
}

func bigString(t *testing.T, s string) *big.Int {
	i, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return i
}

func requireFactors(t *testing.T, n, p, q *big.Int) {
	require.NotNil(t, p)
	require.NotNil(t, q)
	require.True(t, p.Cmp(q) >= 0, "p >= q")
	require.Zero(t, new(big.Int).Mul(p, q).Cmp(n))
}

func TestFactorSmall(t *testing.T) {
	cases := []struct{ n, p, q int64 }{
		{15, 5, 3},
		{21, 7, 3},
		{35, 7, 5},
		{5959, 101, 59},
		{3233, 61, 53},
		{10403, 103, 101},
	}
	for _, c := range cases {
		p, q, err := Factor(context.Background(), big.NewInt(c.n), nil)
		require.NoError(t, err, "n = %d", c.n)
		require.Equal(t, c.p, p.Int64(), "n = %d", c.n)
		require.Equal(t, c.q, q.Int64(), "n = %d", c.n)
	}
}

func TestFactorClosePrimes(t *testing.T) {
	p := bigString(t, "13407807929942597099574024998205846127479365820592393377723561443721764030073546976801874298166903427690031858186486050853753882811946569946433649006084171")
	q := common.NextPrime(p)
	n := new(big.Int).Mul(p, q)

	fp, fq, err := Factor(context.Background(), n, &Options{MaxIterations: 10})
	require.NoError(t, err)
	requireFactors(t, n, fp, fq)
	require.Zero(t, fp.Cmp(q))
	require.Zero(t, fq.Cmp(p))
}

func TestFactorRandomClosePrimes(t *testing.T) {
	for i := 0; i < 5; i++ {
		q, err := common.RandomPrimeInRange(rand.Reader, 511, 500)
		require.NoError(t, err)
		p := common.NextPrime(new(big.Int).Add(q, big.NewInt(1000)))
		n := new(big.Int).Mul(p, q)

		fp, fq, err := Factor(context.Background(), n, nil)
		require.NoError(t, err)
		requireFactors(t, n, fp, fq)
		require.Zero(t, fp.Cmp(p))
		require.Zero(t, fq.Cmp(q))
	}
}

func TestFactorPerfectSquare(t *testing.T) {
	p := common.NextPrime(new(big.Int).Lsh(big.NewInt(1), 300))
	n := new(big.Int).Mul(p, p)

	fp, fq, err := Factor(context.Background(), n, &Options{MaxIterations: 1})
	require.NoError(t, err)
	require.Zero(t, fp.Cmp(p))
	require.Zero(t, fq.Cmp(p))

	fp, fq, err = Factor(context.Background(), big.NewInt(9), nil)
	require.NoError(t, err)
	require.Equal(t, int64(3), fp.Int64())
	require.Equal(t, int64(3), fq.Int64())
}

func TestFactorPrime(t *testing.T) {
	// Small primes run into the trivial factorization n = n * 1
	for _, n := range []int64{3, 5, 101, 7919} {
		_, _, err := Factor(context.Background(), big.NewInt(n), nil)
		require.ErrorIs(t, err, ErrFactorizationExhausted, "n = %d", n)
	}

	// Large primes run into the iteration cap
	n := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	_, _, err := Factor(context.Background(), n, &Options{MaxIterations: 1000})
	require.ErrorIs(t, err, ErrFactorizationExhausted)
}

func TestFactorFarApartPrimes(t *testing.T) {
	p, err := common.RandomPrimeInRange(rand.Reader, 400, 100)
	require.NoError(t, err)
	q, err := common.RandomPrimeInRange(rand.Reader, 200, 100)
	require.NoError(t, err)

	_, _, err = Factor(context.Background(), new(big.Int).Mul(p, q), &Options{MaxIterations: 5000})
	require.ErrorIs(t, err, ErrFactorizationExhausted)
}

func TestFactorInvalidModulus(t *testing.T) {
	for _, n := range []*big.Int{nil, big.NewInt(-15), big.NewInt(0), big.NewInt(1), big.NewInt(2), big.NewInt(3233 * 2)} {
		_, _, err := Factor(context.Background(), n, nil)
		require.ErrorIs(t, err, ErrInvalidModulus)
	}
}

func TestFactorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Factor(ctx, big.NewInt(3233), nil)
	require.ErrorIs(t, err, ErrFactorizationExhausted)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFactorNilContext(t *testing.T) {
	var ctx context.Context
	p, q, err := Factor(ctx, big.NewInt(3233), nil)
	require.NoError(t, err)
	require.Equal(t, int64(61), p.Int64())
	require.Equal(t, int64(53), q.Int64())
}

func TestFactorDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	n := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 521), big.NewInt(1))
	_, _, err := Factor(ctx, n, &Options{MaxIterations: 1 << 62})
	require.ErrorIs(t, err, ErrFactorizationExhausted)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFactorProgress(t *testing.T) {
	follower := &TestFollower{}
	n := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	_, _, err := Factor(context.Background(), n, &Options{MaxIterations: 3 * tickInterval, Follower: follower})
	require.ErrorIs(t, err, ErrFactorizationExhausted)
	require.Equal(t, 1, follower.started)
	require.Equal(t, 1, follower.done)
	require.Equal(t, 3, follower.intermediates)
	require.Equal(t, int64(2), follower.count)
}

func TestFactorPackageFollower(t *testing.T) {
	follower := &TestFollower{}
	defer func(f ProgressFollower) { Follower = f }(Follower)
	Follower = follower

	_, _, err := Factor(context.Background(), big.NewInt(3233), nil)
	require.NoError(t, err)
	require.Equal(t, 1, follower.started)
	require.Equal(t, 1, follower.done)
	require.Equal(t, DefaultMaxIterations/tickInterval, follower.intermediates)
	require.Zero(t, follower.count)
}

func BenchmarkFactor1024(b *testing.B) {
	p := common.NextPrime(new(big.Int).Lsh(big.NewInt(1), 512))
	q := common.NextPrime(new(big.Int).Add(p, big.NewInt(1<<20)))
	n := new(big.Int).Mul(p, q)
	for i := 0; i < b.N; i++ {
		_, _, _ = Factor(context.Background(), n, nil)
	}
}
