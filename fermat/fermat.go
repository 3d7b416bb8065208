// Package fermat factors moduli whose two prime factors are close together,
// using Fermat's difference of squares method.
//
// Any odd n equals a^2 - b^2 = (a+b)(a-b) for some a and b. Starting at
// a = ceil(sqrt(n)) and counting upwards, the first a for which a^2 - n is a
// perfect square yields the factor pair closest to sqrt(n). When the factors
// of an RSA modulus were not picked independently, that pair is found within a
// handful of iterations; for properly generated keys it will not be found in
// any reasonable time, so the search is always bounded.
package fermat

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/internal/common"
)

const (
	// DefaultMaxIterations bounds the search when Options does not.
	DefaultMaxIterations = 1 << 22

	// The context is consulted once per checkInterval iterations,
	// and the follower ticked once per tickInterval iterations.
	checkInterval = 1 << 12
	tickInterval  = 1 << 16
)

var (
	ErrInvalidModulus         = common.ErrInvalidModulus
	ErrFactorizationExhausted = common.ErrFactorizationExhausted
)

var Logger = logrus.StandardLogger()

// Options bound and observe a factorization. The zero value, as well as nil,
// means DefaultMaxIterations and the package level Follower.
type Options struct {
	MaxIterations uint64
	Follower      ProgressFollower
}

func (o *Options) maxIterations() uint64 {
	if o == nil || o.MaxIterations == 0 {
		return DefaultMaxIterations
	}
	return o.MaxIterations
}

func (o *Options) follower() ProgressFollower {
	if o == nil || o.Follower == nil {
		return Follower
	}
	return o.Follower
}

// Factor returns factors p >= q of the odd modulus n with p*q = n. A perfect
// square n yields p = q. When no nontrivial factor pair is found within the
// iteration bound, or ctx is done first, it fails with ErrFactorizationExhausted.
// A nil ctx never expires.
func Factor(ctx context.Context, n *big.Int, opts *Options) (p, q *big.Int, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if n == nil || n.Cmp(big.NewInt(1)) <= 0 {
		return nil, nil, errors.Errorf("%w: modulus must be larger than 1", ErrInvalidModulus)
	}
	if n.Bit(0) == 0 {
		return nil, nil, errors.Errorf("%w: modulus %s is even", ErrInvalidModulus, n)
	}

	maxIterations := opts.maxIterations()
	follower := opts.follower()
	follower.StepStart("fermat factorization", int(maxIterations/tickInterval))
	defer follower.StepDone()

	// a = ceil(sqrt(n)), b2 = a^2 - n
	a, err := common.CeilSqrt(n)
	if err != nil {
		return nil, nil, err
	}
	b2 := new(big.Int).Mul(a, a)
	b2.Sub(b2, n)

	one := big.NewInt(1)
	step := new(big.Int)
	for i := uint64(0); i < maxIterations; i++ {
		if i%checkInterval == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				Logger.WithField("iterations", i).Info("fermat factorization interrupted")
				return nil, nil, errors.Errorf("%w: stopped after %d iterations: %w", ErrFactorizationExhausted, i, ctxErr)
			}
		}
		if i > 0 && i%tickInterval == 0 {
			follower.Tick()
		}

		square, err := common.IsPerfectSquare(b2)
		if err != nil {
			return nil, nil, err
		}
		if square {
			b, err := common.ISqrt(b2)
			if err != nil {
				return nil, nil, err
			}
			q = new(big.Int).Sub(a, b)
			if q.Cmp(one) == 0 {
				// n = n * 1 is the last representation there is, so n is prime
				Logger.WithField("iterations", i+1).Info("fermat factorization found only the trivial factors")
				return nil, nil, errors.Errorf("%w: %s has no nontrivial factor pair", ErrFactorizationExhausted, n)
			}
			p = new(big.Int).Add(a, b)
			Logger.WithField("iterations", i+1).Debug("fermat factorization succeeded")
			return p, q, nil
		}

		// (a+1)^2 - n = b2 + 2a + 1
		step.Lsh(a, 1)
		b2.Add(b2, step).Add(b2, one)
		a.Add(a, one)
	}

	Logger.WithField("maxIterations", maxIterations).Info("fermat factorization gave up")
	return nil, nil, errors.Errorf("%w: no factors within %d iterations", ErrFactorizationExhausted, maxIterations)
}
