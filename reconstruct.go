package rsarecover

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/sirupsen/logrus"

	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/fermat"
	"github.com/closeprimes/rsarecover/internal/common"
)

var (
	bigONE = big.NewInt(1)
	// witness is encrypted and decrypted to check a reconstructed key
	witness = big.NewInt(2)
)

// ReconstructKey factors the modulus of pk and computes the private exponent
// belonging to pk. The factorization is bounded by opts (see fermat.Options);
// when it does not succeed the error matches ErrFactorizationExhausted, which means
// the factors of the modulus are not close enough for the configured bound.
func ReconstructKey(ctx context.Context, pk *PublicKey, opts *fermat.Options) (*PrivateKey, error) {
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	log := keyLogger(pk)

	p, q, err := fermat.Factor(ctx, pk.N, opts)
	if err != nil {
		log.WithError(err).Info("could not factor modulus")
		return nil, err
	}
	if p.Cmp(q) == 0 {
		return nil, errors.Errorf("%w: modulus is the square of a prime, not a product of two distinct primes", ErrKeyReconstructionFailed)
	}
	log.WithFields(logrus.Fields{"p": p, "q": q}).Debug("modulus factored")

	phi := totient(p, q)
	d, err := common.ModInverse(pk.E, phi)
	if err != nil {
		return nil, err
	}

	sk := &PrivateKey{
		N: new(big.Int).Set(pk.N),
		E: new(big.Int).Set(pk.E),
		D: d,
		P: p,
		Q: q,
	}
	if err = verifyExponents(sk, phi); err != nil {
		sk.Wipe()
		return nil, err
	}

	log.Info("private key reconstructed")
	return sk, nil
}

// totient computes (p-1)(q-1).
func totient(p, q *big.Int) *big.Int {
	pMinusOne := new(big.Int).Sub(p, bigONE)
	qMinusOne := new(big.Int).Sub(q, bigONE)
	return pMinusOne.Mul(pMinusOne, qMinusOne)
}

// verifyExponents checks e*d = 1 (mod phi), and that decrypting the encryption of
// a fixed witness returns the witness.
func verifyExponents(sk *PrivateKey, phi *big.Int) error {
	if sk.P.Cmp(sk.Q) == 0 {
		return errors.Errorf("%w: p and q must be distinct", ErrKeyReconstructionFailed)
	}

	ed := new(big.Int).Mul(sk.E, sk.D)
	if ed.Mod(ed, phi).Cmp(bigONE) != 0 {
		return errors.Errorf("%w: e*d is not 1 modulo the totient", ErrKeyReconstructionFailed)
	}

	c, err := common.ModPow(witness, sk.E, sk.N)
	if err != nil {
		return err
	}
	m, err := common.ModPow(c, sk.D, sk.N)
	if err != nil {
		return err
	}
	if m.Cmp(witness) != 0 {
		return errors.Errorf("%w: key does not decrypt its own encryption", ErrKeyReconstructionFailed)
	}
	return nil
}

func keyLogger(pk *PublicKey) *logrus.Entry {
	entry := Logger.WithField("bits", pk.N.BitLen())
	if fp, err := pk.Fingerprint(); err == nil {
		entry = entry.WithField("fingerprint", fp)
	}
	return entry
}
