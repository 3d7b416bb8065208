package rsarecover

import (
	"context"

	"github.com/go-errors/errors"

	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/fermat"
	"github.com/closeprimes/rsarecover/internal/common"
)

// Encryption and decryption here are textbook RSA: no padding is added or checked.

// Encrypt returns m^e mod n.
func Encrypt(pk *PublicKey, m *big.Int) (*big.Int, error) {
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	if err := checkRange(m, pk.N); err != nil {
		return nil, err
	}
	return common.ModPow(m, pk.E, pk.N)
}

// Decrypt returns c^d mod n.
func Decrypt(sk *PrivateKey, c *big.Int) (*big.Int, error) {
	if sk == nil || sk.D == nil {
		return nil, errors.Errorf("%w: incomplete private key", ErrInvalidInput)
	}
	if err := sk.Public().Validate(); err != nil {
		return nil, err
	}
	if err := checkRange(c, sk.N); err != nil {
		return nil, err
	}
	return common.ModPow(c, sk.D, sk.N)
}

// DecryptCRT computes the same plaintext as Decrypt from c^(d mod p-1) mod p and
// c^(d mod q-1) mod q, combined using the chinese remainder theorem. Like Decrypt
// it does not verify the exponents of sk; use Validate for that.
func DecryptCRT(sk *PrivateKey, c *big.Int) (*big.Int, error) {
	if err := sk.checkFactors(); err != nil {
		return nil, err
	}
	if err := checkRange(c, sk.N); err != nil {
		return nil, err
	}

	mp, err := decryptPrime(c, sk.D, sk.P)
	if err != nil {
		return nil, err
	}
	mq, err := decryptPrime(c, sk.D, sk.Q)
	if err != nil {
		return nil, err
	}
	return common.Crt(mp, sk.P, mq, sk.Q)
}

func decryptPrime(c, d, prime *big.Int) (*big.Int, error) {
	primeMinusOne := new(big.Int).Sub(prime, bigONE)
	dp := new(big.Int).Mod(d, primeMinusOne)
	return common.ModPow(new(big.Int).Mod(c, prime), dp, prime)
}

// DecryptBytes decrypts a big-endian ciphertext. The plaintext is left-padded with
// zeroes to the size of the modulus.
func DecryptBytes(sk *PrivateKey, ciphertext []byte) ([]byte, error) {
	m, err := Decrypt(sk, new(big.Int).SetBytes(ciphertext))
	if err != nil {
		return nil, err
	}
	return m.PaddedBytes(sk.Public().Size())
}

// Recover reconstructs the private key of pk and decrypts c with it. The
// reconstructed key is wiped before Recover returns.
func Recover(ctx context.Context, pk *PublicKey, c *big.Int, opts *fermat.Options) (*big.Int, error) {
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	if err := checkRange(c, pk.N); err != nil {
		return nil, err
	}

	sk, err := ReconstructKey(ctx, pk, opts)
	if err != nil {
		return nil, err
	}
	defer sk.Wipe()

	return Decrypt(sk, c)
}

// checkRange requires 0 <= x < n.
func checkRange(x, n *big.Int) error {
	if x == nil {
		return errors.Errorf("%w: missing integer", ErrInvalidInput)
	}
	if x.Sign() < 0 || x.Cmp(n) >= 0 {
		return errors.Errorf("%w: integer out of range [0, n)", ErrInvalidInput)
	}
	return nil
}
