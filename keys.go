package rsarecover

import (
	"encoding/xml"
	"io"
	"io/ioutil"
	"os"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"

	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/internal/common"
)

type (
	// PublicKey represents an RSA public key.
	PublicKey struct {
		XMLName xml.Name `xml:"RSAPublicKey" json:"-" cbor:"-"`
		N       *big.Int `xml:"Modulus" json:"n" cbor:"n"`  // Modulus n
		E       *big.Int `xml:"Exponent" json:"e" cbor:"e"` // Public exponent e
	}

	// PrivateKey represents an RSA private key together with the factors of its modulus.
	PrivateKey struct {
		XMLName xml.Name `xml:"RSAPrivateKey" json:"-" cbor:"-"`
		N       *big.Int `xml:"Modulus" json:"n" cbor:"n"`
		E       *big.Int `xml:"PublicExponent" json:"e" cbor:"e"`
		D       *big.Int `xml:"PrivateExponent" json:"d" cbor:"d"`
		P       *big.Int `xml:"Primes>p" json:"p" cbor:"p"`
		Q       *big.Int `xml:"Primes>q" json:"q" cbor:"q"`
	}
)

//XMLHeader can be a used as the XML header when writing keys in XML format.
const XMLHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"no\"?>\n"

// NewPublicKey creates a public key from a modulus and public exponent.
func NewPublicKey(n, e *big.Int) *PublicKey {
	return &PublicKey{N: n, E: e}
}

// NewPublicKeyFromXML creates a new public key using the XML data provided.
func NewPublicKeyFromXML(xmlInput string) (*PublicKey, error) {
	pubk := &PublicKey{}
	if err := xml.Unmarshal([]byte(xmlInput), pubk); err != nil {
		return nil, err
	}
	if err := pubk.Validate(); err != nil {
		return nil, err
	}
	return pubk, nil
}

// Validate checks that the key has an odd modulus larger than one and a positive exponent.
func (pubk *PublicKey) Validate() error {
	if pubk == nil || pubk.N == nil || pubk.E == nil {
		return errors.Errorf("%w: incomplete public key", ErrInvalidInput)
	}
	if pubk.N.Cmp(big.NewInt(1)) <= 0 || pubk.N.Bit(0) == 0 {
		return errors.Errorf("%w: modulus must be odd and larger than 1", ErrInvalidModulus)
	}
	if pubk.E.Sign() <= 0 {
		return errors.Errorf("%w: public exponent must be positive", ErrInvalidInput)
	}
	return nil
}

// Size returns the size of the modulus in bytes.
func (pubk *PublicKey) Size() int {
	return (pubk.N.BitLen() + 7) / 8
}

// Fingerprint returns the base58 encoded SHA2-256 multihash of the modulus and exponent,
// for identifying a key without printing its modulus.
func (pubk *PublicKey) Fingerprint() (string, error) {
	n, e := pubk.N.Bytes(), pubk.E.Bytes()
	data := make([]byte, 0, len(n)+len(e))
	data = append(append(data, n...), e...)
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", errors.WrapPrefix(err, "failed to compute key fingerprint", 0)
	}
	return mh.B58String(), nil
}

// WriteTo writes the XML-serialized public key to the given writer.
func (pubk *PublicKey) WriteTo(writer io.Writer) (int64, error) {
	return writeXML(writer, pubk)
}

// Public returns the public part of the key.
func (privk *PrivateKey) Public() *PublicKey {
	return &PublicKey{N: privk.N, E: privk.E}
}

// Validate checks that the factors, the exponents and the modulus of the key fit together.
func (privk *PrivateKey) Validate() error {
	if err := privk.checkFactors(); err != nil {
		return err
	}
	return verifyExponents(privk, totient(privk.P, privk.Q))
}

// checkFactors checks that the key is complete and that p*q equals the modulus,
// without the exponentiations Validate does.
func (privk *PrivateKey) checkFactors() error {
	if privk == nil || privk.D == nil || privk.P == nil || privk.Q == nil {
		return errors.Errorf("%w: incomplete private key", ErrInvalidInput)
	}
	if err := privk.Public().Validate(); err != nil {
		return err
	}
	if new(big.Int).Mul(privk.P, privk.Q).Cmp(privk.N) != 0 {
		return errors.Errorf("%w: p*q does not equal the modulus", ErrInvalidInput)
	}
	return nil
}

// NewPrivateKeyFromXML creates a new private key using the XML data provided.
func NewPrivateKeyFromXML(xmlInput string) (*PrivateKey, error) {
	privk := &PrivateKey{}
	if err := xml.Unmarshal([]byte(xmlInput), privk); err != nil {
		return nil, err
	}
	if err := privk.Validate(); err != nil {
		return nil, err
	}
	return privk, nil
}

// NewPrivateKeyFromFile creates a new private key from an XML file.
func NewPrivateKeyFromFile(filename string) (*PrivateKey, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer common.Close(f)

	b, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return NewPrivateKeyFromXML(string(b))
}

// WriteTo writes the XML-serialized private key to the given writer.
func (privk *PrivateKey) WriteTo(writer io.Writer) (int64, error) {
	return writeXML(writer, privk)
}

// WriteToFile writes the private key to an XML file. If any existing file with
// the same filename should be overwritten, set forceOverwrite to true.
func (privk *PrivateKey) WriteToFile(filename string, forceOverwrite bool) (int64, error) {
	var f *os.File
	var err error
	if forceOverwrite {
		f, err = os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	} else {
		// This should return an error if the file already exists
		f, err = os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	}
	if err != nil {
		return 0, err
	}
	defer common.Close(f)

	return privk.WriteTo(f)
}

// Wipe overwrites the private exponent and the factors with zeroes. The key
// cannot be used for decryption afterwards.
func (privk *PrivateKey) Wipe() {
	for _, i := range []*big.Int{privk.D, privk.P, privk.Q} {
		if i == nil {
			continue
		}
		words := i.Go().Bits()
		for j := range words {
			words[j] = 0
		}
		i.SetInt64(0)
	}
}

func writeXML(writer io.Writer, v interface{}) (int64, error) {
	// Write the standard XML header
	numHeaderBytes, err := writer.Write([]byte(XMLHeader))
	if err != nil {
		return 0, err
	}

	// And the actual XML body (with indentation)
	b, err := xml.MarshalIndent(v, "", "   ")
	if err != nil {
		return int64(numHeaderBytes), err
	}
	numBodyBytes, err := writer.Write(b)
	return int64(numHeaderBytes + numBodyBytes), err
}
