// Package keyfile reads public keys and ciphertexts from files, and writes
// recovered private keys to them.
package keyfile

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"encoding/xml"
	"io"
	"io/ioutil"
	gobig "math/big"
	"os"
	"strings"

	"github.com/go-errors/errors"

	"github.com/closeprimes/rsarecover"
	"github.com/closeprimes/rsarecover/big"
	"github.com/closeprimes/rsarecover/cbor"
	"github.com/closeprimes/rsarecover/internal/common"
)

// Format is an encoding for private keys.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
	FormatPEM  Format = "pem" // PKCS #1, write only
)

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatXML, FormatJSON, FormatCBOR, FormatPEM:
		return f, nil
	default:
		return "", errors.Errorf("unknown key format %q", s)
	}
}

// LoadPublicKey reads a public key from a file; see ParsePublicKey.
func LoadPublicKey(filename string) (*rsarecover.PublicKey, error) {
	bts, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	pk, err := ParsePublicKey(bts)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to load public key from "+filename, 0)
	}
	rsarecover.Logger.WithField("file", filename).Debug("public key loaded")
	return pk, nil
}

// ParsePublicKey parses a PEM encoded PKIX ("PUBLIC KEY") or PKCS #1 ("RSA PUBLIC KEY")
// public key, or an XML public key as written by rsarecover.PublicKey.WriteTo.
func ParsePublicKey(bts []byte) (*rsarecover.PublicKey, error) {
	trimmed := bytes.TrimSpace(bts)
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return rsarecover.NewPublicKeyFromXML(string(trimmed))
	}

	block, _ := pem.Decode(trimmed)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	var rsaPub *rsa.PublicKey
	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, errors.WrapPrefix(err, "invalid PKIX public key", 0)
		}
		var ok bool
		if rsaPub, ok = pub.(*rsa.PublicKey); !ok {
			return nil, errors.New("not an RSA public key")
		}
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, errors.WrapPrefix(err, "invalid PKCS #1 public key", 0)
		}
		rsaPub = pub
	default:
		return nil, errors.Errorf("unsupported PEM block type %q", block.Type)
	}

	pk := rsarecover.NewPublicKey(big.Convert(rsaPub.N), big.NewInt(int64(rsaPub.E)))
	if err := pk.Validate(); err != nil {
		return nil, err
	}
	return pk, nil
}

// MarshalPemPublicKey encodes pk as a PEM "PUBLIC KEY" block.
func MarshalPemPublicKey(pk *rsarecover.PublicKey) ([]byte, error) {
	if !pk.E.IsInt64() || pk.E.Int64() > int64(^uint32(0)>>1) {
		return nil, errors.New("public exponent too large for PKIX encoding")
	}
	bts, err := x509.MarshalPKIXPublicKey(&rsa.PublicKey{N: pk.N.Go(), E: int(pk.E.Int64())})
	if err != nil {
		return nil, errors.WrapPrefix(err, "Failed to serialize public key", 0)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: bts}), nil
}

// CiphertextEncoding says how the bytes of a ciphertext file represent the number.
type CiphertextEncoding string

const (
	CiphertextAuto CiphertextEncoding = "auto" // hex if the content is valid hex, raw otherwise
	CiphertextHex  CiphertextEncoding = "hex"
	CiphertextRaw  CiphertextEncoding = "raw" // big-endian bytes
)

// ParseCiphertextEncoding returns the CiphertextEncoding named by s.
func ParseCiphertextEncoding(s string) (CiphertextEncoding, error) {
	switch enc := CiphertextEncoding(strings.ToLower(s)); enc {
	case CiphertextAuto, CiphertextHex, CiphertextRaw:
		return enc, nil
	default:
		return "", errors.Errorf("unknown ciphertext encoding %q", s)
	}
}

// LoadCiphertext reads a ciphertext from a file; see ParseCiphertext.
func LoadCiphertext(filename string) (*big.Int, error) {
	return LoadCiphertextEncoded(filename, CiphertextAuto)
}

// LoadCiphertextEncoded reads a ciphertext in the given encoding from a file.
func LoadCiphertextEncoded(filename string, enc CiphertextEncoding) (*big.Int, error) {
	bts, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	c, err := DecodeCiphertext(bts, enc)
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to load ciphertext from "+filename, 0)
	}
	return c, nil
}

// ParseCiphertext interprets bts as a hexadecimal number if it is one (surrounding
// whitespace and a 0x prefix allowed), and as a raw big-endian number otherwise.
// The hex interpretation takes precedence: raw bytes that happen to spell valid hex,
// such as the ASCII text "ab", are read as hex. Use DecodeCiphertext with
// CiphertextRaw for binary ciphertexts.
func ParseCiphertext(bts []byte) *big.Int {
	if c, err := new(big.Int).SetHex(string(bts)); err == nil {
		return c
	}
	return new(big.Int).SetBytes(bts)
}

// DecodeCiphertext interprets bts in the given encoding.
func DecodeCiphertext(bts []byte, enc CiphertextEncoding) (*big.Int, error) {
	switch enc {
	case CiphertextAuto:
		return ParseCiphertext(bts), nil
	case CiphertextHex:
		return new(big.Int).SetHex(string(bts))
	case CiphertextRaw:
		return new(big.Int).SetBytes(bts), nil
	default:
		return nil, errors.Errorf("unknown ciphertext encoding %q", enc)
	}
}

// PlaintextBytes returns the big-endian bytes of m without leading zero bytes.
func PlaintextBytes(m *big.Int) []byte {
	return bytes.TrimLeft(m.Bytes(), "\x00")
}

// WritePrivateKey writes sk to w in the given format.
func WritePrivateKey(w io.Writer, sk *rsarecover.PrivateKey, format Format) error {
	var err error
	switch format {
	case FormatXML:
		_, err = sk.WriteTo(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(sk)
	case FormatCBOR:
		err = cbor.NewEncoder(w).Encode(sk)
	case FormatPEM:
		var bts []byte
		if bts, err = marshalPemPrivateKey(sk); err == nil {
			_, err = w.Write(bts)
		}
	default:
		return errors.Errorf("unknown key format %q", format)
	}
	if err != nil {
		return errors.WrapPrefix(err, "failed to write private key", 0)
	}
	return nil
}

// ReadPrivateKey reads a private key in the given format from r, and validates it.
func ReadPrivateKey(r io.Reader, format Format) (*rsarecover.PrivateKey, error) {
	sk := &rsarecover.PrivateKey{}
	var err error
	switch format {
	case FormatXML:
		err = xml.NewDecoder(r).Decode(sk)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(sk)
	case FormatCBOR:
		err = cbor.NewDecoder(r).Decode(sk)
	default:
		return nil, errors.Errorf("cannot read private keys in format %q", format)
	}
	if err != nil {
		return nil, errors.WrapPrefix(err, "failed to read private key", 0)
	}
	if err = sk.Validate(); err != nil {
		return nil, err
	}
	return sk, nil
}

// SavePrivateKey writes sk to a new file, refusing to overwrite an existing one unless
// forceOverwrite is set.
func SavePrivateKey(filename string, sk *rsarecover.PrivateKey, format Format, forceOverwrite bool) error {
	flags := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if forceOverwrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(filename, flags, 0600)
	if err != nil {
		return errors.WrapPrefix(err, "failed to create key file", 0)
	}
	defer common.Close(f)

	return WritePrivateKey(f, sk, format)
}

func marshalPemPrivateKey(sk *rsarecover.PrivateKey) ([]byte, error) {
	if !sk.E.IsInt64() || sk.E.Int64() > int64(^uint32(0)>>1) {
		return nil, errors.New("public exponent too large for PKCS #1 encoding")
	}
	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{N: sk.N.Go(), E: int(sk.E.Int64())},
		D:         sk.D.Go(),
		Primes:    []*gobig.Int{sk.P.Go(), sk.Q.Go()},
	}
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}), nil
}

func readFile(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer common.Close(f)

	return ioutil.ReadAll(f)
}
