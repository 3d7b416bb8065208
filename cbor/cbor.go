// Package cbor encodes and decodes recovered key material as CBOR, using
// github.com/fxamacker/cbor/v2 in a fixed, strict configuration:
//
// 1. Encoding follows the Core Deterministic Encoding of RFC 8949 section 4.2.1,
//    so a key always encodes to the same bytes and files can be compared.
// 2. Decoding rejects duplicate map keys, indefinite lengths and tags, and
//    bounds the nesting depth and container sizes. Keys are flat maps of
//    byte strings, so anything deeper or larger is malformed.
//
// Integers of package big are encoded as byte strings holding their
// big-endian representation (see big.Int.MarshalBinary).
package cbor

import (
	"io"

	"github.com/fxamacker/cbor/v2" // imports as cbor
)

// Decoding limits. A private key is a map of five byte strings.
const (
	MaxNestedLevels  = 4
	MaxArrayElements = 1024
	MaxMapPairs      = 1024
)

var (
	// encOptions specifies how CBOR should be encoded.
	encOptions = cbor.EncOptions{
		IndefLength:   cbor.IndefLengthForbidden,
		ShortestFloat: cbor.ShortestFloat16,
		Sort:          cbor.SortCoreDeterministic,
		TagsMd:        cbor.TagsForbidden,
	}

	// decOptions specifies how CBOR should be decoded.
	decOptions = cbor.DecOptions{
		IndefLength: cbor.IndefLengthForbidden,

		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels:  MaxNestedLevels,
		MaxArrayElements: MaxArrayElements,
		MaxMapPairs:      MaxMapPairs,
		TagsMd:           cbor.TagsForbidden,

		// Key files written by other tools may carry extra fields
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}

	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = encOptions.EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = decOptions.DecMode(); err != nil {
		panic(err)
	}
}

// Marshal encodes src into a CBOR-encoded byte slice.
func Marshal(src interface{}) ([]byte, error) {
	return encMode.Marshal(src)
}

// Unmarshal decodes CBOR in data into dst.
func Unmarshal(data []byte, dst interface{}) error {
	return decMode.Unmarshal(data, dst)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}
