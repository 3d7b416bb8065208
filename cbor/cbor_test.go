package cbor

import (
	"bytes"
	"testing"

	"github.com/closeprimes/rsarecover/big"
	"github.com/stretchr/testify/require"
)

type pair struct {
	B *big.Int `cbor:"b"`
	A *big.Int `cbor:"a"`
}

func TestBigIntAsByteString(t *testing.T) {
	bts, err := Marshal(pair{A: big.NewInt(0x0102), B: big.NewInt(3)})
	require.NoError(t, err)
	// map(2) {"a": h'0102', "b": h'03'}, keys sorted
	require.Equal(t, []byte{0xa2, 0x61, 'a', 0x42, 0x01, 0x02, 0x61, 'b', 0x41, 0x03}, bts)

	var p pair
	require.NoError(t, Unmarshal(bts, &p))
	require.Equal(t, int64(0x0102), p.A.Int64())
	require.Equal(t, int64(3), p.B.Int64())
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(pair{A: big.NewInt(7), B: big.NewInt(9)}))

	var p pair
	require.NoError(t, NewDecoder(&buf).Decode(&p))
	require.Equal(t, int64(7), p.A.Int64())
	require.Equal(t, int64(9), p.B.Int64())
}

func TestRejectsDuplicateKeys(t *testing.T) {
	var p pair
	err := Unmarshal([]byte{0xa2, 0x61, 'a', 0x41, 0x01, 0x61, 'a', 0x41, 0x02}, &p)
	require.Error(t, err)
}

func TestRejectsTags(t *testing.T) {
	var i *big.Int
	// tag 2 (bignum) around h'01'
	require.Error(t, Unmarshal([]byte{0xc2, 0x41, 0x01}, &i))
}

func TestRejectsNegative(t *testing.T) {
	_, err := Marshal(pair{A: big.NewInt(-1), B: big.NewInt(1)})
	require.Error(t, err)
}
