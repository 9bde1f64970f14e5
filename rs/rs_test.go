package rs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyodai/symread/gf"
)

// rsEncode builds a full codeword (data || ecc) the way the QR encoder
// does: ecc is the remainder of data*x^twoS divided by the generator
// polynomial with roots alpha^0..alpha^(twoS-1).
func rsEncode(data []byte, twoS int) []byte {
	generator := gf.NewPoly([]byte{1})
	for i := 0; i < twoS; i++ {
		generator = generator.Mul(gf.NewPoly([]byte{1, gf.Exp(i)}))
	}
	shifted := gf.NewPoly(append(append([]byte{}, data...), make([]byte, twoS)...))
	_, remainder := shifted.Divide(generator)

	eccCoeffs := make([]byte, twoS)
	for i := 0; i < twoS; i++ {
		eccCoeffs[twoS-1-i] = remainder.Coeff(i)
	}
	return append(append([]byte{}, data...), eccCoeffs...)
}

func TestDecodeNoErrors(t *testing.T) {
	data := []byte("HELLO WORLD!")
	twoS := 10
	codeword := rsEncode(data, twoS)

	corrected, err := Decode(codeword, twoS)
	require.NoError(t, err)
	assert.Equal(t, codeword, corrected)
}

func TestDecodeCorrectsWithinCapacity(t *testing.T) {
	data := []byte("HELLO WORLD!")
	twoS := 10 // corrects up to 5 byte errors
	codeword := rsEncode(data, twoS)

	corrupted := append([]byte{}, codeword...)
	corrupted[0] ^= 0xFF
	corrupted[3] ^= 0x01
	corrupted[len(corrupted)-1] ^= 0x55

	corrected, err := Decode(corrupted, twoS)
	require.NoError(t, err)
	assert.Equal(t, codeword, corrected)
	assert.Equal(t, data, corrected[:len(data)])
}

func TestDecodeTooManyErrorsFails(t *testing.T) {
	data := []byte("HELLO WORLD!")
	twoS := 10 // corrects up to 5 byte errors
	codeword := rsEncode(data, twoS)

	corrupted := append([]byte{}, codeword...)
	for i := 0; i < 6; i++ {
		corrupted[i] ^= byte(0x80 + i)
	}

	_, err := Decode(corrupted, twoS)
	assert.Error(t, err)
}

func TestComputeSyndromesZeroForCleanCodeword(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	twoS := 6
	codeword := rsEncode(data, twoS)
	assert.True(t, allZero(computeSyndromes(codeword, twoS)))
}
