package qrdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyodai/symread/internal/qrencode"
	"github.com/kyodai/symread/internal/qrtestutil"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/qrdetect"
	"github.com/kyodai/symread/qrfinder"
)

func TestDetectRecoversExactDimension(t *testing.T) {
	sym, err := qrencode.Text("DETECTOR TEST STRING 12345", qrcodeecc.Medium)
	require.NoError(t, err)
	bm := qrtestutil.BitMatrix(sym)

	candidates := qrfinder.Find(bm)
	triplet, ok := qrfinder.SelectBest(candidates)
	require.True(t, ok)

	result, err := qrdetect.Detect(bm, triplet)
	require.NoError(t, err)
	assert.Equal(t, int(sym.Size()), result.Dimension)
	assert.Equal(t, result.Dimension, result.Bits.Width())
	assert.Equal(t, result.Dimension, result.Bits.Height())
}

func TestDetectResampledModulesMatchSource(t *testing.T) {
	sym, err := qrencode.Text("12345", qrcodeecc.Low)
	require.NoError(t, err)
	bm := qrtestutil.BitMatrix(sym)

	candidates := qrfinder.Find(bm)
	triplet, ok := qrfinder.SelectBest(candidates)
	require.True(t, ok)

	result, err := qrdetect.Detect(bm, triplet)
	require.NoError(t, err)

	mismatches := 0
	for y := int32(0); y < sym.Size(); y++ {
		for x := int32(0); x < sym.Size(); x++ {
			if sym.GetModule(x, y) != result.Bits.Get(int(x), int(y)) {
				mismatches++
			}
		}
	}
	// Allow a small tolerance for edge/rounding effects in resampling.
	assert.Less(t, mismatches, int(sym.Size()))
}

func TestDetectHasAlignmentForVersion2Plus(t *testing.T) {
	// A longer payload forces version >= 2, which carries an alignment pattern.
	sym, err := qrencode.Text("THIS PAYLOAD IS LONG ENOUGH TO FORCE VERSION 2 OR HIGHER 0123456789", qrcodeecc.Low)
	require.NoError(t, err)
	require.GreaterOrEqual(t, sym.Version().Value(), uint8(2))
	bm := qrtestutil.BitMatrix(sym)

	candidates := qrfinder.Find(bm)
	triplet, ok := qrfinder.SelectBest(candidates)
	require.True(t, ok)

	result, err := qrdetect.Detect(bm, triplet)
	require.NoError(t, err)
	assert.NotZero(t, result.Alignment)
}
