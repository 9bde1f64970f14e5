package qrfinder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyodai/symread/internal/qrencode"
	"github.com/kyodai/symread/internal/qrtestutil"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/qrfinder"
)

func TestFindLocatesThreeCandidates(t *testing.T) {
	sym, err := qrencode.Text("QRFINDER TEST 12345", qrcodeecc.Medium)
	require.NoError(t, err)
	bm := qrtestutil.BitMatrix(sym)

	candidates := qrfinder.Find(bm)
	assert.GreaterOrEqual(t, len(candidates), 3)

	triplet, ok := qrfinder.SelectBest(candidates)
	require.True(t, ok)
	assert.NotEqual(t, triplet.TopLeft, triplet.TopRight)
	assert.NotEqual(t, triplet.TopLeft, triplet.BottomLeft)
}

func TestFindOnBlankImageYieldsNoTriplet(t *testing.T) {
	bm := qrtestutil.BitMatrix(mustSymbol(t, "X"))
	bm.Clear() // erase every finder pattern, leaving an all-white image
	candidates := qrfinder.Find(bm)
	_, ok := qrfinder.SelectBest(candidates)
	assert.False(t, ok)
}

func TestEnumerateTripletsFindsAtLeastOne(t *testing.T) {
	sym, err := qrencode.Text("ENUMERATE", qrcodeecc.Medium)
	require.NoError(t, err)
	bm := qrtestutil.BitMatrix(sym)

	candidates := qrfinder.Find(bm)
	triplets := qrfinder.EnumerateTriplets(candidates)
	assert.NotEmpty(t, triplets)
}

func mustSymbol(t *testing.T, text string) *qrencode.Symbol {
	t.Helper()
	sym, err := qrencode.Text(text, qrcodeecc.Medium)
	require.NoError(t, err)
	return sym
}
