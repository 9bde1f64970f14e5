package decode_test

import (
	"bytes"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyodai/symread/decode"
	"github.com/kyodai/symread/internal/qrencode"
	"github.com/kyodai/symread/internal/qrtestutil"
	"github.com/kyodai/symread/oned"
	"github.com/kyodai/symread/qrcodeecc"
)

// code128HI is a hand-built run-length sequence for the Code 128 (set B)
// encoding of "HI": quiet zone, start-B, 'H', 'I', checksum, stop, quiet
// zone. Widths are in abstract module units; renderOneDGray scales them.
var code128HI = []int{
	60,
	2, 1, 1, 2, 1, 4, // start B
	2, 3, 1, 1, 1, 3, // 'H' (value 40)
	2, 3, 1, 3, 1, 1, // 'I' (value 41)
	2, 2, 1, 2, 3, 1, // checksum (value 20)
	2, 3, 3, 1, 1, 1, 2, // stop
	60,
}

const onedPxScale = 6
const onedHeight = 40

// toImage adapts a test-built *image.Gray into the decode.Image shape
// Decode/DecodeAll accept.
func toImage(gray *image.Gray) decode.Image {
	bounds := gray.Bounds()
	return decode.Image{
		Gray:   gray.Pix,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Stride: gray.Stride,
	}
}

func renderOneDGray(runs []int, pxScale, height int) *image.Gray {
	width := 0
	for _, r := range runs {
		width += r * pxScale
	}
	img := image.NewGray(image.Rect(0, 0, width, height))
	x := 0
	white := true
	for _, r := range runs {
		w := r * pxScale
		val := byte(255)
		if !white {
			val = 0
		}
		for dx := 0; dx < w; dx++ {
			for y := 0; y < height; y++ {
				img.SetGray(x+dx, y, color.Gray{Y: val})
			}
		}
		x += w
		white = !white
	}
	return img
}

func TestDecodeQRRoundTrip(t *testing.T) {
	const text = "DECODE FACADE ROUND TRIP"
	sym, err := qrencode.Text(text, qrcodeecc.Medium)
	require.NoError(t, err)
	gray := qrtestutil.Gray(sym)

	result, err := decode.Decode(toImage(gray), decode.DefaultConfig)
	require.NoError(t, err)
	assert.Equal(t, text, result.Text)
	assert.Empty(t, result.Format)
	require.NotNil(t, result.Location)
}

func TestDecode1DRoundTrip(t *testing.T) {
	gray := renderOneDGray(code128HI, onedPxScale, onedHeight)
	cfg := decode.Config{
		EnableQR:             false,
		Enabled1DSymbologies: []string{"Code 128"},
		Binarize:             decode.DefaultConfig.Binarize,
	}

	result, err := decode.Decode(toImage(gray), cfg)
	require.NoError(t, err)
	assert.Equal(t, "HI", result.Text)
	assert.Equal(t, string(oned.FormatCode128), result.Format)
}

func TestDecodeFallsThroughToOneDOnNoFinderTriplet(t *testing.T) {
	gray := renderOneDGray(code128HI, onedPxScale, onedHeight)
	cfg := decode.DefaultConfig // QR enabled, no finder triplet present

	result, err := decode.Decode(toImage(gray), cfg)
	require.NoError(t, err)
	assert.Equal(t, "HI", result.Text)
	assert.Equal(t, string(oned.FormatCode128), result.Format)
}

func TestDecodeAllAggregatesQRResults(t *testing.T) {
	sym, err := qrencode.Text("DECODE ALL FACADE", qrcodeecc.Medium)
	require.NoError(t, err)
	gray := qrtestutil.Gray(sym)

	results, err := decode.DecodeAll(toImage(gray), decode.DefaultConfig)
	require.NoError(t, err)
	found := false
	for _, r := range results {
		if r.Text == "DECODE ALL FACADE" && r.Format == "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDecodeBlankImageYieldsDetectionError(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range gray.Pix {
		gray.Pix[i] = 255
	}

	_, err := decode.Decode(toImage(gray), decode.DefaultConfig)
	require.Error(t, err)
	var derr *decode.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, decode.KindDetection, derr.Kind)
}

func TestDecodeAllBlankImageReturnsEmptyNoError(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range gray.Pix {
		gray.Pix[i] = 255
	}

	results, err := decode.DecodeAll(toImage(gray), decode.DefaultConfig)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDecodeRejectsNilImage(t *testing.T) {
	_, err := decode.Decode(decode.Image{}, decode.DefaultConfig)
	require.Error(t, err)
	var derr *decode.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, decode.KindInputValidation, derr.Kind)
}

func TestDecodeRejectsZeroDimensionImage(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 0, 0))
	_, err := decode.Decode(toImage(gray), decode.DefaultConfig)
	require.Error(t, err)
	var derr *decode.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, decode.KindInputValidation, derr.Kind)
}

func TestDecodeIsSilentWithoutAnInjectedLogger(t *testing.T) {
	gray := renderOneDGray(code128HI, onedPxScale, onedHeight)
	cfg := decode.DefaultConfig // QR enabled, no finder triplet present
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	_, err := decode.Decode(toImage(gray), cfg)
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestDecodeRoutesDiagnosticsThroughInjectedLogger(t *testing.T) {
	gray := renderOneDGray(code128HI, onedPxScale, onedHeight)
	var buf bytes.Buffer
	cfg := decode.DefaultConfig // QR enabled, no finder triplet present
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result, err := decode.Decode(toImage(gray), cfg)
	require.NoError(t, err)
	assert.Equal(t, "HI", result.Text)
	assert.Contains(t, buf.String(), "no QR finder triplet")
}
