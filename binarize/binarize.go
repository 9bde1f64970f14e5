// Package binarize converts a grayscale image plane into a bit matrix
// using local-adaptive thresholding: an integral image gives an O(1)
// windowed mean per pixel, so the threshold tracks uneven lighting
// gradients instead of a single global cut.
package binarize

import (
	"image"

	"github.com/kyodai/symread/bitmatrix"
)

// Options tunes the adaptive threshold. The zero value is not valid;
// use DefaultOptions.
type Options struct {
	// WindowRadius is the half-width of the square averaging window, in
	// pixels. A pixel's local mean is taken over the (2r+1)x(2r+1) square
	// centered on it, clamped to the image bounds.
	WindowRadius int
	// Bias is the fraction subtracted from the local mean to form the
	// threshold: a pixel is dark when luminance < mean*(1-Bias).
	Bias float64
	// FlatVariance is the variance floor below which a window is
	// considered flat; flat-tile pixels are forced light to suppress
	// speckle noise rather than thresholded against a near-uniform mean.
	FlatVariance float64
}

// DefaultOptions matches the tuning spec.md calls out as typical.
var DefaultOptions = Options{WindowRadius: 15, Bias: 0.10, FlatVariance: 24.0}

// Image builds a bit matrix from a grayscale plane using opts. The
// returned matrix has one module per source pixel, 1 meaning dark.
func Image(gray *image.Gray, opts Options) *bitmatrix.BitMatrix {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	sum, sumSq := buildIntegralImages(gray)
	stride := width + 1
	out := bitmatrix.New(width, height)

	r := opts.WindowRadius
	if r < 1 {
		r = 1
	}
	for y := 0; y < height; y++ {
		y0, y1 := clamp(y-r, 0, height-1), clamp(y+r, 0, height-1)
		for x := 0; x < width; x++ {
			x0, x1 := clamp(x-r, 0, width-1), clamp(x+r, 0, width-1)
			n := (x1 - x0 + 1) * (y1 - y0 + 1)
			s := windowSum(sum, stride, x0, y0, x1, y1)
			sq := windowSum(sumSq, stride, x0, y0, x1, y1)
			mean := float64(s) / float64(n)
			variance := float64(sq)/float64(n) - mean*mean

			if variance < opts.FlatVariance {
				continue // flat tile: leave white
			}

			lum := float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			if lum < mean*(1-opts.Bias) {
				out.Set(x, y)
			}
		}
	}
	return out
}

// buildIntegralImages returns summed-area tables for luminance and its
// square, each (width+1)x(height+1) with a zero border so windowSum needs
// no bounds special-casing.
func buildIntegralImages(gray *image.Gray) (sum, sumSq []int64) {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	stride := width + 1
	sum = make([]int64, stride*(height+1))
	sumSq = make([]int64, stride*(height+1))

	for y := 0; y < height; y++ {
		var rowSum, rowSumSq int64
		for x := 0; x < width; x++ {
			v := int64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
			rowSum += v
			rowSumSq += v * v
			idx := (y+1)*stride + (x + 1)
			above := y * stride
			sum[idx] = sum[above+(x+1)] + rowSum
			sumSq[idx] = sumSq[above+(x+1)] + rowSumSq
		}
	}
	return sum, sumSq
}

func windowSum(table []int64, stride, x0, y0, x1, y1 int) int64 {
	a := table[y0*stride+x0]
	b := table[y0*stride+(x1+1)]
	c := table[(y1+1)*stride+x0]
	d := table[(y1+1)*stride+(x1+1)]
	return d - b - c + a
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
