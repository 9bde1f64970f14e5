// Package qrdata walks a QR bit matrix's data region in the standard
// zig-zag order, reassembles interleaved codeword blocks, and runs
// Reed-Solomon correction to recover the symbol's raw data bytes.
package qrdata

import (
	"errors"
	"fmt"
	"sync"

	"github.com/kyodai/symread/bitmatrix"
	"github.com/kyodai/symread/mask"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/rs"
	"github.com/kyodai/symread/version"
)

// ErrCodewordsExhausted is returned when the zig-zag walk cannot produce
// as many codewords as the version requires — never expected for a
// correctly detected symbol, but guards against a malformed function mask.
var ErrCodewordsExhausted = errors.New("qrdata: codeword stream exhausted before data region walk completed")

var functionMaskCache sync.Map // version.Version -> *bitmatrix.BitMatrix

// FunctionPatternMask returns the function-pattern mask for ver: every
// module that is NOT part of the data region (finder patterns and their
// separators, both timing patterns, format-info strips, version-info
// blocks for v>=7, and alignment-pattern squares that don't overlap a
// finder corner). The mask is a pure function of the version, so results
// are cached process-wide and safe to share across concurrent callers.
func FunctionPatternMask(ver version.Version) *bitmatrix.BitMatrix {
	if cached, ok := functionMaskCache.Load(ver); ok {
		return cached.(*bitmatrix.BitMatrix)
	}
	built := buildFunctionPatternMask(ver)
	actual, _ := functionMaskCache.LoadOrStore(ver, built)
	return actual.(*bitmatrix.BitMatrix)
}

func buildFunctionPatternMask(ver version.Version) *bitmatrix.BitMatrix {
	dim := ver.Dimension()
	m := bitmatrix.New(dim, dim)

	m.SetRegion(0, 0, 9, 9)          // top-left finder + separator + format
	m.SetRegion(dim-8, 0, 8, 9)      // top-right finder + separator + format
	m.SetRegion(0, dim-8, 9, 8)      // bottom-left finder + separator + format

	m.SetRegion(6, 9, 1, dim-17) // vertical timing strip
	m.SetRegion(9, 6, dim-17, 1) // horizontal timing strip

	centers := ver.AlignmentPatternCenters()
	n := len(centers)
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			if (x == 0 && y == 0) || (x == 0 && y == n-1) || (x == n-1 && y == 0) {
				continue // overlaps a finder pattern; skip
			}
			m.SetRegion(centers[x]-2, centers[y]-2, 5, 5)
		}
	}

	if ver.Value() >= 7 {
		m.SetRegion(dim-11, 0, 3, 6) // version info, top right
		m.SetRegion(0, dim-11, 6, 3) // version info, bottom left
	}

	return m
}

// ExtractCodewords walks the unmasked data region of bm in the standard
// right-to-left column-pair zig-zag (skipping the vertical timing column),
// skipping every function-pattern module, and packs the remaining bits
// MSB-first into count 8-bit codewords.
func ExtractCodewords(bm *bitmatrix.BitMatrix, ver version.Version, count int) ([]byte, error) {
	fn := FunctionPatternMask(ver)
	size := bm.Width()
	out := make([]byte, count)
	needed := count * 8

	var bitIdx int
	right := size - 1
	for right >= 1 {
		if right == 6 {
			right = 5
		}
		for vert := 0; vert < size; vert++ {
			for j := 0; j < 2; j++ {
				x := right - j
				upward := (right+1)&2 == 0
				var y int
				if upward {
					y = size - 1 - vert
				} else {
					y = vert
				}
				if fn.Get(x, y) {
					continue
				}
				if bitIdx >= needed {
					continue
				}
				if bm.Get(x, y) {
					out[bitIdx>>3] |= 1 << uint(7-(bitIdx&7))
				}
				bitIdx++
			}
		}
		right -= 2
	}

	if bitIdx < needed {
		return nil, fmt.Errorf("%w: got %d bits, need %d", ErrCodewordsExhausted, bitIdx, needed)
	}
	return out, nil
}

// Unmask reverses the data mask over the data region (XOR being its own
// inverse), leaving function-pattern modules untouched.
func Unmask(bm *bitmatrix.BitMatrix, m mask.Mask, ver version.Version) {
	mask.Apply(bm, m, FunctionPatternMask(ver))
}

// Correct de-interleaves raw codewords into the version/EC-level's block
// layout, runs Reed-Solomon correction on each block, and reassembles the
// corrected data bytes (error-correction bytes discarded) in block order.
func Correct(raw []byte, ver version.Version, ecl qrcodeecc.QrCodeEcc) ([]byte, error) {
	layout := ver.ECBlocks(int(ecl.Ordinal()))
	blocks := layout.Blocks
	ecLen := layout.ECCodewordsPerBlock

	maxData := 0
	totalBlocks := 0
	for _, b := range blocks {
		if b.DataCodewords > maxData {
			maxData = b.DataCodewords
		}
		totalBlocks += b.Count
	}

	dataLens := make([]int, 0, totalBlocks)
	for _, b := range blocks {
		for i := 0; i < b.Count; i++ {
			dataLens = append(dataLens, b.DataCodewords)
		}
	}

	blockData := make([][]byte, totalBlocks)
	blockEC := make([][]byte, totalBlocks)
	for i := range blockData {
		blockData[i] = make([]byte, 0, dataLens[i])
		blockEC[i] = make([]byte, 0, ecLen)
	}

	pos := 0
	for i := 0; i < maxData; i++ {
		for b := 0; b < totalBlocks; b++ {
			if i < dataLens[b] {
				blockData[b] = append(blockData[b], raw[pos])
				pos++
			}
		}
	}
	for i := 0; i < ecLen; i++ {
		for b := 0; b < totalBlocks; b++ {
			blockEC[b] = append(blockEC[b], raw[pos])
			pos++
		}
	}

	result := make([]byte, 0, sumDataLens(dataLens))
	for b := 0; b < totalBlocks; b++ {
		full := append(append([]byte{}, blockData[b]...), blockEC[b]...)
		corrected, err := rs.Decode(full, ecLen)
		if err != nil {
			return nil, fmt.Errorf("qrdata: block %d: %w", b, err)
		}
		result = append(result, corrected[:dataLens[b]]...)
	}
	return result, nil
}

func sumDataLens(lens []int) int {
	total := 0
	for _, l := range lens {
		total += l
	}
	return total
}
