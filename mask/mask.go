// Package mask implements the eight QR Code data-mask patterns: per-module
// predicates and word-parallel application against a bit matrix.
package mask

import "github.com/kyodai/symread/bitmatrix"

// Mask is a number between 0 and 7 (inclusive).
type Mask uint8

// New creates a mask object from the given number.
func New(mask uint8) Mask {
	// Panics if the number is outside the range [0, 7].
	if mask > 7 {
		panic("Mask value out of range")
	}

	return Mask(mask)
}

// Value returns the value, which is in the range [0, 7].
func (m Mask) Value() uint8 {
	return uint8(m)
}

// Bit reports whether mask m inverts the module at row i, column j.
func (m Mask) Bit(i, j int) bool {
	switch m.Value() {
	case 0:
		return (i+j)%2 == 0
	case 1:
		return i%2 == 0
	case 2:
		return j%3 == 0
	case 3:
		return (i+j)%3 == 0
	case 4:
		return (i/2+j/3)%2 == 0
	case 5:
		return (i*j)%2+(i*j)%3 == 0
	case 6:
		return ((i*j)%2+(i*j)%3)%2 == 0
	case 7:
		return (((i+j)%2)+(i*j)%3)%2 == 0
	default:
		panic("mask: unreachable")
	}
}

// Apply XORs mask m into bm at every module for which functionMask is
// clear, one 32-bit word at a time so the bit matrix's word array is
// touched once per word rather than once per module. Applying the same
// mask a second time restores the original matrix (XOR is its own
// inverse), which is how the decoder both strips the mask before reading
// codewords and can cheaply re-apply it if it needs the masked view again.
func Apply(bm *bitmatrix.BitMatrix, m Mask, functionMask *bitmatrix.BitMatrix) {
	width, height := bm.Width(), bm.Height()
	words := bm.Words()
	rowWords := bm.RowWords()

	for y := 0; y < height; y++ {
		for wordCol := 0; wordCol < rowWords; wordCol++ {
			var w uint32
			base := wordCol * 32
			limit := 32
			if base+limit > width {
				limit = width - base
			}
			for b := 0; b < limit; b++ {
				x := base + b
				if m.Bit(y, x) && !functionMask.Get(x, y) {
					w |= 1 << uint(b)
				}
			}
			idx := y*rowWords + wordCol
			words[idx] ^= w
		}
	}
}
