// Package qrformat recovers the 15-bit format information (EC level +
// data mask id) and the 18-bit version information from a detected QR bit
// matrix, each read from two redundant regions and BCH-decoded against
// every legal codeword within a Hamming distance of 3.
package qrformat

import (
	"errors"
	"math/bits"

	"github.com/kyodai/symread/bitmatrix"
	"github.com/kyodai/symread/mask"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/version"
)

// ErrFormatInfo is returned when neither format-info region BCH-decodes
// within the accepted Hamming distance of any legal codeword.
var ErrFormatInfo = errors.New("qrformat: could not recover format information")

// Info is the decoded format information: EC level and data-mask id.
type Info struct {
	ECLevel qrcodeecc.QrCodeEcc
	Mask    mask.Mask
}

const formatMaskXOR = 0x5412
const formatGenerator = 0x537
const versionGenerator = 0x1F25
const maxFormatDistance = 3
const maxVersionDistance = 3

var formatCodewords [32]uint32 // index = 5-bit data (ecBits<<3 | maskBits)
var versionCodewords [34]uint32 // index 0 => version 7, index 33 => version 40

func init() {
	for data := uint32(0); data < 32; data++ {
		rem := data
		for i := 0; i < 10; i++ {
			rem = (rem << 1) ^ ((rem >> 9) * formatGenerator)
		}
		formatCodewords[data] = ((data<<10 | rem) ^ formatMaskXOR) & 0x7FFF
	}
	for v := 7; v <= 40; v++ {
		data := uint32(v)
		rem := data
		for i := 0; i < 12; i++ {
			rem = (rem << 1) ^ ((rem >> 11) * versionGenerator)
		}
		versionCodewords[v-7] = (data<<12 | rem) & 0x3FFFF
	}
}

// DecodeFormatBits BCH-decodes a raw 15-bit format codeword, accepting the
// closest legal codeword within Hamming distance 3.
func DecodeFormatBits(bits15 uint32) (Info, int, error) {
	bestData, bestDist := -1, maxFormatDistance+1
	for data, codeword := range formatCodewords {
		d := bits.OnesCount32(codeword ^ (bits15 & 0x7FFF))
		if d < bestDist {
			bestDist = d
			bestData = data
		}
	}
	if bestData < 0 || bestDist > maxFormatDistance {
		return Info{}, 0, ErrFormatInfo
	}
	ecBits := uint8((bestData >> 3) & 0x3)
	maskBits := uint8(bestData & 0x7)
	return Info{ECLevel: qrcodeecc.FromFormatBits(ecBits), Mask: mask.New(maskBits)}, bestDist, nil
}

// DecodeVersionBits BCH-decodes an 18-bit version codeword (only
// meaningful for dimension >= 45, i.e. version >= 7), accepting the
// closest legal codeword within Hamming distance 3.
func DecodeVersionBits(bits18 uint32) (version.Version, int, error) {
	bestVer, bestDist := -1, maxVersionDistance+1
	for i, codeword := range versionCodewords {
		d := bits.OnesCount32(codeword ^ (bits18 & 0x3FFFF))
		if d < bestDist {
			bestDist = d
			bestVer = i + 7
		}
	}
	if bestVer < 0 || bestDist > maxVersionDistance {
		return 0, 0, errors.New("qrformat: could not recover version information")
	}
	return version.New(uint8(bestVer)), bestDist, nil
}

// ReadFormat reads both redundant format-information regions from bm
// (dimension = bm.Width()) and returns the lower-Hamming-distance result.
func ReadFormat(bm *bitmatrix.BitMatrix) (Info, error) {
	dim := bm.Width()

	// Mirrors the encoder's drawFormatBits bit-to-module layout exactly,
	// read back instead of written: bit i of the 15-bit codeword sits at
	// a fixed module for each copy.
	var bits1 uint32
	for i := uint(0); i < 6; i++ {
		bits1 |= copyBit(bm, 8, int(i)) << i
	}
	bits1 |= copyBit(bm, 8, 7) << 6
	bits1 |= copyBit(bm, 8, 8) << 7
	bits1 |= copyBit(bm, 7, 8) << 8
	for i := uint(9); i < 15; i++ {
		bits1 |= copyBit(bm, 14-int(i), 8) << i
	}

	var bits2 uint32
	for i := uint(0); i < 8; i++ {
		bits2 |= copyBit(bm, dim-1-int(i), 8) << i
	}
	for i := uint(8); i < 15; i++ {
		bits2 |= copyBit(bm, 8, dim-15+int(i)) << i
	}

	info1, dist1, err1 := DecodeFormatBits(bits1)
	info2, dist2, err2 := DecodeFormatBits(bits2)
	switch {
	case err1 == nil && (err2 != nil || dist1 <= dist2):
		return info1, nil
	case err2 == nil:
		return info2, nil
	default:
		return Info{}, ErrFormatInfo
	}
}

// ReadVersion reads both redundant version-information regions and
// returns the lower-Hamming-distance result, falling back to the
// provisional version derived from dimension when both BCH-decodes fail.
func ReadVersion(bm *bitmatrix.BitMatrix) (version.Version, error) {
	dim := bm.Width()
	if dim < 45 {
		return version.FromDimension(dim)
	}

	// Mirrors the encoder's drawVersionBits layout: bit i sits at
	// (size-11+i%3, i/3) in the top-right copy and the transpose in the
	// bottom-left copy.
	var bitsA, bitsB uint32
	for i := uint(0); i < 18; i++ {
		a := dim - 11 + int(i%3)
		b := int(i / 3)
		bitsA |= copyBit(bm, a, b) << i
		bitsB |= copyBit(bm, b, a) << i
	}

	verA, distA, errA := DecodeVersionBits(bitsA)
	verB, distB, errB := DecodeVersionBits(bitsB)
	switch {
	case errA == nil && (errB != nil || distA <= distB):
		return verA, nil
	case errB == nil:
		return verB, nil
	default:
		return version.FromDimension(dim)
	}
}

func copyBit(bm *bitmatrix.BitMatrix, x, y int) uint32 {
	if bm.Get(x, y) {
		return 1
	}
	return 0
}
