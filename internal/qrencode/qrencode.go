// Package qrencode builds real, standards-conformant QR Code Model 2
// symbols in memory. It exists so the decoder packages have golden
// fixtures to decode in tests without embedding binary image files: a
// Symbol built here can be rendered straight into a bitmatrix.BitMatrix
// and fed to the detector/decoder pipeline.
//
// This is test-support code, not a public encoding API.
package qrencode

import (
	"errors"
	"fmt"
	"math"

	"github.com/kyodai/symread/internal/bitx"
	"github.com/kyodai/symread/internal/mathx"
	"github.com/kyodai/symread/mask"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/qrsegment"
	"github.com/kyodai/symread/version"
)

// ErrDataTooLong is returned when the supplied segments cannot fit in any
// version in the requested range at the requested EC level.
var ErrDataTooLong = errors.New("qrencode: data too long")

type Mask = mask.Mask
type QrCodeEcc = qrcodeecc.QrCodeEcc
type QrSegment = qrsegment.QrSegment
type Version = version.Version

// Symbol is a fully-built QR Code: an immutable square grid of dark/light
// modules, ready to be read back by the detector/decoder pipeline.
type Symbol struct {
	version Version
	size    int32
	ecl     QrCodeEcc
	mask    Mask

	modules    []bool
	isfunction []bool
}

// Text builds a symbol encoding a Unicode text string at the given EC
// level, auto-selecting the smallest version that fits.
func Text(text string, ecl QrCodeEcc) (*Symbol, error) {
	chrs := []rune(text)
	segs := qrsegment.MakeSegments(chrs)
	return Segments(segs, ecl)
}

// Binary builds a symbol encoding arbitrary bytes in byte mode.
func Binary(data []uint8, ecl QrCodeEcc) (*Symbol, error) {
	seg := qrsegment.MakeBytes(data)
	return Segments([]QrSegment{seg}, ecl)
}

// Segments builds a symbol from a caller-assembled segment list, searching
// the full version range for the smallest version that fits.
func Segments(segs []QrSegment, ecl QrCodeEcc) (*Symbol, error) {
	return SegmentsAdvanced(segs, ecl, version.Min, version.Max, nil, true)
}

// SegmentsAdvanced builds a symbol from segments with explicit control over
// the version search range, a forced mask (nil to auto-select the lowest
// penalty score), and whether to opportunistically boost the EC level.
func SegmentsAdvanced(
	segs []QrSegment,
	ecl QrCodeEcc,
	minVersion, maxVersion Version,
	forcedMask *Mask,
	boostEcl bool,
) (*Symbol, error) {
	if minVersion > maxVersion {
		panic("qrencode: invalid version range")
	}

	ver := minVersion
	var dataUsedBits uint
	for {
		capacityBits := numDataCodewords(ver, ecl) * 8
		used := qrsegment.GetTotalBits(segs, ver)
		fits := used != nil && *used <= capacityBits
		if fits {
			dataUsedBits = *used
			break
		} else if ver.Value() >= maxVersion.Value() {
			if used == nil {
				return nil, fmt.Errorf("%w: segment too long for character-count field", ErrDataTooLong)
			}
			return nil, fmt.Errorf("%w: %d bits needed, %d available", ErrDataTooLong, *used, capacityBits)
		}
		ver = version.New(ver.Value() + 1)
	}

	for _, candidate := range []QrCodeEcc{qrcodeecc.Medium, qrcodeecc.Quartile, qrcodeecc.High} {
		if boostEcl && dataUsedBits <= numDataCodewords(ver, candidate)*8 {
			ecl = candidate
		}
	}

	bb := qrsegment.BitBuffer{}
	for _, seg := range segs {
		bb.AppendBits(seg.Mode().ModeBits(), 4)
		bb.AppendBits(uint32(seg.NumChars()), seg.Mode().NumCharCountBits(ver))
		bb = append(bb, seg.Data()...)
	}
	if uint(len(bb)) != dataUsedBits {
		panic("qrencode: bit-length mismatch")
	}

	capacityBits := numDataCodewords(ver, ecl) * 8
	terminatorBits := mathx.MinUint(4, capacityBits-uint(len(bb)))
	bb.AppendBits(0, uint8(terminatorBits))

	padBits := uint(mathx.WrappingNeg(len(bb)) & 7)
	bb.AppendBits(0, uint8(padBits))
	if len(bb)%8 != 0 {
		panic("qrencode: not byte aligned after padding")
	}

pad:
	for {
		for _, padByte := range []uint32{0xEC, 0x11} {
			if len(bb) >= int(capacityBits) {
				break pad
			}
			bb.AppendBits(padByte, 8)
		}
	}

	dataCodewords := make([]uint8, len(bb)/8)
	for i, bit := range bb {
		if bit {
			dataCodewords[i>>3] |= 1 << (7 - uint(i&7))
		}
	}

	return Codewords(ver, ecl, dataCodewords, forcedMask), nil
}

// Codewords is the low-level constructor: given final data codewords
// (segment headers, terminator and padding already applied), it appends
// error correction, draws all modules, and applies the chosen mask.
func Codewords(ver Version, ecl QrCodeEcc, dataCodewords []uint8, forcedMask *Mask) *Symbol {
	size := uint(ver.Value())*4 + 17
	sym := &Symbol{
		version:    ver,
		size:       int32(size),
		ecl:        ecl,
		mask:       mask.New(0),
		modules:    make([]bool, size*size),
		isfunction: make([]bool, size*size),
	}

	sym.drawFunctionPatterns()
	allCodewords := sym.interleaveWithEcc(dataCodewords)
	sym.drawCodewords(allCodewords)

	chosen := forcedMask
	if chosen == nil {
		best := int32(math.MaxInt32)
		for i, max := uint8(0), uint8(8); i < max; i++ {
			candidate := mask.New(i)
			sym.applyMask(candidate)
			sym.drawFormatBits(candidate)
			penalty := sym.penaltyScore()
			if penalty < best {
				m := candidate
				chosen = &m
				best = penalty
			}
			sym.applyMask(candidate) // undo
		}
	}
	sym.mask = *chosen
	sym.applyMask(*chosen)
	sym.drawFormatBits(*chosen)

	sym.isfunction = nil
	return sym
}

// Version returns this symbol's version, in [1, 40].
func (s *Symbol) Version() Version { return s.version }

// Size returns the module width/height, in [21, 177].
func (s *Symbol) Size() int32 { return s.size }

// ErrorCorrectionLevel returns the EC level this symbol was built with.
func (s *Symbol) ErrorCorrectionLevel() QrCodeEcc { return s.ecl }

// Mask returns the data-mask pattern id used, in [0, 7].
func (s *Symbol) Mask() Mask { return s.mask }

// GetModule returns true (dark) or false (light) for the module at (x, y).
// Out-of-range coordinates return false.
func (s *Symbol) GetModule(x, y int32) bool {
	return 0 <= x && x < s.size && 0 <= y && y < s.size && s.module(x, y)
}

func (s *Symbol) module(x, y int32) bool {
	return s.modules[uint(y*s.size+x)]
}

func (s *Symbol) setModule(x, y int32, dark bool) {
	s.modules[uint(y*s.size+x)] = dark
}

func (s *Symbol) drawFunctionPatterns() {
	size := s.size
	for i := int32(0); i < size; i++ {
		s.setFunctionModule(6, i, i%2 == 0)
		s.setFunctionModule(i, 6, i%2 == 0)
	}

	s.drawFinderPattern(3, 3)
	s.drawFinderPattern(s.size-4, 3)
	s.drawFinderPattern(3, s.size-4)

	alignPos := s.alignmentPatternPositions()
	n := len(alignPos)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if !(i == 0 && j == 0 || i == 0 && j == n-1 || i == n-1 && j == 0) {
				s.drawAlignmentPattern(alignPos[i], alignPos[j])
			}
		}
	}

	s.drawFormatBits(mask.New(0)) // placeholder, overwritten later
	s.drawVersionBits()
}

func (s *Symbol) drawFormatBits(m Mask) {
	var bits uint32
	data := uint32(s.ecl.FormatBits()<<3 | m.Value())
	rem := data
	for i := 0; i < 10; i++ {
		rem = (rem << 1) ^ ((rem >> 9) * 0x537)
	}
	bits = (data<<10 | rem) ^ 0x5412

	for i := int32(0); i < 6; i++ {
		s.setFunctionModule(8, i, bitx.GetBit(bits, i))
	}
	s.setFunctionModule(8, 7, bitx.GetBit(bits, 6))
	s.setFunctionModule(8, 8, bitx.GetBit(bits, 7))
	s.setFunctionModule(7, 8, bitx.GetBit(bits, 8))
	for i := int32(9); i < 15; i++ {
		s.setFunctionModule(14-i, 8, bitx.GetBit(bits, i))
	}

	size := s.size
	for i := int32(0); i < 8; i++ {
		s.setFunctionModule(size-1-i, 8, bitx.GetBit(bits, i))
	}
	for i := int32(8); i < 15; i++ {
		s.setFunctionModule(8, size-15+i, bitx.GetBit(bits, i))
	}
	s.setFunctionModule(8, size-8, true)
}

func (s *Symbol) drawVersionBits() {
	if s.version < 7 {
		return
	}
	data := uint32(s.version.Value())
	rem := data
	for i := 0; i < 12; i++ {
		rem = (rem << 1) ^ ((rem >> 11) * 0x1F25)
	}
	bits := data<<12 | rem

	for i := int32(0); i < 18; i++ {
		bit := bitx.GetBit(bits, i)
		a := s.size - 11 + i%3
		b := i / 3
		s.setFunctionModule(a, b, bit)
		s.setFunctionModule(b, a, bit)
	}
}

func (s *Symbol) drawFinderPattern(x, y int32) {
	for dy := int32(-4); dy <= 4; dy++ {
		for dx := int32(-4); dx <= 4; dx++ {
			xx, yy := x+dx, y+dy
			if 0 <= xx && xx < s.size && 0 <= yy && yy < s.size {
				dist := mathx.MaxInt32(mathx.AbsInt32(dx), mathx.AbsInt32(dy))
				s.setFunctionModule(xx, yy, dist != 2 && dist != 4)
			}
		}
	}
}

func (s *Symbol) drawAlignmentPattern(x, y int32) {
	for dy := int32(-2); dy <= 2; dy++ {
		for dx := int32(-2); dx <= 2; dx++ {
			s.setFunctionModule(x+dx, y+dy, mathx.MaxInt32(mathx.AbsInt32(dx), mathx.AbsInt32(dy)) != 1)
		}
	}
}

func (s *Symbol) setFunctionModule(x, y int32, dark bool) {
	s.setModule(x, y, dark)
	s.isfunction[y*s.size+x] = true
}

func (s *Symbol) interleaveWithEcc(data []uint8) []uint8 {
	ver, ecl := s.version, s.ecl
	if len(data) != int(numDataCodewords(ver, ecl)) {
		panic("qrencode: wrong data codeword count")
	}

	blockLayout := ver.ECBlocks(int(ecl.Ordinal()))
	numBlocks := blockLayout.NumBlocks()
	blockEccLen := uint(blockLayout.ECCodewordsPerBlock)
	rawCodewords := numRawDataModules(ver) / 8
	numShortBlocks := uint(numBlocks) - (rawCodewords % uint(numBlocks))
	shortBlockLen := rawCodewords / uint(numBlocks)

	blocks := make([][]uint8, 0, numBlocks)
	divisor := rsEncodeDivisor(blockEccLen)

	var k uint
	for i, max := uint(0), uint(numBlocks); i < max; i++ {
		datLen := shortBlockLen - blockEccLen
		if i >= numShortBlocks {
			datLen++
		}
		dat := make([]uint8, datLen)
		copy(dat, data[k:k+datLen])
		k += datLen
		ecc := rsEncodeRemainder(dat, divisor)

		if i < numShortBlocks {
			dat = append(dat, 0)
		}
		dat = append(dat, ecc...)
		blocks = append(blocks, dat)
	}

	result := make([]uint8, 0, rawCodewords)
	for i, max := uint(0), shortBlockLen; i <= max; i++ {
		for j, block := range blocks {
			if i != shortBlockLen-blockEccLen || uint(j) >= numShortBlocks {
				result = append(result, block[i])
			}
		}
	}
	return result
}

func (s *Symbol) drawCodewords(data []uint8) {
	if uint(len(data)) != numRawDataModules(s.version)/8 {
		panic("qrencode: wrong raw codeword count")
	}

	var i uint
	right := s.size - 1
	for right >= 1 {
		if right == 6 {
			right = 5
		}
		for vert := int32(0); vert < s.size; vert++ {
			for j := int32(0); j < 2; j++ {
				x := right - j
				upward := (right+1)&2 == 0
				var y int32
				if upward {
					y = s.size - 1 - vert
				} else {
					y = vert
				}
				if !s.isfunction[y*s.size+x] && i < uint(len(data)*8) {
					s.setModule(x, y, bitx.GetBit(uint32(data[i>>3]), int32(7-(i&7))))
					i++
				}
			}
		}
		right -= 2
	}
	if i != uint(len(data)*8) {
		panic("qrencode: did not consume all codeword bits")
	}
}

func (s *Symbol) applyMask(m Mask) {
	for y := int32(0); y < s.size; y++ {
		for x := int32(0); x < s.size; x++ {
			var invert bool
			switch m.Value() {
			case 0:
				invert = (x+y)%2 == 0
			case 1:
				invert = y%2 == 0
			case 2:
				invert = x%3 == 0
			case 3:
				invert = (x+y)%3 == 0
			case 4:
				invert = (x/3+y/2)%2 == 0
			case 5:
				invert = x*y%2+x*y%3 == 0
			case 6:
				invert = (x*y%2+x*y%3)%2 == 0
			case 7:
				invert = ((x+y)%2+x*y%3)%2 == 0
			default:
				panic("unreachable")
			}
			newMod := s.module(x, y) != (invert && !s.isfunction[y*s.size+x])
			s.setModule(x, y, newMod)
		}
	}
}

func (s *Symbol) penaltyScore() int32 {
	var result int32
	size := s.size

	for y := int32(0); y < size; y++ {
		var runColor bool
		var runX int32
		fp := newFinderPenalty(size)
		for x := int32(0); x < size; x++ {
			if s.module(x, y) == runColor {
				runX++
				if runX == 5 {
					result += penaltyN1
				} else if runX > 5 {
					result++
				}
			} else {
				fp.addHistory(runX)
				if !runColor {
					result += fp.countPatterns() * penaltyN3
				}
				runColor = s.module(x, y)
				runX = 1
			}
		}
		result += fp.terminateAndCount(runColor, runX) * penaltyN3
	}

	for x := int32(0); x < size; x++ {
		var runColor bool
		var runY int32
		fp := newFinderPenalty(size)
		for y := int32(0); y < size; y++ {
			if s.module(x, y) == runColor {
				runY++
				if runY == 5 {
					result += penaltyN1
				} else if runY > 5 {
					result++
				}
			} else {
				fp.addHistory(runY)
				if !runColor {
					result += fp.countPatterns() * penaltyN3
				}
				runColor = s.module(x, y)
				runY = 1
			}
		}
		result += fp.terminateAndCount(runColor, runY) * penaltyN3
	}

	for y := int32(0); y < size-1; y++ {
		for x := int32(0); x < size-1; x++ {
			color := s.module(x, y)
			if color == s.module(x+1, y) && color == s.module(x, y+1) && color == s.module(x+1, y+1) {
				result += penaltyN2
			}
		}
	}

	var dark int32
	for _, mod := range s.modules {
		if mod {
			dark++
		}
	}
	total := size * size
	k := (mathx.AbsInt32(dark*20-total*10)+total-1)/total - 1
	result += k * penaltyN4

	return result
}

func (s *Symbol) alignmentPatternPositions() []int32 {
	centers := s.version.AlignmentPatternCenters()
	result := make([]int32, len(centers))
	for i, c := range centers {
		result[i] = int32(c)
	}
	return result
}

func numRawDataModules(v Version) uint {
	ver := uint(v.Value())
	result := (16*ver+128)*ver + 64
	if ver >= 2 {
		numAlign := ver/7 + 2
		result -= (25*numAlign-10)*numAlign - 55
		if ver >= 7 {
			result -= 36
		}
	}
	if result < 208 || result > 29648 {
		panic("qrencode: raw data module count out of range")
	}
	return result
}

func numDataCodewords(ver Version, ecl QrCodeEcc) uint {
	blocks := ver.ECBlocks(int(ecl.Ordinal()))
	return numRawDataModules(ver)/8 - uint(blocks.ECCodewordsPerBlock)*uint(blocks.NumBlocks())
}

// rsEncodeDivisor returns the RS generator polynomial of the given degree,
// coefficients high-degree-first with the leading 1 omitted.
func rsEncodeDivisor(degree uint) []uint8 {
	if degree < 1 || degree > 255 {
		panic("qrencode: degree out of range")
	}
	result := make([]uint8, degree-1)
	result = append(result, 1)

	root := uint8(1)
	for i := uint(0); i < degree; i++ {
		for j := uint(0); j < degree; j++ {
			result[j] = rsEncodeMultiply(result[j], root)
			if j+1 < uint(len(result)) {
				result[j] ^= result[j+1]
			}
		}
		root = rsEncodeMultiply(root, 0x02)
	}
	return result
}

func rsEncodeRemainder(data []uint8, divisor []uint8) []uint8 {
	result := make([]uint8, len(divisor))
	for _, dByte := range data {
		var pop uint8
		pop, result = result[0], result[1:]
		factor := dByte ^ pop
		result = append(result, 0)

		n := mathx.MinUint(uint(len(result)), uint(len(divisor)))
		for i := uint(0); i < n; i++ {
			result[i] ^= rsEncodeMultiply(divisor[i], factor)
		}
	}
	return result
}

func rsEncodeMultiply(x, y uint8) uint8 {
	var z uint8
	for i := 7; i >= 0; i-- {
		z = (z << 1) ^ ((z >> 7) * 0x1D)
		z ^= ((y >> uint(i)) & 1) * x
	}
	return z
}

type finderPenalty struct {
	qrSize     int32
	runHistory [7]int32
}

func newFinderPenalty(size int32) *finderPenalty {
	return &finderPenalty{qrSize: size}
}

func (p *finderPenalty) addHistory(runLength int32) {
	if p.runHistory[0] == 0 {
		runLength += p.qrSize
	}
	rh := &p.runHistory
	for i := len(rh) - 2; i >= 0; i-- {
		rh[i+1] = rh[i]
	}
	rh[0] = runLength
}

func (p finderPenalty) countPatterns() int32 {
	rh := p.runHistory
	n := rh[1]
	if n > p.qrSize*3 {
		panic("qrencode: run length exceeds symbol size")
	}
	core := n > 0 && rh[2] == n && rh[3] == n*3 && rh[4] == n && rh[5] == n
	var count int32
	if core && rh[0] >= n*4 && rh[6] >= n {
		count++
	}
	if core && rh[6] >= n*4 && rh[0] >= n {
		count++
	}
	return count
}

func (p *finderPenalty) terminateAndCount(runColor bool, runLength int32) int32 {
	if runColor {
		p.addHistory(runLength)
		runLength = 0
	}
	runLength += p.qrSize
	p.addHistory(runLength)
	return p.countPatterns()
}

const (
	penaltyN1 int32 = 3
	penaltyN2 int32 = 3
	penaltyN3 int32 = 40
	penaltyN4 int32 = 10
)
