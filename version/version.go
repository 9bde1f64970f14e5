// Package version holds the per-version parameters of the QR Code Model 2
// standard: module dimension, alignment pattern centers, and the
// error-correction block layout for each of the four EC levels.
package version

import "fmt"

// Version is a QR Code version number, in the range [1, 40].
type Version uint8

const (
	// Min is the smallest QR Code version.
	Min = Version(1)
	// Max is the largest QR Code version.
	Max = Version(40)
)

// New creates a version object from the given number.
//
// Panics if the number is outside the range [1, 40].
func New(ver uint8) Version {
	if ver < uint8(Min) || ver > uint8(Max) {
		panic("version number out of range")
	}
	return Version(ver)
}

// FromDimension returns the version whose module dimension equals dim, or
// an error if dim isn't a legal QR Code dimension (17+4v for v in [1,40]).
func FromDimension(dim int) (Version, error) {
	if dim < 21 || dim > 177 || (dim-17)%4 != 0 {
		return 0, fmt.Errorf("version: illegal dimension %d", dim)
	}
	return New(uint8((dim - 17) / 4)), nil
}

// Value returns the raw version number, in the range [1, 40].
func (v Version) Value() uint8 {
	return uint8(v)
}

// Dimension returns the module width/height of a symbol of this version.
func (v Version) Dimension() int {
	return 17 + 4*int(v)
}

// AlignmentPatternCenters returns the ascending list of alignment-pattern
// center coordinates shared by both axes. Empty for version 1.
func (v Version) AlignmentPatternCenters() []int {
	return tableRow(v).alignCenters
}

// ECB describes one group of identically-sized error-correction blocks.
type ECB struct {
	Count         int // number of blocks in this group
	DataCodewords int // data codewords held by each block in this group
}

// ECBlocks is the full block layout for one version at one EC level.
type ECBlocks struct {
	ECCodewordsPerBlock int
	Blocks              []ECB
}

// NumBlocks returns the total number of error-correction blocks.
func (e ECBlocks) NumBlocks() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Count
	}
	return n
}

// TotalDataCodewords returns the sum of data codewords across all blocks.
func (e ECBlocks) TotalDataCodewords() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Count * b.DataCodewords
	}
	return n
}

// TotalCodewords returns data+EC codewords across all blocks.
func (e ECBlocks) TotalCodewords() int {
	return e.TotalDataCodewords() + e.ECCodewordsPerBlock*e.NumBlocks()
}

// ECBlocks returns the block layout for this version at the given EC level
// ordinal (0=L, 1=M, 2=Q, 3=H; see qrcodeecc.QrCodeEcc.Ordinal).
func (v Version) ECBlocks(eclOrdinal int) ECBlocks {
	return tableRow(v).ecBlocks[eclOrdinal]
}

// TotalCodewords returns the total number of 8-bit codewords (data+EC,
// remainder bits discarded) that fit in a symbol of this version. This is
// EC-level independent: every level partitions the same raw codeword count.
func (v Version) TotalCodewords() int {
	return tableRow(v).ecBlocks[0].TotalCodewords()
}

func tableRow(v Version) *row {
	n := int(v.Value())
	if n < 1 || n > 40 {
		panic("version number out of range")
	}
	return &table[n-1]
}

type row struct {
	number       int
	alignCenters []int
	ecBlocks     [4]ECBlocks // L, M, Q, H
}

func eb(ecPerBlock int, blocks ...ECB) ECBlocks {
	return ECBlocks{ECCodewordsPerBlock: ecPerBlock, Blocks: blocks}
}

func b(count, dataCodewords int) ECB {
	return ECB{Count: count, DataCodewords: dataCodewords}
}

// table is the per-version parameter set for versions 1..40, in order.
// Block-layout numbers are the published ISO/IEC 18004 table values.
var table = [40]row{
	{1, nil, [4]ECBlocks{eb(7, b(1, 19)), eb(10, b(1, 16)), eb(13, b(1, 13)), eb(17, b(1, 9))}},
	{2, []int{6, 18}, [4]ECBlocks{eb(10, b(1, 34)), eb(16, b(1, 28)), eb(22, b(1, 22)), eb(28, b(1, 16))}},
	{3, []int{6, 22}, [4]ECBlocks{eb(15, b(1, 55)), eb(26, b(1, 44)), eb(18, b(2, 17)), eb(22, b(2, 13))}},
	{4, []int{6, 26}, [4]ECBlocks{eb(20, b(1, 80)), eb(18, b(2, 32)), eb(26, b(2, 24)), eb(16, b(4, 9))}},
	{5, []int{6, 30}, [4]ECBlocks{eb(26, b(1, 108)), eb(24, b(2, 43)), eb(18, b(2, 15), b(2, 16)), eb(22, b(2, 11), b(2, 12))}},
	{6, []int{6, 34}, [4]ECBlocks{eb(18, b(2, 68)), eb(16, b(4, 27)), eb(24, b(4, 19)), eb(28, b(4, 15))}},
	{7, []int{6, 22, 38}, [4]ECBlocks{eb(20, b(2, 78)), eb(18, b(4, 31)), eb(18, b(2, 14), b(4, 15)), eb(26, b(4, 13), b(1, 14))}},
	{8, []int{6, 24, 42}, [4]ECBlocks{eb(24, b(2, 97)), eb(22, b(2, 38), b(2, 39)), eb(22, b(4, 18), b(2, 19)), eb(26, b(4, 14), b(2, 15))}},
	{9, []int{6, 26, 46}, [4]ECBlocks{eb(30, b(2, 116)), eb(22, b(3, 36), b(2, 37)), eb(20, b(4, 16), b(4, 17)), eb(24, b(4, 12), b(4, 13))}},
	{10, []int{6, 28, 50}, [4]ECBlocks{eb(18, b(2, 68), b(2, 69)), eb(26, b(4, 43), b(1, 44)), eb(24, b(6, 19), b(2, 20)), eb(28, b(6, 15), b(2, 16))}},
	{11, []int{6, 30, 54}, [4]ECBlocks{eb(20, b(4, 81)), eb(30, b(1, 50), b(4, 51)), eb(28, b(4, 22), b(4, 23)), eb(24, b(3, 12), b(8, 13))}},
	{12, []int{6, 32, 58}, [4]ECBlocks{eb(24, b(2, 92), b(2, 93)), eb(22, b(6, 36), b(2, 37)), eb(26, b(4, 20), b(6, 21)), eb(28, b(7, 14), b(4, 15))}},
	{13, []int{6, 34, 62}, [4]ECBlocks{eb(26, b(4, 107)), eb(22, b(8, 37), b(1, 38)), eb(24, b(8, 20), b(4, 21)), eb(22, b(12, 11), b(4, 12))}},
	{14, []int{6, 26, 46, 66}, [4]ECBlocks{eb(30, b(3, 115), b(1, 116)), eb(24, b(4, 40), b(5, 41)), eb(20, b(11, 16), b(5, 17)), eb(24, b(11, 12), b(5, 13))}},
	{15, []int{6, 26, 48, 70}, [4]ECBlocks{eb(22, b(5, 87), b(1, 88)), eb(24, b(5, 41), b(5, 42)), eb(30, b(5, 24), b(7, 25)), eb(24, b(11, 12), b(7, 13))}},
	{16, []int{6, 26, 50, 74}, [4]ECBlocks{eb(24, b(5, 98), b(1, 99)), eb(28, b(7, 45), b(3, 46)), eb(24, b(15, 19), b(2, 20)), eb(30, b(3, 15), b(13, 16))}},
	{17, []int{6, 30, 54, 78}, [4]ECBlocks{eb(28, b(1, 107), b(5, 108)), eb(28, b(10, 46), b(1, 47)), eb(28, b(1, 22), b(15, 23)), eb(28, b(2, 14), b(17, 15))}},
	{18, []int{6, 30, 56, 82}, [4]ECBlocks{eb(30, b(5, 120), b(1, 121)), eb(26, b(9, 43), b(4, 44)), eb(28, b(17, 22), b(1, 23)), eb(28, b(2, 14), b(19, 15))}},
	{19, []int{6, 30, 58, 86}, [4]ECBlocks{eb(28, b(3, 113), b(4, 114)), eb(26, b(3, 44), b(11, 45)), eb(26, b(17, 21), b(4, 22)), eb(26, b(9, 13), b(16, 14))}},
	{20, []int{6, 34, 62, 90}, [4]ECBlocks{eb(28, b(3, 107), b(5, 108)), eb(26, b(3, 41), b(13, 42)), eb(30, b(15, 24), b(5, 25)), eb(28, b(15, 15), b(10, 16))}},
	{21, []int{6, 28, 50, 72, 94}, [4]ECBlocks{eb(28, b(4, 116), b(4, 117)), eb(26, b(17, 42)), eb(28, b(17, 22), b(6, 23)), eb(30, b(19, 16), b(6, 17))}},
	{22, []int{6, 26, 50, 74, 98}, [4]ECBlocks{eb(28, b(2, 111), b(7, 112)), eb(28, b(17, 46)), eb(30, b(7, 24), b(16, 25)), eb(24, b(34, 13))}},
	{23, []int{6, 30, 54, 78, 102}, [4]ECBlocks{eb(30, b(4, 121), b(5, 122)), eb(28, b(4, 47), b(14, 48)), eb(30, b(11, 24), b(14, 25)), eb(30, b(16, 15), b(14, 16))}},
	{24, []int{6, 28, 54, 80, 106}, [4]ECBlocks{eb(30, b(6, 117), b(4, 118)), eb(28, b(6, 45), b(14, 46)), eb(30, b(11, 24), b(16, 25)), eb(30, b(30, 16), b(2, 17))}},
	{25, []int{6, 32, 58, 84, 110}, [4]ECBlocks{eb(26, b(8, 106), b(4, 107)), eb(28, b(8, 47), b(13, 48)), eb(30, b(7, 24), b(22, 25)), eb(30, b(22, 15), b(13, 16))}},
	{26, []int{6, 30, 58, 86, 114}, [4]ECBlocks{eb(28, b(10, 114), b(2, 115)), eb(28, b(19, 46), b(4, 47)), eb(28, b(28, 22), b(6, 23)), eb(30, b(33, 16), b(4, 17))}},
	{27, []int{6, 34, 62, 90, 118}, [4]ECBlocks{eb(30, b(8, 122), b(4, 123)), eb(28, b(22, 45), b(3, 46)), eb(30, b(8, 23), b(26, 24)), eb(30, b(12, 15), b(28, 16))}},
	{28, []int{6, 26, 50, 74, 98, 122}, [4]ECBlocks{eb(30, b(3, 117), b(10, 118)), eb(28, b(3, 45), b(23, 46)), eb(30, b(4, 24), b(31, 25)), eb(30, b(11, 15), b(31, 16))}},
	{29, []int{6, 30, 54, 78, 102, 126}, [4]ECBlocks{eb(30, b(7, 116), b(7, 117)), eb(28, b(21, 45), b(7, 46)), eb(30, b(1, 23), b(37, 24)), eb(30, b(19, 15), b(26, 16))}},
	{30, []int{6, 26, 52, 78, 104, 130}, [4]ECBlocks{eb(30, b(5, 115), b(10, 116)), eb(28, b(19, 47), b(10, 48)), eb(30, b(15, 24), b(25, 25)), eb(30, b(23, 15), b(25, 16))}},
	{31, []int{6, 30, 56, 82, 108, 134}, [4]ECBlocks{eb(30, b(13, 115), b(3, 116)), eb(28, b(2, 46), b(29, 47)), eb(30, b(42, 24), b(1, 25)), eb(30, b(23, 15), b(28, 16))}},
	{32, []int{6, 34, 60, 86, 112, 138}, [4]ECBlocks{eb(30, b(17, 115)), eb(28, b(10, 46), b(23, 47)), eb(30, b(10, 24), b(35, 25)), eb(30, b(19, 15), b(35, 16))}},
	{33, []int{6, 30, 58, 86, 114, 142}, [4]ECBlocks{eb(30, b(17, 115), b(1, 116)), eb(28, b(14, 46), b(21, 47)), eb(30, b(29, 24), b(19, 25)), eb(30, b(11, 15), b(46, 16))}},
	{34, []int{6, 34, 62, 90, 118, 146}, [4]ECBlocks{eb(30, b(13, 115), b(6, 116)), eb(28, b(14, 46), b(23, 47)), eb(30, b(44, 24), b(7, 25)), eb(30, b(59, 16), b(1, 17))}},
	{35, []int{6, 30, 54, 78, 102, 126, 150}, [4]ECBlocks{eb(30, b(12, 121), b(7, 122)), eb(28, b(12, 47), b(26, 48)), eb(30, b(39, 24), b(14, 25)), eb(30, b(22, 15), b(41, 16))}},
	{36, []int{6, 24, 50, 76, 102, 128, 154}, [4]ECBlocks{eb(30, b(6, 121), b(14, 122)), eb(28, b(6, 47), b(34, 48)), eb(30, b(46, 24), b(10, 25)), eb(30, b(2, 15), b(64, 16))}},
	{37, []int{6, 28, 54, 80, 106, 132, 158}, [4]ECBlocks{eb(30, b(17, 122), b(4, 123)), eb(28, b(29, 46), b(14, 47)), eb(30, b(49, 24), b(10, 25)), eb(30, b(24, 15), b(46, 16))}},
	{38, []int{6, 32, 58, 84, 110, 136, 162}, [4]ECBlocks{eb(30, b(4, 122), b(18, 123)), eb(28, b(13, 46), b(32, 47)), eb(30, b(48, 24), b(14, 25)), eb(30, b(42, 15), b(32, 16))}},
	{39, []int{6, 26, 54, 82, 110, 138, 166}, [4]ECBlocks{eb(30, b(20, 117), b(4, 118)), eb(28, b(40, 47), b(7, 48)), eb(30, b(43, 24), b(22, 25)), eb(30, b(10, 15), b(67, 16))}},
	{40, []int{6, 30, 58, 86, 114, 142, 170}, [4]ECBlocks{eb(30, b(19, 118), b(6, 119)), eb(28, b(18, 47), b(31, 48)), eb(30, b(34, 24), b(34, 25)), eb(30, b(20, 15), b(61, 16))}},
}
