package oned

// eanLPatterns and eanGPatterns are the 4-run (bar-space-bar-space)
// encodings of digits 0-9 in the odd-parity (L) and even-parity (G)
// left-hand tables; eanRPatterns is the R-table used on the right half of
// both EAN-13 and EAN-8.
var eanLPatterns = [10][4]int{
	{3, 2, 1, 1}, {2, 2, 2, 1}, {2, 1, 2, 2}, {1, 4, 1, 1}, {1, 1, 3, 2},
	{1, 2, 3, 1}, {1, 1, 1, 4}, {1, 3, 1, 2}, {1, 2, 1, 3}, {3, 1, 1, 2},
}

var eanGPatterns = [10][4]int{
	{1, 1, 2, 3}, {1, 2, 2, 2}, {2, 2, 1, 2}, {1, 1, 4, 1}, {2, 3, 1, 1},
	{1, 3, 2, 1}, {4, 1, 1, 1}, {2, 1, 3, 1}, {3, 1, 2, 1}, {2, 1, 1, 3},
}

var eanRPatterns = eanLPatternsComplement()

// eanLPatternsComplement builds the R-table. An R code is the bitwise
// complement of the L code, so its run widths are the same as L's.
func eanLPatternsComplement() [10][4]int {
	var r [10][4]int
	for i, p := range eanLPatterns {
		for j, v := range p {
			r[i][j] = v
		}
	}
	return r
}

// eanFirstDigitParity maps the 6-bit parity pattern of the left half
// (0=L, 1=G) to the implied first digit of an EAN-13 code.
var eanFirstDigitParity = [10]int{0x00, 0x0B, 0x0D, 0x0E, 0x13, 0x19, 0x1C, 0x15, 0x16, 0x1A}

const eanMaxVariance = 0.48

var ean13StartEndGuard = []int{1, 1, 1}
var ean13CenterGuard = []int{1, 1, 1, 1, 1}

type ean13Decoder struct{}

func (*ean13Decoder) DecodeRow(runs []int, rowNumber, width int) *Result {
	digits, start, end, ok := decodeEAN(runs, 6, 6)
	if !ok {
		return nil
	}
	if !checksumMod10(digits, 1) {
		return nil
	}
	if !eanQuietZonesOK(runs, start, end) {
		return nil
	}
	return &Result{Text: digitsToString(digits), Format: FormatEAN13, StartX: start, EndX: end, RowY: rowNumber}
}

type ean8Decoder struct{}

func (*ean8Decoder) DecodeRow(runs []int, rowNumber, width int) *Result {
	digits, start, end, ok := decodeEAN8(runs)
	if !ok {
		return nil
	}
	if !checksumMod10(digits, 3) {
		return nil
	}
	if !eanQuietZonesOK(runs, start, end) {
		return nil
	}
	return &Result{Text: digitsToString(digits), Format: FormatEAN8, StartX: start, EndX: end, RowY: rowNumber}
}

type upcaDecoder struct{}

func (*upcaDecoder) DecodeRow(runs []int, rowNumber, width int) *Result {
	digits, start, end, ok := decodeEAN(runs, 6, 6)
	if !ok || digits[0] != 0 {
		return nil
	}
	if !checksumMod10(digits, 1) {
		return nil
	}
	if !eanQuietZonesOK(runs, start, end) {
		return nil
	}
	return &Result{Text: digitsToString(digits[1:]), Format: FormatUPCA, StartX: start, EndX: end, RowY: rowNumber}
}

// eanQuietZonesOK validates the margin on both sides of an EAN-shaped
// symbol, using the start guard's own run widths (each guard run is one
// module) as the narrow-module reference.
func eanQuietZonesOK(runs []int, start, end int) bool {
	narrow := float64(runs[start]+runs[start+1]+runs[start+2]) / 3
	return hasLeadingQuietZone(runs, start, narrow) && hasTrailingQuietZone(runs, end, narrow)
}

// decodeEAN finds the start guard, reads leftDigits using the L/G tables
// (recovering the implied first digit from the parity sequence), the
// center guard, then rightDigits using the R table. Returns 13 digits
// (first digit + 6 left + 6 right) for the standard EAN-13 shape.
func decodeEAN(runs []int, leftDigits, rightDigits int) ([]int, int, int, bool) {
	start, ok := findGuard(runs, 0, ean13StartEndGuard)
	if !ok {
		return nil, 0, 0, false
	}

	digits := make([]int, 0, leftDigits+rightDigits+1)
	var parity int
	pos := start + 3
	for i := 0; i < leftDigits; i++ {
		digit, isG, next, ok := decodeDigitLorG(runs, pos)
		if !ok {
			return nil, 0, 0, false
		}
		digits = append(digits, digit)
		if isG {
			parity |= 1 << (leftDigits - 1 - i)
		}
		pos = next
	}

	firstDigit, ok := firstDigitFromParity(parity, leftDigits)
	if !ok {
		return nil, 0, 0, false
	}

	centerStart, ok := findGuard(runs, pos, ean13CenterGuard)
	if !ok || centerStart != pos {
		return nil, 0, 0, false
	}
	pos += 5

	for i := 0; i < rightDigits; i++ {
		digit, next, ok := decodeDigitR(runs, pos)
		if !ok {
			return nil, 0, 0, false
		}
		digits = append(digits, digit)
		pos = next
	}

	endStart, ok := findGuard(runs, pos, ean13StartEndGuard)
	if !ok || endStart != pos {
		return nil, 0, 0, false
	}

	full := append([]int{firstDigit}, digits...)
	return full, start, pos + 3, true
}

// decodeEAN8 is EAN-13's shape minus the implicit first digit: 4 L-only
// left digits, center guard, 4 R-only right digits.
func decodeEAN8(runs []int) ([]int, int, int, bool) {
	start, ok := findGuard(runs, 0, ean13StartEndGuard)
	if !ok {
		return nil, 0, 0, false
	}
	var digits []int
	pos := start + 3
	for i := 0; i < 4; i++ {
		digit, isG, next, ok := decodeDigitLorG(runs, pos)
		if !ok || isG {
			return nil, 0, 0, false
		}
		digits = append(digits, digit)
		pos = next
	}
	centerStart, ok := findGuard(runs, pos, ean13CenterGuard)
	if !ok || centerStart != pos {
		return nil, 0, 0, false
	}
	pos += 5
	for i := 0; i < 4; i++ {
		digit, next, ok := decodeDigitR(runs, pos)
		if !ok {
			return nil, 0, 0, false
		}
		digits = append(digits, digit)
		pos = next
	}
	endStart, ok := findGuard(runs, pos, ean13StartEndGuard)
	if !ok || endStart != pos {
		return nil, 0, 0, false
	}
	return digits, start, pos + 3, true
}

func firstDigitFromParity(parity, leftDigits int) (int, bool) {
	for d, p := range eanFirstDigitParity {
		if p == parity {
			return d, true
		}
	}
	return 0, false
}

func decodeDigitLorG(runs []int, pos int) (digit int, isG bool, next int, ok bool) {
	window := runsWindow(runs, pos, 4)
	if window == nil {
		return 0, false, 0, false
	}
	for d := 0; d < 10; d++ {
		if patternMatchVariance(window, eanLPatterns[d][:], eanMaxVariance) >= 0 {
			return d, false, pos + 4, true
		}
	}
	for d := 0; d < 10; d++ {
		if patternMatchVariance(window, eanGPatterns[d][:], eanMaxVariance) >= 0 {
			return d, true, pos + 4, true
		}
	}
	return 0, false, 0, false
}

func decodeDigitR(runs []int, pos int) (digit int, next int, ok bool) {
	window := runsWindow(runs, pos, 4)
	if window == nil {
		return 0, 0, false
	}
	for d := 0; d < 10; d++ {
		if patternMatchVariance(window, eanRPatterns[d][:], eanMaxVariance) >= 0 {
			return d, pos + 4, true
		}
	}
	return 0, 0, false
}

// findGuard confirms the runs starting at fromIndex match guard; for the
// start guard this also scans forward looking for the first plausible
// anchor rather than requiring an exact index.
func findGuard(runs []int, fromIndex int, guard []int) (int, bool) {
	for i := fromIndex; i+len(guard) <= len(runs); i++ {
		window := runs[i : i+len(guard)]
		if patternMatchVariance(window, guard, eanMaxVariance) >= 0 {
			return i, true
		}
	}
	return 0, false
}

func runsWindow(runs []int, pos, n int) []int {
	if pos < 0 || pos+n > len(runs) {
		return nil
	}
	return runs[pos : pos+n]
}

func checksumMod10(digits []int, oddWeight int) bool {
	if len(digits) == 0 {
		return false
	}
	check := digits[len(digits)-1]
	body := digits[:len(digits)-1]
	sum := 0
	for i, d := range body {
		w := oddWeight
		if i%2 == 1 {
			w = 4 - oddWeight // alternates 1<->3
		}
		sum += d * w
	}
	return (10-sum%10)%10 == check
}

func digitsToString(digits []int) string {
	b := make([]byte, len(digits))
	for i, d := range digits {
		b[i] = byte('0' + d)
	}
	return string(b)
}
