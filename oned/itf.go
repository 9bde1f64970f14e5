package oned

// itfDigitPatterns are the 5-element (narrow=0/wide=1) encodings of
// digits 0-9, shared by the bar-encoded and space-encoded digit of each
// interleaved pair.
var itfDigitPatterns = [10]int{
	0x06, 0x11, 0x09, 0x18, 0x05, 0x14, 0x0C, 0x03, 0x12, 0x0A,
}

var itfStartPattern = [4]int{1, 1, 1, 1}
var itfEndPattern = [3]int{2, 1, 1} // W-N-N: wide bar, narrow space, narrow bar

const itfMaxVariance = 0.5
const itfMinLength = 6

type itfDecoder struct{}

func (*itfDecoder) DecodeRow(runs []int, rowNumber, width int) *Result {
	startIdx, ok := findPattern(runs, 0, itfStartPattern[:], itfMaxVariance)
	if !ok {
		return nil
	}
	startNarrow := float64(sum(runs[startIdx:startIdx+4])) / 4
	if !hasLeadingQuietZone(runs, startIdx, startNarrow) {
		return nil
	}
	pos := startIdx + 4

	var digits []byte
	var endIdx int
	var stopNarrow float64
	for {
		if e, ok := findPattern(runs, pos, itfEndPattern[:], itfMaxVariance); ok && e == pos && hasTrailingQuietZone(runs, pos+3, float64(sum(runs[pos:pos+3]))/4) {
			stopNarrow = float64(sum(runs[pos:pos+3])) / 4
			endIdx = pos + 3
			pos = endIdx
			break
		}
		group := runsWindow(runs, pos, 10)
		if group == nil {
			return nil
		}
		d1, d2, ok := decodeITFPair(group)
		if !ok {
			return nil
		}
		digits = append(digits, byte('0'+d1), byte('0'+d2))
		pos += 10
	}

	if len(digits) < itfMinLength || len(digits)%2 != 0 {
		return nil
	}
	if !hasTrailingQuietZone(runs, endIdx, stopNarrow) {
		return nil
	}

	format := FormatITF
	if len(digits) == 14 {
		if !checksumMod10(asciiDigitsToInts(digits), 3) {
			return nil
		}
		format = FormatITF14
	}

	return &Result{Text: string(digits), Format: format, StartX: startIdx, EndX: pos, RowY: rowNumber}
}

func asciiDigitsToInts(digits []byte) []int {
	out := make([]int, len(digits))
	for i, d := range digits {
		out[i] = int(d - '0')
	}
	return out
}

// decodeITFPair splits a 10-run group into the 5 bar widths (even
// indices 0,2,4,6,8) and 5 space widths (odd indices), each decoded against the narrow/wide threshold derived from
// the combined 10-width distribution (sorted 6th/7th midpoint, since an
// ITF pair has exactly 4 wide + 6 narrow elements).
func decodeITFPair(group []int) (int, int, bool) {
	sorted := sortedCopy(group)
	threshold := float64(sorted[5]+sorted[6]) / 2

	var barBits, spaceBits int
	for i := 0; i < 10; i += 2 {
		if float64(group[i]) >= threshold {
			barBits |= 1 << (4 - i/2)
		}
	}
	for i := 1; i < 10; i += 2 {
		if float64(group[i]) >= threshold {
			spaceBits |= 1 << (4 - i/2)
		}
	}

	d1, ok1 := itfDigitFromBits(barBits)
	d2, ok2 := itfDigitFromBits(spaceBits)
	return d1, d2, ok1 && ok2
}

func itfDigitFromBits(bits int) (int, bool) {
	for d, pattern := range itfDigitPatterns {
		if pattern == bits {
			return d, true
		}
	}
	return 0, false
}

// findPattern scans runs for the first window (of len(pattern) runs)
// from fromIndex whose shape matches pattern within maxVariance.
func findPattern(runs []int, fromIndex int, pattern []int, maxVariance float64) (int, bool) {
	for i := fromIndex; i+len(pattern) <= len(runs); i++ {
		if patternMatchVariance(runs[i:i+len(pattern)], pattern, maxVariance) >= 0 {
			return i, true
		}
	}
	return 0, false
}
