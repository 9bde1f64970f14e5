package oned

const codabarAlphabet = "0123456789-$:/.+ABCD"

// codabarPatterns encodes each alphabet character as 7 elements (4 bars
// + 3 spaces), 1 meaning wide and 0 meaning narrow, packed into the low
// 7 bits.
var codabarPatterns = [20]int{
	0x03, 0x06, 0x09, 0x60, 0x12, 0x42, 0x21, 0x24, 0x30, 0x48, // 0-9
	0x0C, 0x18, 0x45, 0x51, 0x54, 0x15, 0x1A, 0x29, 0x0B, 0x0E, // -$:/.+ABCD
}

const (
	codabarMinNarrowWideRatio = 1.5
	codabarMaxNarrowWideRatio = 4.0
)

type codabarDecoder struct{}

func (*codabarDecoder) DecodeRow(runs []int, rowNumber, width int) *Result {
	pos := 0
	var chars []byte
	startIdx := -1
	var startNarrow float64

	for pos+7 <= len(runs) {
		window := runs[pos : pos+7]
		ch, narrow, ok := decodeCodabarChar(window)
		if !ok {
			pos++
			continue
		}
		chars = append(chars, ch)
		if startIdx < 0 {
			if !isCodabarStartStop(ch) {
				chars = nil
				pos++
				continue
			}
			startIdx = pos
			startNarrow = narrow
		} else if isCodabarStartStop(ch) {
			pos += 7
			return finishCodabar(runs, chars, startIdx, pos, startNarrow, narrow, rowNumber)
		}
		pos += 7
	}
	return nil
}

func finishCodabar(runs []int, chars []byte, startIdx, endIdx int, startNarrow, stopNarrow float64, rowNumber int) *Result {
	if len(chars) < 3 { // start + at least 1 data + stop
		return nil
	}
	data := chars[1 : len(chars)-1]
	if len(data) == 0 {
		return nil
	}
	if !hasLeadingQuietZone(runs, startIdx, startNarrow) || !hasTrailingQuietZone(runs, endIdx, stopNarrow) {
		return nil
	}
	return &Result{Text: string(chars), Format: FormatCodabar, StartX: startIdx, EndX: endIdx, RowY: rowNumber}
}

func isCodabarStartStop(ch byte) bool {
	return ch == 'A' || ch == 'B' || ch == 'C' || ch == 'D'
}

func decodeCodabarChar(window []int) (ch byte, narrow float64, ok bool) {
	sorted := sortedCopy(window)
	narrowSum, wideSum := 0, 0
	for i := 0; i < 4; i++ {
		narrowSum += sorted[i]
	}
	for i := 4; i < 7; i++ {
		wideSum += sorted[i]
	}
	narrow = float64(narrowSum) / 4
	wide := float64(wideSum) / 3
	if narrow == 0 {
		return 0, 0, false
	}
	ratio := wide / narrow
	if ratio < codabarMinNarrowWideRatio || ratio > codabarMaxNarrowWideRatio {
		return 0, 0, false
	}
	threshold := (narrow + wide) / 2

	var bits int
	for i, w := range window {
		if float64(w) >= threshold {
			bits |= 1 << (6 - i)
		}
	}
	for i, pattern := range codabarPatterns {
		if pattern == bits {
			return codabarAlphabet[i], narrow, true
		}
	}
	return 0, 0, false
}
