package oned

// code128Patterns is the 103-entry table of 6-run (3 bars + 3 spaces)
// encodings for values 0..102, shared by sets A, B, and C; index doubles
// as the "value" used in the mod-103 checksum.
var code128Patterns = [103][6]int{
	{2, 1, 2, 2, 2, 2}, {2, 2, 2, 1, 2, 2}, {2, 2, 2, 2, 2, 1}, {1, 2, 1, 2, 2, 3},
	{1, 2, 1, 3, 2, 2}, {1, 3, 1, 2, 2, 2}, {1, 2, 2, 2, 1, 3}, {1, 2, 2, 3, 1, 2},
	{1, 3, 2, 2, 1, 2}, {2, 2, 1, 2, 1, 3}, {2, 2, 1, 3, 1, 2}, {2, 3, 1, 2, 1, 2},
	{1, 1, 2, 2, 3, 2}, {1, 2, 2, 1, 3, 2}, {1, 2, 2, 2, 3, 1}, {1, 1, 3, 2, 2, 2},
	{1, 2, 3, 1, 2, 2}, {1, 2, 3, 2, 2, 1}, {2, 2, 3, 2, 1, 1}, {2, 2, 1, 1, 3, 2},
	{2, 2, 1, 2, 3, 1}, {2, 1, 3, 2, 1, 2}, {2, 2, 3, 1, 1, 2}, {3, 1, 2, 1, 3, 1},
	{3, 1, 1, 2, 2, 2}, {3, 2, 1, 1, 2, 2}, {3, 2, 1, 2, 2, 1}, {3, 1, 2, 2, 1, 2},
	{3, 2, 2, 1, 1, 2}, {3, 2, 2, 2, 1, 1}, {2, 1, 2, 1, 2, 3}, {2, 1, 2, 3, 2, 1},
	{2, 3, 2, 1, 2, 1}, {1, 1, 1, 3, 2, 3}, {1, 3, 1, 1, 2, 3}, {1, 3, 1, 3, 2, 1},
	{1, 1, 2, 3, 1, 3}, {1, 3, 2, 1, 1, 3}, {1, 3, 2, 3, 1, 1}, {2, 1, 1, 3, 1, 3},
	{2, 3, 1, 1, 1, 3}, {2, 3, 1, 3, 1, 1}, {1, 1, 2, 1, 3, 3}, {1, 1, 2, 3, 3, 1},
	{1, 3, 2, 1, 3, 1}, {1, 1, 3, 1, 2, 3}, {1, 1, 3, 3, 2, 1}, {1, 3, 3, 1, 2, 1},
	{3, 1, 3, 1, 2, 1}, {2, 1, 1, 3, 3, 1}, {2, 3, 1, 1, 3, 1}, {2, 1, 3, 1, 1, 3},
	{2, 1, 3, 3, 1, 1}, {2, 1, 3, 1, 3, 1}, {3, 1, 1, 1, 2, 3}, {3, 1, 1, 3, 2, 1},
	{3, 3, 1, 1, 2, 1}, {3, 1, 2, 1, 1, 3}, {3, 1, 2, 3, 1, 1}, {3, 3, 2, 1, 1, 1},
	{3, 1, 4, 1, 1, 1}, {2, 2, 1, 4, 1, 1}, {4, 3, 1, 1, 1, 1}, {1, 1, 1, 2, 2, 4},
	{1, 1, 1, 4, 2, 2}, {1, 2, 1, 1, 2, 4}, {1, 2, 1, 4, 2, 1}, {1, 4, 1, 1, 2, 2},
	{1, 4, 1, 2, 2, 1}, {1, 1, 2, 2, 1, 4}, {1, 1, 2, 4, 1, 2}, {1, 2, 2, 1, 1, 4},
	{1, 2, 2, 4, 1, 1}, {1, 4, 2, 1, 1, 2}, {1, 4, 2, 2, 1, 1}, {2, 4, 1, 2, 1, 1},
	{2, 2, 1, 1, 1, 4}, {4, 1, 3, 1, 1, 1}, {2, 4, 1, 1, 1, 2}, {1, 3, 4, 1, 1, 1},
	{1, 1, 1, 2, 4, 2}, {1, 2, 1, 1, 4, 2}, {1, 2, 1, 2, 4, 1}, {1, 1, 4, 2, 1, 2},
	{1, 2, 4, 1, 1, 2}, {1, 2, 4, 2, 1, 1}, {4, 1, 1, 2, 1, 2}, {4, 2, 1, 1, 1, 2},
	{4, 2, 1, 2, 1, 1}, {2, 1, 2, 1, 4, 1}, {2, 1, 4, 1, 2, 1}, {4, 1, 2, 1, 2, 1},
	{1, 1, 1, 1, 4, 3}, {1, 1, 1, 3, 4, 1}, {1, 3, 1, 1, 4, 1}, {1, 1, 4, 1, 1, 3},
	{1, 1, 4, 3, 1, 1}, {4, 1, 1, 1, 1, 3}, {4, 1, 1, 3, 1, 1}, {1, 1, 3, 1, 4, 1},
	{1, 1, 4, 1, 3, 1}, {3, 1, 1, 1, 4, 1}, {4, 1, 1, 1, 3, 1},
}

// code128StartPatterns maps a start value (103=A, 104=B, 105=C) to its
// distinct 6-run start-code pattern.
var code128StartPatterns = map[int][6]int{
	103: {2, 1, 1, 4, 1, 2},
	104: {2, 1, 1, 2, 1, 4},
	105: {2, 1, 1, 2, 3, 2},
}

var code128StopPattern = [7]int{2, 3, 3, 1, 1, 1, 2}

const code128MaxVariance = 0.5

const (
	code128FNC1 = 102
	code128SetA = 101
	code128SetB = 100
	code128SetC = 99
)

type codeSet int

const (
	setA codeSet = iota
	setB
	setC
)

type code128Decoder struct{}

func (*code128Decoder) DecodeRow(runs []int, rowNumber, width int) *Result {
	startIdx, startValue, ok := findCode128Start(runs)
	if !ok {
		return nil
	}
	startNarrow := float64(sum(runs[startIdx:startIdx+6])) / 11
	if !hasLeadingQuietZone(runs, startIdx, startNarrow) {
		return nil
	}

	set := startSet(startValue)
	pos := startIdx + 6
	var values []int

	for {
		if isStopAt(runs, pos) {
			break
		}
		window := runsWindow(runs, pos, 6)
		if window == nil {
			return nil
		}
		value, matched := matchCode128(window)
		if !matched {
			return nil
		}
		values = append(values, value)
		pos += 6
	}

	if len(values) == 0 {
		return nil
	}
	check := values[len(values)-1]
	data := values[:len(values)-1]
	checksum := startValue
	for i, v := range data {
		checksum += (i + 1) * v
	}
	if checksum%103 != check {
		return nil
	}

	var text []byte
	for _, v := range data {
		switch v {
		case code128SetA:
			set = setA
		case code128SetB:
			set = setB
		case code128SetC:
			set = setC
		case code128FNC1:
			text = append(text, 0x1D)
		default:
			text = append(text, emitCode128(set, v)...)
		}
	}

	endIdx := pos + 7
	stopNarrow := float64(sum(runs[pos:endIdx])) / 13
	if !hasTrailingQuietZone(runs, endIdx, stopNarrow) {
		return nil
	}

	return &Result{Text: string(text), Format: FormatCode128, StartX: startIdx, EndX: endIdx, RowY: rowNumber}
}

func sum(vs []int) int {
	total := 0
	for _, v := range vs {
		total += v
	}
	return total
}

func startSet(startValue int) codeSet {
	switch startValue {
	case 103:
		return setA
	case 105:
		return setC
	default:
		return setB
	}
}

func findCode128Start(runs []int) (int, int, bool) {
	for i := 0; i+6 <= len(runs); i++ {
		window := runs[i : i+6]
		for value, pattern := range code128StartPatterns {
			if patternMatchVariance(window, pattern[:], code128MaxVariance) >= 0 {
				return i, value, true
			}
		}
	}
	return 0, 0, false
}

func matchCode128(window []int) (int, bool) {
	for value, pattern := range code128Patterns {
		if patternMatchVariance(window, pattern[:], code128MaxVariance) >= 0 {
			return value, true
		}
	}
	return 0, false
}

func isStopAt(runs []int, pos int) bool {
	window := runsWindow(runs, pos, 7)
	if window == nil {
		return false
	}
	return patternMatchVariance(window, code128StopPattern[:], code128MaxVariance) >= 0
}

// emitCode128 maps a table value to its ASCII (or two-digit, for set C)
// text contribution under the given code set. Set C emits two digits for
// values 0..99; sets A and B emit one character for values 0..95. Values
// above those ranges (the shift/FNC band) emit nothing.
func emitCode128(set codeSet, value int) []byte {
	switch set {
	case setC:
		if value <= 99 {
			return []byte{byte('0' + value/10), byte('0' + value%10)}
		}
		return nil
	case setA:
		switch {
		case value <= 63:
			return []byte{byte(value + 32)}
		case value <= 95:
			return []byte{byte(value - 64)}
		default:
			return nil
		}
	default: // setB
		switch {
		case value <= 63:
			return []byte{byte(value + 32)}
		case value <= 95:
			return []byte{byte(value + 32)}
		default:
			return nil
		}
	}
}
