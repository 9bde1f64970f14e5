package oned

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quietRun = 200 // generous leading/trailing quiet-zone run, in abstract units

// computeCheckDigit finds the digit that makes checksumMod10 accept
// body+check, so fixtures don't need the weight convention hand-derived.
func computeCheckDigit(body []int, oddWeight int) int {
	for check := 0; check < 10; check++ {
		if checksumMod10(append(append([]int{}, body...), check), oddWeight) {
			return check
		}
	}
	panic("no valid check digit found")
}

func appendPattern(runs []int, pattern []int) []int {
	return append(runs, pattern...)
}

func TestEAN13DecodeRow(t *testing.T) {
	firstDigit := 4
	parity := eanFirstDigitParity[firstDigit]

	leftDigits := []int{1, 2, 3, 4, 5, 9} // 6 left digits (arbitrary)
	rightDigits := []int{0, 1, 2, 3, 4, 0}
	full := append(append([]int{firstDigit}, leftDigits...), rightDigits...)
	check := computeCheckDigit(full[:12], 1)
	rightDigits[5] = check
	full[12] = check

	var runs []int
	runs = append(runs, quietRun)
	runs = appendPattern(runs, ean13StartEndGuard)
	for i, d := range leftDigits {
		bit := (parity >> uint(5-i)) & 1
		if bit == 1 {
			runs = appendPattern(runs, eanGPatterns[d][:])
		} else {
			runs = appendPattern(runs, eanLPatterns[d][:])
		}
	}
	runs = appendPattern(runs, ean13CenterGuard)
	for _, d := range rightDigits {
		runs = appendPattern(runs, eanRPatterns[d][:])
	}
	runs = appendPattern(runs, ean13StartEndGuard)
	runs = append(runs, quietRun)

	d := &ean13Decoder{}
	result := d.DecodeRow(runs, 5, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatEAN13, result.Format)

	expected := make([]byte, 13)
	for i, v := range full {
		expected[i] = byte('0' + v)
	}
	assert.Equal(t, string(expected), result.Text)
}

func TestEAN13RejectsMissingQuietZone(t *testing.T) {
	firstDigit := 4
	parity := eanFirstDigitParity[firstDigit]
	leftDigits := []int{1, 2, 3, 4, 5, 9}
	rightDigits := []int{0, 1, 2, 3, 4, 0}
	full := append(append([]int{firstDigit}, leftDigits...), rightDigits...)
	check := computeCheckDigit(full[:12], 1)
	rightDigits[5] = check

	var runs []int
	runs = append(runs, 2) // quiet zone far too small
	runs = appendPattern(runs, ean13StartEndGuard)
	for i, dg := range leftDigits {
		bit := (parity >> uint(5-i)) & 1
		if bit == 1 {
			runs = appendPattern(runs, eanGPatterns[dg][:])
		} else {
			runs = appendPattern(runs, eanLPatterns[dg][:])
		}
	}
	runs = appendPattern(runs, ean13CenterGuard)
	for _, dg := range rightDigits {
		runs = appendPattern(runs, eanRPatterns[dg][:])
	}
	runs = appendPattern(runs, ean13StartEndGuard)
	runs = append(runs, quietRun)

	d := &ean13Decoder{}
	assert.Nil(t, d.DecodeRow(runs, 5, 1000))
}

func TestEAN13KnownProductCode(t *testing.T) {
	// 4901234567894 is a valid EAN-13 (checksum verified: body sum 126,
	// check digit 4).
	firstDigit := 4
	parity := eanFirstDigitParity[firstDigit]
	leftDigits := []int{9, 0, 1, 2, 3, 4}
	rightDigits := []int{5, 6, 7, 8, 9, 4}

	var runs []int
	runs = append(runs, quietRun)
	runs = appendPattern(runs, ean13StartEndGuard)
	for i, d := range leftDigits {
		bit := (parity >> uint(5-i)) & 1
		if bit == 1 {
			runs = appendPattern(runs, eanGPatterns[d][:])
		} else {
			runs = appendPattern(runs, eanLPatterns[d][:])
		}
	}
	runs = appendPattern(runs, ean13CenterGuard)
	for _, d := range rightDigits {
		runs = appendPattern(runs, eanRPatterns[d][:])
	}
	runs = appendPattern(runs, ean13StartEndGuard)
	runs = append(runs, quietRun)

	d := &ean13Decoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, "4901234567894", result.Text)
}

func TestUPCADecodeRow(t *testing.T) {
	leftDigits := []int{3, 6, 0, 0, 0}
	rightDigits := []int{0, 1, 2, 3, 4, 5}
	full := append(append([]int{0}, append(leftDigits, 0)...), rightDigits...)
	check := computeCheckDigit(full[:12], 1)
	rightDigits[5] = check

	// UPC-A is EAN-13 with first digit 0; parity for digit 0 is all-L.
	var runs []int
	runs = append(runs, quietRun)
	runs = appendPattern(runs, ean13StartEndGuard)
	leftFull := append(leftDigits, 0)
	for _, dg := range leftFull {
		runs = appendPattern(runs, eanLPatterns[dg][:])
	}
	runs = appendPattern(runs, ean13CenterGuard)
	for _, dg := range rightDigits {
		runs = appendPattern(runs, eanRPatterns[dg][:])
	}
	runs = appendPattern(runs, ean13StartEndGuard)
	runs = append(runs, quietRun)

	d := &upcaDecoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatUPCA, result.Format)
	assert.Len(t, result.Text, 12)
}

func TestEAN8DecodeRow(t *testing.T) {
	leftDigits := []int{1, 2, 3, 4}
	rightDigits := []int{5, 6, 7, 0}
	full := append(append([]int{}, leftDigits...), rightDigits...)
	check := computeCheckDigit(full[:7], 3)
	rightDigits[3] = check

	var runs []int
	runs = append(runs, quietRun)
	runs = appendPattern(runs, ean13StartEndGuard)
	for _, dg := range leftDigits {
		runs = appendPattern(runs, eanLPatterns[dg][:])
	}
	runs = appendPattern(runs, ean13CenterGuard)
	for _, dg := range rightDigits {
		runs = appendPattern(runs, eanRPatterns[dg][:])
	}
	runs = appendPattern(runs, ean13StartEndGuard)
	runs = append(runs, quietRun)

	d := &ean8Decoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatEAN8, result.Format)
	assert.Len(t, result.Text, 8)
}

func buildCode128Runs(startValue int, payload []int) []int {
	var runs []int
	runs = append(runs, quietRun)
	startPattern := code128StartPatterns[startValue]
	runs = appendPattern(runs, startPattern[:])

	checksum := startValue
	for i, v := range payload {
		checksum += (i + 1) * v
		runs = appendPattern(runs, code128Patterns[v][:])
	}
	check := checksum % 103
	runs = appendPattern(runs, code128Patterns[check][:])
	runs = appendPattern(runs, code128StopPattern[:])
	runs = append(runs, quietRun)
	return runs
}

func TestCode128DecodeRowSetB(t *testing.T) {
	// "Hi" in set B: value = char - 32.
	payload := []int{int('H') - 32, int('i') - 32}
	runs := buildCode128Runs(104, payload)

	d := &code128Decoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatCode128, result.Format)
	assert.Equal(t, "Hi", result.Text)
}

func TestCode128RejectsMissingTrailingQuietZone(t *testing.T) {
	payload := []int{int('A') - 32}
	runs := buildCode128Runs(104, payload)
	runs[len(runs)-1] = 1 // shrink trailing quiet zone below threshold

	d := &code128Decoder{}
	assert.Nil(t, d.DecodeRow(runs, 1, 1000))
}

func TestCode128SingleCharWithExplicitModuleSequence(t *testing.T) {
	// start-B, 'A' (value 33), checksum (value 34), stop; 20-module quiet
	// zones on each side.
	runs := []int{20, 2, 1, 1, 2, 1, 4, 1, 1, 1, 3, 2, 3, 1, 3, 1, 1, 2, 3, 2, 3, 3, 1, 1, 1, 2, 20}

	d := &code128Decoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, "A", result.Text)
	assert.Equal(t, FormatCode128, result.Format)
}

func TestCode128SingleCharWrongChecksumRejected(t *testing.T) {
	// Same as above but the checksum codeword is replaced with value 35,
	// one off from the correct value 34.
	runs := []int{20, 2, 1, 1, 2, 1, 4, 1, 1, 1, 3, 2, 3, 1, 3, 1, 3, 2, 1, 2, 3, 3, 1, 1, 1, 2, 20}

	d := &code128Decoder{}
	assert.Nil(t, d.DecodeRow(runs, 1, 1000))
}

func buildCode39Runs(payload string) []int {
	var runs []int
	runs = append(runs, quietRun)
	runs = appendPattern(runs, patternFor39('*'))
	for _, c := range payload {
		runs = appendPattern(runs, patternFor39(byte(c)))
	}
	runs = appendPattern(runs, patternFor39('*'))
	runs = append(runs, quietRun)
	return runs
}

func patternFor39(ch byte) []int {
	idx := indexOf(code39Alphabet, ch)
	if idx < 0 {
		panic("char not in code39 alphabet")
	}
	bits := code39Patterns[idx]
	out := make([]int, 9)
	for i := 0; i < 9; i++ {
		if (bits>>(8-i))&1 == 1 {
			out[i] = 3
		} else {
			out[i] = 1
		}
	}
	return out
}

func TestCode39DecodeRow(t *testing.T) {
	runs := buildCode39Runs("HELLO")
	d := &code39Decoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatCode39, result.Format)
	assert.Equal(t, "HELLO", result.Text)
}

func TestCode39RejectsMissingLeadingQuietZone(t *testing.T) {
	runs := buildCode39Runs("HELLO")
	runs[0] = 1
	d := &code39Decoder{}
	assert.Nil(t, d.DecodeRow(runs, 1, 1000))
}

func TestCode39WithCheckDigit(t *testing.T) {
	payload := "CODE39"
	sum := 0
	for _, c := range payload {
		sum += indexOf(code39Alphabet, byte(c))
	}
	checkChar := code39Alphabet[sum%43]

	runs := buildCode39Runs(payload + string(checkChar))
	d := &code39Decoder{CheckDigit: true}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, payload, result.Text)
}

func patternForCodabar(ch byte) []int {
	idx := indexOf(codabarAlphabet, ch)
	if idx < 0 {
		panic("char not in codabar alphabet")
	}
	bits := codabarPatterns[idx]
	out := make([]int, 7)
	for i := 0; i < 7; i++ {
		if (bits>>(6-i))&1 == 1 {
			out[i] = 3
		} else {
			out[i] = 1
		}
	}
	return out
}

func buildCodabarRuns(payload string) []int {
	var runs []int
	runs = append(runs, quietRun)
	runs = appendPattern(runs, patternForCodabar('A'))
	for _, c := range payload {
		runs = appendPattern(runs, patternForCodabar(byte(c)))
	}
	runs = appendPattern(runs, patternForCodabar('B'))
	runs = append(runs, quietRun)
	return runs
}

func TestCodabarDecodeRow(t *testing.T) {
	runs := buildCodabarRuns("12345")
	d := &codabarDecoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatCodabar, result.Format)
	assert.Equal(t, "A12345B", result.Text)
}

func TestCodabarRejectsMissingTrailingQuietZone(t *testing.T) {
	runs := buildCodabarRuns("12345")
	runs[len(runs)-1] = 1
	d := &codabarDecoder{}
	assert.Nil(t, d.DecodeRow(runs, 1, 1000))
}

func buildITFRuns(digits string) []int {
	var runs []int
	runs = append(runs, quietRun)
	runs = appendPattern(runs, itfStartPattern[:])
	for i := 0; i < len(digits); i += 2 {
		d1 := int(digits[i] - '0')
		d2 := int(digits[i+1] - '0')
		runs = append(runs, itfPairRuns(d1, d2)...)
	}
	runs = appendPattern(runs, itfEndPattern[:])
	runs = append(runs, quietRun)
	return runs
}

// itfPairRuns builds the 10-run group for one interleaved digit pair: bar
// widths encode d1, space widths encode d2, narrow=1/wide=3.
func itfPairRuns(d1, d2 int) []int {
	barBits := itfDigitPatterns[d1]
	spaceBits := itfDigitPatterns[d2]
	out := make([]int, 10)
	for i := 0; i < 5; i++ {
		bar := 1
		if (barBits>>(4-i))&1 == 1 {
			bar = 3
		}
		space := 1
		if (spaceBits>>(4-i))&1 == 1 {
			space = 3
		}
		out[2*i] = bar
		out[2*i+1] = space
	}
	return out
}

func TestITFDecodeRow(t *testing.T) {
	runs := buildITFRuns("123456")
	d := &itfDecoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatITF, result.Format)
	assert.Equal(t, "123456", result.Text)
}

func TestITF14KnownGTINValidates(t *testing.T) {
	runs := buildITFRuns("00012345678905")
	d := &itfDecoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatITF14, result.Format)
	assert.Equal(t, "00012345678905", result.Text)
}

func TestITF14WrongCheckDigitRejected(t *testing.T) {
	runs := buildITFRuns("00012345678900")
	d := &itfDecoder{}
	assert.Nil(t, d.DecodeRow(runs, 1, 1000))
}

func TestITF14ChecksumValidated(t *testing.T) {
	body := "3012345678901"
	digitsInts := make([]int, 13)
	for i, c := range body {
		digitsInts[i] = int(c - '0')
	}
	check := computeCheckDigit(digitsInts, 3)
	full := body + string(rune('0'+check))

	runs := buildITFRuns(full)
	d := &itfDecoder{}
	result := d.DecodeRow(runs, 1, 1000)
	require.NotNil(t, result)
	assert.Equal(t, FormatITF14, result.Format)
	assert.Equal(t, full, result.Text)
}

func TestITFRejectsBelowMinimumLength(t *testing.T) {
	// itfPairRuns requires an even digit count by construction, so this
	// checks that the decoder rejects an even payload below the minimum length.
	runs := buildITFRuns("12")
	d := &itfDecoder{}
	assert.Nil(t, d.DecodeRow(runs, 1, 1000))
}

func TestDefaultOptionsEnablesEveryDecoder(t *testing.T) {
	// Scan and ScanAll operate on a bitmatrix and are exercised end-to-end
	// in the decode facade tests. Here we check that the default options
	// build one decoder for each of the seven symbologies.
	opts := DefaultOptions
	ds := opts.decoders()
	assert.Len(t, ds, 7)
}
