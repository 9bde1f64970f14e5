// Package oned implements linear (1D) barcode scanning: a row-sampling
// harness over a binarized image plus one decoder per supported
// symbology (EAN-13, EAN-8, UPC-A, Code 128, Code 39, ITF, Codabar).
// Structural violations never panic or return an error from a decoder —
// an unmatched row simply yields no result, matching the harness's
// detection-vs-decode error split.
package oned

import "github.com/kyodai/symread/bitmatrix"

// Format identifies a decoded 1D symbology.
type Format string

const (
	FormatEAN13    Format = "EAN_13"
	FormatEAN8     Format = "EAN_8"
	FormatUPCA     Format = "UPC_A"
	FormatCode128  Format = "CODE_128"
	FormatCode39   Format = "CODE_39"
	FormatITF      Format = "ITF"
	FormatITF14    Format = "ITF_14"
	FormatCodabar  Format = "CODABAR"
)

// Result is one decoded 1D barcode.
type Result struct {
	Text           string
	Format         Format
	StartX, EndX   int
	RowY           int
}

// Decoder decodes one row's run-length sequence, returning nil (no
// error) when the row doesn't match this symbology.
type Decoder interface {
	DecodeRow(runs []int, rowNumber, width int) *Result
}

// Options selects which symbologies a Scan call tries.
type Options struct {
	EnableEAN13    bool
	EnableEAN8     bool
	EnableUPCA     bool
	EnableCode128  bool
	EnableCode39   bool
	Code39CheckDigit bool
	EnableITF      bool
	EnableCodabar  bool
}

// DefaultOptions enables every symbology.
var DefaultOptions = Options{
	EnableEAN13: true, EnableEAN8: true, EnableUPCA: true,
	EnableCode128: true, EnableCode39: true, EnableITF: true, EnableCodabar: true,
}

// sampleFractions are the row y-positions (as fractions of image height)
// the harness samples.
var sampleFractions = []float64{0.10, 0.30, 0.50, 0.70, 0.90}

func (o Options) decoders() []Decoder {
	var ds []Decoder
	if o.EnableEAN13 {
		ds = append(ds, &ean13Decoder{})
	}
	if o.EnableEAN8 {
		ds = append(ds, &ean8Decoder{})
	}
	if o.EnableUPCA {
		ds = append(ds, &upcaDecoder{})
	}
	if o.EnableCode128 {
		ds = append(ds, &code128Decoder{})
	}
	if o.EnableCode39 {
		ds = append(ds, &code39Decoder{CheckDigit: o.Code39CheckDigit})
	}
	if o.EnableITF {
		ds = append(ds, &itfDecoder{})
	}
	if o.EnableCodabar {
		ds = append(ds, &codabarDecoder{})
	}
	return ds
}

// Scan tries every enabled decoder against sampled rows of bm, returning
// the first successful match.
func Scan(bm *bitmatrix.BitMatrix, opts Options) *Result {
	decoders := opts.decoders()
	for _, y := range sampleRows(bm.Height()) {
		runs := rowRuns(bm, y)
		for _, d := range decoders {
			if r := d.DecodeRow(runs, y, bm.Width()); r != nil {
				return r
			}
		}
	}
	return nil
}

// ScanAll tries every enabled decoder against every sampled row,
// collecting every match (deduplicated by format+text).
func ScanAll(bm *bitmatrix.BitMatrix, opts Options) []*Result {
	decoders := opts.decoders()
	seen := map[string]bool{}
	var results []*Result
	for _, y := range sampleRows(bm.Height()) {
		runs := rowRuns(bm, y)
		for _, d := range decoders {
			if r := d.DecodeRow(runs, y, bm.Width()); r != nil {
				key := string(r.Format) + "\x00" + r.Text
				if !seen[key] {
					seen[key] = true
					results = append(results, r)
				}
			}
		}
	}
	return results
}

func sampleRows(height int) []int {
	rows := make([]int, 0, len(sampleFractions))
	for _, f := range sampleFractions {
		y := int(f * float64(height))
		if y < 0 {
			y = 0
		}
		if y >= height {
			y = height - 1
		}
		rows = append(rows, y)
	}
	return rows
}

// rowRuns extracts the run-length sequence of row y: runs[0] is always
// the pixel count of the row's leading color (by convention white for a
// row with a proper quiet zone), alternating thereafter.
func rowRuns(bm *bitmatrix.BitMatrix, y int) []int {
	width := bm.Width()
	if width == 0 {
		return nil
	}
	var runs []int
	color := bm.Get(0, y)
	count := 0
	for x := 0; x < width; x++ {
		if bm.Get(x, y) == color {
			count++
			continue
		}
		runs = append(runs, count)
		color = !color
		count = 1
	}
	runs = append(runs, count)
	return runs
}
