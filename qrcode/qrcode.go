// Package qrcode orchestrates the QR Code decode pipeline: finder-pattern
// scan, geometric detection, format/version recovery, data extraction and
// Reed-Solomon correction, and bitstream parsing, exposed as single- and
// multi-symbol entry points over an already-binarized bit matrix.
package qrcode

import (
	"errors"
	"strings"

	"github.com/kyodai/symread/bitmatrix"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/qrdata"
	"github.com/kyodai/symread/qrdetect"
	"github.com/kyodai/symread/qrfinder"
	"github.com/kyodai/symread/qrformat"
	"github.com/kyodai/symread/qrtext"
)

// ErrNoFinderTriplet means fewer than three finder-pattern candidates
// survived scanning, or no triplet passed geometric validation — a
// detection failure, not a data-corruption failure.
var ErrNoFinderTriplet = errors.New("qrcode: no finder-pattern triplet found")

// Location is the image-space position of a decoded symbol's anchors.
type Location struct {
	TopLeft, TopRight, BottomLeft, Alignment qrdetect.Point
}

// Result is one fully decoded QR Code symbol.
type Result struct {
	Text         string
	ByteSegments [][]byte
	ECLevel      qrcodeecc.QrCodeEcc
	Location     Location
}

// Decode finds and decodes a single QR Code symbol in bm, preferring the
// best-scoring finder triplet. Returns ErrNoFinderTriplet (a detection
// failure) when no triplet is found; any error past that point is a
// decode-stage failure (corrupt format/version/data).
func Decode(bm *bitmatrix.BitMatrix) (*Result, error) {
	candidates := qrfinder.Find(bm)
	triplet, ok := qrfinder.SelectBest(candidates)
	if !ok {
		return nil, ErrNoFinderTriplet
	}
	return decodeTriplet(bm, triplet)
}

// DecodeAll finds and decodes every non-overlapping QR Code symbol in bm.
// Detection failures (no triplets at all) yield an empty, non-nil slice
// and no error; a decode-stage failure on any individual triplet is
// skipped rather than aborting the whole scan, since a neighboring
// symbol may still be perfectly readable.
func DecodeAll(bm *bitmatrix.BitMatrix) ([]*Result, error) {
	candidates := qrfinder.Find(bm)
	triplets := qrfinder.EnumerateTriplets(candidates)

	results := make([]*Result, 0, len(triplets))
	for _, t := range triplets {
		r, err := decodeTriplet(bm, t)
		if err != nil {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func decodeTriplet(bm *bitmatrix.BitMatrix, triplet qrfinder.Triplet) (*Result, error) {
	detected, err := qrdetect.Detect(bm, triplet)
	if err != nil {
		return nil, err
	}
	symbol := detected.Bits

	ver, err := qrformat.ReadVersion(symbol)
	if err != nil {
		return nil, err
	}
	info, err := qrformat.ReadFormat(symbol)
	if err != nil {
		return nil, err
	}

	qrdata.Unmask(symbol, info.Mask, ver)
	defer qrdata.Unmask(symbol, info.Mask, ver) // restore: apply-mask is its own inverse

	rawCount := ver.TotalCodewords()
	raw, err := qrdata.ExtractCodewords(symbol, ver, rawCount)
	if err != nil {
		return nil, err
	}

	corrected, err := qrdata.Correct(raw, ver, info.ECLevel)
	if err != nil {
		return nil, err
	}

	segments, err := qrtext.Parse(corrected, ver)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	var byteSegments [][]byte
	for _, seg := range segments {
		sb.WriteString(seg.Text)
		if seg.Bytes != nil {
			byteSegments = append(byteSegments, seg.Bytes)
		}
	}
	if byteSegments == nil {
		byteSegments = [][]byte{}
	}

	return &Result{
		Text:         sb.String(),
		ByteSegments: byteSegments,
		ECLevel:      info.ECLevel,
		Location: Location{
			TopLeft:    detected.TopLeft,
			TopRight:   detected.TopRight,
			BottomLeft: detected.BottomLeft,
			Alignment:  detected.Alignment,
		},
	}, nil
}
