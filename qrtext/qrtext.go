// Package qrtext parses a QR Code's corrected data codewords into its
// segments: numeric, alphanumeric, byte, and kanji, following each
// segment's mode indicator and version-dependent character-count field
// until the terminator mode or the bit budget is exhausted.
package qrtext

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"

	"github.com/kyodai/symread/bitstream"
	"github.com/kyodai/symread/qrsegment"
	"github.com/kyodai/symread/version"
)

// ErrUnsupportedMode is returned for ECI, FNC1, structured-append, and
// Hanzi mode indicators, none of which this decoder implements.
var ErrUnsupportedMode = errors.New("qrtext: unsupported mode indicator")

const alphanumericAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// Segment is one decoded payload segment in encounter order.
type Segment struct {
	Mode  qrsegment.QrSegmentMode
	Text  string // populated for Numeric, Alphanumeric, Kanji, and Byte (best-effort)
	Bytes []byte // populated for Byte mode only
}

// Parse reads data as a sequence of mode segments terminated by the
// terminator indicator (0000) or by bit exhaustion.
func Parse(data []byte, ver version.Version) ([]Segment, error) {
	r := bitstream.New(data)
	var segments []Segment

	for r.Available() >= 4 {
		modeBits, err := r.ReadBits(4)
		if err != nil {
			return nil, err
		}
		if modeBits == 0x0 {
			break // terminator
		}
		mode, ok := modeFromBits(uint32(modeBits))
		if !ok {
			return nil, fmt.Errorf("%w: indicator 0x%X", ErrUnsupportedMode, modeBits)
		}

		countBits := mode.NumCharCountBits(ver)
		count, err := r.ReadBits(int(countBits))
		if err != nil {
			return nil, err
		}

		var seg Segment
		switch mode {
		case qrsegment.ModeNumeric:
			seg, err = parseNumeric(r, int(count))
		case qrsegment.ModeAlphanumeric:
			seg, err = parseAlphanumeric(r, int(count))
		case qrsegment.ModeByte:
			seg, err = parseByte(r, int(count))
		case qrsegment.ModeKanji:
			seg, err = parseKanji(r, int(count))
		}
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func modeFromBits(bits uint32) (qrsegment.QrSegmentMode, bool) {
	switch bits {
	case 0x1:
		return qrsegment.ModeNumeric, true
	case 0x2:
		return qrsegment.ModeAlphanumeric, true
	case 0x4:
		return qrsegment.ModeByte, true
	case 0x8:
		return qrsegment.ModeKanji, true
	default: // ECI (0111), FNC1 (0101/1001), structured append (0011), Hanzi (1101)
		return 0, false
	}
}

func parseNumeric(r *bitstream.Reader, count int) (Segment, error) {
	var sb strings.Builder
	remaining := count
	for remaining >= 3 {
		v, err := r.ReadBits(10)
		if err != nil {
			return Segment{}, err
		}
		fmt.Fprintf(&sb, "%03d", v)
		remaining -= 3
	}
	if remaining == 2 {
		v, err := r.ReadBits(7)
		if err != nil {
			return Segment{}, err
		}
		fmt.Fprintf(&sb, "%02d", v)
	} else if remaining == 1 {
		v, err := r.ReadBits(4)
		if err != nil {
			return Segment{}, err
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	return Segment{Mode: qrsegment.ModeNumeric, Text: sb.String()}, nil
}

func parseAlphanumeric(r *bitstream.Reader, count int) (Segment, error) {
	var sb strings.Builder
	remaining := count
	for remaining >= 2 {
		v, err := r.ReadBits(11)
		if err != nil {
			return Segment{}, err
		}
		sb.WriteByte(alphanumericAlphabet[v/45])
		sb.WriteByte(alphanumericAlphabet[v%45])
		remaining -= 2
	}
	if remaining == 1 {
		v, err := r.ReadBits(6)
		if err != nil {
			return Segment{}, err
		}
		sb.WriteByte(alphanumericAlphabet[v])
	}
	return Segment{Mode: qrsegment.ModeAlphanumeric, Text: sb.String()}, nil
}

func parseByte(r *bitstream.Reader, count int) (Segment, error) {
	raw := make([]byte, count)
	for i := range raw {
		v, err := r.ReadBits(8)
		if err != nil {
			return Segment{}, err
		}
		raw[i] = byte(v)
	}
	return Segment{Mode: qrsegment.ModeByte, Text: decodeByteText(raw), Bytes: raw}, nil
}

// decodeByteText tries UTF-8 first (the common case for modern QR
// payloads) and falls back to Latin-1 so a non-UTF-8 byte segment never
// fails the whole decode.
func decodeByteText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	text, err := charmap.ISO8859_1.NewDecoder().String(string(raw))
	if err != nil {
		return string(raw)
	}
	return text
}

func parseKanji(r *bitstream.Reader, count int) (Segment, error) {
	sjis := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		v, err := r.ReadBits(13)
		if err != nil {
			return Segment{}, err
		}
		a := (v/0xC0)<<8 | (v % 0xC0)
		if a < 0x1F00 {
			a += 0x8140
		} else {
			a += 0x0C140
		}
		sjis = append(sjis, byte(a>>8), byte(a))
	}
	text, err := japanese.ShiftJIS.NewDecoder().String(string(sjis))
	if err != nil {
		text = string(utf8.RuneError)
	}
	return Segment{Mode: qrsegment.ModeKanji, Text: text}, nil
}
