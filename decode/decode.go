// Package decode is the top-level façade: it binarizes an input image
// plane, runs the QR pipeline and/or the 1D barcode pipeline according
// to Config, and normalizes every failure into a single typed Error.
package decode

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kyodai/symread/binarize"
	"github.com/kyodai/symread/oned"
	"github.com/kyodai/symread/qrcode"
	"github.com/kyodai/symread/qrcodeecc"
	"github.com/kyodai/symread/qrdetect"
	"github.com/kyodai/symread/rs"
)

// Kind classifies a decode failure.
type Kind string

const (
	KindInputValidation Kind = "input_validation"
	KindDetection        Kind = "detection"
	KindDecode           Kind = "decode"
	KindReedSolomon      Kind = "reed_solomon"
)

// Error is the single error type surfaced by this package: a kind plus
// a short human-readable message. No partial results, no warnings.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode: %s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Config selects which pipelines and symbologies a Decode/DecodeAll call
// exercises.
type Config struct {
	EnableQR             bool     `yaml:"enable_qr"`
	Enabled1DSymbologies []string `yaml:"enabled_1d_symbologies"`
	Code39CheckDigit     bool     `yaml:"code39_check_digit"`
	Binarize             binarize.Options

	// Logger receives diagnostic-only log lines; the only one is a debug
	// line when QR finds no finder triplet and decoding falls through to
	// 1D. Nil keeps the package silent; it never substitutes for a
	// returned error.
	Logger *slog.Logger `yaml:"-"`
}

// logger returns c.Logger, or a discard-handler logger when none was
// supplied, so the library stays silent unless a caller opts in.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DefaultConfig enables the QR pipeline and every 1D symbology.
var DefaultConfig = Config{
	EnableQR: true,
	Enabled1DSymbologies: []string{
		"EAN-13", "EAN-8", "UPC-A", "Code 128", "Code 39", "ITF", "Codabar",
	},
	Binarize: binarize.DefaultOptions,
}

// LoadConfig reads a YAML configuration file, starting from DefaultConfig
// so unspecified fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("decode: reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode: parsing config: %w", err)
	}
	return cfg, nil
}

func (c Config) onedOptions() oned.Options {
	opts := oned.Options{Code39CheckDigit: c.Code39CheckDigit}
	for _, s := range c.Enabled1DSymbologies {
		switch s {
		case "EAN-13":
			opts.EnableEAN13 = true
		case "EAN-8":
			opts.EnableEAN8 = true
		case "UPC-A":
			opts.EnableUPCA = true
		case "Code 128":
			opts.EnableCode128 = true
		case "Code 39":
			opts.EnableCode39 = true
		case "ITF":
			opts.EnableITF = true
		case "Codabar":
			opts.EnableCodabar = true
		}
	}
	return opts
}

// Result is a single decoded symbol, QR or 1D. Exactly one of the
// QR-specific or 1D-specific fields is populated, selected by Format
// being empty (QR) or non-empty (1D).
type Result struct {
	Text         string
	ByteSegments [][]byte            // QR only
	ECLevel      qrcodeecc.QrCodeEcc // QR only
	Format       string              // 1D only; empty for QR
	StartX, EndX int                 // 1D only
	RowY         int                 // 1D only
	Location     *QRLocation         // QR only
}

// QRLocation is the image-space position of a decoded QR symbol's
// anchor patterns.
type QRLocation struct {
	TopLeft, TopRight, BottomLeft, Alignment qrdetect.Point
}

// Image is the pre-supplied grayscale pixel plane a caller hands to
// Decode/DecodeAll: one byte per pixel, row-major, Stride bytes per
// row (Stride >= Width to allow for padded buffers). Producing this
// from a camera frame or file is explicitly out of scope for this
// package.
type Image struct {
	Gray          []byte
	Width, Height int
	Stride        int
}

// toImageGray adapts Image to the *image.Gray shape binarize.Image
// expects, without copying pixel data.
func (img Image) toImageGray() *image.Gray {
	return &image.Gray{
		Pix:    img.Gray,
		Stride: img.Stride,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// Decode binarizes img and returns the first symbol found, trying QR
// first (if enabled) then falling through to 1D scanning on a detection
// failure. A QR decode-stage failure (valid finder pattern, corrupt
// data) is surfaced immediately without falling back to 1D scanning.
func Decode(img Image, cfg Config) (*Result, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	bm := binarize.Image(img.toImageGray(), cfg.Binarize)
	log := cfg.logger()

	if cfg.EnableQR {
		result, err := qrcode.Decode(bm)
		switch {
		case err == nil:
			return fromQRResult(result), nil
		case errors.Is(err, qrcode.ErrNoFinderTriplet):
			log.Debug("decode: no QR finder triplet, falling through to 1D", "error", err)
		default:
			return nil, classifyQRError(err)
		}
	}

	if r := oned.Scan(bm, cfg.onedOptions()); r != nil {
		return from1DResult(r), nil
	}

	return nil, newError(KindDetection, "no QR finder triplet and no 1D start pattern matched")
}

// DecodeAll binarizes img and returns every symbol found across both
// the QR and 1D pipelines. Detection failures yield an empty slice and
// no error, and a QR finder triplet that fails to decode is skipped;
// an error is returned only when the input image fails validation.
func DecodeAll(img Image, cfg Config) ([]*Result, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	bm := binarize.Image(img.toImageGray(), cfg.Binarize)

	var results []*Result
	if cfg.EnableQR {
		qrResults, err := qrcode.DecodeAll(bm)
		if err != nil {
			return nil, classifyQRError(err)
		}
		for _, r := range qrResults {
			results = append(results, fromQRResult(r))
		}
	}

	for _, r := range oned.ScanAll(bm, cfg.onedOptions()) {
		results = append(results, from1DResult(r))
	}

	if results == nil {
		results = []*Result{}
	}
	return results, nil
}

func validateImage(img Image) error {
	if img.Gray == nil {
		return newError(KindInputValidation, "nil image")
	}
	if img.Width <= 0 || img.Height <= 0 {
		return newError(KindInputValidation, "image dimensions must be positive, got %dx%d", img.Width, img.Height)
	}
	if img.Stride < img.Width {
		return newError(KindInputValidation, "row stride %d smaller than width %d", img.Stride, img.Width)
	}
	return nil
}

// classifyQRError maps a qrcode/qrdata/qrformat/rs error into the
// Decode or ReedSolomon kind. Reed-Solomon failures are a sub-kind of
// Decode, reported with their own kind so callers can tell correctable
// corruption from structural corruption.
func classifyQRError(err error) *Error {
	if errors.Is(err, rs.ErrTooManyErrors) || errors.Is(err, rs.ErrRootCountMismatch) || errors.Is(err, rs.ErrBadErrorLocation) {
		return newError(KindReedSolomon, "%s", err.Error())
	}
	return newError(KindDecode, "%s", err.Error())
}

func fromQRResult(r *qrcode.Result) *Result {
	return &Result{
		Text:         r.Text,
		ByteSegments: r.ByteSegments,
		ECLevel:      r.ECLevel,
		Location: &QRLocation{
			TopLeft:    r.Location.TopLeft,
			TopRight:   r.Location.TopRight,
			BottomLeft: r.Location.BottomLeft,
			Alignment:  r.Location.Alignment,
		},
	}
}

func from1DResult(r *oned.Result) *Result {
	return &Result{
		Text:   r.Text,
		Format: string(r.Format),
		StartX: r.StartX,
		EndX:   r.EndX,
		RowY:   r.RowY,
	}
}
