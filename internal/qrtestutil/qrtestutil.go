// Package qrtestutil renders internal/qrencode symbols into the raster
// forms the decode pipeline consumes, so package tests can build golden QR
// fixtures without embedding binary image files.
package qrtestutil

import (
	"image"

	"github.com/kyodai/symread/bitmatrix"
	"github.com/kyodai/symread/internal/qrencode"
)

// Scale is the pixels-per-module used when rendering a symbol; large enough
// that qrfinder's row-skipping scan (every 3rd row) still crosses every
// finder pattern's full height.
const Scale = 4

// QuietModules is the quiet-zone margin, in modules, added on every side.
const QuietModules = 4

// BitMatrix renders sym at Scale pixels per module with a QuietModules-wide
// light margin, ready to feed straight to qrfinder.Find / qrcode.Decode.
func BitMatrix(sym *qrencode.Symbol) *bitmatrix.BitMatrix {
	size := int(sym.Size())
	quiet := QuietModules * Scale
	dim := size*Scale + 2*quiet
	bm := bitmatrix.New(dim, dim)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if sym.GetModule(int32(x), int32(y)) {
				bm.SetRegion(quiet+x*Scale, quiet+y*Scale, Scale, Scale)
			}
		}
	}
	return bm
}

// Gray renders sym the same way as BitMatrix but into an *image.Gray (0 =
// black, 255 = white), for tests that exercise the binarizer.
func Gray(sym *qrencode.Symbol) *image.Gray {
	size := int(sym.Size())
	quiet := QuietModules * Scale
	dim := size*Scale + 2*quiet
	img := image.NewGray(image.Rect(0, 0, dim, dim))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if sym.GetModule(int32(x), int32(y)) {
				for dy := 0; dy < Scale; dy++ {
					row := (quiet + y*Scale + dy) * img.Stride
					for dx := 0; dx < Scale; dx++ {
						img.Pix[row+quiet+x*Scale+dx] = 0
					}
				}
			}
		}
	}
	return img
}
