// Package qrdetect turns a finder-pattern triplet into a sampled bit
// matrix: it estimates module size and symbol dimension, locates the
// alignment pattern, builds the perspective transform from the ideal
// sampling grid to image space, and resamples the grid into a bit matrix
// of exactly the detected dimension.
package qrdetect

import (
	"errors"
	"fmt"
	"math"

	"github.com/kyodai/symread/bitmatrix"
	"github.com/kyodai/symread/qrfinder"
)

// ErrInvalidDimension is returned when the estimated module count does
// not snap to any legal QR Code dimension (17+4v, v in [1,40]).
var ErrInvalidDimension = errors.New("qrdetect: could not determine a valid symbol dimension")

// Point is an image-space coordinate.
type Point struct{ X, Y float64 }

// Result is a detected, resampled symbol: the grid dimension and the
// sampled bit matrix, still masked; the caller reads the format
// information and removes the mask.
type Result struct {
	Dimension int
	Bits      *bitmatrix.BitMatrix
	TopLeft   Point
	TopRight  Point
	BottomLeft Point
	Alignment Point // zero value if no alignment pattern exists (version 1)
}

// Detect builds a sampled symbol from a finder-pattern triplet read off bm.
func Detect(bm *bitmatrix.BitMatrix, triplet qrfinder.Triplet) (*Result, error) {
	tl := Point{triplet.TopLeft.X, triplet.TopLeft.Y}
	tr := Point{triplet.TopRight.X, triplet.TopRight.Y}
	bl := Point{triplet.BottomLeft.X, triplet.BottomLeft.Y}

	moduleSize := estimateModuleSize(triplet)
	if moduleSize < 1 {
		return nil, fmt.Errorf("%w: degenerate module size", ErrInvalidDimension)
	}

	rawDimension := distance(tl, tr)/moduleSize + 7
	dimension, err := adjustDimension(int(math.Round(rawDimension)))
	if err != nil {
		return nil, err
	}

	alignEstimate := Point{
		X: tr.X + bl.X - tl.X,
		Y: tr.Y + bl.Y - tl.Y,
	}

	var alignment Point
	hasAlignment := dimension >= 25 // version >= 2
	if hasAlignment {
		found, ok := findAlignmentPattern(bm, alignEstimate, moduleSize)
		if ok {
			alignment = found
		} else {
			alignment = alignEstimate
		}
	}

	n := float64(dimension)
	var bottomRight Point
	bottomRightGrid := n - 6.5
	if hasAlignment {
		bottomRight = alignment
	} else {
		// Version 1: the estimate is the centre of a virtual fourth finder.
		bottomRight = alignEstimate
		bottomRightGrid = n - 3.5
	}

	transform, err := newPerspectiveTransform(
		3.5, 3.5, n-3.5, 3.5, bottomRightGrid, bottomRightGrid, 3.5, n-3.5,
		tl.X, tl.Y, tr.X, tr.Y, bottomRight.X, bottomRight.Y, bl.X, bl.Y,
	)
	if err != nil {
		return nil, err
	}

	out := bitmatrix.New(dimension, dimension)
	for j := 0; j < dimension; j++ {
		for i := 0; i < dimension; i++ {
			px, py := transform.apply(float64(i)+0.5, float64(j)+0.5)
			x, y := int(math.Floor(px)), int(math.Floor(py))
			if bm.Get(x, y) {
				out.Set(i, j)
			}
		}
	}

	return &Result{
		Dimension:  dimension,
		Bits:       out,
		TopLeft:    tl,
		TopRight:   tr,
		BottomLeft: bl,
		Alignment:  alignment,
	}, nil
}

// estimateModuleSize averages two independent module-size estimates, one
// along each finder-to-finder edge, each derived from that candidate's
// own pixel-run module size.
func estimateModuleSize(t qrfinder.Triplet) float64 {
	a := (t.TopLeft.ModuleSize + t.TopRight.ModuleSize) / 2
	b := (t.TopLeft.ModuleSize + t.BottomLeft.ModuleSize) / 2
	return (a + b) / 2
}

// adjustDimension snaps a raw module-count estimate to the nearest legal
// QR dimension, using the correction rule keyed on n mod 4.
func adjustDimension(n int) (int, error) {
	var adjusted int
	switch mod := ((n%4)+4)%4; mod {
	case 0:
		adjusted = n + 1
	case 1:
		adjusted = n
	case 2:
		adjusted = n - 1
	default: // 3
		adjusted = n + 2
	}
	if adjusted < 21 || adjusted > 177 || (adjusted-17)%4 != 0 {
		return 0, ErrInvalidDimension
	}
	return adjusted, nil
}

// findAlignmentPattern searches a window around estimate for a 1:1:1
// run-length signature (the 3-run variant of the finder-pattern
// detector), retrying with a wider window if the first attempt fails.
func findAlignmentPattern(bm *bitmatrix.BitMatrix, estimate Point, moduleSize float64) (Point, bool) {
	for _, factor := range []float64{2, 4, 8} {
		radius := moduleSize * factor
		if p, ok := scanAlignmentWindow(bm, estimate, radius, moduleSize); ok {
			return p, true
		}
	}
	return Point{}, false
}

func scanAlignmentWindow(bm *bitmatrix.BitMatrix, center Point, radius, moduleSize float64) (Point, bool) {
	minX := clampInt(int(center.X-radius), 0, bm.Width()-1)
	maxX := clampInt(int(center.X+radius), 0, bm.Width()-1)
	minY := clampInt(int(center.Y-radius), 0, bm.Height()-1)
	maxY := clampInt(int(center.Y+radius), 0, bm.Height()-1)

	for y := minY; y <= maxY; y++ {
		var counts [3]int
		state := 0
		last := bm.Get(minX, y)
		if last {
			counts[0] = 1
		}
		for x := minX + 1; x <= maxX; x++ {
			cur := bm.Get(x, y)
			if cur == last {
				counts[state]++
				continue
			}
			if state < 2 {
				state++
				counts[state] = 1
			} else {
				if foundAlignmentCross(counts, moduleSize) {
					cx := float64(x) - float64(counts[2]) - float64(counts[1])/2
					if p, ok := crossCheckAlignment(bm, cx, float64(y), moduleSize); ok {
						return p, true
					}
				}
				counts[0], counts[1] = counts[1], counts[2]
				counts[2] = 1
				state = 2
			}
			last = cur
		}
	}
	return Point{}, false
}

func foundAlignmentCross(counts [3]int, expected float64) bool {
	for _, c := range counts {
		if c == 0 {
			return false
		}
	}
	maxVariance := expected / 2
	for _, c := range counts {
		if math.Abs(expected-float64(c)) >= maxVariance {
			return false
		}
	}
	return true
}

func crossCheckAlignment(bm *bitmatrix.BitMatrix, cx, cy, moduleSize float64) (Point, bool) {
	x := int(cx)
	if x < 0 || x >= bm.Width() {
		return Point{}, false
	}
	var counts [3]int
	row := int(cy)
	for row >= 0 && bm.Get(x, row) {
		counts[1]++
		row--
	}
	if row < 0 {
		return Point{}, false
	}
	for row >= 0 && !bm.Get(x, row) {
		counts[0]++
		row--
	}
	if counts[0] == 0 || row < 0 {
		return Point{}, false
	}

	row = int(cy) + 1
	for row < bm.Height() && bm.Get(x, row) {
		counts[1]++
		row++
	}
	if row >= bm.Height() {
		return Point{}, false
	}
	for row < bm.Height() && !bm.Get(x, row) {
		counts[2]++
		row++
	}
	if counts[2] == 0 || row >= bm.Height() {
		return Point{}, false
	}
	if !foundAlignmentCross(counts, moduleSize) {
		return Point{}, false
	}
	centerY := float64(row) - float64(counts[2]) - float64(counts[1])/2
	return Point{X: cx, Y: centerY}, true
}

func distance(a, b Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
