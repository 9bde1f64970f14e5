// Package qrfinder locates QR Code finder patterns in a bit matrix: the
// three nested-square markers that anchor a symbol's position and
// orientation. It scans rows for the 1:1:3:1:1 run signature, cross-checks
// candidates vertically, merges duplicate hits, then groups the surviving
// candidates into triplets for single- or multi-symbol detection.
package qrfinder

import (
	"math"

	"github.com/kyodai/symread/bitmatrix"
)

// iSkip is the number of rows skipped between scans.
const iSkip = 3

// mergeDistance is the pixel radius within which two candidate centers
// are considered the same physical finder pattern.
const mergeDistance = 10.0

// Candidate is a detected finder pattern: estimated center and module
// size, with a hit count used both as a confidence weight and as the
// primary sort key when selecting a single symbol's three patterns.
type Candidate struct {
	X, Y       float64
	ModuleSize float64
	Count      int
}

// Find scans bm for finder-pattern candidates.
func Find(bm *bitmatrix.BitMatrix) []Candidate {
	var candidates []Candidate
	height := bm.Height()
	for row := 0; row < height; row += iSkip {
		candidates = scanRow(bm, row, candidates)
	}
	return candidates
}

// scanRow runs the 5-state run-length scanner across one row, testing
// each completed 1:1:3:1:1 run for the finder-pattern cross ratio and
// folding any cross-checked hit into candidates.
func scanRow(bm *bitmatrix.BitMatrix, row int, candidates []Candidate) []Candidate {
	width := bm.Width()
	var counts [5]int
	state := 0
	start := 0
	for start < width && !bm.Get(start, row) {
		start++
	}
	if start == width {
		return candidates
	}
	counts[0] = 1
	last := true

	for col := start + 1; col < width; col++ {
		cur := bm.Get(col, row)
		if cur == last {
			counts[state]++
			continue
		}
		if state < 4 {
			state++
			counts[state] = 1
		} else {
			if foundPatternCross(counts) {
				centerX := centerFromCounts(col, counts)
				if cx, moduleSize, ok := crossCheckVertical(bm, row, centerX, counts); ok {
					candidates = mergeCandidate(candidates, cx, float64(row), moduleSize)
				}
			}
			counts[0] = counts[2]
			counts[1] = counts[3]
			counts[2] = counts[4]
			counts[3] = 1
			counts[4] = 0
			state = 3
		}
		last = cur
	}
	if state == 4 && foundPatternCross(counts) {
		centerX := centerFromCounts(width, counts)
		if cx, moduleSize, ok := crossCheckVertical(bm, row, centerX, counts); ok {
			candidates = mergeCandidate(candidates, cx, float64(row), moduleSize)
		}
	}
	return candidates
}

// foundPatternCross tests whether a completed 5-run sequence matches the
// 1:1:3:1:1 ratio within tolerance.
func foundPatternCross(counts [5]int) bool {
	total := 0
	for _, c := range counts {
		if c == 0 {
			return false
		}
		total += c
	}
	if total < 7 {
		return false
	}
	moduleSize := float64(total) / 7.0
	maxVariance := moduleSize / 2.0
	for _, i := range [4]int{0, 1, 3, 4} {
		if math.Abs(moduleSize-float64(counts[i])) >= maxVariance {
			return false
		}
	}
	centerVariance := moduleSize * 1.5
	return math.Abs(3*moduleSize-float64(counts[2])) < centerVariance
}

func centerFromCounts(col int, counts [5]int) float64 {
	return float64(col) - float64(counts[4]) - float64(counts[3]) - float64(counts[2])/2.0
}

// crossCheckVertical walks up and down from (centerX, centerY) confirming
// the same B-W-B-W-B run pattern holds along the column, rejecting drift
// greater than 40% from the row-based total.
func crossCheckVertical(bm *bitmatrix.BitMatrix, centerY int, centerX float64, rowCounts [5]int) (float64, float64, bool) {
	height := bm.Height()
	x := int(centerX)
	if x < 0 || x >= bm.Width() {
		return 0, 0, false
	}

	maxCount := 0
	for _, c := range rowCounts {
		maxCount += c
	}
	maxCount *= 2

	var counts [5]int
	row := centerY
	for row >= 0 && bm.Get(x, row) {
		counts[2]++
		row--
	}
	if row < 0 {
		return 0, 0, false
	}
	for i := 1; i >= 0; i-- {
		for row >= 0 && bm.Get(x, row) == (i%2 == 0) {
			counts[i]++
			row--
		}
		if counts[i] == 0 || row < 0 {
			return 0, 0, false
		}
	}

	row = centerY + 1
	for row < height && bm.Get(x, row) {
		counts[2]++
		row++
	}
	if row >= height {
		return 0, 0, false
	}
	for i := 3; i <= 4; i++ {
		for row < height && bm.Get(x, row) == (i%2 == 0) {
			counts[i]++
			row++
		}
		if counts[i] == 0 || row >= height {
			return 0, 0, false
		}
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if 5*absInt(total-maxCount/2) >= maxCount {
		return 0, 0, false
	}
	if !foundPatternCross(counts) {
		return 0, 0, false
	}

	moduleSize := float64(total) / 7.0
	return centerX, moduleSize, true
}

func mergeCandidate(candidates []Candidate, x, y, moduleSize float64) []Candidate {
	for i := range candidates {
		c := &candidates[i]
		if math.Abs(c.X-x) <= mergeDistance && math.Abs(c.Y-y) <= mergeDistance {
			n := float64(c.Count)
			c.X = (c.X*n + x) / (n + 1)
			c.Y = (c.Y*n + y) / (n + 1)
			c.ModuleSize = (c.ModuleSize*n + moduleSize) / (n + 1)
			c.Count++
			return candidates
		}
	}
	return append(candidates, Candidate{X: x, Y: y, ModuleSize: moduleSize, Count: 1})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Triplet is three finder-pattern candidates identified and oriented as
// top-left, top-right, and bottom-left.
type Triplet struct {
	TopLeft, TopRight, BottomLeft Candidate
}

// SelectBest picks the single most likely triplet from candidates: the
// three highest-count candidates, oriented by the longest-pairwise-
// distance (hypotenuse) rule. Returns false if fewer than three
// candidates were found.
func SelectBest(candidates []Candidate) (Triplet, bool) {
	if len(candidates) < 3 {
		return Triplet{}, false
	}
	top := topByCount(candidates, 3)
	return orient(top[0], top[1], top[2]), true
}

// EnumerateTriplets exhaustively tries 3-combinations of candidates and
// returns every one that passes isValidTriplet, marking each contributing
// candidate so it is used by at most one returned triplet.
func EnumerateTriplets(candidates []Candidate) []Triplet {
	used := make([]bool, len(candidates))
	var triplets []Triplet
	for i := 0; i < len(candidates); i++ {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(candidates); j++ {
			if used[j] {
				continue
			}
			for k := j + 1; k < len(candidates); k++ {
				if used[k] {
					continue
				}
				a, b, c := candidates[i], candidates[j], candidates[k]
				if !isValidTriplet(a, b, c) {
					continue
				}
				triplets = append(triplets, orient(a, b, c))
				used[i], used[j], used[k] = true, true, true
				break
			}
			if used[i] {
				break
			}
		}
	}
	return triplets
}

// isValidTriplet reports whether three candidates form a plausible QR
// finder triangle: the two shorter sides within 20% of each other, the
// hypotenuse within 20% of sqrt(2) times the short side, and the three
// module sizes within 50% of each other.
func isValidTriplet(a, b, c Candidate) bool {
	d1 := distance(a, b)
	d2 := distance(b, c)
	d3 := distance(a, c)

	hypotenuse := math.Max(d1, math.Max(d2, d3))
	var shorts []float64
	for _, s := range []float64{d1, d2, d3} {
		if s != hypotenuse {
			shorts = append(shorts, s)
		}
	}
	if len(shorts) != 2 {
		return false
	}
	if math.Abs(shorts[0]-shorts[1]) > 0.2*math.Max(shorts[0], shorts[1]) {
		return false
	}
	expectedHyp := math.Sqrt2 * math.Max(shorts[0], shorts[1])
	if math.Abs(hypotenuse-expectedHyp) > 0.2*expectedHyp {
		return false
	}

	sizes := []float64{a.ModuleSize, b.ModuleSize, c.ModuleSize}
	minSize, maxSize := sizes[0], sizes[0]
	for _, s := range sizes {
		if s < minSize {
			minSize = s
		}
		if s > maxSize {
			maxSize = s
		}
	}
	return maxSize <= 1.5*minSize
}

// orient assigns top-left, top-right, bottom-left roles to three
// candidates: the vertex opposite the longest side (the hypotenuse) is
// top-left; the remaining two are distinguished by the sign of the cross
// product of (topLeft->A) x (topLeft->B), which is negative for top-right.
func orient(a, b, c Candidate) Triplet {
	dAB, dBC, dAC := distance(a, b), distance(b, c), distance(a, c)
	var topLeft, p, q Candidate
	switch math.Max(dAB, math.Max(dBC, dAC)) {
	case dAB:
		topLeft, p, q = c, a, b
	case dBC:
		topLeft, p, q = a, b, c
	default:
		topLeft, p, q = b, a, c
	}

	cross := (p.X-topLeft.X)*(q.Y-topLeft.Y) - (p.Y-topLeft.Y)*(q.X-topLeft.X)
	if cross < 0 {
		return Triplet{TopLeft: topLeft, TopRight: q, BottomLeft: p}
	}
	return Triplet{TopLeft: topLeft, TopRight: p, BottomLeft: q}
}

func distance(a, b Candidate) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func topByCount(candidates []Candidate, n int) []Candidate {
	sorted := append([]Candidate{}, candidates...)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if sorted[j].Count > sorted[i].Count {
				sorted[i], sorted[j] = sorted[j], sorted[i]
			}
		}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
