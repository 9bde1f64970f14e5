package oned

// patternMatchVariance computes the sum of absolute differences between
// a run-length window (counters) and a candidate pattern, both expressed
// in abstract units, scaled by the window's average unit width, and
// returns that total in pattern units. Returns -1 when the pattern's total
// width is zero or any single element differs from its expected width by
// more than maxIndividualVariance units.
func patternMatchVariance(counters, pattern []int, maxIndividualVariance float64) float64 {
	total, patternLength := 0, 0
	for i, c := range counters {
		total += c
		patternLength += pattern[i]
	}
	if patternLength == 0 {
		return -1
	}
	unitWidth := float64(total) / float64(patternLength)
	maxVariance := maxIndividualVariance * unitWidth

	totalVariance := 0.0
	for i, c := range counters {
		scaled := float64(pattern[i]) * unitWidth
		variance := abs(float64(c) - scaled)
		if variance > maxVariance {
			return -1
		}
		totalVariance += variance
	}
	return totalVariance / unitWidth
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// quietZoneModules is the minimum quiet-zone width, in multiples of the
// narrow-module width, required on each side of a 1D symbol.
const quietZoneModules = 10.0

// hasLeadingQuietZone reports whether the run immediately before
// patternStart (the first run consumed by the start pattern) is at least
// quietZoneModules*narrow wide. A pattern starting at the row's first run
// is accepted, since the image edge stands in for the margin.
func hasLeadingQuietZone(runs []int, patternStart int, narrow float64) bool {
	if patternStart <= 0 {
		return true
	}
	return float64(runs[patternStart-1]) >= quietZoneModules*narrow
}

// hasTrailingQuietZone reports whether the run immediately after
// patternEnd (one past the last run consumed by the stop pattern) is at
// least quietZoneModules*narrow wide. A pattern ending at the row's last
// run is accepted for the same reason as hasLeadingQuietZone.
func hasTrailingQuietZone(runs []int, patternEnd int, narrow float64) bool {
	if patternEnd >= len(runs) {
		return true
	}
	return float64(runs[patternEnd]) >= quietZoneModules*narrow
}

// sortedCopy returns a sorted copy of widths (ascending), leaving the
// input untouched — symbologies like Code 39/Codabar/ITF derive their
// narrow/wide threshold from the sorted distribution of one character's
// element widths.
func sortedCopy(widths []int) []int {
	out := append([]int{}, widths...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
