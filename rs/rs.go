// Package rs implements Reed-Solomon error correction over GF(256) for
// QR Code codeword blocks: syndrome calculation, the extended Euclidean
// algorithm for the error locator/evaluator polynomials, Chien search, and
// Forney's formula.
package rs

import (
	"errors"
	"fmt"

	"github.com/kyodai/symread/gf"
)

// ErrTooManyErrors is returned when the number of errors exceeds the
// block's correction capacity (syndromes don't converge to a usable
// locator, or the post-correction codeword still has non-zero syndromes).
var ErrTooManyErrors = errors.New("rs: error count exceeds correction capacity")

// ErrRootCountMismatch is returned when Chien search finds a number of
// roots different from the locator polynomial's degree.
var ErrRootCountMismatch = errors.New("rs: chien search root count does not match locator degree")

// ErrBadErrorLocation is returned when Forney's formula computes an error
// position outside the codeword.
var ErrBadErrorLocation = errors.New("rs: computed error position out of range")

// Decode corrects received, a full codeword block (data followed by EC
// bytes, high-order byte first), given twoS = 2*s EC codewords. It returns
// a corrected copy of received, or an error wrapping one of the sentinels
// above if the block has more errors than it can correct.
func Decode(received []byte, twoS int) ([]byte, error) {
	out := make([]byte, len(received))
	copy(out, received)

	syndromes := computeSyndromes(out, twoS)
	if allZero(syndromes) {
		return out, nil
	}

	syndromePoly := gf.NewPoly(syndromes)
	sigma, omega, err := extendedEuclidean(monomial(twoS, 1), syndromePoly, twoS)
	if err != nil {
		return nil, err
	}

	positions, roots, err := chienSearch(sigma)
	if err != nil {
		return nil, err
	}

	magnitudes := forneyMagnitudes(omega, roots)
	for i, exponent := range positions {
		pos := len(out) - 1 - exponent
		if pos < 0 || pos >= len(out) {
			return nil, fmt.Errorf("%w: position %d", ErrBadErrorLocation, pos)
		}
		out[pos] = gf.Add(out[pos], magnitudes[i])
	}

	if !allZero(computeSyndromes(out, twoS)) {
		return nil, fmt.Errorf("%w: correction did not clear syndromes", ErrTooManyErrors)
	}
	return out, nil
}

// computeSyndromes evaluates the received codeword polynomial (high-degree
// first) at alpha^0..alpha^(twoS-1), storing S_i at position twoS-1-i so
// the result reads high-degree-first like any other gf.Poly coefficient
// slice.
func computeSyndromes(received []byte, twoS int) []byte {
	poly := gf.NewPoly(received)
	syndromes := make([]byte, twoS)
	for i := 0; i < twoS; i++ {
		syndromes[twoS-1-i] = poly.Eval(gf.Exp(i))
	}
	return syndromes
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

func monomial(degree int, coeff byte) gf.Poly {
	coeffs := make([]byte, degree+1)
	coeffs[0] = coeff
	return gf.NewPoly(coeffs)
}

// extendedEuclidean runs the extended Euclidean algorithm on a and b,
// stopping once the remainder's degree drops below s = twoS/2, and returns
// the normalised locator (sigma) and evaluator (omega) polynomials.
func extendedEuclidean(a, b gf.Poly, twoS int) (sigma, omega gf.Poly, err error) {
	s := twoS / 2
	rPrev, rCur := a, b
	tPrev, tCur := gf.NewPoly([]byte{0}), gf.NewPoly([]byte{1})

	for rCur.Degree() >= s && !rCur.IsZero() {
		q, rem := rPrev.Divide(rCur)
		tNext := q.Mul(tCur).Add(tPrev)
		rPrev, rCur = rCur, rem
		tPrev, tCur = tCur, tNext
	}
	if rCur.IsZero() {
		return gf.Poly{}, gf.Poly{}, fmt.Errorf("%w: euclidean remainder vanished", ErrTooManyErrors)
	}

	sigmaZero := tCur.Coeff(0)
	if sigmaZero == 0 {
		return gf.Poly{}, gf.Poly{}, fmt.Errorf("%w: singular locator polynomial", ErrTooManyErrors)
	}
	inv := gf.Inverse(sigmaZero)
	return tCur.MulScalar(inv), rCur.MulScalar(inv), nil
}

// chienSearch finds sigma's roots among all non-zero elements
// alpha^0..alpha^254 by brute-force evaluation. Each root is the inverse
// of an error locator X = alpha^e; it returns, for each root found, the
// exponent e plus the locator X itself. degree(sigma) roots must be found
// or the locator is inconsistent with the data.
func chienSearch(sigma gf.Poly) (positions []int, roots []byte, err error) {
	want := sigma.Degree()
	if want == 0 {
		return nil, nil, nil
	}
	for i := 0; i < gf.Size && len(roots) < want; i++ {
		elem := gf.Exp(i)
		if sigma.Eval(elem) == 0 {
			roots = append(roots, gf.Inverse(elem))
			positions = append(positions, (gf.Size-i)%gf.Size)
		}
	}
	if len(roots) != want {
		return nil, nil, ErrRootCountMismatch
	}
	return positions, roots, nil
}

// forneyMagnitudes computes the error value at each error locator via
// Forney's formula: e_i = omega(X_i^-1) / prod_{j!=i}(1 - X_j*X_i^-1).
func forneyMagnitudes(omega gf.Poly, roots []byte) []byte {
	n := len(roots)
	magnitudes := make([]byte, n)
	for i := 0; i < n; i++ {
		xInv := gf.Inverse(roots[i])
		denom := byte(1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			term := gf.Mul(roots[j], xInv)
			denom = gf.Mul(denom, term^1) // (1 - term), subtraction is XOR
		}
		magnitudes[i] = gf.Mul(omega.Eval(xInv), gf.Inverse(denom))
	}
	return magnitudes
}
