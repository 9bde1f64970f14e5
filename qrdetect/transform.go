package qrdetect

import "errors"

// perspectiveTransform maps unit-square corners to an arbitrary
// quadrilateral (and vice versa) via a projective transform, built as
// squareToQuad composed with the inverse of the source quad's own
// squareToQuad. Used here to map sampling-grid coordinates to image
// coordinates through the four detected finder/alignment corners.
type perspectiveTransform struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// newPerspectiveTransform builds the transform mapping the sampling-grid
// quad (x0..x3,y0..y3) to the image-space quad (x0p..x3p,y0p..y3p).
func newPerspectiveTransform(
	x0, y0, x1, y1, x2, y2, x3, y3,
	x0p, y0p, x1p, y1p, x2p, y2p, x3p, y3p float64,
) (*perspectiveTransform, error) {
	src, err := squareToQuad(x0, y0, x1, y1, x2, y2, x3, y3)
	if err != nil {
		return nil, err
	}
	dst, err := squareToQuad(x0p, y0p, x1p, y1p, x2p, y2p, x3p, y3p)
	if err != nil {
		return nil, err
	}
	inv, err := src.inverse()
	if err != nil {
		return nil, err
	}
	return dst.multiply(inv), nil
}

// squareToQuad returns the projective transform mapping the unit square
// (0,0),(1,0),(1,1),(0,1) to the given quadrilateral.
func squareToQuad(x0, y0, x1, y1, x2, y2, x3, y3 float64) (*perspectiveTransform, error) {
	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3

	if dx3 == 0 && dy3 == 0 {
		return &perspectiveTransform{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a13: 0, a23: 0, a33: 1,
		}, nil
	}

	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2
	denom := dx1*dy2 - dx2*dy1
	if denom == 0 {
		return nil, errors.New("qrdetect: degenerate quadrilateral")
	}
	a13 := (dx3*dy2 - dx2*dy3) / denom
	a23 := (dx1*dy3 - dx3*dy1) / denom

	return &perspectiveTransform{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}, nil
}

func (t *perspectiveTransform) multiply(o *perspectiveTransform) *perspectiveTransform {
	return &perspectiveTransform{
		a11: t.a11*o.a11 + t.a21*o.a12 + t.a31*o.a13,
		a21: t.a11*o.a21 + t.a21*o.a22 + t.a31*o.a23,
		a31: t.a11*o.a31 + t.a21*o.a32 + t.a31*o.a33,
		a12: t.a12*o.a11 + t.a22*o.a12 + t.a32*o.a13,
		a22: t.a12*o.a21 + t.a22*o.a22 + t.a32*o.a23,
		a32: t.a12*o.a31 + t.a22*o.a32 + t.a32*o.a33,
		a13: t.a13*o.a11 + t.a23*o.a12 + t.a33*o.a13,
		a23: t.a13*o.a21 + t.a23*o.a22 + t.a33*o.a23,
		a33: t.a13*o.a31 + t.a23*o.a32 + t.a33*o.a33,
	}
}

func (t *perspectiveTransform) inverse() (*perspectiveTransform, error) {
	det := t.a11*(t.a22*t.a33-t.a23*t.a32) -
		t.a12*(t.a21*t.a33-t.a23*t.a31) +
		t.a13*(t.a21*t.a32-t.a22*t.a31)
	if det == 0 {
		return nil, errors.New("qrdetect: singular transform matrix")
	}
	invDet := 1 / det
	return &perspectiveTransform{
		a11: (t.a22*t.a33 - t.a23*t.a32) * invDet,
		a12: (t.a13*t.a32 - t.a12*t.a33) * invDet,
		a13: (t.a12*t.a23 - t.a13*t.a22) * invDet,
		a21: (t.a23*t.a31 - t.a21*t.a33) * invDet,
		a22: (t.a11*t.a33 - t.a13*t.a31) * invDet,
		a23: (t.a13*t.a21 - t.a11*t.a23) * invDet,
		a31: (t.a21*t.a32 - t.a22*t.a31) * invDet,
		a32: (t.a12*t.a31 - t.a11*t.a32) * invDet,
		a33: (t.a11*t.a22 - t.a12*t.a21) * invDet,
	}, nil
}

// apply maps a point through the transform.
func (t *perspectiveTransform) apply(x, y float64) (float64, float64) {
	denom := t.a13*x + t.a23*y + t.a33
	return (t.a11*x + t.a21*y + t.a31) / denom, (t.a12*x + t.a22*y + t.a32) / denom
}
