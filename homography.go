package texturize

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/paperview/texturize/imageutil"
)

// Homography is a 3x3 projective transform stored row-major with the
// bottom-right element normalized to 1.
type Homography [9]float64

// ErrDegenerateQuad is returned when four correspondences do not
// determine a projective transform (collinear or coincident points).
var ErrDegenerateQuad = errors.New("degenerate point correspondences")

// EstimateHomography solves for the transform H with H(src[i]) =
// dst[i] for the four correspondences. The 8 degrees of freedom are
// recovered from the standard DLT system, an 8x8 dense solve.
func EstimateHomography(src, dst [4]imageutil.Point) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		sx, sy := src[i].X, src[i].Y
		dx, dy := dst[i].X, dst[i].Y
		r := 2 * i

		// dx = (h0*sx + h1*sy + h2) / (h6*sx + h7*sy + 1)
		a.Set(r, 0, sx)
		a.Set(r, 1, sy)
		a.Set(r, 2, 1)
		a.Set(r, 6, -sx*dx)
		a.Set(r, 7, -sy*dx)
		b.SetVec(r, dx)

		// dy = (h3*sx + h4*sy + h5) / (h6*sx + h7*sy + 1)
		a.Set(r+1, 3, sx)
		a.Set(r+1, 4, sy)
		a.Set(r+1, 5, 1)
		a.Set(r+1, 6, -sx*dy)
		a.Set(r+1, 7, -sy*dy)
		b.SetVec(r+1, dy)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrDegenerateQuad, err)
	}

	var out Homography
	copy(out[:8], h.RawVector().Data)
	out[8] = 1
	return out, nil
}

// Apply maps a point through the transform.
func (h Homography) Apply(x, y float64) (float64, float64) {
	denom := h[6]*x + h[7]*y + h[8]
	if denom == 0 {
		return -1e9, -1e9
	}
	return (h[0]*x + h[1]*y + h[2]) / denom,
		(h[3]*x + h[4]*y + h[5]) / denom
}

// Invert returns the inverse transform.
func (h Homography) Invert() (Homography, error) {
	m := mat.NewDense(3, 3, append([]float64(nil), h[:]...))
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrDegenerateQuad, err)
	}

	var out Homography
	copy(out[:], inv.RawMatrix().Data)
	if out[8] != 0 {
		scale := 1 / out[8]
		for i := range out {
			out[i] *= scale
		}
	}
	return out, nil
}
