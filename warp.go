package texturize

import (
	"github.com/paperview/texturize/imageutil"
)

// paperWhite fills destination pixels whose source location falls
// outside the photograph. White matches the paper background of the
// printed templates, so border bleed is invisible on the model.
var paperWhite = imageutil.RGB{R: 255, G: 255, B: 255}

// WarpPerspective resamples the quadrilateral region of src into an
// axis-aligned size x size square. The transform maps the square's
// corners onto the quad's corners and every destination pixel is
// bilinearly sampled through it, so the quad content arrives
// fronto-parallel in the output.
func WarpPerspective(src *imageutil.RGBAImage, quad Quad, size int) (*imageutil.RGBAImage, error) {
	s := float64(size - 1)
	square := [4]imageutil.Point{
		{X: 0, Y: 0},
		{X: s, Y: 0},
		{X: s, Y: s},
		{X: 0, Y: s},
	}
	corners := [4]imageutil.Point{
		quad.TopLeft, quad.TopRight, quad.BottomRight, quad.BottomLeft,
	}

	// Destination square -> source quad, so each output pixel pulls
	// its color from the photograph directly.
	h, err := EstimateHomography(square, corners)
	if err != nil {
		return nil, err
	}

	dst := imageutil.NewRGBAImage(size, size)
	for y := 0; y < size; y++ {
		fy := float64(y)
		for x := 0; x < size; x++ {
			sx, sy := h.Apply(float64(x), fy)
			c, ok := imageutil.BilinearSample(src, sx, sy)
			if !ok {
				c = paperWhite
			}
			dst.SetRGB(x, y, c)
		}
	}
	return dst, nil
}
