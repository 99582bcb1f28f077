package texturize

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/paperview/texturize/imageutil"
)

func encodePNG(t *testing.T, img *imageutil.RGBAImage) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.RGBA); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func decodeResult(t *testing.T, res *Result) *imageutil.RGBAImage {
	t.Helper()
	img, err := imageutil.DecodeBytes(res.Buffer)
	if err != nil {
		t.Fatalf("result buffer does not decode: %v", err)
	}
	return img
}

// drawTemplate renders a four-marker template onto a white canvas with
// the markers' outer corners exactly at the given quad corners.
func drawTemplate(t *testing.T, img *imageutil.RGBAImage, base, cell int, quad Quad) {
	t.Helper()
	side := markerGridCells * cell
	at := func(id, x, y int) {
		if !DrawMarker(img, id, x, y, cell) {
			t.Fatalf("DrawMarker %d at (%d, %d) failed", id, x, y)
		}
	}
	at(base, int(quad.TopLeft.X), int(quad.TopLeft.Y))
	at(base+1, int(quad.TopRight.X)-side+1, int(quad.TopRight.Y))
	at(base+2, int(quad.BottomRight.X)-side+1, int(quad.BottomRight.Y)-side+1)
	at(base+3, int(quad.BottomLeft.X), int(quad.BottomLeft.Y)-side+1)
}

// projectTemplate simulates photographing a flat template at an angle:
// every canvas pixel is mapped through the quad-to-template homography
// and bilinearly sampled, with paper white outside the template.
func projectTemplate(t *testing.T, template *imageutil.RGBAImage, quad [4]imageutil.Point, width, height int) *imageutil.RGBAImage {
	t.Helper()
	tw := float64(template.Width() - 1)
	th := float64(template.Height() - 1)
	templateCorners := [4]imageutil.Point{
		{X: 0, Y: 0}, {X: tw, Y: 0}, {X: tw, Y: th}, {X: 0, Y: th},
	}
	h, err := EstimateHomography(quad, templateCorners)
	if err != nil {
		t.Fatalf("projection homography failed: %v", err)
	}

	canvas := whiteCanvas(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy := h.Apply(float64(x), float64(y))
			if c, ok := imageutil.BilinearSample(template, sx, sy); ok {
				canvas.SetRGB(x, y, c)
			}
		}
	}
	return canvas
}

// TestRectifyTextureFrontal is the frontal scenario: a 2048x2048 photo
// with marker outer corners at (50,50), (1950,50), (1950,1950) and
// (50,1950) for IDs 0..3 must come back as a marker-rectified
// 2048x2048 texture.
func TestRectifyTextureFrontal(t *testing.T) {
	img := whiteCanvas(2048, 2048)
	quad := Quad{
		TopLeft:     imageutil.Point{X: 50, Y: 50},
		TopRight:    imageutil.Point{X: 1950, Y: 50},
		BottomRight: imageutil.Point{X: 1950, Y: 1950},
		BottomLeft:  imageutil.Point{X: 50, Y: 1950},
	}
	drawTemplate(t, img, 0, 15, quad)
	// A recognizable patch of "user coloring" at the template center.
	red := imageutil.RGB{R: 200, G: 30, B: 30}
	for y := 900; y < 1100; y++ {
		for x := 900; x < 1100; x++ {
			img.SetRGB(x, y, red)
		}
	}

	res, err := RectifyTexture(encodePNG(t, img), 0, 2048)
	if err != nil {
		t.Fatalf("RectifyTexture failed: %v", err)
	}
	if res.Status != StatusMarkers {
		t.Fatalf("got status %q, want %q", res.Status, StatusMarkers)
	}
	if res.Width != 2048 || res.Height != 2048 {
		t.Fatalf("got %dx%d, want 2048x2048", res.Width, res.Height)
	}

	out := decodeResult(t, res)
	if out.Width() != 2048 || out.Height() != 2048 {
		t.Fatalf("buffer decodes to %dx%d, want 2048x2048", out.Width(), out.Height())
	}

	// The colored patch sits at the center of the marker quad, so it
	// must land at the center of the rectified output.
	got := out.GetRGB(1024, 1024)
	if absDiff(got.R, red.R) > 25 || absDiff(got.G, red.G) > 25 || absDiff(got.B, red.B) > 25 {
		t.Errorf("center pixel %v too far from drawn color %v", got, red)
	}
	// A point near the output edge maps just inside the marker quad:
	// paper white, not marker ink.
	if got := out.GetRGB(1024, 2040); got.R < 200 {
		t.Errorf("bottom-center pixel %v should be paper, not ink", got)
	}
}

// TestRectifyTextureIdempotent rectifies a square that already is a
// perfect target square with markers exactly at its corners; modulo
// the fixed finishing pass, the texture must reproduce the input.
func TestRectifyTextureIdempotent(t *testing.T) {
	const size = 512
	img := whiteCanvas(size, size)
	quad := Quad{
		TopLeft:     imageutil.Point{X: 0, Y: 0},
		TopRight:    imageutil.Point{X: size - 1, Y: 0},
		BottomRight: imageutil.Point{X: size - 1, Y: size - 1},
		BottomLeft:  imageutil.Point{X: 0, Y: size - 1},
	}
	drawTemplate(t, img, 40, 8, quad)
	for y := 200; y < 300; y++ {
		for x := 150; x < 350; x++ {
			img.SetRGB(x, y, imageutil.RGB{R: 40, G: 140, B: 220})
		}
	}

	res, err := RectifyTexture(encodePNG(t, img), 40, size)
	if err != nil {
		t.Fatalf("RectifyTexture failed: %v", err)
	}
	if res.Status != StatusMarkers {
		t.Fatalf("got status %q, want %q", res.Status, StatusMarkers)
	}

	// Reference: the same image pushed through the finisher alone.
	wantBuf, err := FinishTexture(img.RGBA)
	if err != nil {
		t.Fatalf("FinishTexture failed: %v", err)
	}
	want, err := imageutil.DecodeBytes(wantBuf)
	if err != nil {
		t.Fatalf("reference buffer does not decode: %v", err)
	}

	if mse := imageutil.CalculateMSE(want, decodeResult(t, res)); mse > 12 {
		t.Errorf("near-identity rectification drifted, MSE=%f", mse)
	}
}

// TestRectifyTextureOblique simulates a steep camera angle with a
// known projection, rectifies the oblique photo and compares it
// against rectifying the frontal photo directly.
func TestRectifyTextureOblique(t *testing.T) {
	template := whiteCanvas(660, 660)
	quad := Quad{
		TopLeft:     imageutil.Point{X: 20, Y: 20},
		TopRight:    imageutil.Point{X: 639, Y: 20},
		BottomRight: imageutil.Point{X: 639, Y: 639},
		BottomLeft:  imageutil.Point{X: 20, Y: 639},
	}
	drawTemplate(t, template, 0, 10, quad)
	// Smooth content so resampling error stays low.
	for y := 200; y < 460; y++ {
		for x := 200; x < 460; x++ {
			template.SetRGB(x, y, imageutil.RGB{
				R: uint8(40 + (x-200)/2),
				G: 160,
				B: uint8(40 + (y-200)/2),
			})
		}
	}

	photo := projectTemplate(t, template, [4]imageutil.Point{
		{X: 70, Y: 50}, {X: 690, Y: 110}, {X: 640, Y: 600}, {X: 110, Y: 540},
	}, 760, 680)

	const targetSize = 512
	oblique, err := RectifyTexture(encodePNG(t, photo), 0, targetSize)
	if err != nil {
		t.Fatalf("RectifyTexture (oblique) failed: %v", err)
	}
	if oblique.Status != StatusMarkers {
		t.Fatalf("oblique photo: got status %q, want %q", oblique.Status, StatusMarkers)
	}

	frontal, err := RectifyTexture(encodePNG(t, template), 0, targetSize)
	if err != nil {
		t.Fatalf("RectifyTexture (frontal) failed: %v", err)
	}
	if frontal.Status != StatusMarkers {
		t.Fatalf("frontal photo: got status %q, want %q", frontal.Status, StatusMarkers)
	}

	// Compare the central half of both textures; the outer band holds
	// the markers themselves, where resampling error concentrates.
	a := decodeResult(t, oblique)
	b := decodeResult(t, frontal)
	var sumSq float64
	count := 0
	for y := targetSize / 4; y < 3*targetSize/4; y++ {
		for x := targetSize / 4; x < 3*targetSize/4; x++ {
			ca, cb := a.GetRGB(x, y), b.GetRGB(x, y)
			dr := float64(ca.R) - float64(cb.R)
			dg := float64(ca.G) - float64(cb.G)
			db := float64(ca.B) - float64(cb.B)
			sumSq += dr*dr + dg*dg + db*db
			count += 3
		}
	}
	if mse := sumSq / float64(count); mse > 250 {
		t.Errorf("oblique rectification too far from frontal, central MSE=%f", mse)
	}
}

func TestRectifyTextureFallbackOnBlank(t *testing.T) {
	gradient := imageutil.CreateGradientImage(640, 480)

	res, err := RectifyTexture(encodePNG(t, gradient), 0, 256)
	if err != nil {
		t.Fatalf("RectifyTexture failed: %v", err)
	}
	if res.Status != StatusFallback {
		t.Fatalf("got status %q, want %q", res.Status, StatusFallback)
	}
	out := decodeResult(t, res)
	if out.Width() != 256 || out.Height() != 256 {
		t.Errorf("fallback buffer decodes to %dx%d, want 256x256", out.Width(), out.Height())
	}
}

// TestRectifyTextureIncompleteSet draws only three of the four
// expected markers: a three-point degenerate rectification must never
// happen, the pipeline has to fall back instead.
func TestRectifyTextureIncompleteSet(t *testing.T) {
	img := whiteCanvas(600, 600)
	positions := [3][2]int{{40, 40}, {480, 40}, {480, 480}}
	for i, pos := range positions {
		if !DrawMarker(img, i, pos[0], pos[1], 10) {
			t.Fatalf("DrawMarker %d failed", i)
		}
	}

	res, err := RectifyTexture(encodePNG(t, img), 0, 256)
	if err != nil {
		t.Fatalf("RectifyTexture failed: %v", err)
	}
	if res.Status != StatusFallback {
		t.Errorf("got status %q, want %q", res.Status, StatusFallback)
	}
}

func TestRectifyTextureUndecodable(t *testing.T) {
	_, err := RectifyTexture([]byte("not an image at all"), 0, 256)
	if !errors.Is(err, ErrDecode) {
		t.Errorf("got %v, want ErrDecode", err)
	}
}

func TestRectifyTextureBadBase(t *testing.T) {
	img := whiteCanvas(64, 64)
	if _, err := RectifyTexture(encodePNG(t, img), -1, 256); err == nil {
		t.Error("negative base should be rejected")
	}
	if _, err := RectifyTexture(encodePNG(t, img), DictionarySize-2, 256); err == nil {
		t.Error("base whose set exceeds the dictionary should be rejected")
	}
}

func TestRectifyTextureDefaultSize(t *testing.T) {
	gradient := imageutil.CreateGradientImage(64, 64)
	res, err := RectifyTexture(encodePNG(t, gradient), 0, 0)
	if err != nil {
		t.Fatalf("RectifyTexture failed: %v", err)
	}
	if res.Width != DefaultTargetSize || res.Height != DefaultTargetSize {
		t.Errorf("got %dx%d, want default %d", res.Width, res.Height, DefaultTargetSize)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
