// Package texturize turns photographs of hand-colored paper templates
// into clean, square textures. A printed template carries four
// fiducial markers, one per corner; the pipeline locates them,
// recovers the perspective distortion of the photograph, resamples the
// template content into a fixed-size square and encodes the result for
// upload. When the markers cannot be found a naive center-crop is
// produced instead, flagged so callers can tell the two apart.
//
// Every pipeline invocation is a pure computation over one input
// buffer: the dictionary is read-only shared data, everything else is
// invocation-local, and no network or disk I/O happens inside the
// package. Callers may run any number of invocations concurrently.
package texturize

import (
	"errors"
	"fmt"

	"github.com/paperview/texturize/imageutil"
)

// DefaultTargetSize is the output texture edge length used when the
// caller passes a non-positive target size.
const DefaultTargetSize = 2048

// Status tells the caller which path produced a texture.
type Status string

const (
	// StatusMarkers means all four markers were found and the texture
	// was perspective-rectified through them.
	StatusMarkers Status = "markers"

	// StatusFallback means detection failed and the texture is a
	// plain resize-and-center-crop with no geometric correction.
	StatusFallback Status = "fallback"
)

// ErrDecode is returned when the input bytes are not a decodable
// image. There is nothing to fall back on in that case.
var ErrDecode = errors.New("undecodable image")

// Result is the terminal artifact of one pipeline invocation.
// Buffer holds JPEG bytes of exactly Width x Height pixels.
type Result struct {
	Status Status
	Buffer []byte
	Width  int
	Height int
}

// RectifyTexture runs the full pipeline over one photograph.
//
// markerIDBase selects which four consecutive dictionary IDs
// (base..base+3, assigned to the top-left, top-right, bottom-right and
// bottom-left template corners) make up this template's corner set.
// targetSize is the square output edge length; values below 1 select
// DefaultTargetSize.
//
// Detection failures of any kind (fewer than four expected markers,
// duplicate IDs, a degenerate corner resolution) are deterministic
// for a given input and are answered with the fallback path, never an
// error. The only error condition is input that does not decode.
func RectifyTexture(imageBytes []byte, markerIDBase, targetSize int) (*Result, error) {
	if targetSize < 1 {
		targetSize = DefaultTargetSize
	}
	if markerIDBase < 0 || markerIDBase+3 >= DictionarySize {
		return nil, fmt.Errorf("marker id base %d out of dictionary range", markerIDBase)
	}

	img, err := imageutil.DecodeBytes(imageBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	markers := DetectMarkers(img, DefaultDetectorParams())
	quad, err := ResolveTemplateCorners(markers, markerIDBase)
	if err != nil {
		return fallbackResult(img, targetSize)
	}

	rectified, err := WarpPerspective(img, quad, targetSize)
	if err != nil {
		// Corner resolution passed but the correspondences were still
		// numerically unusable; treat like any detection failure.
		return fallbackResult(img, targetSize)
	}

	buf, err := FinishTexture(rectified.RGBA)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status: StatusMarkers,
		Buffer: buf,
		Width:  targetSize,
		Height: targetSize,
	}, nil
}

func fallbackResult(img *imageutil.RGBAImage, targetSize int) (*Result, error) {
	buf, err := FallbackCorrect(img.RGBA, targetSize)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status: StatusFallback,
		Buffer: buf,
		Width:  targetSize,
		Height: targetSize,
	}, nil
}
