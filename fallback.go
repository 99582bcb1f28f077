package texturize

import (
	"image"

	"github.com/disintegration/imaging"
)

// FallbackCorrect produces a texture when marker detection fails: the
// photograph is resized and center-cropped to the target square with
// no geometric correction. The result is explicitly inferior to the
// marker path, but an upload is never hard-rejected for a bad photo.
func FallbackCorrect(img image.Image, targetSize int) ([]byte, error) {
	squared := imaging.Fill(img, targetSize, targetSize, imaging.Center, imaging.Lanczos)
	return FinishTexture(squared)
}
