package texturize

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

const (
	// finishSharpenSigma is the fixed unsharp radius applied to every
	// rectified texture. Hand-colored paper photographed at arm's
	// length loses fine stroke edges to resampling; a mild fixed
	// sharpen restores them without content-adaptive tuning.
	finishSharpenSigma = 0.8

	// finishJPEGQuality keeps the encoded texture near visually
	// lossless for printed-template content while staying small
	// enough to upload from a phone connection.
	finishJPEGQuality = 90
)

// FinishTexture sharpens a rectified texture and encodes it as JPEG.
func FinishTexture(img image.Image) ([]byte, error) {
	sharpened := imaging.Sharpen(img, finishSharpenSigma)

	var buf bytes.Buffer
	err := imaging.Encode(&buf, sharpened, imaging.JPEG, imaging.JPEGQuality(finishJPEGQuality))
	if err != nil {
		return nil, fmt.Errorf("failed to encode texture: %w", err)
	}
	return buf.Bytes(), nil
}
