package imageutil

// Otsu computes a global binarization threshold for a grayscale image
// by maximizing the inter-class variance of its histogram.
func Otsu(img *GrayImage) uint8 {
	var hist [256]int
	width, height := img.Width(), img.Height()
	for y := 0; y < height; y++ {
		row := y * img.Stride
		for x := 0; x < width; x++ {
			hist[img.Gray.Pix[row+x]]++
		}
	}
	return OtsuHistogram(hist[:])
}

// OtsuHistogram computes the Otsu threshold directly from a 256-bin
// histogram. Values strictly above the returned threshold belong to
// the bright class.
func OtsuHistogram(hist []int) uint8 {
	total := 0
	var sum float64
	for v, n := range hist {
		total += n
		sum += float64(v) * float64(n)
	}
	if total == 0 {
		return 0
	}

	var sumB, wB float64
	best := 0.0
	threshold := uint8(0)
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Threshold produces a binary image where pixels brighter than t are
// set to 255 and the rest to 0.
func Threshold(img *GrayImage, t uint8) *GrayImage {
	return applyThreshold(img, t, 255, 0)
}

// ThresholdInv produces a binary image where pixels at or below t are
// set to 255 and the rest to 0. Used to isolate dark ink on light
// paper.
func ThresholdInv(img *GrayImage, t uint8) *GrayImage {
	return applyThreshold(img, t, 0, 255)
}

func applyThreshold(img *GrayImage, t, above, below uint8) *GrayImage {
	width, height := img.Width(), img.Height()
	dst := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		srcRow := y * img.Stride
		dstRow := y * dst.Stride
		for x := 0; x < width; x++ {
			if img.Gray.Pix[srcRow+x] > t {
				dst.Gray.Pix[dstRow+x] = above
			} else {
				dst.Gray.Pix[dstRow+x] = below
			}
		}
	}
	return dst
}
