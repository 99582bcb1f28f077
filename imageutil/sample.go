package imageutil

import "math"

// BilinearSample samples an RGBA image at a sub-pixel location.
// Coordinates refer to pixel centers. The second return value is false
// when the location lies outside the image.
func BilinearSample(img *RGBAImage, x, y float64) (RGB, bool) {
	w, h := img.Width(), img.Height()
	if x < 0 || y < 0 || x > float64(w-1) || y > float64(h-1) {
		return RGB{}, false
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)

	c00 := img.RGBAAt(x0, y0)
	c10 := img.RGBAAt(x1, y0)
	c01 := img.RGBAAt(x0, y1)
	c11 := img.RGBAAt(x1, y1)

	lerp2 := func(a, b, c, d uint8) uint8 {
		top := float64(a) + (float64(b)-float64(a))*fx
		bot := float64(c) + (float64(d)-float64(c))*fx
		return uint8(math.Round(top + (bot-top)*fy))
	}
	return RGB{
		R: lerp2(c00.R, c10.R, c01.R, c11.R),
		G: lerp2(c00.G, c10.G, c01.G, c11.G),
		B: lerp2(c00.B, c10.B, c01.B, c11.B),
	}, true
}

// BilinearSampleGray samples a grayscale image at a sub-pixel
// location, returning the interpolated value as a float. The second
// return value is false when the location lies outside the image.
func BilinearSampleGray(img *GrayImage, x, y float64) (float64, bool) {
	w, h := img.Width(), img.Height()
	if x < 0 || y < 0 || x > float64(w-1) || y > float64(h-1) {
		return 0, false
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)

	v00 := float64(img.Gray.Pix[y0*img.Stride+x0])
	v10 := float64(img.Gray.Pix[y0*img.Stride+x1])
	v01 := float64(img.Gray.Pix[y1*img.Stride+x0])
	v11 := float64(img.Gray.Pix[y1*img.Stride+x1])

	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy, true
}
