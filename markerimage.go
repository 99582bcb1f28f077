package texturize

import (
	"github.com/paperview/texturize/imageutil"
)

var (
	markerInk   = imageutil.RGB{R: 0, G: 0, B: 0}
	markerPaper = imageutil.RGB{R: 255, G: 255, B: 255}
)

// DrawMarker renders one marker into img with its top-left corner at
// (x, y). cell is the module edge length in pixels, so the full marker
// footprint is 8*cell x 8*cell: a one-cell dark border surrounding the
// 6x6 payload. The caller is responsible for leaving a light quiet
// zone around the marker. Returns false when the ID is out of range or
// the footprint does not fit inside the image.
func DrawMarker(img *imageutil.RGBAImage, id, x, y, cell int) bool {
	grid, ok := DecodeMarker(id)
	if !ok || cell < 1 {
		return false
	}
	side := markerGridCells * cell
	if x < 0 || y < 0 || x+side > img.Width() || y+side > img.Height() {
		return false
	}

	for row := 0; row < markerGridCells; row++ {
		for col := 0; col < markerGridCells; col++ {
			c := markerInk
			border := row == 0 || row == markerGridCells-1 ||
				col == 0 || col == markerGridCells-1
			if !border && grid[row-1][col-1] {
				c = markerPaper
			}
			fillCell(img, x+col*cell, y+row*cell, cell, c)
		}
	}
	return true
}

// MarkerSide returns the pixel footprint edge length of a marker drawn
// with the given cell size.
func MarkerSide(cell int) int {
	return markerGridCells * cell
}

func fillCell(img *imageutil.RGBAImage, x, y, size int, c imageutil.RGB) {
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			img.SetRGB(x+dx, y+dy, c)
		}
	}
}
