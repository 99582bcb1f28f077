package imageutil

// Moore-neighbor offsets in clockwise order for image coordinates
// (y grows downward), starting east.
var mooreOffsets = [8][2]int{
	{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1},
}

// FindContours traces the boundaries of 255-valued regions in a binary
// image using Moore-neighbor tracing. Both outer region boundaries and
// hole boundaries are returned; contours shorter than minPerimeter
// pixels are dropped. Points are boundary pixel centers in clockwise
// order (image coordinates).
func FindContours(mask *GrayImage, minPerimeter int) [][]Point {
	width, height := mask.Width(), mask.Height()
	fg := func(x, y int) bool {
		if x < 0 || y < 0 || x >= width || y >= height {
			return false
		}
		return mask.Gray.Pix[y*mask.Stride+x] != 0
	}

	visited := make([]bool, width*height)
	var contours [][]Point

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !fg(x, y) || visited[y*width+x] {
				continue
			}
			if fg(x-1, y) {
				continue // not a left-edge boundary pixel
			}
			contour := traceBoundary(fg, x, y, width, height)
			for _, p := range contour {
				visited[int(p.Y)*width+int(p.X)] = true
			}
			if len(contour) >= minPerimeter {
				contours = append(contours, contour)
			}
		}
	}
	return contours
}

// traceBoundary walks the boundary of the region containing the start
// pixel. The backtrack is the direction from the current pixel to the
// background pixel probed just before it was found; the walk ends when
// the start pixel is re-entered with the initial backtrack (Jacob's
// stopping criterion), so the boundary is traced exactly once.
func traceBoundary(fg func(x, y int) bool, sx, sy, width, height int) []Point {
	const initialBacktrack = 4 // start pixels are found with background to the west

	contour := []Point{{X: float64(sx), Y: float64(sy)}}
	px, py := sx, sy
	backtrack := initialBacktrack

	// Generous cap: a boundary cannot exceed the pixel count.
	maxSteps := 4 * width * height
	for steps := 0; steps < maxSteps; steps++ {
		found := -1
		prev := backtrack
		for i := 1; i <= 8; i++ {
			dir := (backtrack + i) % 8
			if fg(px+mooreOffsets[dir][0], py+mooreOffsets[dir][1]) {
				found = dir
				break
			}
			prev = dir
		}
		if found < 0 {
			return contour // isolated pixel
		}

		nx := px + mooreOffsets[found][0]
		ny := py + mooreOffsets[found][1]
		// The background pixel probed just before the move becomes
		// the new backtrack, expressed as a direction from (nx, ny).
		bx := px + mooreOffsets[prev][0]
		by := py + mooreOffsets[prev][1]
		newBacktrack := directionOf(bx-nx, by-ny)

		if nx == sx && ny == sy && newBacktrack == initialBacktrack {
			return contour
		}

		contour = append(contour, Point{X: float64(nx), Y: float64(ny)})
		px, py = nx, ny
		backtrack = newBacktrack
	}
	return contour
}

// directionOf maps a king-move delta to its Moore offset index.
func directionOf(dx, dy int) int {
	for i, off := range mooreOffsets {
		if off[0] == dx && off[1] == dy {
			return i
		}
	}
	return 4
}
