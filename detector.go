package texturize

import (
	"math"
	"sort"

	"github.com/paperview/texturize/imageutil"
)

// IdentifiedMarker is one marker found in a photograph: its dictionary
// ID and its four outline corners in image space, ordered clockwise
// starting from the marker's canonical top-left corner regardless of
// how the marker was oriented in the photograph.
type IdentifiedMarker struct {
	ID      int
	Corners [4]imageutil.Point
}

// DetectorParams tunes the marker detection pass. The defaults are
// sized for photographs where a marker spans at least ~15 pixels.
type DetectorParams struct {
	// MinPerimeter drops contours shorter than this many boundary
	// pixels before any quad fitting happens.
	MinPerimeter int

	// MinArea drops candidate quads smaller than this, in px^2.
	MinArea float64

	// ApproxEpsilon is the polygon simplification tolerance as a
	// fraction of the contour perimeter.
	ApproxEpsilon float64

	// MaxHammingDistance is the bit-error tolerance when matching a
	// sampled pattern against the dictionary. Must stay below half
	// the codebook's minimum distance (8) for unambiguous decoding.
	MaxHammingDistance int

	// MaxBorderErrors is the number of light cells tolerated in the
	// 28-cell dark border ring of a candidate.
	MaxBorderErrors int

	// CellSamples is the per-axis subsample count per grid cell.
	CellSamples int
}

// DefaultDetectorParams returns the parameters used by the pipeline.
func DefaultDetectorParams() DetectorParams {
	return DetectorParams{
		MinPerimeter:       40,
		MinArea:            144,
		ApproxEpsilon:      0.05,
		MaxHammingDistance: 3,
		MaxBorderErrors:    2,
		CellSamples:        3,
	}
}

// markerGridCells is the full marker footprint per axis: one border
// cell on each side around the 6x6 payload.
const markerGridCells = 8

// DetectMarkers scans a photograph for dictionary markers. It is a
// pure function of the input pixels and parameters: no I/O, no shared
// state, safe for concurrent use.
func DetectMarkers(img *imageutil.RGBAImage, params DetectorParams) []IdentifiedMarker {
	gray := imageutil.ToGrayscale(img)
	smooth := imageutil.SmoothGray(gray)
	mask := imageutil.ThresholdInv(smooth, imageutil.Otsu(smooth))
	contours := imageutil.FindContours(mask, params.MinPerimeter)

	type candidate struct {
		marker IdentifiedMarker
		area   float64
	}
	var candidates []candidate

	for _, contour := range contours {
		corners, ok := fitQuad(contour, params)
		if !ok {
			continue
		}
		grid, ok := sampleMarkerGrid(gray, corners, params)
		if !ok {
			continue
		}
		id, rotation, distance := matchDictionary(grid)
		if distance > params.MaxHammingDistance {
			continue // false positive, not a dictionary marker
		}
		candidates = append(candidates, candidate{
			marker: IdentifiedMarker{
				ID:      id,
				Corners: canonicalizeCorners(corners, rotation),
			},
			area: math.Abs(imageutil.PolygonArea(corners[:])),
		})
	}

	// A marker's border ring produces two nested quad contours (outer
	// and inner edge of the ring). Keep the largest candidate and drop
	// any candidate nested inside an already accepted one.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	var markers []IdentifiedMarker
	for _, c := range candidates {
		center := quadCenter(c.marker.Corners)
		nested := false
		for _, accepted := range markers {
			if pointInQuad(center, accepted.Corners) {
				nested = true
				break
			}
		}
		if !nested {
			markers = append(markers, c.marker)
		}
	}
	return markers
}

// fitQuad reduces a traced contour to four refined, clockwise corner
// points, rejecting contours that are not approximately convex quads.
func fitQuad(contour []imageutil.Point, params DetectorParams) ([4]imageutil.Point, bool) {
	var corners [4]imageutil.Point

	perimeter := polylineLength(contour)
	approx := imageutil.ApproxPolyDP(contour, params.ApproxEpsilon*perimeter)
	if len(approx) != 4 {
		return corners, false
	}
	imageutil.EnsureClockwise(approx)
	if !imageutil.IsConvex(approx) {
		return corners, false
	}
	if math.Abs(imageutil.PolygonArea(approx)) < params.MinArea {
		return corners, false
	}

	copy(corners[:], approx)
	return refineCorners(contour, corners), true
}

// refineCorners recovers sub-pixel corner positions by fitting a line
// to the contour points along each quad edge and intersecting adjacent
// edge lines. Corner neighborhoods are excluded from the fits because
// binarization rounds them off.
func refineCorners(contour []imageutil.Point, corners [4]imageutil.Point) [4]imageutil.Point {
	var lines [4]imageutil.Line
	var fitted [4]bool

	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		edgeLen := imageutil.Dist(a, b)
		margin := math.Max(2, 0.12*edgeLen)

		var pts []imageutil.Point
		for _, p := range contour {
			if distToEdge(p, a, b) > 1.5 {
				continue
			}
			if imageutil.Dist(p, a) < margin || imageutil.Dist(p, b) < margin {
				continue
			}
			pts = append(pts, p)
		}
		lines[i], fitted[i] = imageutil.FitLine(pts)
	}

	refined := corners
	for i := 0; i < 4; i++ {
		prev := (i + 3) % 4
		if !fitted[prev] || !fitted[i] {
			continue
		}
		p, ok := imageutil.IntersectLines(lines[prev], lines[i])
		// Guard against wild intersections from bad point assignment.
		if ok && imageutil.Dist(p, corners[i]) < 3 {
			refined[i] = p
		}
	}
	return refined
}

// sampleMarkerGrid reads the candidate's cell pattern through a local
// perspective un-warp. Each of the 8x8 cells is averaged over a small
// subsample grid; the cells are then binarized with a threshold from
// their own histogram and the dark border ring is verified. The
// returned grid is the 6x6 payload with light cells as true.
func sampleMarkerGrid(gray *imageutil.GrayImage, corners [4]imageutil.Point, params DetectorParams) (MarkerGrid, bool) {
	var grid MarkerGrid

	n := markerGridCells
	s := float64(n)
	square := [4]imageutil.Point{
		{X: 0, Y: 0}, {X: s, Y: 0}, {X: s, Y: s}, {X: 0, Y: s},
	}
	h, err := EstimateHomography(square, corners)
	if err != nil {
		return grid, false
	}

	samples := params.CellSamples
	if samples < 1 {
		samples = 1
	}

	var means [markerGridCells][markerGridCells]float64
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			var sum float64
			count := 0
			for sy := 0; sy < samples; sy++ {
				for sx := 0; sx < samples; sx++ {
					// Sample within the central 60% of the cell so
					// neighboring cells do not bleed in.
					u := float64(col) + 0.2 + 0.6*(float64(sx)+0.5)/float64(samples)
					v := float64(row) + 0.2 + 0.6*(float64(sy)+0.5)/float64(samples)
					px, py := h.Apply(u, v)
					if val, ok := imageutil.BilinearSampleGray(gray, px, py); ok {
						sum += val
						count++
					}
				}
			}
			if count == 0 {
				return grid, false // candidate extends past the image
			}
			means[row][col] = sum / float64(count)
		}
	}

	// Binarize the 64 cell means against their own Otsu threshold so
	// uneven lighting across the photo does not skew the cells.
	var hist [256]int
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			v := int(math.Round(means[row][col]))
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			hist[v]++
		}
	}
	threshold := float64(imageutil.OtsuHistogram(hist[:]))

	borderErrors := 0
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			light := means[row][col] > threshold
			if row == 0 || row == n-1 || col == 0 || col == n-1 {
				if light {
					borderErrors++
				}
				continue
			}
			grid[row-1][col-1] = light
		}
	}
	if borderErrors > params.MaxBorderErrors {
		return grid, false
	}
	return grid, true
}

// canonicalizeCorners reorders candidate corners so index 0 is the
// marker's canonical top-left. rotation is the number of clockwise
// turns the sampled grid needed to match the dictionary; the corner
// that played "top-left" during sampling sits that many positions
// ahead of the canonical one.
func canonicalizeCorners(corners [4]imageutil.Point, rotation int) [4]imageutil.Point {
	var out [4]imageutil.Point
	for i := 0; i < 4; i++ {
		out[i] = corners[(i+4-rotation)%4]
	}
	return out
}

func polylineLength(pts []imageutil.Point) float64 {
	var sum float64
	for i := range pts {
		sum += imageutil.Dist(pts[i], pts[(i+1)%len(pts)])
	}
	return sum
}

// distToEdge is the perpendicular distance from p to segment a-b.
func distToEdge(p, a, b imageutil.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return imageutil.Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return imageutil.Dist(p, imageutil.Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

func quadCenter(corners [4]imageutil.Point) imageutil.Point {
	var c imageutil.Point
	for _, p := range corners {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= 4
	c.Y /= 4
	return c
}

// pointInQuad reports whether p lies inside a convex clockwise quad.
func pointInQuad(p imageutil.Point, corners [4]imageutil.Point) bool {
	for i := 0; i < 4; i++ {
		a := corners[i]
		b := corners[(i+1)%4]
		cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
		if cross < 0 {
			return false
		}
	}
	return true
}
