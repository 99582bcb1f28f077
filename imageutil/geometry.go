package imageutil

import "math"

// Point is a 2D point in image space with sub-pixel precision.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PolygonArea returns the signed shoelace area of a closed polygon.
// In image coordinates (y grows downward) a visually clockwise polygon
// has positive area.
func PolygonArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// IsConvex reports whether a closed polygon is convex. Collinear runs
// of vertices are tolerated; a self-intersecting polygon is not convex.
func IsConvex(pts []Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		c := pts[(i+2)%n]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		switch {
		case cross > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cross < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// EnsureClockwise reorders a polygon in place so that it winds
// clockwise in image coordinates (positive shoelace area).
func EnsureClockwise(pts []Point) {
	if PolygonArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
}

// ApproxPolyDP simplifies a closed curve with the Douglas-Peucker
// algorithm. epsilon is the maximum allowed deviation of dropped
// points from the simplified outline, in pixels.
func ApproxPolyDP(pts []Point, epsilon float64) []Point {
	n := len(pts)
	if n < 3 {
		return append([]Point(nil), pts...)
	}

	// For a closed curve, split it at the two points farthest apart
	// and simplify each half; this avoids degenerate anchors.
	far := 0
	maxD := -1.0
	for i := 1; i < n; i++ {
		if d := Dist(pts[0], pts[i]); d > maxD {
			maxD = d
			far = i
		}
	}

	first := append([]Point(nil), pts[:far+1]...)
	second := append(append([]Point(nil), pts[far:]...), pts[0])

	simplified := simplifyDP(first, epsilon)
	tail := simplifyDP(second, epsilon)
	// Drop the shared endpoints when joining the halves.
	if len(tail) > 2 {
		simplified = append(simplified, tail[1:len(tail)-1]...)
	}
	return simplified
}

func simplifyDP(pts []Point, epsilon float64) []Point {
	if len(pts) <= 2 {
		return append([]Point(nil), pts...)
	}
	a, b := pts[0], pts[len(pts)-1]
	idx := -1
	maxD := epsilon
	for i := 1; i < len(pts)-1; i++ {
		if d := distToSegment(pts[i], a, b); d > maxD {
			maxD = d
			idx = i
		}
	}
	if idx < 0 {
		return []Point{a, b}
	}
	left := simplifyDP(pts[:idx+1], epsilon)
	right := simplifyDP(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// distToSegment returns the distance from p to the segment a-b.
func distToSegment(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return Dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return Dist(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// Line is an infinite 2D line in point-direction form.
type Line struct {
	Origin Point
	Dir    Point // unit direction
}

// FitLine fits a total-least-squares line through the given points
// using the principal axis of their covariance. It reports false when
// the points are too few or coincident.
func FitLine(pts []Point) (Line, bool) {
	if len(pts) < 2 {
		return Line{}, false
	}
	var mx, my float64
	for _, p := range pts {
		mx += p.X
		my += p.Y
	}
	mx /= float64(len(pts))
	my /= float64(len(pts))

	var sxx, sxy, syy float64
	for _, p := range pts {
		dx, dy := p.X-mx, p.Y-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 && syy == 0 {
		return Line{}, false
	}

	// Principal eigenvector of the 2x2 covariance matrix.
	theta := 0.5 * math.Atan2(2*sxy, sxx-syy)
	dir := Point{X: math.Cos(theta), Y: math.Sin(theta)}
	return Line{Origin: Point{X: mx, Y: my}, Dir: dir}, true
}

// IntersectLines returns the intersection of two lines, reporting
// false when they are (near-)parallel.
func IntersectLines(l1, l2 Line) (Point, bool) {
	denom := l1.Dir.X*l2.Dir.Y - l1.Dir.Y*l2.Dir.X
	if math.Abs(denom) < 1e-9 {
		return Point{}, false
	}
	dx := l2.Origin.X - l1.Origin.X
	dy := l2.Origin.Y - l1.Origin.Y
	t := (dx*l2.Dir.Y - dy*l2.Dir.X) / denom
	return Point{
		X: l1.Origin.X + t*l1.Dir.X,
		Y: l1.Origin.Y + t*l1.Dir.Y,
	}, true
}
