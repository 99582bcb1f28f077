package texturize

import (
	"errors"
	"fmt"
	"math"

	"github.com/paperview/texturize/imageutil"
)

// Quad is an ordered source quadrilateral in photograph pixel space.
// The cyclic order TopLeft, TopRight, BottomRight, BottomLeft is load
// bearing: the rectifier maps these onto the target square's corners
// in the same order.
type Quad struct {
	TopLeft     imageutil.Point
	TopRight    imageutil.Point
	BottomRight imageutil.Point
	BottomLeft  imageutil.Point
}

// ErrIncompleteMarkerSet is returned when the four expected marker IDs
// are not all present in a detection result. There is no partial
// rectification: one missing corner invalidates the whole set.
var ErrIncompleteMarkerSet = errors.New("incomplete marker set")

// Template corner roles, assigned by marker ID offset from the base.
const (
	roleTopLeft = iota
	roleTopRight
	roleBottomRight
	roleBottomLeft
)

// ResolveTemplateCorners turns four identified markers into the source
// quadrilateral for rectification. The marker with ID base+i holds the
// template role i (top-left, top-right, bottom-right, bottom-left).
// For each role the marker's own corner farthest from the marker-set
// centroid is chosen: the true template corner lies at the marker's
// outer corner, not its centroid, and the farthest-corner rule keeps
// that choice correct under any in-plane rotation of the template.
func ResolveTemplateCorners(markers []IdentifiedMarker, base int) (Quad, error) {
	var byRole [4]*IdentifiedMarker
	for i := range markers {
		offset := markers[i].ID - base
		if offset < 0 || offset > 3 {
			continue
		}
		if byRole[offset] != nil {
			return Quad{}, fmt.Errorf("%w: duplicate marker id %d", ErrIncompleteMarkerSet, markers[i].ID)
		}
		byRole[offset] = &markers[i]
	}
	for role, m := range byRole {
		if m == nil {
			return Quad{}, fmt.Errorf("%w: marker id %d not found", ErrIncompleteMarkerSet, base+role)
		}
	}

	var centroid imageutil.Point
	for _, m := range byRole {
		for _, p := range m.Corners {
			centroid.X += p.X
			centroid.Y += p.Y
		}
	}
	centroid.X /= 16
	centroid.Y /= 16

	var outer [4]imageutil.Point
	for role, m := range byRole {
		best := m.Corners[0]
		bestDist := imageutil.Dist(best, centroid)
		for _, p := range m.Corners[1:] {
			if d := imageutil.Dist(p, centroid); d > bestDist {
				best, bestDist = p, d
			}
		}
		outer[role] = best
	}

	if err := validateQuad(outer); err != nil {
		return Quad{}, err
	}
	return Quad{
		TopLeft:     outer[roleTopLeft],
		TopRight:    outer[roleTopRight],
		BottomRight: outer[roleBottomRight],
		BottomLeft:  outer[roleBottomLeft],
	}, nil
}

// validateQuad rejects self-intersecting or near-zero-area corner
// resolutions; silently rectifying through such a quad would produce a
// garbage transform rather than a visible failure.
func validateQuad(corners [4]imageutil.Point) error {
	if !imageutil.IsConvex(corners[:]) {
		return fmt.Errorf("%w: self-intersecting corner quadrilateral", ErrDegenerateQuad)
	}
	if math.Abs(imageutil.PolygonArea(corners[:])) < 1 {
		return fmt.Errorf("%w: near-zero quadrilateral area", ErrDegenerateQuad)
	}
	// Template roles run clockwise; a counter-clockwise resolution
	// means the photograph is mirrored or the roles crossed over.
	if imageutil.PolygonArea(corners[:]) < 0 {
		return fmt.Errorf("%w: corner roles resolve counter-clockwise", ErrDegenerateQuad)
	}
	return nil
}
