package geo

import (
	"errors"
	"fmt"
	"math"
)

// arcOffsetFactor approximates circular arcs better than the textbook 4/3 for
// the wide arcs a radar uses (a quarter circle or more).
// source: https://stackoverflow.com/questions/1734745
const arcOffsetFactor = 1.317

// maxArcSpan is the widest arc drawn with a single cubic curve. Wider arcs are
// split into equal pieces.
const maxArcSpan = math.Pi

var ErrInvalidArc = errors.New("invalid arc")

// ArcControl returns the polar position of the control points of a cubic
// curve approximating a circular arc of radius over [start, end]: the control
// radius, and the angle by which each control point is moved from its end
// point towards the middle of the arc.
//
//	       offset
//	point ______________ control
//	      |            /
//	      |           /
//	      |          /
//	      |         / controlRadius
//	radius|        /
//	      |       /
//	      |–––––  /
//	      | angle/
//	      |     /
//	      |    /
//	      |   /
//	      |  /
//	      | /
//	      |/
//
// The angle is tan(offset/controlRadius) rather than atan of it. Rendered
// radars depend on that curvature, so it stays.
func ArcControl(radius, start, end float64) (controlRadius, controlAngle float64) {
	// How many arcs of this width make a full circle.
	n := FullCircle / (end - start)
	offset := arcOffsetFactor * math.Tan(math.Pi/(n*2)) * radius
	controlRadius = math.Sqrt(offset*offset + radius*radius)
	controlAngle = math.Tan(offset / controlRadius)
	return controlRadius, controlAngle
}

// ArcBezier returns [start point, start control, end control, end point] of a
// cubic curve approximating the arc of radius around center from start to end.
func ArcBezier(center *Point, radius, start, end float64) ([4]*Point, error) {
	if err := validateArc(center, radius, start, end); err != nil {
		return [4]*Point{}, err
	}
	controlRadius, controlAngle := ArcControl(radius, start, end)
	return [4]*Point{
		Polar(radius, start, center),
		Polar(controlRadius, start+controlAngle, center),
		Polar(controlRadius, end-controlAngle, center),
		Polar(radius, end, center),
	}, nil
}

// ArcBeziers is ArcBezier for arcs of any width up to a full circle. Arcs no
// wider than a half circle yield exactly the curve ArcBezier does; wider arcs
// are split into equal pieces, each drawn with the same construction.
func ArcBeziers(center *Point, radius, start, end float64) ([][4]*Point, error) {
	if err := validateArc(center, radius, start, end); err != nil {
		return nil, err
	}
	pieces := int(math.Ceil((end - start) / maxArcSpan))
	if pieces < 1 {
		pieces = 1
	}
	span := NewAngleSpan(start, end)
	curves := make([][4]*Point, 0, pieces)
	for i := 0; i < pieces; i++ {
		piece := span.Slot(i, pieces)
		if i == pieces-1 {
			piece.End = end
		}
		c, err := ArcBezier(center, radius, piece.Start, piece.End)
		if err != nil {
			return nil, err
		}
		curves = append(curves, c)
	}
	return curves, nil
}

func validateArc(center *Point, radius, start, end float64) error {
	switch {
	case center == nil || !center.IsFinite():
		return fmt.Errorf("%w: center %v is not finite", ErrInvalidArc, center.ToString())
	case !isFinite(radius) || radius < 0:
		return fmt.Errorf("%w: radius %v must be finite and non-negative", ErrInvalidArc, radius)
	case !isFinite(start) || !isFinite(end):
		return fmt.Errorf("%w: angles %v and %v must be finite", ErrInvalidArc, start, end)
	case end <= start:
		return fmt.Errorf("%w: end angle %v must be greater than start angle %v", ErrInvalidArc, end, start)
	case end-start > FullCircle+1e-9:
		return fmt.Errorf("%w: span %v exceeds a full circle", ErrInvalidArc, end-start)
	}
	return nil
}
