// Package radarexporter turns a laid out radar into its drawable form.
package radarexporter

import (
	"context"

	"cdr.dev/slog"

	"oss.terrastruct.com/techradar/lib/color"
	"oss.terrastruct.com/techradar/lib/geo"
	"oss.terrastruct.com/techradar/lib/log"
	"oss.terrastruct.com/techradar/lib/svg"
	"oss.terrastruct.com/techradar/radarconfig"
	"oss.terrastruct.com/techradar/radarlayout"
	"oss.terrastruct.com/techradar/radartarget"
)

func Export(ctx context.Context, r *radarlayout.Radar, cfg *radarconfig.Config) (*radartarget.Radar, error) {
	g := r.Geometry
	out := &radartarget.Radar{
		Radius: g.Radius,
		Center: *g.Center,
	}
	segmentLabels := cfg != nil && cfg.SegmentLabels
	if segmentLabels {
		out.LabelMargin = 2 * g.SegmentLabelOffset
	}

	out.Segments = make([]radartarget.SegmentGroup, 0, len(r.Segments))
	for _, s := range r.Segments {
		sg := radartarget.SegmentGroup{
			Label:     s.Label,
			ClassName: radartarget.ClassName(s.ClassName, s.Label),
			Color:     s.Color,
			FontColor: s.FontColor,
			Span:      s.Span,
		}
		if segmentLabels {
			curve, err := segmentCurve(g, s)
			if err != nil {
				return nil, err
			}
			sg.Curve = curve
		}
		out.Segments = append(out.Segments, sg)
	}

	markers := 0
	for _, c := range r.PaintOrder() {
		rg, err := ringGroup(g, c)
		if err != nil {
			return nil, err
		}
		markers += len(rg.Markers)
		sg := &out.Segments[c.Segment.Index]
		sg.Rings = append(sg.Rings, rg)
	}

	log.Debug(ctx, "exported radar", slog.F("segments", len(out.Segments)), slog.F("markers", markers))
	return out, nil
}

func ringGroup(g *radarlayout.Geometry, c *radarlayout.Cell) (radartarget.RingGroup, error) {
	span := c.Segment.Span
	wedge, err := svg.WedgePath(g.Center, c.Ring.Radius(), span.Start, span.End)
	if err != nil {
		return radartarget.RingGroup{}, geometryError(err)
	}
	curve, err := ringCurve(g, c)
	if err != nil {
		return radartarget.RingGroup{}, err
	}

	rg := radartarget.RingGroup{
		Label:     c.Ring.Label,
		ClassName: radartarget.ClassName(c.Ring.ClassName, c.Ring.Label),
		Color:     c.Ring.Color,
		Stroke:    c.Ring.Stroke,
		Radius:    c.Ring.Radius(),
		Wedge:     wedge,
		Curve:     *curve,
		Markers:   make([]radartarget.Marker, 0, len(c.Placements)),
	}
	for _, p := range c.Placements {
		rg.Markers = append(rg.Markers, toMarker(g, c.Segment, p))
	}
	return rg, nil
}

// The label runs through the middle of the ring. Its ID is made of the labels
// and the curve's control and end points, which is unique per cell.
func ringCurve(g *radarlayout.Geometry, c *radarlayout.Cell) (*radartarget.CurvedLabel, error) {
	span := c.Segment.Span
	curves, err := geo.ArcBeziers(g.Center, c.Ring.MidRadius(), span.Start, span.End)
	if err != nil {
		return nil, geometryError(err)
	}
	pc := svg.NewSVGPathContext()
	pc.Curves(curves)

	first, last := curves[0], curves[len(curves)-1]
	return &radartarget.CurvedLabel{
		ID:       c.Segment.Label + c.Ring.Label + first[1].Format() + last[3].Format(),
		Text:     c.Ring.Label,
		PathData: pc.PathData(),
	}, nil
}

func segmentCurve(g *radarlayout.Geometry, s *radarlayout.Segment) (*radartarget.CurvedLabel, error) {
	curves, err := geo.ArcBeziers(g.Center, g.Radius+g.SegmentLabelOffset, s.Span.Start, s.Span.End)
	if err != nil {
		return nil, geometryError(err)
	}
	pc := svg.NewSVGPathContext()
	pc.Curves(curves)

	first, last := curves[0], curves[len(curves)-1]
	return &radartarget.CurvedLabel{
		ID:       s.Label + first[1].Format() + last[3].Format(),
		Text:     s.Label,
		PathData: pc.PathData(),
		Color:    s.Color,
	}, nil
}

func toMarker(g *radarlayout.Geometry, s *radarlayout.Segment, p radarlayout.Placement) radartarget.Marker {
	return radartarget.Marker{
		Key:       radartarget.MarkerKey(p.Entry.Label, p.Point),
		Label:     p.Entry.Label,
		Title:     p.Entry.Title,
		Link:      p.Entry.Link,
		Point:     *p.Point,
		Radius:    g.EntryRadius,
		Color:     s.Color,
		Stroke:    markerStroke(s.Color),
		FontColor: s.FontColor,
		IsNew:     p.Entry.IsNew,
		Moved:     int(p.Entry.Moved),
	}
}

// markerStroke outlines a marker one shade darker than its fill. Fills that
// cannot be darkened, such as none, get no outline.
func markerStroke(fill string) string {
	stroke, err := color.Darken(fill)
	if err != nil {
		return ""
	}
	return stroke
}

func geometryError(err error) error {
	return radarconfig.Errorf(radarconfig.ErrInvalidGeometry, "%v", err)
}
