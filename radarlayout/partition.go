package radarlayout

import (
	"math"

	"oss.terrastruct.com/techradar/lib/geo"
	"oss.terrastruct.com/techradar/radarconfig"
)

// Segment is an angular slice of the radar.
type Segment struct {
	radarconfig.Segment
	Index int           `json:"index"`
	Span  geo.AngleSpan `json:"span"`
}

// Ring is an annulus of the radar. Every ring covers the same area.
type Ring struct {
	radarconfig.Ring
	Index int            `json:"index"`
	Band  geo.RadiusBand `json:"band"`
}

// Radius is the ring's outer radius.
func (r *Ring) Radius() float64 {
	return r.Band.Outer
}

// MidRadius is where the ring's label runs.
func (r *Ring) MidRadius() float64 {
	return r.Band.Mid()
}

// Cell is the intersection of one segment with one ring.
type Cell struct {
	Segment    *Segment            `json:"segment"`
	Ring       *Ring               `json:"ring"`
	Entries    []radarconfig.Entry `json:"entries"`
	Placements []Placement         `json:"placements"`
}

// LayoutSegments divides the full circle evenly between segments, in order,
// starting at 12 o'clock. Labels must be unique.
func LayoutSegments(g *Geometry, segments []radarconfig.Segment) ([]*Segment, error) {
	if len(segments) == 0 {
		return nil, radarconfig.Errorf(radarconfig.ErrInvalidConfiguration, "at least one segment is required")
	}
	width := geo.FullCircle / float64(len(segments))
	out := make([]*Segment, 0, len(segments))
	seen := make(map[string]struct{}, len(segments))
	for i, s := range segments {
		if _, ok := seen[s.Label]; ok {
			return nil, radarconfig.Errorf(radarconfig.ErrInvalidConfiguration, "duplicate segment %q", s.Label)
		}
		seen[s.Label] = struct{}{}
		span := geo.NewAngleSpan(float64(i)*width, float64(i+1)*width)
		if i == len(segments)-1 {
			span.End = geo.FullCircle
		}
		out = append(out, &Segment{
			Segment: s,
			Index:   i,
			Span:    span,
		})
	}
	return out, nil
}

// LayoutRings gives ring i the disc of area (i+1)/M of the radar, minus the
// rings inside it. Labels must be unique.
func LayoutRings(g *Geometry, rings []radarconfig.Ring) ([]*Ring, error) {
	if len(rings) == 0 {
		return nil, radarconfig.Errorf(radarconfig.ErrInvalidConfiguration, "at least one ring is required")
	}
	m := float64(len(rings))
	out := make([]*Ring, 0, len(rings))
	inner := 0.
	seen := make(map[string]struct{}, len(rings))
	for i, r := range rings {
		if _, ok := seen[r.Label]; ok {
			return nil, radarconfig.Errorf(radarconfig.ErrInvalidConfiguration, "duplicate ring %q", r.Label)
		}
		seen[r.Label] = struct{}{}
		area := float64(i+1) / m * g.Area
		outer := math.Sqrt(area / math.Pi)
		if i == len(rings)-1 {
			outer = g.Radius
		}
		out = append(out, &Ring{
			Ring:  r,
			Index: i,
			Band:  geo.NewRadiusBand(inner, outer),
		})
		inner = outer
	}
	return out, nil
}

// LayoutCells pairs every segment with every ring, segment-major, and hands
// each cell the entries naming both. Cells without entries are kept. Entries
// naming an unknown segment or ring end up in no cell. Segment and ring labels
// are expected to be unique, as LayoutSegments and LayoutRings enforce.
func LayoutCells(segments []*Segment, rings []*Ring, entries []radarconfig.Entry) []*Cell {
	type key struct {
		segment string
		ring    string
	}
	cells := make([]*Cell, 0, len(segments)*len(rings))
	byKey := make(map[key]*Cell, len(segments)*len(rings))
	for _, s := range segments {
		for _, r := range rings {
			c := &Cell{
				Segment: s,
				Ring:    r,
			}
			cells = append(cells, c)
			byKey[key{s.Label, r.Label}] = c
		}
	}
	for _, e := range entries {
		if c, ok := byKey[key{e.Segment, e.Ring}]; ok {
			c.Entries = append(c.Entries, e)
		}
	}
	return cells
}
