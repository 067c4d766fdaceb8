package radarlayout

import (
	"oss.terrastruct.com/techradar/lib/geo"
	"oss.terrastruct.com/techradar/lib/seq"
	"oss.terrastruct.com/techradar/radarconfig"
)

// Placement is where an entry's marker goes, in canvas space, along with the
// polar coordinates it was derived from.
type Placement struct {
	Entry  radarconfig.Entry `json:"entry"`
	Point  *geo.Point        `json:"point"`
	Radius float64           `json:"radius"`
	Angle  float64           `json:"angle"`
}

// UsableBand is the range of radii markers of ring may use: the ring's band
// shrunk by two entry radii on both sides, and kept clear of the center for
// the innermost ring. A band too thin to shrink collapses to its mid radius.
func UsableBand(g *Geometry, ring *Ring) geo.RadiusBand {
	pad := BAND_PADDING_FACTOR * g.EntryRadius
	min := ring.Band.Inner + pad
	if ring.Band.Inner == 0 {
		min = g.CenterClearance + pad
	}
	max := ring.Band.Outer - pad
	if min > max {
		mid := ring.Band.Mid()
		return geo.NewRadiusBand(mid, mid)
	}
	return geo.NewRadiusBand(min, max)
}

// PlaceEntries picks a position for each of the cell's entries. The segment's
// span is cut into one slot per entry and entry i lands inside slot i, which
// keeps markers of the same cell from piling up. Radii and offsets within a
// slot come from streams seeded by the cell's labels, so a cell lays out the
// same way on every pass regardless of what surrounds it.
func PlaceEntries(g *Geometry, c *Cell) []Placement {
	k := len(c.Entries)
	if k == 0 {
		return nil
	}

	band := UsableBand(g, c.Ring)
	radii := seq.New(seq.Hash(c.Segment.Label, c.Ring.Label, radiusStream), band.Inner, band.Outer)
	jitter := seq.New(seq.Hash(c.Segment.Label, c.Ring.Label, angleStream), 0, 1)

	placements := make([]Placement, 0, k)
	for j, e := range c.Entries {
		slot := c.Segment.Span.Slot(j, k)
		radius := radii.Next()
		angle := slot.At(jitter.Next())
		placements = append(placements, Placement{
			Entry:  e,
			Point:  geo.Polar(radius, angle, g.Center),
			Radius: radius,
			Angle:  angle,
		})
	}
	return placements
}
