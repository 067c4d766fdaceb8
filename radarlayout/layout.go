// Package radarlayout computes the geometry of a technology radar: the angular
// span of each segment, the equal-area bands of the rings and where each entry
// sits within its cell.
//
// Layout is pure. The same config always yields the same radar, down to the
// pixel, and nothing is shared between passes.
package radarlayout

import (
	"context"
	"sort"

	"cdr.dev/slog"

	"oss.terrastruct.com/techradar/lib/log"
	"oss.terrastruct.com/techradar/radarconfig"
)

type Radar struct {
	Geometry *Geometry  `json:"geometry"`
	Segments []*Segment `json:"segments"`
	Rings    []*Ring    `json:"rings"`
	// Cells in segment-major, ring-minor order.
	Cells []*Cell `json:"cells"`
	// Entries that named a segment or ring the radar doesn't have.
	Dropped []radarconfig.Entry `json:"dropped,omitempty"`
}

// Layout lays out cfg within g. cfg is used as given, so apply
// radarconfig.Config.WithDefaults first if defaults are wanted.
func Layout(ctx context.Context, g *Geometry, cfg *radarconfig.Config) (*Radar, error) {
	segments, err := LayoutSegments(g, cfg.Segments)
	if err != nil {
		return nil, err
	}
	rings, err := LayoutRings(g, cfg.Rings)
	if err != nil {
		return nil, err
	}

	r := &Radar{
		Geometry: g,
		Segments: segments,
		Rings:    rings,
		Cells:    LayoutCells(segments, rings, cfg.Entries),
		Dropped:  cfg.Dangling(),
	}
	for _, e := range r.Dropped {
		log.Warn(ctx, "dropping entry with unknown segment or ring",
			slog.F("entry", e.Label),
			slog.F("segment", e.Segment),
			slog.F("ring", e.Ring),
		)
	}

	placed := 0
	for _, c := range r.Cells {
		c.Placements = PlaceEntries(g, c)
		placed += len(c.Placements)
	}

	log.Debug(ctx, "laid out radar",
		slog.F("segments", len(segments)),
		slog.F("rings", len(rings)),
		slog.F("cells", len(r.Cells)),
		slog.F("placed", placed),
		slog.F("dropped", len(r.Dropped)),
	)
	return r, nil
}

// PaintOrder returns the cells in the order they must be painted: segment by
// segment, and within a segment from the outermost ring in. Wedges are drawn
// as full pie slices, so each inner ring covers the middle of the one before
// it.
func (r *Radar) PaintOrder() []*Cell {
	cells := make([]*Cell, len(r.Cells))
	copy(cells, r.Cells)
	sort.SliceStable(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.Segment.Index != b.Segment.Index {
			return a.Segment.Index < b.Segment.Index
		}
		return a.Ring.Radius() > b.Ring.Radius()
	})
	return cells
}
