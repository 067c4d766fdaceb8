package radarlayout

import (
	"math"

	"oss.terrastruct.com/techradar/lib/geo"
	"oss.terrastruct.com/techradar/radarconfig"
)

type GeometryOptions struct {
	Radius             *float64
	EntryRadius        *float64
	CenterClearance    *float64
	SegmentLabelOffset *float64
}

// Geometry is the fixed frame every layout pass works in: a square canvas of
// side 2*Radius with the radar centered on it.
type Geometry struct {
	Radius             float64    `json:"radius"`
	Center             *geo.Point `json:"center"`
	Area               float64    `json:"area"`
	EntryRadius        float64    `json:"entryRadius"`
	CenterClearance    float64    `json:"centerClearance"`
	SegmentLabelOffset float64    `json:"segmentLabelOffset"`
}

func NewGeometry(opts *GeometryOptions) (*Geometry, error) {
	if opts == nil {
		opts = &GeometryOptions{}
	}
	g := &Geometry{
		Radius:             valueOr(opts.Radius, DEFAULT_RADIUS),
		EntryRadius:        valueOr(opts.EntryRadius, DEFAULT_ENTRY_RADIUS),
		CenterClearance:    valueOr(opts.CenterClearance, DEFAULT_CENTER_CLEARANCE),
		SegmentLabelOffset: valueOr(opts.SegmentLabelOffset, DEFAULT_SEGMENT_LABEL_OFFSET),
	}

	checks := []struct {
		name     string
		v        float64
		positive bool
	}{
		{"radius", g.Radius, true},
		{"entryRadius", g.EntryRadius, true},
		{"centerClearance", g.CenterClearance, false},
		{"segmentLabelOffset", g.SegmentLabelOffset, false},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || c.v < 0 || (c.positive && c.v == 0) {
			return nil, radarconfig.Errorf(radarconfig.ErrInvalidGeometry, "%s must be a finite positive number, got %v", c.name, c.v)
		}
	}

	g.Center = geo.NewPoint(g.Radius, g.Radius)
	g.Area = math.Pi * g.Radius * g.Radius
	return g, nil
}

// GeometryFromConfig is NewGeometry with the sizes set in cfg.
func GeometryFromConfig(cfg *radarconfig.Config) (*Geometry, error) {
	return NewGeometry(&GeometryOptions{
		Radius:      cfg.Radius,
		EntryRadius: cfg.EntryRadius,
	})
}

// Width is the side of the square canvas.
func (g *Geometry) Width() float64 {
	return 2 * g.Radius
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
