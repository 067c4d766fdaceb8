package radarlayout_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"oss.terrastruct.com/xrand"

	"oss.terrastruct.com/techradar/lib/geo"
	"oss.terrastruct.com/techradar/lib/go2"
	"oss.terrastruct.com/techradar/lib/log"
	"oss.terrastruct.com/techradar/radarconfig"
	"oss.terrastruct.com/techradar/radarlayout"
)

func defaultConfig(t *testing.T, entries ...radarconfig.Entry) *radarconfig.Config {
	cfg, err := (&radarconfig.Config{Entries: entries}).WithDefaults()
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func mustGeometry(t *testing.T, opts *radarlayout.GeometryOptions) *radarlayout.Geometry {
	g, err := radarlayout.NewGeometry(opts)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func segments(n int) []radarconfig.Segment {
	out := make([]radarconfig.Segment, n)
	for i := range out {
		out[i] = radarconfig.Segment{Label: fmt.Sprintf("s%d", i)}
	}
	return out
}

func rings(n int) []radarconfig.Ring {
	out := make([]radarconfig.Ring, n)
	for i := range out {
		out[i] = radarconfig.Ring{Label: fmt.Sprintf("r%d", i)}
	}
	return out
}

func TestNewGeometry(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, nil)
	assert.Equal(t, 500.0, g.Radius)
	assert.Equal(t, 10.0, g.EntryRadius)
	assert.Equal(t, 150.0, g.CenterClearance)
	assert.Equal(t, 20.0, g.SegmentLabelOffset)
	assert.Equal(t, geo.NewPoint(500, 500), g.Center)
	assert.InDelta(t, math.Pi*500*500, g.Area, 1e-6)
	assert.Equal(t, 1000.0, g.Width())

	testCases := []struct {
		name string
		opts radarlayout.GeometryOptions
	}{
		{"nan_entry_radius", radarlayout.GeometryOptions{EntryRadius: go2.Pointer(math.NaN())}},
		{"zero_entry_radius", radarlayout.GeometryOptions{EntryRadius: go2.Pointer(0.)}},
		{"negative_radius", radarlayout.GeometryOptions{Radius: go2.Pointer(-500.)}},
		{"inf_radius", radarlayout.GeometryOptions{Radius: go2.Pointer(math.Inf(1))}},
		{"negative_clearance", radarlayout.GeometryOptions{CenterClearance: go2.Pointer(-1.)}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := radarlayout.NewGeometry(&tc.opts)
			assert.True(t, errors.Is(err, radarconfig.ErrInvalidGeometry), fmt.Sprint(err))
		})
	}
}

func TestLayoutSegments(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, nil)
	for n := 1; n <= 9; n++ {
		segs, err := radarlayout.LayoutSegments(g, segments(n))
		if !assert.Nil(t, err) {
			return
		}
		assert.Len(t, segs, n)
		assert.Equal(t, 0.0, segs[0].Span.Start)
		assert.Equal(t, geo.FullCircle, segs[n-1].Span.End)
		for i, s := range segs {
			assert.Equal(t, i, s.Index)
			assert.InDelta(t, geo.FullCircle/float64(n), s.Span.Width(), 1e-12)
			if i > 0 {
				assert.Equal(t, segs[i-1].Span.End, s.Span.Start, "spans must tile without gaps")
			}
		}
	}

	_, err := radarlayout.LayoutSegments(g, []radarconfig.Segment{})
	assert.True(t, errors.Is(err, radarconfig.ErrInvalidConfiguration))
	_, err = radarlayout.LayoutSegments(g, nil)
	assert.True(t, errors.Is(err, radarconfig.ErrInvalidConfiguration))
}

func TestLayoutRings(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, nil)

	rs, err := radarlayout.LayoutRings(g, rings(4))
	if !assert.Nil(t, err) {
		return
	}
	exp := []float64{250, 353.5533905932738, 433.0127018922193, 500}
	for i, r := range rs {
		assert.InDelta(t, exp[i], r.Radius(), 1e-9)
	}
	assert.InDelta(t, 125, rs[0].MidRadius(), 1e-9)
	assert.InDelta(t, 301.7766952966369, rs[1].MidRadius(), 1e-9)

	for m := 1; m <= 8; m++ {
		rs, err := radarlayout.LayoutRings(g, rings(m))
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, 0.0, rs[0].Band.Inner)
		assert.Equal(t, g.Radius, rs[m-1].Band.Outer)
		for i, r := range rs {
			assert.InDelta(t, g.Area/float64(m), r.Band.Area(), g.Area*1e-9, "ring %d of %d", i, m)
			if i > 0 {
				assert.Equal(t, rs[i-1].Band.Outer, r.Band.Inner)
			}
		}
	}

	_, err = radarlayout.LayoutRings(g, []radarconfig.Ring{})
	assert.True(t, errors.Is(err, radarconfig.ErrInvalidConfiguration))
}

func TestLayoutRejectsDuplicateLabels(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, nil)
	_, err := radarlayout.LayoutSegments(g, []radarconfig.Segment{{Label: "Tools"}, {Label: "Tools"}})
	assert.True(t, errors.Is(err, radarconfig.ErrInvalidConfiguration))
	_, err = radarlayout.LayoutRings(g, []radarconfig.Ring{{Label: "Adopt"}, {Label: "Hold"}, {Label: "Adopt"}})
	assert.True(t, errors.Is(err, radarconfig.ErrInvalidConfiguration))

	// Layout is reachable without Validate having run.
	cfg := &radarconfig.Config{
		Segments: []radarconfig.Segment{{Label: "Tools"}, {Label: "Tools"}},
		Rings:    rings(2),
		Entries:  []radarconfig.Entry{{Label: "a", Segment: "Tools", Ring: "r0"}},
	}
	_, err = radarlayout.Layout(log.Discard(context.Background()), g, cfg)
	assert.True(t, errors.Is(err, radarconfig.ErrInvalidConfiguration))
}

func TestLayoutCells(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, nil)
	segs, _ := radarlayout.LayoutSegments(g, segments(2))
	rs, _ := radarlayout.LayoutRings(g, rings(4))

	cells := radarlayout.LayoutCells(segs, rs, []radarconfig.Entry{
		{Label: "a", Segment: "s1", Ring: "r2"},
		{Label: "b", Segment: "s1", Ring: "nope"},
		{Label: "c", Segment: "s1", Ring: "r2"},
	})
	if !assert.Len(t, cells, 8) {
		return
	}
	for i, c := range cells {
		assert.Equal(t, i/4, c.Segment.Index)
		assert.Equal(t, i%4, c.Ring.Index)
		if i == 6 {
			if assert.Len(t, c.Entries, 2) {
				assert.Equal(t, "a", c.Entries[0].Label)
				assert.Equal(t, "c", c.Entries[1].Label)
			}
		} else {
			assert.Len(t, c.Entries, 0)
		}
	}

	empty := radarlayout.LayoutCells(segs, rs, nil)
	assert.Len(t, empty, 8)
}

func TestPlaceEntriesInnermost(t *testing.T) {
	t.Parallel()

	var entries []radarconfig.Entry
	for i := 0; i < 7; i++ {
		entries = append(entries, radarconfig.Entry{Label: fmt.Sprint(i), Segment: "Techniques", Ring: "Adopt"})
	}

	ctx := log.WithTB(context.Background(), t, nil)
	r, err := radarlayout.Layout(ctx, mustGeometry(t, nil), defaultConfig(t, entries...))
	if !assert.Nil(t, err) {
		return
	}

	c := r.Cells[0]
	assert.Equal(t, "Techniques", c.Segment.Label)
	assert.Equal(t, "Adopt", c.Ring.Label)
	band := radarlayout.UsableBand(r.Geometry, c.Ring)
	assert.InDelta(t, 170, band.Inner, 1e-9)
	assert.InDelta(t, 230, band.Outer, 1e-9)
	if !assert.Len(t, c.Placements, 7) {
		return
	}
	slotWidth := math.Pi / 2 / 7
	for j, p := range c.Placements {
		assert.Equal(t, fmt.Sprint(j), p.Entry.Label, "placements keep entry order")
		assert.True(t, p.Angle >= 0 && p.Angle < math.Pi/2, "angle %v", p.Angle)
		assert.True(t, p.Angle > float64(j)*slotWidth && p.Angle < float64(j+1)*slotWidth, "entry %d outside its slot: %v", j, p.Angle)
		assert.True(t, band.Contains(p.Radius), "radius %v", p.Radius)
		assert.Equal(t, geo.Polar(p.Radius, p.Angle, r.Geometry.Center), p.Point)
	}
}

func TestPlacementsStayInCells(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		nSegments := 1 + i%6
		nRings := 1 + (i/2)%5

		cfg := &radarconfig.Config{}
		for j := 0; j < nSegments; j++ {
			cfg.Segments = append(cfg.Segments, radarconfig.Segment{Label: fmt.Sprintf("%d-%s", j, xrand.String(8, nil))})
		}
		for j := 0; j < nRings; j++ {
			cfg.Rings = append(cfg.Rings, radarconfig.Ring{Label: fmt.Sprintf("%d-%s", j, xrand.String(8, nil))})
		}
		for j := 0; j < 40; j++ {
			cfg.Entries = append(cfg.Entries, radarconfig.Entry{
				Label:   xrand.String(4, nil),
				Segment: cfg.Segments[(j*7)%nSegments].Label,
				Ring:    cfg.Rings[(j*3)%nRings].Label,
			})
		}

		g := mustGeometry(t, nil)
		r, err := radarlayout.Layout(log.Discard(context.Background()), g, cfg)
		if !assert.Nil(t, err) {
			return
		}

		placed := 0
		for _, c := range r.Cells {
			band := radarlayout.UsableBand(g, c.Ring)
			for _, p := range c.Placements {
				placed++
				assert.True(t, c.Segment.Span.Contains(p.Angle), "angle %v outside %v", p.Angle, c.Segment.Span)
				assert.True(t, band.Contains(p.Radius), "radius %v outside %v", p.Radius, band)
				assert.True(t, c.Ring.Band.Contains(p.Radius))
				assert.True(t, p.Point.IsFinite())
			}
		}
		assert.Equal(t, len(cfg.Entries), placed)
	}
}

func TestUnknownReferencesDropped(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig(t,
		radarconfig.Entry{Label: "kept", Segment: "Tools", Ring: "Trial"},
		radarconfig.Entry{Label: "unknown ring", Segment: "Tools", Ring: "Nope"},
		radarconfig.Entry{Label: "unknown segment", Segment: "Nope", Ring: "Trial"},
	)
	r, err := radarlayout.Layout(log.Discard(context.Background()), mustGeometry(t, nil), cfg)
	if !assert.Nil(t, err) {
		return
	}

	placed := 0
	for _, c := range r.Cells {
		placed += len(c.Placements)
	}
	assert.Equal(t, 1, placed)
	if assert.Len(t, r.Dropped, 2) {
		assert.Equal(t, "unknown ring", r.Dropped[0].Label)
		assert.Equal(t, "unknown segment", r.Dropped[1].Label)
	}
}

func TestLayoutDeterministic(t *testing.T) {
	t.Parallel()

	entries := []radarconfig.Entry{
		{Label: "Go", Segment: "Languages & Frameworks", Ring: "Adopt"},
		{Label: "Zig", Segment: "Languages & Frameworks", Ring: "Assess"},
		{Label: "Kafka", Segment: "Platforms", Ring: "Trial"},
		{Label: "TDD", Segment: "Techniques", Ring: "Adopt"},
	}
	g := mustGeometry(t, nil)
	ctx := log.Discard(context.Background())

	r1, err := radarlayout.Layout(ctx, g, defaultConfig(t, entries...))
	assert.Nil(t, err)
	r2, err := radarlayout.Layout(ctx, g, defaultConfig(t, entries...))
	assert.Nil(t, err)
	assert.Equal(t, r1, r2)

	// Entries elsewhere must not move the ones already placed.
	more := append(append([]radarconfig.Entry(nil), entries...),
		radarconfig.Entry{Label: "Helm", Segment: "Tools", Ring: "Hold"},
		radarconfig.Entry{Label: "Bazel", Segment: "Tools", Ring: "Adopt"},
	)
	r3, err := radarlayout.Layout(ctx, g, defaultConfig(t, more...))
	assert.Nil(t, err)
	for i, c := range r1.Cells {
		if len(c.Entries) > 0 {
			assert.Equal(t, c.Placements, r3.Cells[i].Placements)
		}
	}
}

func TestUsableBandCollapses(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, &radarlayout.GeometryOptions{EntryRadius: go2.Pointer(100.)})
	rs, err := radarlayout.LayoutRings(g, rings(4))
	if !assert.Nil(t, err) {
		return
	}
	for _, r := range rs {
		band := radarlayout.UsableBand(g, r)
		assert.Equal(t, r.MidRadius(), band.Inner)
		assert.Equal(t, r.MidRadius(), band.Outer)
	}

	segs, _ := radarlayout.LayoutSegments(g, segments(1))
	c := &radarlayout.Cell{
		Segment: segs[0],
		Ring:    rs[2],
		Entries: []radarconfig.Entry{{Label: "a"}, {Label: "b"}},
	}
	for _, p := range radarlayout.PlaceEntries(g, c) {
		assert.Equal(t, rs[2].MidRadius(), p.Radius)
	}
}

func TestPlaceEntriesEmpty(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, nil)
	segs, _ := radarlayout.LayoutSegments(g, segments(1))
	rs, _ := radarlayout.LayoutRings(g, rings(1))
	assert.Nil(t, radarlayout.PlaceEntries(g, &radarlayout.Cell{Segment: segs[0], Ring: rs[0]}))
}

func TestPaintOrder(t *testing.T) {
	t.Parallel()

	g := mustGeometry(t, nil)
	r, err := radarlayout.Layout(log.Discard(context.Background()), g, &radarconfig.Config{
		Segments: segments(2),
		Rings:    rings(3),
	})
	if !assert.Nil(t, err) {
		return
	}

	var got []string
	for _, c := range r.PaintOrder() {
		got = append(got, c.Segment.Label+"/"+c.Ring.Label)
	}
	assert.Equal(t, []string{"s0/r2", "s0/r1", "s0/r0", "s1/r2", "s1/r1", "s1/r0"}, got)

	// Layout order itself is untouched.
	assert.Equal(t, "r0", r.Cells[0].Ring.Label)
}
