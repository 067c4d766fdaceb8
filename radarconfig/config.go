// Package radarconfig defines the input of a technology radar: its segments,
// rings and entries, how they are decoded from JSON, YAML, TOML and URL
// queries, and the defaults applied to whatever is left out.
package radarconfig

import (
	"math"

	"oss.terrastruct.com/techradar/lib/color"
)

const (
	DEFAULT_RADIUS       = 500
	DEFAULT_ENTRY_RADIUS = 10
)

type Config struct {
	// Radius of the radar in pixels. The canvas is 2*Radius wide.
	Radius      *float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	EntryRadius *float64 `json:"entryRadius,omitempty" yaml:"entryRadius,omitempty"`
	// AutoFontColor picks each segment's font color from its fill instead of
	// defaulting to white.
	AutoFontColor bool `json:"autoFontColor,omitempty" yaml:"autoFontColor,omitempty"`
	// SegmentLabels draws segment names along the outside of the radar.
	SegmentLabels bool `json:"segmentLabels,omitempty" yaml:"segmentLabels,omitempty"`

	// Nil means the default list; an empty list is an error at layout.
	Segments []Segment `json:"segments" yaml:"segments"`
	Rings    []Ring    `json:"rings" yaml:"rings"`
	Entries  []Entry   `json:"entries" yaml:"entries"`
}

type Segment struct {
	Label     string `json:"label" yaml:"label"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	FontColor string `json:"fontColor,omitempty" yaml:"fontColor,omitempty"`
	ClassName string `json:"className,omitempty" yaml:"className,omitempty"`
}

// Rings are listed innermost first.
type Ring struct {
	Label     string `json:"label" yaml:"label"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
	Stroke    string `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	ClassName string `json:"className,omitempty" yaml:"className,omitempty"`
}

type Entry struct {
	Label   string `json:"label" yaml:"label"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Segment string `json:"segment" yaml:"segment"`
	Ring    string `json:"ring" yaml:"ring"`
	IsNew   bool   `json:"isNew,omitempty" yaml:"isNew,omitempty"`
	Moved   Moved  `json:"moved,omitempty" yaml:"moved,omitempty"`
	// Link turns the marker into a hyperlink.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`
}

// Moved records whether an entry changed ring since the last edition.
type Moved int

const (
	MovedOut  Moved = -1
	Unchanged Moved = 0
	MovedIn   Moved = 1
)

func (m Moved) Valid() bool {
	return m == MovedOut || m == Unchanged || m == MovedIn
}

func DefaultSegments() []Segment {
	return []Segment{
		{Label: "Techniques", Color: "#3DB5BE"},
		{Label: "Tools", Color: "#83AD78"},
		{Label: "Platforms", Color: "#E88744"},
		{Label: "Languages & Frameworks", Color: "#8D2145"},
	}
}

func DefaultRings() []Ring {
	return []Ring{
		{Label: "Adopt", Color: "#808080"},
		{Label: "Trial", Color: "#B3B3B3"},
		{Label: "Assess", Color: "#CCCCCC"},
		{Label: "Hold", Color: "#F2F2F2"},
	}
}

func (c *Config) GetRadius() float64 {
	if c.Radius == nil {
		return DEFAULT_RADIUS
	}
	return *c.Radius
}

func (c *Config) GetEntryRadius() float64 {
	if c.EntryRadius == nil {
		return DEFAULT_ENTRY_RADIUS
	}
	return *c.EntryRadius
}

// WithDefaults returns a copy of c with every unset field filled in. c itself
// is left untouched.
func (c *Config) WithDefaults() (*Config, error) {
	out := &Config{
		Radius:        c.Radius,
		EntryRadius:   c.EntryRadius,
		AutoFontColor: c.AutoFontColor,
		SegmentLabels: c.SegmentLabels,
	}

	segments := c.Segments
	if segments == nil {
		segments = DefaultSegments()
	}
	out.Segments = make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.Color == "" {
			s.Color = color.Primary
		}
		if s.FontColor == "" {
			if c.AutoFontColor {
				fc, err := color.Contrast(s.Color)
				if err != nil {
					return nil, Errorf(ErrInvalidConfiguration, "segment %q: %v", s.Label, err)
				}
				s.FontColor = fc
			} else {
				s.FontColor = color.White
			}
		}
		out.Segments = append(out.Segments, s)
	}

	rings := c.Rings
	if rings == nil {
		rings = DefaultRings()
	}
	out.Rings = make([]Ring, 0, len(rings))
	for _, r := range rings {
		if r.Color == "" {
			r.Color = color.Primary
		}
		if r.Stroke == "" {
			r.Stroke = color.Stroke
		}
		out.Rings = append(out.Rings, r)
	}

	out.Entries = append([]Entry(nil), c.Entries...)
	return out, nil
}

// Dangling returns the entries whose segment or ring is not part of c. Layout
// drops them silently.
func (c *Config) Dangling() []Entry {
	segments := make(map[string]struct{}, len(c.Segments))
	for _, s := range c.Segments {
		segments[s.Label] = struct{}{}
	}
	rings := make(map[string]struct{}, len(c.Rings))
	for _, r := range c.Rings {
		rings[r.Label] = struct{}{}
	}

	var dangling []Entry
	for _, e := range c.Entries {
		_, okSegment := segments[e.Segment]
		_, okRing := rings[e.Ring]
		if !okSegment || !okRing {
			dangling = append(dangling, e)
		}
	}
	return dangling
}

// Validate checks c after defaults have been applied.
func (c *Config) Validate() error {
	ve := &ValidationError{}

	if r := c.GetRadius(); !finitePositive(r) {
		ve.errorf(ErrInvalidGeometry, "radius must be a positive number, got %v", r)
	}
	if r := c.GetEntryRadius(); !finitePositive(r) {
		ve.errorf(ErrInvalidGeometry, "entryRadius must be a positive number, got %v", r)
	}

	if len(c.Segments) == 0 {
		ve.errorf(ErrInvalidConfiguration, "at least one segment is required")
	}
	seen := make(map[string]struct{}, len(c.Segments))
	for i, s := range c.Segments {
		if s.Label == "" {
			ve.errorf(ErrInvalidConfiguration, "segments[%d]: label is required", i)
			continue
		}
		if _, ok := seen[s.Label]; ok {
			ve.errorf(ErrInvalidConfiguration, "segments[%d]: duplicate label %q", i, s.Label)
		}
		seen[s.Label] = struct{}{}
		validateColor(ve, "segments", i, s.Color)
		validateColor(ve, "segments", i, s.FontColor)
	}

	if len(c.Rings) == 0 {
		ve.errorf(ErrInvalidConfiguration, "at least one ring is required")
	}
	seen = make(map[string]struct{}, len(c.Rings))
	for i, r := range c.Rings {
		if r.Label == "" {
			ve.errorf(ErrInvalidConfiguration, "rings[%d]: label is required", i)
			continue
		}
		if _, ok := seen[r.Label]; ok {
			ve.errorf(ErrInvalidConfiguration, "rings[%d]: duplicate label %q", i, r.Label)
		}
		seen[r.Label] = struct{}{}
		validateColor(ve, "rings", i, r.Color)
		validateColor(ve, "rings", i, r.Stroke)
	}

	for i, e := range c.Entries {
		if e.Label == "" {
			ve.errorf(ErrInvalidConfiguration, "entries[%d]: label is required", i)
		}
		if !e.Moved.Valid() {
			ve.errorf(ErrInvalidConfiguration, "entries[%d]: moved must be -1, 0 or 1, got %d", i, e.Moved)
		}
	}

	return ve.orNil()
}

func validateColor(ve *ValidationError, list string, i int, c string) {
	if c == "" {
		return
	}
	if err := color.Validate(c); err != nil {
		ve.errorf(ErrInvalidConfiguration, "%s[%d]: %v", list, i, err)
	}
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
