// Package radartarget is the drawable form of a laid out radar. Renderers
// consume it without doing any geometry of their own.
package radartarget

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"oss.terrastruct.com/techradar/lib/geo"
)

// MovedGlyphPath is a quarter arc with a cap, drawn in a 7x7 box at the
// marker's center and scaled up by the marker's MovedScale.
const MovedGlyphPath = "M6,.53A5.75,5.75,0,0,1,4.24,4.24,5.75,5.75,0,0,1,.51,6C0,6,0,6.31,0,6.47A.5.5,0,0,0,.53,7,7,7,0,0,0,7,.53a.5.5,0,1,0-1,0Z"

const (
	DecorationColor   = "#fff"
	DecorationOpacity = 0.5
)

type Radar struct {
	Radius float64   `json:"radius"`
	Center geo.Point `json:"center"`
	// Extra room around the radar the segment labels need, 0 without them.
	LabelMargin float64 `json:"labelMargin"`

	// Segments in input order.
	Segments []SegmentGroup `json:"segments"`
}

func (r Radar) Width() float64 {
	return 2 * r.Radius
}

func (r Radar) Bytes() ([]byte, error) {
	return json.Marshal(r)
}

// HashID is a CSS safe identifier derived from the radar's content.
func (r Radar) HashID() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	h := fnv.New32a()
	h.Write(b)
	return fmt.Sprintf("techradar-%d", h.Sum32()), nil
}

// Markers returns every marker of the radar in paint order.
func (r Radar) Markers() []Marker {
	var markers []Marker
	for _, s := range r.Segments {
		for _, rg := range s.Rings {
			markers = append(markers, rg.Markers...)
		}
	}
	return markers
}

type SegmentGroup struct {
	Label     string        `json:"label"`
	ClassName string        `json:"className"`
	Color     string        `json:"color"`
	FontColor string        `json:"fontColor"`
	Span      geo.AngleSpan `json:"span"`
	// Curve is nil unless segment labels are drawn.
	Curve *CurvedLabel `json:"curve,omitempty"`

	// Rings from the outermost in. Each wedge is a full pie slice, so this is
	// the order they must be painted in.
	Rings []RingGroup `json:"rings"`
}

type RingGroup struct {
	Label     string  `json:"label"`
	ClassName string  `json:"className"`
	Color     string  `json:"color"`
	Stroke    string  `json:"stroke"`
	Radius    float64 `json:"radius"`

	// Wedge is the path data of the slice from the center out to Radius.
	Wedge string      `json:"wedge"`
	Curve CurvedLabel `json:"curve"`

	Markers []Marker `json:"markers"`
}

// CurvedLabel is text laid along the path PathData. ID is what the text's
// textPath refers to.
type CurvedLabel struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	PathData string `json:"pathData"`
	Color    string `json:"color,omitempty"`
}

type Marker struct {
	// Key is stable across renders as long as the entry keeps its label and
	// position.
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Title string    `json:"title,omitempty"`
	Link  string    `json:"link,omitempty"`
	Point geo.Point `json:"point"`

	Radius    float64 `json:"radius"`
	Color     string  `json:"color"`
	Stroke    string  `json:"stroke,omitempty"`
	FontColor string  `json:"fontColor"`

	IsNew bool `json:"isNew,omitempty"`
	// -1 moved out, 1 moved in.
	Moved int `json:"moved,omitempty"`
}

func MarkerKey(label string, p *geo.Point) string {
	return label + p.Format()
}

// HaloRadius is the radius of the ring drawn around new entries.
func (m Marker) HaloRadius() float64 {
	return m.Radius + m.Radius/2
}

// MovedTransform is the SVG transform of the moved glyph, empty if the entry
// didn't move. Entries that moved out get the glyph mirrored.
func (m Marker) MovedTransform() string {
	if m.Moved == 0 {
		return ""
	}
	scale := 2
	if m.IsNew {
		scale = 3
	}
	if m.Moved < 0 {
		return fmt.Sprintf("scale(%d %d)", -scale, scale)
	}
	return fmt.Sprintf("scale(%d)", scale)
}

// FontSize of the label inside the marker.
func (m Marker) FontSize() float64 {
	return m.Radius
}

// TextY is the baseline offset that centers the label vertically.
func (m Marker) TextY() float64 {
	return m.Radius - 1 - m.Radius/2
}

// ClassName joins a configured class with a label the way styles select
// groups: "custom Label", or just "Label".
func ClassName(className, label string) string {
	return strings.TrimSpace(className + " " + label)
}
