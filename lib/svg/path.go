package svg

import (
	"fmt"
	"strings"

	"oss.terrastruct.com/techradar/lib/geo"
)

// SvgPathContext accumulates absolute path commands. Points are written as
// "x,y".
type SvgPathContext struct {
	Commands []string
	Start    *geo.Point
	Current  *geo.Point
}

func NewSVGPathContext() *SvgPathContext {
	return &SvgPathContext{}
}

func (c *SvgPathContext) StartAt(p *geo.Point) {
	c.Start = p.Copy()
	c.Commands = append(c.Commands, "M "+p.Format())
	c.Current = p.Copy()
}

func (c *SvgPathContext) L(p *geo.Point) {
	c.Commands = append(c.Commands, "L "+p.Format())
	c.Current = p.Copy()
}

func (c *SvgPathContext) C(c0, c1, p *geo.Point) {
	c.Commands = append(c.Commands, fmt.Sprintf("C %s %s %s", c0.Format(), c1.Format(), p.Format()))
	c.Current = p.Copy()
}

// Curves draws consecutive cubic curves as returned by geo.ArcBeziers. The
// path is started at the first curve's start point if nothing was drawn yet.
func (c *SvgPathContext) Curves(curves [][4]*geo.Point) {
	for i, curve := range curves {
		if i == 0 && c.Current == nil {
			c.StartAt(curve[0])
		}
		c.C(curve[1], curve[2], curve[3])
	}
}

func (c *SvgPathContext) Z() {
	c.Commands = append(c.Commands, "Z")
	c.Current = c.Start.Copy()
}

func (c *SvgPathContext) PathData() string {
	return strings.Join(c.Commands, " ")
}

// ArcPath is the path data of the arc of radius around center from start to
// end, drawn as one or more cubic curves.
func ArcPath(center *geo.Point, radius, start, end float64) (string, error) {
	curves, err := geo.ArcBeziers(center, radius, start, end)
	if err != nil {
		return "", err
	}
	pc := NewSVGPathContext()
	pc.Curves(curves)
	return pc.PathData(), nil
}

// WedgePath is the pie slice of radius around center from start to end.
func WedgePath(center *geo.Point, radius, start, end float64) (string, error) {
	curves, err := geo.ArcBeziers(center, radius, start, end)
	if err != nil {
		return "", err
	}
	pc := NewSVGPathContext()
	pc.Curves(curves)
	pc.L(center)
	pc.Z()
	return pc.PathData(), nil
}
