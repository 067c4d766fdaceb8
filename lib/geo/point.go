package geo

import (
	"fmt"
	"math"
	"strconv"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewPoint(x, y float64) *Point {
	return &Point{X: x, Y: y}
}

func (p1 *Point) Equals(p2 *Point) bool {
	if p1 == nil {
		return p2 == nil
	} else if p2 == nil {
		return false
	}
	return (p1.X == p2.X) && (p1.Y == p2.Y)
}

func (p *Point) Copy() *Point {
	return &Point{X: p.X, Y: p.Y}
}

func (p *Point) ToString() string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

// Format returns "x,y", the form points take inside path data and keys.
func (p *Point) Format() string {
	return formatFloat(p.X) + "," + formatFloat(p.Y)
}

func (p *Point) DistanceTo(p2 *Point) float64 {
	return EuclideanDistance(p.X, p.Y, p2.X, p2.Y)
}

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p *Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Polar converts polar coordinates around offset to a point on the canvas.
// Angle 0 points up (12 o'clock) and increases clockwise. Both offsets are
// rounded to whole pixels so the same input always yields the same path data.
func Polar(radius, angle float64, offset *Point) *Point {
	return &Point{
		X: offset.X + Round(radius*math.Sin(angle)),
		Y: offset.Y - Round(radius*math.Cos(angle)),
	}
}

// Round rounds half-up: Round(-2.5) == -2, unlike math.Round.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
