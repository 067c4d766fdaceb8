package geo

import "math"

// AngleSpan is a clockwise range of angles in radians, 0 pointing up.
type AngleSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func NewAngleSpan(start, end float64) AngleSpan {
	return AngleSpan{Start: start, End: end}
}

func (s AngleSpan) Width() float64 {
	return s.End - s.Start
}

// Contains reports whether a lies in [Start, End).
func (s AngleSpan) Contains(a float64) bool {
	return s.Start <= a && a < s.End
}

// Slot returns the j-th of k equal sub-spans. The last slot ends exactly at
// End.
func (s AngleSpan) Slot(j, k int) AngleSpan {
	w := s.Width() / float64(k)
	start := s.Start + float64(j)*w
	end := start + w
	if j == k-1 {
		end = s.End
	}
	return AngleSpan{Start: start, End: end}
}

// At is the angle a fraction u of the way through s, kept in [Start, End).
func (s AngleSpan) At(u float64) float64 {
	a := s.Start + u*s.Width()
	if a >= s.End && s.End > s.Start {
		a = math.Nextafter(s.End, s.Start)
	}
	if a < s.Start {
		a = s.Start
	}
	return a
}

// RadiusBand is the annulus between two radii around the radar center.
type RadiusBand struct {
	Inner float64 `json:"inner"`
	Outer float64 `json:"outer"`
}

func NewRadiusBand(inner, outer float64) RadiusBand {
	return RadiusBand{Inner: inner, Outer: outer}
}

func (b RadiusBand) Thickness() float64 {
	return b.Outer - b.Inner
}

// Mid is the radius halfway through the band.
func (b RadiusBand) Mid() float64 {
	return b.Outer - b.Thickness()/2
}

func (b RadiusBand) Area() float64 {
	return math.Pi * (b.Outer*b.Outer - b.Inner*b.Inner)
}

// Contains reports whether r lies in [Inner, Outer].
func (b RadiusBand) Contains(r float64) bool {
	return b.Inner <= r && r <= b.Outer
}
