// Package seq produces reproducible streams of pseudo-random floats.
//
// Values come from the PCG generator in golang.org/x/exp/rand whose output
// for a given seed is fixed by its documented algorithm, so a stream yields
// the same values on every platform and in every process. Streams are cheap;
// create one per logical use instead of sharing one across unrelated callers.
package seq

import (
	"hash/fnv"

	"golang.org/x/exp/rand"

	"oss.terrastruct.com/techradar/lib/go2"
)

// Stream is a lazily advanced sequence of values in [Min, Max]. The zero
// value is not usable; see New.
type Stream struct {
	Min float64
	Max float64

	seed  uint64
	index uint64
	src   rand.PCGSource
}

func New(seed uint64, min, max float64) *Stream {
	s := &Stream{
		Min:  min,
		Max:  max,
		seed: seed,
	}
	s.src.Seed(seed)
	return s
}

// Next returns the value at the next index. The first call returns the value
// at index 1.
func (s *Stream) Next() float64 {
	s.index++
	return s.scale(unit(s.src.Uint64()))
}

// Index is the index of the last value returned by Next, 0 before the first.
func (s *Stream) Index() uint64 {
	return s.index
}

func (s *Stream) Seed() uint64 {
	return s.seed
}

func (s *Stream) scale(u float64) float64 {
	if s.Min == s.Max {
		return s.Min
	}
	return go2.Min(s.Min+u*(s.Max-s.Min), s.Max)
}

// ValueAt is the unit value the stream seeded with seed yields at index, where
// index counts from 1. It is open-interval: 0 < ValueAt(…) < 1.
func ValueAt(seed, index uint64) float64 {
	if index == 0 {
		index = 1
	}
	var src rand.PCGSource
	src.Seed(seed)
	var u uint64
	for i := uint64(0); i < index; i++ {
		u = src.Uint64()
	}
	return unit(u)
}

// unit maps the top 52 bits of u to the middle of one of 2^52 equal buckets of
// (0, 1). Bucket midpoints are exact in a float64 so neither end is reachable.
func unit(u uint64) float64 {
	return (float64(u>>12) + 0.5) / (1 << 52)
}

// Hash derives a seed from parts. Parts are separated so ("ab", "c") and
// ("a", "bc") differ.
func Hash(parts ...string) uint64 {
	h := fnv.New64a()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return h.Sum64()
}
