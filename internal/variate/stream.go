// Package variate produces per-period return samples for the supported
// return-generating processes.
package variate

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Stream is the random source of a single trajectory.
// Streams are not safe for concurrent use; each worker owns one.
type Stream struct {
	src *rand.PCG
	rng *rand.Rand
}

// NewStream returns a stream keyed by (seed, index).
// The same key always yields the same sequence.
func NewStream(seed, index uint64) *Stream {
	src := rand.NewPCG(seed, index)
	return &Stream{src: src, rng: rand.New(src)}
}

// Reset rekeys the stream in place so a worker can reuse it across trajectories.
func (s *Stream) Reset(seed, index uint64) {
	s.src.Seed(seed, index)
}

// Float64 returns a uniform sample in [0, 1).
func (s *Stream) Float64() float64 {
	return s.rng.Float64()
}

// StdNormal returns a standard normal sample using the Box-Muller transform.
func (s *Stream) StdNormal() float64 {
	u1 := 1 - s.rng.Float64() // (0, 1], keeps the log finite
	u2 := s.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Normal returns a sample from N(mean, stdDev^2).
func (s *Stream) Normal(mean, stdDev float64) float64 {
	return mean + stdDev*s.StdNormal()
}

// Bernoulli returns true with probability p.
func (s *Stream) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return distuv.Bernoulli{P: p, Src: s.src}.Rand() == 1
}
