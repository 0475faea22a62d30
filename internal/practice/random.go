package practice

import (
	"math/rand/v2"
	"sync"
)

// Source is the randomness generators draw from.
type Source interface {
	// UniformChoice returns an index in [0, n).
	UniformChoice(n int) int
	// UniformInt returns an integer in the closed interval [lo, hi].
	UniformInt(lo, hi int) int
}

type entropySource struct{}

// NewSource returns a Source backed by the runtime-seeded global generator.
func NewSource() Source {
	return entropySource{}
}

func (entropySource) UniformChoice(n int) int { return rand.IntN(n) }

func (entropySource) UniformInt(lo, hi int) int { return lo + rand.IntN(hi-lo+1) }

// seededSource is safe for concurrent use; *rand.Rand is not.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a reproducible Source for the given seed.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) UniformChoice(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func (s *seededSource) UniformInt(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.IntN(hi-lo+1)
}

// Pick returns one element of set chosen uniformly.
// It panics on an empty set, which always indicates a broken tier definition.
func Pick[T any](src Source, set []T) T {
	if len(set) == 0 {
		panic("practice: pick from empty set")
	}
	return set[src.UniformChoice(len(set))]
}

// PickN returns n distinct elements of set in random order.
// Every subset of size n is equally likely.
func PickN[T any](src Source, set []T, n int) []T {
	if n < 0 || n > len(set) {
		panic("practice: pickN size out of range")
	}
	out := make([]T, len(set))
	copy(out, set)
	// Partial Fisher-Yates: only the first n positions need settling.
	for i := 0; i < n; i++ {
		j := i + src.UniformChoice(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:n]
}

// RandInt returns an integer in [lo, hi].
func RandInt(src Source, lo, hi int) int {
	if hi < lo {
		panic("practice: randInt with empty interval")
	}
	return src.UniformInt(lo, hi)
}
