package schemagen

import (
	"math/rand/v2"
	"sync"
)

// Rand is the source of randomness consumed by a Generator.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Int64N(n int64) int64
	Uint64() uint64
	Float64() float64
}

// NewRand returns a PCG-backed source seeded with seed. The result is not safe
// for concurrent use; wrap it with NewLockedRand when sharing.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// globalRand forwards to the top-level math/rand/v2 functions, which are safe
// for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int       { return rand.IntN(n) }
func (globalRand) Int64N(n int64) int64 { return rand.Int64N(n) }
func (globalRand) Uint64() uint64       { return rand.Uint64() }
func (globalRand) Float64() float64     { return rand.Float64() }

// LockedRand serializes access to an underlying Rand.
type LockedRand struct {
	mu sync.Mutex
	r  Rand
}

// NewLockedRand wraps r for use from multiple goroutines.
func NewLockedRand(r Rand) *LockedRand { return &LockedRand{r: r} }

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *LockedRand) Int64N(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int64N(n)
}

func (l *LockedRand) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Uint64()
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
