// Package randutil builds reproducible math/rand/v2 generators.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Both PCG
// words are derived with splitmix64 so nearby seeds diverge immediately.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Seed resolves an optional configured seed. Zero means "pick one from the
// clock"; the chosen seed is returned so it can be logged and replayed.
func Seed(configured int64) int64 {
	if configured != 0 {
		return configured
	}
	return time.Now().UnixNano()
}

// Child derives an independent generator from parent, used to hand each
// worker or component its own stream.
func Child(parent *rand.Rand) *rand.Rand {
	return New(parent.Int64())
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
