// Package rng provides deterministic random sources for the search and
// routing algorithms. A *rand.Rand is not safe for concurrent use; derive a
// separate stream per worker or restart.
package rng

import "math/rand"

// DefaultSeed replaces a zero seed so runs without an explicit seed remain
// reproducible.
const DefaultSeed int64 = 1

// New returns a source seeded with seed, or with DefaultSeed when seed is 0.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// Derive creates an independent stream from base. One value of base is
// consumed so that repeated derivations with the same stream id differ.
// A nil base uses DefaultSeed as the parent.
func Derive(base *rand.Rand, stream uint64) *rand.Rand {
	parent := DefaultSeed
	if base != nil {
		parent = base.Int63()
	}
	return rand.New(rand.NewSource(mix(parent, stream)))
}

// mix is a SplitMix64 finalizer over parent and stream.
func mix(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// ShuffleInts permutes s in place. A nil r falls back to the default stream.
func ShuffleInts(s []int, r *rand.Rand) {
	if r == nil {
		r = New(0)
	}
	r.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
