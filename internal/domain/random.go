package domain

import (
	"hash/fnv"
	"math/rand/v2"
)

// RandomSource supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewObjectRand returns the random stream for one object. The stream depends
// only on the object id and seed, so assessments are reproducible regardless
// of batch order or worker scheduling.
func NewObjectRand(id string, seed uint64) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return rand.New(rand.NewPCG(h.Sum64(), seed))
}
