package model

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

// NoiseSource supplies the perturbation feature appended to every input
type NoiseSource interface {
	Sample() float64
}

// NormalNoise draws from the standard normal distribution
type NormalNoise struct {
	mu     sync.Mutex
	seeded bool
	dist   distuv.Normal
}

// NewNormalNoise samples from the process-wide random source
func NewNormalNoise() *NormalNoise {
	return &NormalNoise{dist: distuv.Normal{Mu: 0, Sigma: 1}}
}

// NewSeededNormalNoise samples from a private PCG source so that a run can be
// replayed. The source is not goroutine safe on its own, so draws are serialized.
func NewSeededNormalNoise(seed uint64) *NormalNoise {
	return &NormalNoise{
		seeded: true,
		dist:   distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)},
	}
}

func (n *NormalNoise) Sample() float64 {
	if n.seeded {
		n.mu.Lock()
		defer n.mu.Unlock()
	}
	return n.dist.Rand()
}

// FixedNoise always returns the same value
type FixedNoise float64

func (f FixedNoise) Sample() float64 { return float64(f) }
