package unlock

import (
	crand "crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniform draws in [0, 1).
type RandomSource interface {
	Float64() float64
}

// osEntropy feeds math/rand from the operating system CSPRNG. Read cannot
// fail on supported platforms.
type osEntropy struct{}

func (osEntropy) Uint64() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

var systemRNG = rand.New(osEntropy{})

type entropyRNG struct{}

func (entropyRNG) Float64() float64 { return systemRNG.Float64() }

// DefaultRNG draws from OS entropy and is safe for concurrent use.
func DefaultRNG() RandomSource { return entropyRNG{} }

// pcgRNG is a reproducible stream. A session's tracker and face picker
// may draw from different goroutines, so draws are serialized.
type pcgRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRNG returns a deterministic source for seed. It is safe for
// concurrent use, but sharing one instance across sessions makes each
// session's sequence depend on scheduling; use DeriveSeed per session.
func NewSeededRNG(seed uint64) RandomSource {
	return &pcgRNG{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *pcgRNG) Float64() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.r.Float64()
}

// DeriveSeed mixes a stream name into base so that every session seeded
// from the same base replays its own sequence.
func DeriveSeed(base uint64, name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return base ^ h.Sum64()
}

// FixedRNG replays the given draws in order, then repeats the last one.
// An empty FixedRNG always returns 0. It is not safe for concurrent use.
type FixedRNG struct {
	Draws []float64
	i     int
}

func (f *FixedRNG) Float64() float64 {
	if len(f.Draws) == 0 {
		return 0
	}
	if f.i >= len(f.Draws) {
		return f.Draws[len(f.Draws)-1]
	}
	v := f.Draws[f.i]
	f.i++
	return v
}
