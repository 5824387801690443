package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
	"sync"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every session owns one of these; the returned value is not safe for
// concurrent use.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewSeed returns an unpredictable seed from the operating system.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("randutil: read entropy: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// Seeder hands out per-session seeds. With a fixed master seed the sequence is
// reproducible; a zero master draws from NewSeed. Safe for concurrent use.
type Seeder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeder returns a Seeder derived from master.
func NewSeeder(master int64) *Seeder {
	if master == 0 {
		return &Seeder{}
	}
	return &Seeder{rng: New(master)}
}

// Next returns the next session seed.
func (s *Seeder) Next() int64 {
	if s.rng == nil {
		return NewSeed()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int64()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
