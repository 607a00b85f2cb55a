package loot

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/kollektive-hackathon/flog-progression/internal/hero"
)

// SourceFactory hands out the generator used for a single draw.
type SourceFactory func() (hero.Source, error)

// CryptoSeeded returns a factory that builds a fresh generator per draw, seeded from
// crypto/rand, so no generator is ever shared between goroutines.
func CryptoSeeded() SourceFactory {
	return func() (hero.Source, error) {
		seed, err := NewSeed()
		if err != nil {
			return nil, err
		}
		return rand.New(rand.NewSource(seed)), nil
	}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// LockedSource serializes access to a single seeded generator. Its sequence is
// reproducible for a given seed when draws are not concurrent.
type LockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewLockedSource(seed int64) *LockedSource {
	return &LockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *LockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Shared returns a factory that always hands out the same source.
func Shared(src hero.Source) SourceFactory {
	return func() (hero.Source, error) {
		return src, nil
	}
}
