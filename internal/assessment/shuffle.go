// Package assessment holds the attempt pipeline: randomization, paging,
// answer recording and section scoring.
package assessment

import (
	"math/rand"
	"sync"
	"time"

	"disciple-assessment-service/internal/domain"
)

// Source draws a uniform integer in [0, n).
type Source interface {
	Intn(n int) int
}

// Shuffle returns a uniformly random permutation of items using Fisher-Yates.
// The input slice is not modified.
func Shuffle(items []domain.Item, src Source) []domain.Item {
	shuffled := make([]domain.Item, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Randomizer is a goroutine-safe Shuffle around a private source.
type Randomizer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomizer() *Randomizer {
	return NewRandomizerWithSeed(time.Now().UnixNano())
}

// NewRandomizerWithSeed gives reproducible permutations in tests.
func NewRandomizerWithSeed(seed int64) *Randomizer {
	return &Randomizer{rnd: rand.New(rand.NewSource(seed))}
}

// Permute shuffles a copy of items.
func (r *Randomizer) Permute(items []domain.Item) []domain.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Shuffle(items, r.rnd)
}
