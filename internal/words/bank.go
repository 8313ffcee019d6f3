// internal/words/bank.go
package words

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/jason-s-yu/sketch/internal/models"
)

// ChoicesPerTier is how many words of each difficulty a drawer is offered.
const ChoicesPerTier = 3

// Bank hands out non-repeating word choices. The used-word set is shared by
// every room on the server and is cleared whenever any room starts a game.
type Bank struct {
	mu    sync.Mutex
	pools map[models.Difficulty][]string
	used  map[string]struct{}
	rng   *rand.Rand
}

// NewBank validates the tiered lists and builds a bank. Every tier must be present and non-empty.
func NewBank(lists map[models.Difficulty][]string) (*Bank, error) {
	pools := make(map[models.Difficulty][]string, len(models.Difficulties))
	for _, d := range models.Difficulties {
		list, ok := lists[d]
		if !ok || len(list) == 0 {
			return nil, fmt.Errorf("word list %q is missing or empty", d)
		}
		pools[d] = append([]string(nil), list...)
	}
	return &Bank{
		pools: pools,
		used:  make(map[string]struct{}),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Seed makes subsequent picks deterministic. Intended for tests.
func (b *Bank) Seed(seed int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rng = rand.New(rand.NewSource(seed))
}

// Reset forgets every word handed out so far.
func (b *Bank) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.used = make(map[string]struct{})
}

// Choices returns ChoicesPerTier unused words from each tier, easy first.
func (b *Bank) Choices() []models.WordChoice {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.WordChoice, 0, ChoicesPerTier*len(models.Difficulties))
	for _, d := range models.Difficulties {
		for _, w := range b.pickLocked(d, ChoicesPerTier) {
			out = append(out, models.WordChoice{Word: w, Difficulty: d})
		}
	}
	return out
}

// pickLocked draws n distinct words from one pool, recycling the pool when
// too few unused words remain.
func (b *Bank) pickLocked(d models.Difficulty, n int) []string {
	pool := b.pools[d]
	available := b.unusedLocked(pool)
	if len(available) < n {
		for _, w := range pool {
			delete(b.used, w)
		}
		available = append([]string(nil), pool...)
	}
	b.rng.Shuffle(len(available), func(i, j int) {
		available[i], available[j] = available[j], available[i]
	})
	if n > len(available) {
		n = len(available)
	}
	picked := available[:n]
	for _, w := range picked {
		b.used[w] = struct{}{}
	}
	return picked
}

func (b *Bank) unusedLocked(pool []string) []string {
	out := make([]string, 0, len(pool))
	for _, w := range pool {
		if _, taken := b.used[w]; !taken {
			out = append(out, w)
		}
	}
	return out
}

// Used reports how many words are currently marked as handed out.
func (b *Bank) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.used)
}
