package chatbot

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Randomizer picks an index uniformly from [0, n). *rand.Rand satisfies it.
type Randomizer interface {
	IntN(n int) int
}

// lockedRand makes a *rand.Rand safe to share between requests.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomizer returns a goroutine-safe PCG source. A zero seed seeds from the clock.
func NewRandomizer(seed uint64) Randomizer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// pick returns one element of list chosen by rng, and its index.
func pick(rng Randomizer, list []string) (string, int) {
	i := rng.IntN(len(list))
	return list[i], i
}
