package game

import "golang.org/x/exp/rand"

// Shuffler is the pluggable randomness primitive used for every deck
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// SeededShuffler is a deterministic Shuffler
type SeededShuffler struct {
	rng *rand.Rand
}

// NewSeededShuffler creates a shuffler that replays identically for a seed
func NewSeededShuffler(seed uint64) *SeededShuffler {
	return &SeededShuffler{rng: rand.New(rand.NewSource(seed))}
}

// Shuffle permutes n elements with the given swap function
func (s *SeededShuffler) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// Intn returns a number in [0, n)
func (s *SeededShuffler) Intn(n int) int {
	return s.rng.Intn(n)
}

// IdentityShuffler leaves decks in catalog order
type IdentityShuffler struct{}

// Shuffle does nothing
func (IdentityShuffler) Shuffle(int, func(i, j int)) {}
