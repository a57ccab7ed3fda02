package fake

import (
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

// Source is the randomness shared by every generator and override of a run.
// Seeding it with a fixed value makes a run reproducible.
type Source struct {
	*gofakeit.Faker
	seed int64
}

// New returns a Source seeded with seed. A zero seed picks a random one.
func New(seed int64) *Source {
	return &Source{Faker: gofakeit.New(seed), seed: seed}
}

func (s *Source) Seed() int64 {
	return s.seed
}

// Intn returns a uniform int in [0, n).
func (s *Source) Intn(n int) int {
	return s.Rand.Intn(n)
}

// Pick returns one of values uniformly at random, or nil for an empty slice.
func (s *Source) Pick(values []any) any {
	if len(values) == 0 {
		return nil
	}
	return values[s.Rand.Intn(len(values))]
}

// Shuffle randomizes values in place.
func (s *Source) Shuffle(values []any) {
	s.Rand.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}

// Slug returns three lowercase words joined by hyphens.
func (s *Source) Slug() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = strings.ToLower(s.LoremIpsumWord())
	}
	return strings.Join(words, "-")
}

// UUIDv4 draws a version 4 UUID from the seeded source rather than crypto/rand.
func (s *Source) UUIDv4() uuid.UUID {
	id, err := uuid.NewRandomFromReader(s.Rand)
	if err != nil {
		// math/rand never fails a read
		return uuid.New()
	}
	return id
}
