package fake_test

import (
	"strings"
	"testing"

	"db-seed/internal/fake"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceIsReproducible(t *testing.T) {
	a, b := fake.New(42), fake.New(42)
	for i := 0; i < 20; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}
	assert.Equal(t, a.UUIDv4(), b.UUIDv4())
	assert.Equal(t, a.Slug(), b.Slug())
}

func TestPickAndShuffle(t *testing.T) {
	src := fake.New(7)
	assert.Nil(t, src.Pick(nil))

	values := []any{1, 2, 3, 4, 5}
	for i := 0; i < 50; i++ {
		assert.Contains(t, values, src.Pick(values))
	}

	shuffled := append([]any(nil), values...)
	src.Shuffle(shuffled)
	assert.ElementsMatch(t, values, shuffled)
}

func TestSlug(t *testing.T) {
	slug := fake.New(1).Slug()
	assert.Len(t, strings.Split(slug, "-"), 3)
	assert.Equal(t, strings.ToLower(slug), slug)
}

func TestLookup(t *testing.T) {
	src := fake.New(3)
	for _, name := range fake.Names() {
		f, ok := fake.Lookup(name)
		require.True(t, ok, name)
		assert.NotNil(t, f(src), name)
	}
	_, ok := fake.Lookup("nope")
	assert.False(t, ok)

	v := fake.Template("{firstname}")(src)
	assert.NotEmpty(t, v)
}
