package generator

import (
	"context"
	"testing"
	"time"
	"unicode/utf8"

	"db-seed/internal/fake"
	"db-seed/internal/schema"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	ids  map[*schema.Entity][]any
	used []any
}

func (r *fakeReader) IDs(_ context.Context, e *schema.Entity) ([]any, error) {
	return r.ids[e], nil
}

func (r *fakeReader) UsedIDs(context.Context, *schema.Entity, string) ([]any, error) {
	return r.used, nil
}

func newEnv(reader IDReader) *Env {
	return &Env{Source: fake.New(7), Reader: reader, Owner: &schema.Entity{Name: "Post"}}
}

func generate(t *testing.T, g Generator) any {
	t.Helper()
	v, err := g.Generate()
	require.NoError(t, err)
	return v
}

func TestRegistryUnknownKind(t *testing.T) {
	_, ok := DefaultRegistry().New(newEnv(nil), &schema.Field{Name: "x", Kind: schema.KindUnknown})
	assert.False(t, ok)
}

func TestRegistryReplace(t *testing.T) {
	r := DefaultRegistry()
	r.Register(schema.KindInteger, func(*Env, *schema.Field) Generator {
		return valueFunc(func() any { return 42 })
	})
	g, ok := r.New(newEnv(nil), &schema.Field{Name: "n", Kind: schema.KindInteger})
	require.True(t, ok)
	assert.Equal(t, 42, generate(t, g))
}

func TestScalarKinds(t *testing.T) {
	env := newEnv(nil)
	r := DefaultRegistry()
	build := func(f *schema.Field) Generator {
		g, ok := r.New(env, f)
		require.True(t, ok, f.Kind.String())
		require.NoError(t, g.Prepare(context.Background()))
		return g
	}

	t.Run("string respects max length", func(t *testing.T) {
		g := build(&schema.Field{Name: "title", Kind: schema.KindString, MaxLength: 12})
		for i := 0; i < 50; i++ {
			s := generate(t, g).(string)
			assert.LessOrEqual(t, utf8.RuneCountInString(s), 12)
		}
	})

	t.Run("string capped at 100", func(t *testing.T) {
		g := build(&schema.Field{Name: "title", Kind: schema.KindString, MaxLength: 500})
		s := generate(t, g).(string)
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 100)
	})

	t.Run("integer range", func(t *testing.T) {
		g := build(&schema.Field{Name: "n", Kind: schema.KindInteger})
		for i := 0; i < 500; i++ {
			n := generate(t, g).(int)
			assert.GreaterOrEqual(t, n, 0)
			assert.LessOrEqual(t, n, 100)
		}
	})

	t.Run("decimal shape", func(t *testing.T) {
		g := build(&schema.Field{Name: "price", Kind: schema.KindDecimal})
		limit := decimal.RequireFromString("99999.99")
		for i := 0; i < 200; i++ {
			d := generate(t, g).(decimal.Decimal)
			assert.True(t, d.IsPositive())
			assert.True(t, d.LessThanOrEqual(limit))
			assert.LessOrEqual(t, -d.Exponent(), int32(2))
		}
	})

	t.Run("date within century", func(t *testing.T) {
		g := build(&schema.Field{Name: "born", Kind: schema.KindDate})
		d, err := time.Parse(dateLayout, generate(t, g).(string))
		require.NoError(t, err)
		assert.Equal(t, time.Now().Year()/100, d.Year()/100)
	})

	t.Run("naive datetime", func(t *testing.T) {
		g := build(&schema.Field{Name: "at", Kind: schema.KindDateTime})
		_, err := time.Parse(dateTimeLayout, generate(t, g).(string))
		assert.NoError(t, err)
	})

	t.Run("uuid v4", func(t *testing.T) {
		g := build(&schema.Field{Name: "token", Kind: schema.KindUUID})
		id, err := uuid.Parse(generate(t, g).(string))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), id.Version())
	})

	t.Run("slug", func(t *testing.T) {
		g := build(&schema.Field{Name: "slug", Kind: schema.KindSlug})
		assert.Regexp(t, `^[a-z]+-[a-z]+-[a-z]+$`, generate(t, g))
	})

	t.Run("many to many yields nothing", func(t *testing.T) {
		g := build(&schema.Field{Name: "tags", Kind: schema.KindManyToMany})
		assert.Nil(t, generate(t, g))
	})
}

func TestDateTimeWithZone(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	env := newEnv(nil)
	env.UseTZ = true
	env.Location = loc

	g, ok := DefaultRegistry().New(env, &schema.Field{Name: "at", Kind: schema.KindDateTime})
	require.True(t, ok)
	v := generate(t, g).(time.Time)
	assert.Equal(t, loc, v.Location())
	assert.False(t, v.After(time.Now()))
}

func TestSameSeedSameValues(t *testing.T) {
	f := &schema.Field{Name: "title", Kind: schema.KindString}
	a, _ := DefaultRegistry().New(&Env{Source: fake.New(99)}, f)
	b, _ := DefaultRegistry().New(&Env{Source: fake.New(99)}, f)
	for i := 0; i < 10; i++ {
		assert.Equal(t, generate(t, a), generate(t, b))
	}
}
