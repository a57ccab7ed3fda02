package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"db-seed/internal/fake"
	"db-seed/internal/generator"
	"db-seed/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps written records per entity and assigns sequential ids.
type memStore struct {
	rows    map[*schema.Entity][]*schema.Record
	ids     map[*schema.Entity][]any
	batches map[*schema.Entity][]int
	failOn  map[*schema.Entity]error
}

func newMemStore() *memStore {
	return &memStore{
		rows:    make(map[*schema.Entity][]*schema.Record),
		ids:     make(map[*schema.Entity][]any),
		batches: make(map[*schema.Entity][]int),
		failOn:  make(map[*schema.Entity]error),
	}
}

func (m *memStore) IDs(_ context.Context, e *schema.Entity) ([]any, error) {
	return append([]any(nil), m.ids[e]...), nil
}

func (m *memStore) UsedIDs(_ context.Context, e *schema.Entity, column string) ([]any, error) {
	var used []any
	for _, r := range m.rows[e] {
		if v, ok := r.Get(column); ok && v != nil {
			used = append(used, v)
		}
	}
	return used, nil
}

func (m *memStore) WriteBatch(_ context.Context, e *schema.Entity, records []*schema.Record) error {
	m.batches[e] = append(m.batches[e], len(records))
	if err := m.failOn[e]; err != nil {
		return err
	}
	for _, r := range records {
		m.rows[e] = append(m.rows[e], r)
		m.ids[e] = append(m.ids[e], int64(len(m.ids[e])+1))
	}
	return nil
}

func (m *memStore) column(e *schema.Entity, key string) []any {
	var values []any
	for _, r := range m.rows[e] {
		v, _ := r.Get(key)
		values = append(values, v)
	}
	return values
}

// recordingReporter captures events for assertions.
type recordingReporter struct {
	cycles  []schema.Cycle
	omitted []string
	fields  []*FieldError
	batches []*BatchError
	done    []Result
}

func (r *recordingReporter) CycleDetected(c schema.Cycle) { r.cycles = append(r.cycles, c) }
func (r *recordingReporter) FieldOmitted(e *schema.Entity, f *schema.Field) {
	r.omitted = append(r.omitted, e.Name+"."+f.Name)
}
func (r *recordingReporter) FieldFailed(err *FieldError)      { r.fields = append(r.fields, err) }
func (r *recordingReporter) BatchWritten(*schema.Entity, int) {}
func (r *recordingReporter) BatchFailed(err *BatchError)      { r.batches = append(r.batches, err) }
func (r *recordingReporter) EntityDone(res Result)            { r.done = append(r.done, res) }
func (r *recordingReporter) RunDone([]Result, time.Duration)  {}

func blogSchema(categories, posts int) (*schema.Entity, *schema.Entity) {
	category := &schema.Entity{
		Name: "Category",
		Fields: []*schema.Field{
			{Name: "id", Kind: schema.KindInteger, PrimaryKey: true},
			{Name: "name", Kind: schema.KindString, MaxLength: 50},
		},
		Seed: &schema.SeedConfig{Count: categories},
	}
	post := &schema.Entity{
		Name: "Post",
		Fields: []*schema.Field{
			{Name: "id", Kind: schema.KindInteger, PrimaryKey: true},
			{Name: "title", Kind: schema.KindString, MaxLength: 200},
			{Name: "category", Kind: schema.KindRef, Ref: category, Nullable: true},
			{Name: "tags", Kind: schema.KindManyToMany, Ref: category},
		},
		Seed: &schema.SeedConfig{Count: posts},
	}
	return category, post
}

func TestRunCategoryAndPosts(t *testing.T) {
	category, post := blogSchema(5, 200)
	store := newMemStore()
	rep := &recordingReporter{}

	// children listed first on purpose
	results, err := New(store, store, fake.New(1), WithReporter(rep)).Run(context.Background(), []*schema.Entity{post, category})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "Category", results[0].Entity)
	assert.Equal(t, "Post", results[1].Entity)
	assert.Equal(t, StatusOK, results[1].Status)

	require.Len(t, store.rows[category], 5)
	require.Len(t, store.rows[post], 200)
	for _, v := range store.column(post, "category_id") {
		assert.Contains(t, store.ids[category], v)
	}

	first := store.rows[post][0]
	_, hasID := first.Get("id")
	_, hasTags := first.Get("tags")
	assert.False(t, hasID, "generated primary keys are left to the store")
	assert.False(t, hasTags, "many-to-many fields are not columns")
}

func TestRunBatches(t *testing.T) {
	category, _ := blogSchema(4500, 0)
	store := newMemStore()

	results, err := New(store, store, fake.New(1), WithBatchSize(2000)).Run(context.Background(), []*schema.Entity{category})
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 2000, 500}, store.batches[category])
	assert.Equal(t, 4500, results[0].Written)
}

func TestRunSkipsNonPositiveCount(t *testing.T) {
	category, _ := blogSchema(0, 0)
	store := newMemStore()

	results, err := New(store, store, fake.New(1)).Run(context.Background(), []*schema.Entity{category})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.Empty(t, store.batches[category])
}

func TestRunOverrides(t *testing.T) {
	category, post := blogSchema(3, 300)
	category.Seed.Overrides = map[string]schema.Override{
		"name": schema.Choices("A", "B", "C"),
	}
	post.Seed.Overrides = map[string]schema.Override{
		"title":    schema.Fixed("hello"),
		"category": schema.Fixed(int64(2)),
	}
	store := newMemStore()

	_, err := New(store, store, fake.New(3)).Run(context.Background(), []*schema.Entity{category, post})
	require.NoError(t, err)

	for _, v := range store.column(category, "name") {
		assert.Contains(t, []any{"A", "B", "C"}, v)
	}
	for _, v := range store.column(post, "title") {
		assert.Equal(t, "hello", v)
	}
	for _, v := range store.column(post, "category_id") {
		assert.Equal(t, int64(2), v)
	}
}

func TestRunChoicesCoverAllValues(t *testing.T) {
	category, _ := blogSchema(300, 0)
	category.Seed.Overrides = map[string]schema.Override{"name": schema.Choices("A", "B", "C")}
	store := newMemStore()

	_, err := New(store, store, fake.New(5)).Run(context.Background(), []*schema.Entity{category})
	require.NoError(t, err)

	seen := make(map[any]bool)
	for _, v := range store.column(category, "name") {
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}

func TestRunUniqueNullableReferenceExhausts(t *testing.T) {
	user := &schema.Entity{
		Name:   "User",
		Fields: []*schema.Field{{Name: "id", Kind: schema.KindInteger, PrimaryKey: true}, {Name: "email", Kind: schema.KindEmail}},
		Seed:   &schema.SeedConfig{Count: 4},
	}
	profile := &schema.Entity{
		Name: "Profile",
		Fields: []*schema.Field{
			{Name: "user", Kind: schema.KindRef, Ref: user, Unique: true, Nullable: true},
		},
		Seed: &schema.SeedConfig{Count: 6},
	}
	store := newMemStore()

	_, err := New(store, store, fake.New(9)).Run(context.Background(), []*schema.Entity{profile, user})
	require.NoError(t, err)

	var null int
	seen := make(map[any]bool)
	for _, v := range store.column(profile, "user_id") {
		if v == nil {
			null++
			continue
		}
		assert.False(t, seen[v], "user %v referenced twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, 2, null)
}

func TestRunLenientOmitsFailedField(t *testing.T) {
	user := &schema.Entity{
		Name:   "User",
		Fields: []*schema.Field{{Name: "id", Kind: schema.KindInteger, PrimaryKey: true}},
		Seed:   &schema.SeedConfig{Count: 2},
	}
	profile := &schema.Entity{
		Name: "Profile",
		Fields: []*schema.Field{
			{Name: "bio", Kind: schema.KindText},
			{Name: "user", Kind: schema.KindRef, Ref: user, Unique: true},
		},
		Seed: &schema.SeedConfig{Count: 3},
	}
	store := newMemStore()
	rep := &recordingReporter{}

	results, err := New(store, store, fake.New(9), WithReporter(rep)).Run(context.Background(), []*schema.Entity{user, profile})
	require.NoError(t, err)

	require.Len(t, rep.fields, 1)
	assert.ErrorIs(t, rep.fields[0], generator.ErrPoolExhausted)
	assert.Equal(t, StatusPartial, results[1].Status)
	assert.Equal(t, 3, results[1].Written)

	last := store.rows[profile][2]
	_, ok := last.Get("user_id")
	assert.False(t, ok)
	assert.Equal(t, 1, last.Len())
}

func TestRunStrictAbortsOnFieldError(t *testing.T) {
	user := &schema.Entity{
		Name:   "User",
		Fields: []*schema.Field{{Name: "id", Kind: schema.KindInteger, PrimaryKey: true}},
		Seed:   &schema.SeedConfig{Count: 0},
	}
	post := &schema.Entity{
		Name:   "Post",
		Fields: []*schema.Field{{Name: "author", Kind: schema.KindRef, Ref: user}},
		Seed:   &schema.SeedConfig{Count: 10},
	}
	store := newMemStore()

	_, err := New(store, store, fake.New(1), WithStrict(true)).Run(context.Background(), []*schema.Entity{user, post})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "author", fe.Field)
	assert.ErrorIs(t, err, generator.ErrEmptyPool)
	assert.Empty(t, store.batches[post])
}

func TestRunBatchFailure(t *testing.T) {
	category, post := blogSchema(2, 10)
	store := newMemStore()
	store.failOn[category] = errors.New("constraint violated")

	t.Run("lenient continues", func(t *testing.T) {
		rep := &recordingReporter{}
		results, err := New(store, store, fake.New(1), WithReporter(rep)).Run(context.Background(), []*schema.Entity{category, post})
		require.NoError(t, err)
		require.Len(t, rep.batches, 1)
		assert.Equal(t, StatusFailed, results[0].Status)
		assert.Equal(t, 2, results[0].Failed)

		// no parents, so every nullable category reference is null
		for _, v := range store.column(post, "category_id") {
			assert.Nil(t, v)
		}
	})

	t.Run("strict aborts", func(t *testing.T) {
		_, err := New(store, store, fake.New(1), WithStrict(true)).Run(context.Background(), []*schema.Entity{category, post})
		var be *BatchError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "Category", be.Entity)
	})
}

func TestRunUnsupportedKindOmitted(t *testing.T) {
	e := &schema.Entity{
		Name: "Asset",
		Fields: []*schema.Field{
			{Name: "blob", Kind: schema.KindUnknown},
			{Name: "label", Kind: schema.KindUnknown},
			{Name: "size", Kind: schema.KindInteger},
		},
		Seed: &schema.SeedConfig{Count: 3, Overrides: map[string]schema.Override{"label": schema.Fixed("x")}},
	}
	store := newMemStore()
	rep := &recordingReporter{}

	results, err := New(store, store, fake.New(1), WithReporter(rep)).Run(context.Background(), []*schema.Entity{e})
	require.NoError(t, err)

	assert.Equal(t, []string{"Asset.blob"}, rep.omitted)
	assert.Equal(t, []string{"blob"}, results[0].Omitted)
	assert.Equal(t, []string{"label", "size"}, store.rows[e][0].Keys())
}

func TestRunCycles(t *testing.T) {
	build := func(nullable bool) []*schema.Entity {
		a := &schema.Entity{Name: "Staff", Seed: &schema.SeedConfig{Count: 2}}
		b := &schema.Entity{Name: "Store", Seed: &schema.SeedConfig{Count: 2}}
		a.Fields = []*schema.Field{{Name: "store", Kind: schema.KindRef, Ref: b, Nullable: true}}
		b.Fields = []*schema.Field{{Name: "manager", Kind: schema.KindRef, Ref: a, Nullable: nullable}}
		return []*schema.Entity{a, b}
	}

	t.Run("breakable", func(t *testing.T) {
		store := newMemStore()
		rep := &recordingReporter{}
		_, err := New(store, store, fake.New(1), WithStrict(true), WithReporter(rep)).Run(context.Background(), build(true))
		require.NoError(t, err)
		assert.Len(t, rep.cycles, 1)
	})

	t.Run("strict unbreakable", func(t *testing.T) {
		store := newMemStore()
		_, err := New(store, store, fake.New(1), WithStrict(true)).Run(context.Background(), build(false))
		assert.ErrorIs(t, err, ErrCycle)
		assert.Empty(t, store.batches)
	})
}

func TestRunCanceled(t *testing.T) {
	category, _ := blogSchema(5, 0)
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(store, store, fake.New(1)).Run(ctx, []*schema.Entity{category})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFieldErrorMessage(t *testing.T) {
	err := &FieldError{Entity: "Post", Field: "author", Record: 7, Err: generator.ErrEmptyPool}
	assert.Equal(t, fmt.Sprintf("Post.author (record 7): %v", generator.ErrEmptyPool), err.Error())
}
