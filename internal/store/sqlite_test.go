package store_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"db-seed/internal/dialect"
	"db-seed/internal/engine"
	"db-seed/internal/fake"
	"db-seed/internal/schema"
	"db-seed/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const blogDDL = `
CREATE TABLE category (
    id   INTEGER PRIMARY KEY,
    name VARCHAR(50) NOT NULL UNIQUE,
    slug VARCHAR(60) NOT NULL
);
CREATE TABLE post (
    id          INTEGER PRIMARY KEY,
    title       VARCHAR(200) NOT NULL,
    body        TEXT,
    views       INTEGER NOT NULL,
    category_id INTEGER REFERENCES category(id)
);`

func openBlog(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// a transaction pins the only connection, so every statement shares it
	db.SetMaxOpenConns(1)
	_, err = db.Exec(blogDDL)
	require.NoError(t, err)
	return db
}

func analyzeBlog(t *testing.T, db *sql.DB) (*schema.Entity, *schema.Entity) {
	t.Helper()
	d := &dialect.SQLiteDialect{}
	entities, err := schema.Analyze(context.Background(), db, d, d.GetSchemaName(""))
	require.NoError(t, err)
	require.Len(t, entities, 2)

	var category, post *schema.Entity
	for _, e := range entities {
		switch e.TableName() {
		case "category":
			category = e
		case "post":
			post = e
		}
	}
	require.NotNil(t, category)
	require.NotNil(t, post)
	return category, post
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}

func TestSeedSQLite(t *testing.T) {
	db := openBlog(t)
	category, post := analyzeBlog(t, db)

	require.Equal(t, schema.KindRef, post.Field("category_id").Kind)
	require.Same(t, category, post.Field("category_id").Ref)
	assert.True(t, category.Field("id").PrimaryKey)
	assert.True(t, category.Field("name").Unique)

	category.Seed = &schema.SeedConfig{Count: 5}
	post.Seed = &schema.SeedConfig{Count: 200}

	ctx := context.Background()
	d := &dialect.SQLiteDialect{}
	err := store.RunInTx(ctx, db, d, func(s *store.SQLStore) error {
		_, err := engine.New(s, s, fake.New(42), engine.WithBatchSize(64)).Run(ctx, []*schema.Entity{post, category})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 5, count(t, db, "SELECT COUNT(*) FROM category"))
	assert.Equal(t, 200, count(t, db, "SELECT COUNT(*) FROM post"))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM post WHERE category_id IS NOT NULL AND category_id NOT IN (SELECT id FROM category)"))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM post WHERE length(title) > 100"))
}

func TestSeedSQLiteStrictRollsBack(t *testing.T) {
	db := openBlog(t)
	_, err := db.Exec(`ALTER TABLE post ADD COLUMN cover BLOB NOT NULL DEFAULT x''`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE attachment (id INTEGER PRIMARY KEY, name VARCHAR(20), data BLOB NOT NULL)`)
	require.NoError(t, err)

	d := &dialect.SQLiteDialect{}
	entities, err := schema.Analyze(context.Background(), db, d, "main")
	require.NoError(t, err)
	for _, e := range entities {
		e.Seed = &schema.SeedConfig{Count: 3}
	}

	ctx := context.Background()
	run := func(strict bool) error {
		return store.RunInTx(ctx, db, d, func(s *store.SQLStore) error {
			_, err := engine.New(s, s, fake.New(1), engine.WithStrict(strict)).Run(ctx, entities)
			return err
		})
	}

	// attachment.data has no generator, so its insert violates NOT NULL
	var be *engine.BatchError
	require.ErrorAs(t, run(true), &be)
	assert.Equal(t, "attachment", be.Entity)
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM category"))

	require.NoError(t, run(false))
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM attachment"))
	assert.Equal(t, 3, count(t, db, "SELECT COUNT(*) FROM category"))
	assert.Equal(t, 3, count(t, db, "SELECT COUNT(*) FROM post"))
}

func TestClean(t *testing.T) {
	db := openBlog(t)
	_, err := db.Exec(`INSERT INTO category (name, slug) VALUES ('a', 'a'), ('b', 'b')`)
	require.NoError(t, err)
	category, _ := analyzeBlog(t, db)

	err = store.RunInTx(context.Background(), db, &dialect.SQLiteDialect{}, func(s *store.SQLStore) error {
		return s.Clean(context.Background(), category)
	})
	require.NoError(t, err)
	assert.Zero(t, count(t, db, "SELECT COUNT(*) FROM category"))
}
