package cmd

import (
	"testing"

	"db-seed/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectEntities(t *testing.T) {
	build := func() []*schema.Entity {
		return []*schema.Entity{
			{Name: "Category", Table: "blog_category", Seed: &schema.SeedConfig{Count: 1}},
			{Name: "Post", Seed: &schema.SeedConfig{Count: 1}},
			{Name: "Tag", Seed: &schema.SeedConfig{Count: 1}},
		}
	}

	entities := build()
	require.NoError(t, selectEntities(entities, []string{"blog_category", " post"}))
	assert.True(t, entities[0].Seeded())
	assert.True(t, entities[1].Seeded())
	assert.False(t, entities[2].Seeded())

	entities = build()
	require.NoError(t, selectEntities(entities, nil))
	for _, e := range entities {
		assert.True(t, e.Seeded())
	}

	assert.Error(t, selectEntities(build(), []string{"missing"}))
}

func TestDetectDriver(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost/db":               "postgres",
		"host=localhost sslmode=disable":            "postgres",
		"sqlserver://sa:pw@localhost?database=shop": "sqlserver",
		"oracle://u:p@localhost:1521/XE":            "oracle",
		"file:seed.db":                              "sqlite",
		"root:root@tcp(127.0.0.1:3306)/shop":        "mysql",
	}
	for in, want := range tests {
		assert.Equal(t, want, detectDriver(in), in)
	}
}
