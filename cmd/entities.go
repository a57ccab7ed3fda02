package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"db-seed/internal/schema"

	"github.com/spf13/viper"
)

// loadEntities reads the schema file, or introspects the connected database
// and seeds every table with count rows.
func loadEntities(ctx context.Context, count int) ([]*schema.Entity, error) {
	if schemaFile != "" {
		log.Printf("Loading schema from %s", schemaFile)
		return schema.LoadFile(schemaFile)
	}

	log.Printf("Analyzing schema %q...", SchemaName)
	entities, err := schema.Analyze(ctx, DB, Dialect, SchemaName)
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, fmt.Errorf("no tables found in schema %q", SchemaName)
	}
	for _, e := range entities {
		e.Seed = &schema.SeedConfig{Count: count}
	}
	return entities, nil
}

// targetTables applies the precedence Flag > Config > All.
func targetTables(flag []string) []string {
	if len(flag) > 0 {
		return flag
	}
	return viper.GetStringSlice("settings.tables")
}

// selectEntities keeps the seed configuration of the named entities only. The
// others stay in the list so references to them still resolve.
func selectEntities(entities []*schema.Entity, names []string) error {
	if len(names) == 0 {
		return nil
	}

	wanted := make(map[string]bool)
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}

	matched := 0
	for _, e := range entities {
		if wanted[strings.ToLower(e.Name)] || wanted[strings.ToLower(e.TableName())] {
			matched++
			continue
		}
		e.Seed = nil
	}
	if matched == 0 {
		return fmt.Errorf("no matching tables found for inputs: %v", names)
	}
	return nil
}
