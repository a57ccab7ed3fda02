package cmd

import (
	"context"
	"fmt"
	"log"

	"db-seed/internal/dialect"
	"db-seed/internal/schema"
	"db-seed/internal/store"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete all rows from the seeded tables, children first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		settings, err := LoadSettings()
		if err != nil {
			return err
		}
		entities, err := loadEntities(ctx, settings.DefaultCount)
		if err != nil {
			return err
		}
		if err := selectEntities(entities, targetTables(tables)); err != nil {
			return err
		}
		order := schema.Resolve(entities).Entities
		err = store.RunInTx(ctx, DB, Dialect, func(s *store.SQLStore) error {
			cleanEntities(ctx, s, Dialect, order)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to commit cleaning transaction: %w", err)
		}
		log.Println("Database Cleaned Successfully!")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Specific tables to clean (comma-separated)")
}

// cleanEntities empties tables in reverse dependency order on a store bound by
// store.RunInTx. Every step runs in its own savepoint: a table that cannot be
// cleaned is reported and skipped without aborting the transaction.
func cleanEntities(ctx context.Context, s *store.SQLStore, d dialect.Dialect, order []*schema.Entity) {
	tx := s.Tx()

	log.Println("Disabling Foreign Key Checks...")
	if err := s.Savepoint(ctx, "seed_clean", func() error { return d.BeforeClean(tx) }); err != nil {
		log.Printf("Warning: Failed to disable foreign key checks: %v. Continuing...\n", err)
	}

	total := len(order)
	for i := total - 1; i >= 0; i-- {
		e := order[i]
		if err := s.Savepoint(ctx, "seed_clean", func() error { return s.Clean(ctx, e) }); err != nil {
			log.Printf("Warning: %v (continuing...)\n", err)
		}
		if done := total - i; done%5 == 0 || done == total {
			log.Printf("Cleaned %d/%d tables...", done, total)
		}
	}

	log.Println("Enabling Foreign Key Checks...")
	if err := s.Savepoint(ctx, "seed_clean", func() error { return d.AfterClean(tx) }); err != nil {
		log.Printf("Warning: Failed to enable foreign key checks: %v\n", err)
	}
}
