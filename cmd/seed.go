package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"db-seed/internal/dialect"
	"db-seed/internal/engine"
	"db-seed/internal/fake"
	"db-seed/internal/schema"
	"db-seed/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	count  int
	clean  bool
	dryRun bool
	tables []string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with generated records in dependency order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		settings, err := LoadSettings()
		if err != nil {
			return err
		}
		loc, err := settings.Location()
		if err != nil {
			return err
		}

		entities, err := loadEntities(ctx, settings.DefaultCount)
		if err != nil {
			return err
		}
		if schemaFile != "" && cmd.Flags().Changed("count") {
			for _, e := range entities {
				if e.Seeded() {
					e.Seed.Count = count
				}
			}
		}
		if err := selectEntities(entities, targetTables(tables)); err != nil {
			return err
		}

		order := schema.Resolve(entities)
		if len(order.Entities) == 0 {
			return fmt.Errorf("nothing to seed: no entity has a seed section")
		}

		if dryRun {
			log.Println("[SIMULATION] Dry-Run Mode Active: No data will be written.")
			printOrder(order)
			return nil
		}

		seed := settings.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		log.Printf("Using dialect %s, seed %d, batch size %d", DriverName, seed, settings.BatchSize)

		reporter := newProgressReporter(order.Entities)
		opts := []engine.Option{
			engine.WithBatchSize(settings.BatchSize),
			engine.WithStrict(settings.Strict),
			engine.WithReporter(reporter),
			engine.WithTimeZone(loc),
		}

		reporter.Start()
		results, before, err := seedDatabase(ctx, DB, Dialect, order.Entities, clean, fake.New(seed), opts...)
		reporter.Stop()

		after := rowCounts(ctx, store.New(DB, Dialect), order.Entities)
		printReport(results, before, after)

		if err != nil {
			msg := "Seed rolled back: no records were committed."
			if clean {
				msg = "Seed rolled back: no records were committed and no tables were cleaned."
			}
			fmt.Println(errColor(msg))
			return err
		}
		return nil
	},
}

// seedDatabase optionally cleans and then seeds in one transaction, so a
// rollback also restores the cleaned tables. before holds the row counts the
// seeder started from.
func seedDatabase(ctx context.Context, db *sql.DB, d dialect.Dialect, order []*schema.Entity, cleanFirst bool,
	src *fake.Source, opts ...engine.Option) (results []engine.Result, before map[string]int, err error) {
	err = store.RunInTx(ctx, db, d, func(s *store.SQLStore) error {
		if cleanFirst {
			cleanEntities(ctx, s, d, order)
		}
		before = rowCounts(ctx, s, order)

		var runErr error
		results, runErr = engine.New(s, s, src, opts...).Run(ctx, order)
		return runErr
	})
	return results, before, err
}

func init() {
	RootCmd.AddCommand(seedCmd)

	seedCmd.Flags().IntVar(&count, "count", 0, "Number of records per table (overrides config and schema file counts)")
	seedCmd.Flags().Int("batch-size", engine.DefaultBatchSize, "Records per insert batch")
	seedCmd.Flags().Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	seedCmd.Flags().Bool("strict", false, "Abort and roll back on the first failed field or batch")
	seedCmd.Flags().BoolVar(&clean, "clean", false, "Clean tables before seeding")
	seedCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the seeding order without writing to the DB")
	seedCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Specific tables to seed (comma-separated)")

	viper.BindPFlag("settings.default_count", seedCmd.Flags().Lookup("count"))
	viper.BindPFlag("settings.batch_size", seedCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("settings.seed", seedCmd.Flags().Lookup("seed"))
	viper.BindPFlag("settings.strict", seedCmd.Flags().Lookup("strict"))
}
