package cmd

import (
	"context"
	"fmt"

	"db-seed/internal/engine"
	"db-seed/internal/schema"
	"db-seed/internal/store"

	"github.com/fatih/color"
)

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	errColor  = color.New(color.FgRed).SprintFunc()
	dimColor  = color.New(color.Faint).SprintFunc()
)

// rowCounts reads the current row count of every seeded entity. Tables that
// cannot be counted are left out.
func rowCounts(ctx context.Context, s *store.SQLStore, entities []*schema.Entity) map[string]int {
	counts := make(map[string]int)
	for _, e := range entities {
		if n, err := s.Count(ctx, e); err == nil {
			counts[e.Name] = n
		}
	}
	return counts
}

// printReport compares what the seeder says it wrote with the row counts the
// database reports before and after the run.
func printReport(results []engine.Result, before, after map[string]int) {
	fmt.Println("\n📊 Summary Report (Dependency Order):")
	total := 0
	for i, r := range results {
		actual := -1
		b, okB := before[r.Entity]
		a, okA := after[r.Entity]
		if okB && okA {
			actual = a - b
		}

		icon := okColor("✓")
		status := r.Status
		switch {
		case r.Status == engine.StatusSkipped:
			icon = dimColor("-")
		case actual < 0:
			icon = warnColor("?")
			status += " (unverified)"
		case actual != r.Written:
			icon = errColor("!")
			status = fmt.Sprintf("MISMATCH: %d reported, %d found", r.Written, actual)
		case r.Status == engine.StatusOK:
			status = "OK (Verified)"
		case r.Status == engine.StatusFailed:
			icon = errColor("✗")
		default:
			icon = warnColor("!")
		}

		fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows (Target: %d) - %s\n",
			icon, i+1, len(results), r.Table, r.Written, r.Target, status)
		if r.FieldErrors > 0 {
			fmt.Printf("    └ %d field values could not be generated\n", r.FieldErrors)
		}
		if r.Failed > 0 {
			fmt.Printf("    └ %d records lost with rejected batches\n", r.Failed)
		}
		if len(r.Omitted) > 0 {
			fmt.Printf("    └ left to column defaults: %v\n", r.Omitted)
		}
		total += r.Written
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total Records: %d\n", total)
}
