package cmd

import (
	"fmt"

	"db-seed/internal/schema"

	"github.com/spf13/cobra"
)

var orderCmd = &cobra.Command{
	Use:         "order",
	Short:       "Print the seeding order and any reference cycles",
	Annotations: map[string]string{offlineAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := LoadSettings()
		if err != nil {
			return err
		}
		entities, err := loadEntities(cmd.Context(), settings.DefaultCount)
		if err != nil {
			return err
		}
		if err := selectEntities(entities, targetTables(tables)); err != nil {
			return err
		}
		printOrder(schema.Resolve(entities))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(orderCmd)
	orderCmd.Flags().StringSliceVarP(&tables, "tables", "t", []string{}, "Specific tables to include (comma-separated)")
}

func printOrder(order schema.Order) {
	fmt.Printf("🔍 Seeding Order:\n")
	for i, e := range order.Entities {
		fmt.Printf("[%02d] %-20s x%-6d (Dependencies: %v)\n", i+1, e.TableName(), e.Seed.Count, e.Dependencies())
	}
	if len(order.Cycles) == 0 {
		return
	}
	fmt.Printf("\n%s\n", warnColor("Reference cycles:"))
	for _, c := range order.Cycles {
		closing := c.Path[len(c.Path)-1].Name + "." + c.Field.Name
		if c.Breakable() {
			fmt.Printf("  %s (%s left null)\n", c, closing)
		} else {
			fmt.Printf("  %s (%s)\n", c, errColor(closing+" is required, fails with --strict"))
		}
	}
}
