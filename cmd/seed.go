package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample customers and orders into the database",
	Long:  `Replaces the database contents with a small set of sample customers, orders, and balances for local development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := store.Seed(context.Background(), db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}

		fmt.Println("Sample data loaded.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
