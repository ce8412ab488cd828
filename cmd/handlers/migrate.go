package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"policybrief/internal/config"
	"policybrief/internal/persistence"
)

// NewMigrateCmd creates the migrate command, which applies pending schema
// migrations.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := persistence.NewMigrationManager(db).Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Database schema is up to date")
			return nil
		},
	}
}
