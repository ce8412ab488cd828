package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"policybrief/internal/config"
)

// NewResetCmd creates the reset command, which deletes an edition and its
// articles wholesale.
func NewResetCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the edition for a date, cascading to its articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}

			cfg := config.Get()
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Editions().DeleteByDate(cmd.Context(), date); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			fmt.Printf("Edition for %s removed\n", date)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "edition date as YYYY-MM-DD (default today, UTC)")
	return cmd
}
