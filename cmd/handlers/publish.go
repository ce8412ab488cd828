package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"policybrief/internal/config"
	"policybrief/internal/core"
)

// NewPublishCmd creates the publish command, which marks an edition as sent.
func NewPublishCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Mark the edition for a date as sent",
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

			ctx := cmd.Context()
			edition, err := db.Editions().GetByDate(ctx, date)
			if err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}
			if edition == nil {
				return fmt.Errorf("no edition exists for %s", date)
			}
			if err := db.Editions().UpdateStatus(ctx, edition.ID, core.EditionSent); err != nil {
				return fmt.Errorf("publish failed: %w", err)
			}
			fmt.Printf("Edition #%d (%s) marked as sent\n", edition.IssueNumber, edition.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "edition date as YYYY-MM-DD (default today, UTC)")
	return cmd
}
