package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"policybrief/internal/config"
	"policybrief/internal/core"
	"policybrief/internal/logger"
)

// NewCurateCmd creates the curate command, the cron entry point of the
// pipeline.
func NewCurateCmd() *cobra.Command {
	var (
		date  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Curate the edition for a date",
		Long: `Curate fetches policy news candidates, selects and ranks them,
generates impact analyses for the top stories and persists the result as the
edition for the given date.

Curation is idempotent: if an edition already exists for the date it is left
untouched. Pass --force to delete it and curate from scratch.

Examples:
  policybrief curate
  policybrief curate --date 2026-08-29
  policybrief curate --date 2026-08-29 --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurate(cmd.Context(), date, force)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "edition date as YYYY-MM-DD (default today, UTC)")
	cmd.Flags().BoolVar(&force, "force", false, "delete any existing edition for the date first")

	return cmd
}

func runCurate(ctx context.Context, date string, force bool) error {
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid date %q: %w", date, err)
	}

	log := logger.Get()
	log.Info("starting curation", "date", date, "force", force)

	cfg := config.Get()
	cur, db, cleanup, err := buildCurator(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	start := time.Now()

	var edition *core.Edition
	if force {
		edition, err = cur.ForceRecurate(ctx, date)
	} else {
		edition, err = cur.Curate(ctx, date)
	}
	if err != nil {
		return fmt.Errorf("curation failed: %w", err)
	}

	articles, err := db.Articles().ListByEdition(ctx, edition.ID)
	if err != nil {
		return fmt.Errorf("failed to load curated articles: %w", err)
	}

	analyzed := 0
	for _, a := range articles {
		if a.Analysis != nil {
			analyzed++
		}
	}

	fmt.Printf("Edition #%d for %s (%s)\n", edition.IssueNumber, edition.Date, edition.Status)
	if edition.FeaturedTitle != nil {
		fmt.Printf("  Featured: %s\n", *edition.FeaturedTitle)
	}
	fmt.Printf("  Articles: %d (%d analyzed, %d queued)\n", len(articles), analyzed, len(articles)-analyzed)
	fmt.Printf("  Duration: %s\n", time.Since(start).Round(time.Millisecond))

	return nil
}
