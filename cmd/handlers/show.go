package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"policybrief/internal/config"
	"policybrief/internal/core"
)

// NewShowCmd creates the show command, which prints an edition and its
// articles to stdout.
func NewShowCmd() *cobra.Command {
	var date string
	var full bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the edition for a date",
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
				return err
			}
			if edition == nil {
				return fmt.Errorf("no edition exists for %s", date)
			}
			articles, err := db.Articles().ListByEdition(ctx, edition.ID)
			if err != nil {
				return err
			}

			fmt.Printf("Edition #%d  %s  [%s]\n", edition.IssueNumber, edition.Date, edition.Status)
			if edition.FeaturedTitle != nil {
				fmt.Printf("Featured: %s\n", *edition.FeaturedTitle)
			}
			fmt.Println(strings.Repeat("-", 60))

			for _, a := range articles {
				printArticle(a, full)
			}
			fmt.Printf("%d articles\n", len(articles))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "edition date as YYYY-MM-DD (default today, UTC)")
	cmd.Flags().BoolVar(&full, "full", false, "include the analysis text for each article")
	return cmd
}

func printArticle(a core.Article, full bool) {
	pos := " "
	if a.Position != nil {
		pos = fmt.Sprintf("%d", *a.Position)
	}
	fmt.Printf("%s. [%s] %s (%s, score %d)\n", pos, a.Status, a.Title, a.SourceName, a.Score)
	if full && a.Analysis != nil {
		fmt.Println()
		fmt.Println(*a.Analysis)
		fmt.Println()
	}
}
