package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/follow-the-money/internal/cli"
	"github.com/Veraticus/follow-the-money/internal/service"
)

func articlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "List stored articles",
		Long: `Query the article store. By default only fraud-classified articles are
shown, newest first.`,
		RunE: runArticles,
	}

	cmd.Flags().String("source", "", "Filter by source identifier")
	cmd.Flags().String("feed", "", "Filter by feed identifier")
	cmd.Flags().Bool("all", false, "Include articles not classified as fraud")
	cmd.Flags().Int("limit", 20, "Maximum number of articles to show")

	return cmd
}

func runArticles(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	source, _ := cmd.Flags().GetString("source")
	feed, _ := cmd.Flags().GetString("feed")
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")

	articles, err := store.GetArticles(ctx, service.ArticleFilter{
		Source:    source,
		Feed:      feed,
		FraudOnly: !all,
		Limit:     limit,
	})
	if err != nil {
		return fmt.Errorf("failed to query articles: %w", err)
	}

	total, err := store.CountArticles(ctx)
	if err != nil {
		return fmt.Errorf("failed to count articles: %w", err)
	}

	if len(articles) == 0 {
		fmt.Println(cli.FormatWarning("No matching articles"))
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Articles (%d shown, %d stored)", len(articles), total)))
	for _, a := range articles {
		date := "          "
		if a.PublishedAt != nil {
			date = a.PublishedAt.Format("2006-01-02")
		}
		fmt.Printf("%s  %5.1f  %-20s %s\n", date, a.FraudScore, a.Source, a.Title)
		fmt.Println(cli.SubtleStyle.Render("            " + a.URL))
	}

	return nil
}
