package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/follow-the-money/internal/classify"
	"github.com/Veraticus/follow-the-money/internal/cli"
)

func keywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Show the active keyword tables",
		Long: `Print the tier-1 filter table and tier-2 classification table with
their thresholds and weights, after applying any configured overrides.`,
		RunE: runKeywords,
	}
}

func runKeywords(_ *cobra.Command, _ []string) error {
	filter, scorer, err := initClassifiers()
	if err != nil {
		return err
	}

	for _, c := range []*classify.Classifier{filter, scorer} {
		table := c.Table()
		terms := make([]string, len(table.Keywords))
		weights := make([]float64, len(table.Keywords))
		for i, kw := range table.Keywords {
			terms[i] = kw.Term
			weights[i] = kw.Weight
		}
		fmt.Println(cli.RenderKeywordTable(table.Name, table.MinHits, terms, weights))
	}

	return nil
}
