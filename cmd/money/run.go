package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/follow-the-money/internal/cli"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [files...]",
		Short: "Run the full pipeline: ingest then load",
		Long: `Run ingest and load back to back: normalize raw source records,
filter and stage them, classify with the extended keyword table,
deduplicate by URL, and upsert into the article store.`,
		RunE: runAll,
	}
}

func runAll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sources, err := resolveSources(args)
	if err != nil {
		return err
	}

	p, store, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := p.Run(ctx, sources)
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Println(cli.RenderRunReport(report))

	return nil
}
