package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/follow-the-money/internal/cli"
)

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Normalize and stage raw source records",
		Long: `Read newline-delimited JSON records produced by the source adapters,
normalize them to the canonical article schema, apply the lightweight
tier-1 fraud filter, and stage the survivors for loading.

With no arguments, known adapter output files are picked up from the
configured data directory.`,
		RunE: runIngest,
	}

	cmd.Flags().String("data-dir", "", "Directory to scan for adapter output files (default: ./data)")
	_ = viper.BindPFlag("data.dir", cmd.Flags().Lookup("data-dir"))

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	report, err := p.Ingest(ctx, sources)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Staged %d records (%d read, %d rejected, %d filtered)",
		report.Staged, report.Read, report.Rejected, report.Filtered)))

	return nil
}
