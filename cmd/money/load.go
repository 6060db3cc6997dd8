package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/follow-the-money/internal/cli"
	"github.com/Veraticus/follow-the-money/internal/model"
)

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [files...]",
		Short: "Classify, deduplicate, and upsert staged records",
		Long: `Apply the extended tier-2 fraud classifier to staged records,
collapse duplicates by URL keeping the best-scoring variant, and upsert
the result into the article store in batches.

Failed batches are reported with their URLs and do not abort the run.
With --from-files, the given JSONL files are loaded directly, bypassing
the staging table.`,
		RunE: runLoad,
	}

	cmd.Flags().Bool("from-files", false, "Load directly from JSONL files instead of the staging table")
	cmd.Flags().Int("batch-size", 0, "Maximum records per upsert batch (default 500)")
	cmd.Flags().Int("concurrency", 0, "Concurrent upsert batches (default 4)")
	cmd.Flags().Bool("progress", false, "Show a progress bar while loading")

	_ = viper.BindPFlag("load.batch_size", cmd.Flags().Lookup("batch-size"))
	_ = viper.BindPFlag("load.concurrency", cmd.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("load.progress", cmd.Flags().Lookup("progress"))

	return cmd
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fromFiles, _ := cmd.Flags().GetBool("from-files")

	p, store, err := initPipeline(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var report *model.RunReport
	if fromFiles {
		sources, srcErr := resolveSources(args)
		if srcErr != nil {
			return srcErr
		}
		report, err = p.LoadFiles(ctx, sources)
	} else {
		report, err = p.Load(ctx)
	}
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	fmt.Println(cli.RenderLoadReport(&report.Load))

	if report.Load.Failed > 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("%d records failed to load; see report above", report.Load.Failed)))
	}

	return nil
}
