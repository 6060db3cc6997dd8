package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/follow-the-money/internal/classify"
	"github.com/Veraticus/follow-the-money/internal/common"
	"github.com/Veraticus/follow-the-money/internal/config"
	"github.com/Veraticus/follow-the-money/internal/loader"
	"github.com/Veraticus/follow-the-money/internal/normalize"
	"github.com/Veraticus/follow-the-money/internal/pipeline"
	"github.com/Veraticus/follow-the-money/internal/service"
	"github.com/Veraticus/follow-the-money/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadKeywordTable loads a table from the configured path, or falls back
// to the compiled-in default. A malformed table is fatal: the run must not
// proceed with an undefined scoring function.
func loadKeywordTable(configKey string, fallback func() *classify.Table) (*classify.Table, error) {
	path := viper.GetString(configKey)
	if path == "" {
		table := fallback()
		if err := table.Validate(); err != nil {
			return nil, err
		}
		return table, nil
	}

	table, err := classify.LoadTable(config.ExpandPath(path))
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot load keyword table from %s", path), err)
	}
	return table, nil
}

// initClassifiers builds the tier-1 filter and tier-2 scorer from config.
func initClassifiers() (filter, scorer *classify.Classifier, err error) {
	filterTable, err := loadKeywordTable("keywords.filter_table", classify.FilterTable)
	if err != nil {
		return nil, nil, err
	}
	scorerTable, err := loadKeywordTable("keywords.classify_table", classify.ClassifyTable)
	if err != nil {
		return nil, nil, err
	}

	filter, err = classify.New(filterTable)
	if err != nil {
		return nil, nil, err
	}
	scorer, err = classify.New(scorerTable)
	if err != nil {
		return nil, nil, err
	}
	return filter, scorer, nil
}

// initPipeline wires storage, classifiers, and loader into a pipeline.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, service.Storage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	filter, scorer, err := initClassifiers()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	cfg := loader.DefaultConfig()
	if batchSize := viper.GetInt("load.batch_size"); batchSize > 0 {
		cfg.BatchSize = batchSize
	}
	if concurrency := viper.GetInt("load.concurrency"); concurrency > 0 {
		cfg.Concurrency = concurrency
	}
	cfg.Retry = service.RetryOptions{
		MaxAttempts:  viper.GetInt("load.max_attempts"),
		InitialDelay: viper.GetDuration("load.initial_delay"),
		MaxDelay:     30 * time.Second,
	}
	cfg.ShowProgress = viper.GetBool("load.progress")

	l := loader.New(store, cfg)
	return pipeline.New(store, filter, scorer, l), store, nil
}

// resolveSources turns CLI args (or the configured data dir) into file
// sources. With no args, known adapter output files in the data dir are
// picked up, mirroring the adapters' default layout.
func resolveSources(args []string) ([]pipeline.FileSource, error) {
	if len(args) > 0 {
		sources := make([]pipeline.FileSource, 0, len(args))
		for _, path := range args {
			path = config.ExpandPath(path)
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("cannot read source file %s: %w", path, err)
			}
			sources = append(sources, pipeline.FileSource{
				Path: path,
				Spec: normalize.SpecForFile(path),
			})
		}
		return sources, nil
	}

	dataDir := viper.GetString("data.dir")
	if dataDir == "" {
		dataDir = "data"
	}
	dataDir = config.ExpandPath(dataDir)

	known := normalize.KnownFiles()
	sort.Strings(known)

	var sources []pipeline.FileSource
	for _, name := range known {
		path := filepath.Join(dataDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		sources = append(sources, pipeline.FileSource{
			Path: path,
			Spec: normalize.SpecForFile(path),
		})
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no source files found in %s", common.ErrMissingConfig, dataDir)
	}
	return sources, nil
}
