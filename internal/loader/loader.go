// Package loader persists classified articles in fixed-size batches with
// retry and partial-failure isolation.
package loader

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/follow-the-money/internal/common"
	"github.com/Veraticus/follow-the-money/internal/model"
	"github.com/Veraticus/follow-the-money/internal/service"
)

// Config holds configuration options for the loader.
type Config struct {
	Retry        service.RetryOptions
	BatchSize    int
	Concurrency  int
	ShowProgress bool
}

// DefaultConfig returns the default loader configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:   500,
		Concurrency: 4,
	}
}

// Loader writes classified articles to storage. Batches are mutually
// independent (the deduplicator guarantees at most one record per URL), so
// they may be issued concurrently up to the configured limit.
type Loader struct {
	storage      service.Storage
	batchSize    int
	concurrency  int
	retry        service.RetryOptions
	showProgress bool
}

// New creates a loader backed by the given storage.
func New(storage service.Storage, cfg Config) *Loader {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Loader{
		storage:      storage,
		batchSize:    cfg.BatchSize,
		concurrency:  cfg.Concurrency,
		retry:        cfg.Retry,
		showProgress: cfg.ShowProgress,
	}
}

// Load filters the stream to loadable fraud records, groups it into
// batches, and upserts each batch with bounded retries. A failed batch is
// recorded in the report and the run continues; only cancellation stops
// new batches from being issued. Every record ends up counted exactly once.
func (l *Loader) Load(ctx context.Context, articles []model.ClassifiedArticle) *model.LoadReport {
	report := &model.LoadReport{Attempted: len(articles)}

	loadable := make([]model.ClassifiedArticle, 0, len(articles))
	for _, a := range articles {
		if !a.IsFraud || strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.URL) == "" {
			report.Skipped++
			continue
		}
		loadable = append(loadable, a)
	}

	batches := chunk(loadable, l.batchSize)
	if len(batches) == 0 {
		return report
	}

	var bar *progressbar.ProgressBar
	if l.showProgress {
		bar = progressbar.Default(int64(len(batches)), "loading batches")
	}

	var mu sync.Mutex
	results := make([]model.BatchResult, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			result := model.BatchResult{Index: i, URLs: urlsOf(batch)}

			// A canceled run stops issuing batches; already-running
			// batches finish on their own.
			if gctx.Err() != nil {
				result.Status = model.BatchAbandoned
				result.Error = gctx.Err().Error()
			} else {
				err := common.WithRetry(gctx, func() error {
					return l.storage.UpsertArticles(gctx, batch)
				}, l.retry)

				switch {
				case err == nil:
					result.Status = model.BatchLoaded
				case gctx.Err() != nil:
					result.Status = model.BatchAbandoned
					result.Error = err.Error()
				default:
					result.Status = model.BatchFailed
					result.Error = err.Error()
					slog.Error("Batch load failed permanently",
						"batch", i,
						"records", len(batch),
						"error", err)
				}
			}

			mu.Lock()
			results[i] = result
			mu.Unlock()

			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, result := range results {
		report.Batches = append(report.Batches, result)
		switch result.Status {
		case model.BatchLoaded:
			report.Loaded += len(result.URLs)
		case model.BatchFailed:
			report.Failed += len(result.URLs)
		case model.BatchAbandoned:
			report.Abandoned += len(result.URLs)
		}
	}

	return report
}

func chunk(articles []model.ClassifiedArticle, size int) [][]model.ClassifiedArticle {
	var batches [][]model.ClassifiedArticle
	for start := 0; start < len(articles); start += size {
		end := start + size
		if end > len(articles) {
			end = len(articles)
		}
		batches = append(batches, articles[start:end])
	}
	return batches
}

func urlsOf(batch []model.ClassifiedArticle) []string {
	urls := make([]string, len(batch))
	for i, a := range batch {
		urls[i] = a.URL
	}
	return urls
}
