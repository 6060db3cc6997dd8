// Package pipeline orchestrates one ingest-to-load run: read raw records,
// normalize, score, deduplicate, and persist.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/follow-the-money/internal/classify"
	"github.com/Veraticus/follow-the-money/internal/dedupe"
	"github.com/Veraticus/follow-the-money/internal/loader"
	"github.com/Veraticus/follow-the-money/internal/model"
	"github.com/Veraticus/follow-the-money/internal/normalize"
	"github.com/Veraticus/follow-the-money/internal/service"
)

// FileSource pairs an adapter output file with its source spec.
type FileSource struct {
	Path string
	Spec normalize.SourceSpec
}

// Pipeline wires the stages together around one storage instance. The
// stages before deduplication run sequentially per record, so the
// deduplicator always observes a deterministic order.
type Pipeline struct {
	storage service.Storage
	filter  *classify.Classifier
	scorer  *classify.Classifier
	loader  *loader.Loader
}

// New creates a pipeline. filter is the tier-1 classifier applied at
// ingest; scorer is the tier-2 classifier applied at load.
func New(storage service.Storage, filter, scorer *classify.Classifier, l *loader.Loader) *Pipeline {
	return &Pipeline{
		storage: storage,
		filter:  filter,
		scorer:  scorer,
		loader:  l,
	}
}

// Ingest reads each source file, normalizes its records, applies the
// tier-1 filter, and stages the survivors. Per-record defects are counted,
// never fatal.
func (p *Pipeline) Ingest(ctx context.Context, sources []FileSource) (*model.RunReport, error) {
	report := &model.RunReport{}

	for _, src := range sources {
		staged, err := p.ingestSource(ctx, src, report)
		if err != nil {
			return report, err
		}
		if len(staged) == 0 {
			continue
		}
		if err := p.storage.SaveStagedRecords(ctx, staged); err != nil {
			return report, fmt.Errorf("failed to stage records from %s: %w", src.Path, err)
		}
		report.Staged += len(staged)
	}

	slog.Info("Ingest complete",
		"read", report.Read,
		"malformed", report.Malformed,
		"rejected", report.Rejected,
		"filtered", report.Filtered,
		"staged", report.Staged)

	return report, nil
}

func (p *Pipeline) ingestSource(ctx context.Context, src FileSource, report *model.RunReport) ([]model.ClassifiedArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, malformed, err := normalize.ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src.Path, err)
	}
	report.Read += len(records) + malformed
	report.Malformed += malformed

	normalizer := normalize.New(src.Spec)
	var staged []model.ClassifiedArticle
	for _, record := range records {
		article, err := normalizer.Normalize(record)
		if err != nil {
			report.Rejected++
			continue
		}

		classified := p.filter.Classify(*article)
		if !classified.IsFraud {
			report.Filtered++
			continue
		}
		staged = append(staged, classified)
	}

	slog.Info("Ingested source",
		"source", src.Spec.Source,
		"feed", src.Spec.Feed,
		"path", src.Path,
		"records", len(records),
		"staged", len(staged))

	return staged, nil
}

// Load drains the staging table, applies the tier-2 classifier,
// deduplicates by URL, and batch-upserts the result. Staged records are
// cleared only after a fully clean load so failed batches can be retried
// by re-running load.
func (p *Pipeline) Load(ctx context.Context) (*model.RunReport, error) {
	staged, err := p.storage.GetStagedRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read staged records: %w", err)
	}

	report := p.loadRecords(ctx, staged)

	if report.Load.Failed == 0 && report.Load.Abandoned == 0 && len(staged) > 0 {
		if err := p.storage.ClearStagedRecords(ctx); err != nil {
			return report, fmt.Errorf("failed to clear staging: %w", err)
		}
	}

	return report, nil
}

// LoadFiles bypasses staging: it normalizes and scores the given files
// directly, then deduplicates and loads. Tier-1 filtering is skipped; the
// tier-2 threshold alone decides what persists.
func (p *Pipeline) LoadFiles(ctx context.Context, sources []FileSource) (*model.RunReport, error) {
	report := &model.RunReport{}

	var all []model.ClassifiedArticle
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		f, err := os.Open(src.Path)
		if err != nil {
			return report, fmt.Errorf("failed to open source: %w", err)
		}
		records, malformed, err := normalize.ReadRecords(f)
		_ = f.Close()
		if err != nil {
			return report, fmt.Errorf("failed to read %s: %w", src.Path, err)
		}
		report.Read += len(records) + malformed
		report.Malformed += malformed

		normalizer := normalize.New(src.Spec)
		for _, record := range records {
			article, err := normalizer.Normalize(record)
			if err != nil {
				report.Rejected++
				continue
			}
			all = append(all, model.ClassifiedArticle{Article: *article})
		}
	}

	loaded := p.loadRecords(ctx, all)
	loaded.Read = report.Read
	loaded.Malformed = report.Malformed
	loaded.Rejected = report.Rejected
	return loaded, nil
}

// loadRecords runs the tier-2 classify → dedupe → batch load tail of the
// pipeline. The deduplicator fully drains the classified stream before the
// loader sees a single record.
func (p *Pipeline) loadRecords(ctx context.Context, records []model.ClassifiedArticle) *model.RunReport {
	report := &model.RunReport{}

	d := dedupe.New()
	for _, record := range records {
		classified := p.scorer.Classify(record.Article)
		if classified.IsFraud {
			report.Classified++
		}
		d.Add(classified)
	}
	report.Duplicates = d.Collapsed()

	report.Load = *p.loader.Load(ctx, d.Records())

	slog.Info("Load complete",
		"classified", report.Classified,
		"duplicates", report.Duplicates,
		"loaded", report.Load.Loaded,
		"skipped", report.Load.Skipped,
		"failed", report.Load.Failed,
		"abandoned", report.Load.Abandoned)

	return report
}

// Run executes ingest followed by load and merges the two reports.
func (p *Pipeline) Run(ctx context.Context, sources []FileSource) (*model.RunReport, error) {
	ingestReport, err := p.Ingest(ctx, sources)
	if err != nil {
		return ingestReport, err
	}

	loadReport, err := p.Load(ctx)
	if err != nil {
		return loadReport, err
	}

	return &model.RunReport{
		Read:       ingestReport.Read,
		Malformed:  ingestReport.Malformed,
		Rejected:   ingestReport.Rejected,
		Filtered:   ingestReport.Filtered,
		Staged:     ingestReport.Staged,
		Classified: loadReport.Classified,
		Duplicates: loadReport.Duplicates,
		Load:       loadReport.Load,
	}, nil
}
