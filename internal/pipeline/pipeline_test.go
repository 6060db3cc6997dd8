package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/follow-the-money/internal/classify"
	"github.com/Veraticus/follow-the-money/internal/loader"
	"github.com/Veraticus/follow-the-money/internal/normalize"
	"github.com/Veraticus/follow-the-money/internal/service"
	"github.com/Veraticus/follow-the-money/internal/storage"
)

func createTestPipeline(t *testing.T) (*Pipeline, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	filter, err := classify.New(classify.FilterTable())
	require.NoError(t, err)
	scorer, err := classify.New(classify.ClassifyTable())
	require.NoError(t, err)

	l := loader.New(store, loader.Config{
		BatchSize: 100,
		Retry:     service.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond},
	})

	return New(store, filter, scorer, l), store
}

func writeSource(t *testing.T, dir, name string, lines ...string) FileSource {
	t.Helper()
	path := filepath.Join(dir, name)
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return FileSource{Path: path, Spec: normalize.SpecForFile(path)}
}

func TestPipeline_Run(t *testing.T) {
	p, store := createTestPipeline(t)
	dir := t.TempDir()
	ctx := context.Background()

	src := writeSource(t, dir, "ftc_press_releases.jsonl",
		// Two tier-2 hits: loads.
		`{"title":"FTC Sues Scam Operation","url":"https://x/1","body":"The company ran a phishing scam defrauding consumers.","published":"2024-03-15"}`,
		// One tier-1 hit but only one tier-2 hit: staged, then not fraud at load.
		`{"title":"Scam awareness week","url":"https://x/2","body":"General consumer education."}`,
		// No keywords at all: filtered at tier 1.
		`{"title":"Agency hires new economist","url":"https://x/3","body":"Staffing news."}`,
		// Missing url: rejected by the normalizer.
		`{"title":"Orphan record"}`,
		// Malformed line.
		`{broken`,
	)

	report, err := p.Run(ctx, []FileSource{src})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Read)
	assert.Equal(t, 1, report.Malformed)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 1, report.Filtered)
	assert.Equal(t, 2, report.Staged)
	assert.Equal(t, 1, report.Classified)
	assert.Equal(t, 1, report.Load.Loaded)
	assert.Equal(t, 1, report.Load.Skipped, "single-hit record is skipped at tier 2")
	assert.Equal(t, 0, report.Load.Failed)

	got, err := store.GetArticleByURL(ctx, "https://x/1")
	require.NoError(t, err)
	assert.Equal(t, "ftc_press", got.Source)
	assert.Equal(t, 2, got.FraudHits, `"defrauding" must not count as a "fraud" hit, and the repeated "scam" counts once`)
	assert.Equal(t, 2.0, got.FraudScore)
	assert.True(t, got.IsFraud)

	// A clean load drains staging.
	staged, err := store.GetStagedRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestPipeline_DedupeAcrossSources(t *testing.T) {
	p, store := createTestPipeline(t)
	dir := t.TempDir()
	ctx := context.Background()

	press := writeSource(t, dir, "ftc_press_releases.jsonl",
		`{"title":"Phishing scam shut down","url":"https://x/dup","body":"A phishing scam."}`,
	)
	scams := writeSource(t, dir, "ftc_consumer_scams.jsonl",
		`{"title":"Phishing scam shut down","url":"https://x/dup","body":"A phishing scam built on identity theft."}`,
	)

	report, err := p.Run(ctx, []FileSource{press, scams})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Load.Loaded)

	got, err := store.GetArticleByURL(ctx, "https://x/dup")
	require.NoError(t, err)
	assert.Equal(t, "ftc_consumer_scams", got.Source, "higher-scoring variant wins")

	count, err := store.CountArticles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPipeline_IngestThenSeparateLoad(t *testing.T) {
	p, store := createTestPipeline(t)
	dir := t.TempDir()
	ctx := context.Background()

	src := writeSource(t, dir, "ftc_legal_cases.jsonl",
		`{"title":"Wire fraud scheme indictment","url":"https://x/1","content":"Defendants ran a wire fraud scheme."}`,
	)

	ingestReport, err := p.Ingest(ctx, []FileSource{src})
	require.NoError(t, err)
	assert.Equal(t, 1, ingestReport.Staged)

	staged, err := store.GetStagedRecords(ctx)
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, "ftc_legal_cases", staged[0].Source)
	assert.Equal(t, "Defendants ran a wire fraud scheme.", staged[0].Body, "content key maps to body")

	loadReport, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loadReport.Load.Loaded)

	_, err = store.GetArticleByURL(ctx, "https://x/1")
	require.NoError(t, err)
}

func TestPipeline_LoadFilesBypassesStaging(t *testing.T) {
	p, store := createTestPipeline(t)
	dir := t.TempDir()
	ctx := context.Background()

	src := writeSource(t, dir, "ftc_consumer_scams.jsonl",
		`{"title":"Refund scam alert","url":"https://x/1","body":"A refund scam and a phishing wave."}`,
	)

	report, err := p.LoadFiles(ctx, []FileSource{src})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Load.Loaded)

	staged, err := store.GetStagedRecords(ctx)
	require.NoError(t, err)
	assert.Empty(t, staged, "direct load must not touch staging")
}

func TestPipeline_MissingSourceFileFails(t *testing.T) {
	p, _ := createTestPipeline(t)

	_, err := p.Ingest(context.Background(), []FileSource{{
		Path: "/nonexistent/file.jsonl",
		Spec: normalize.DefaultSpec("ghost", ""),
	}})
	require.Error(t, err)
}
