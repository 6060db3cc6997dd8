package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/follow-the-money/internal/common"
	"github.com/Veraticus/follow-the-money/internal/model"
	"github.com/Veraticus/follow-the-money/internal/service"
)

// mockStorage records upserted batches and injects failures for specific URLs.
type mockStorage struct {
	failURLs     map[string]int // URL -> remaining failures (-1 means always fail)
	upserted     map[string]model.ClassifiedArticle
	mu           sync.Mutex
	upsertCalls  int
	failNonRetry bool
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		failURLs: make(map[string]int),
		upserted: make(map[string]model.ClassifiedArticle),
	}
}

func (m *mockStorage) UpsertArticles(_ context.Context, articles []model.ClassifiedArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++

	for _, a := range articles {
		remaining, ok := m.failURLs[a.URL]
		if !ok {
			continue
		}
		if remaining != 0 {
			if remaining > 0 {
				m.failURLs[a.URL] = remaining - 1
			}
			if m.failNonRetry {
				return &common.RetryableError{Err: errors.New("constraint violation"), Retryable: false}
			}
			return fmt.Errorf("%w: connection reset", common.ErrStoreUnavailable)
		}
	}

	for _, a := range articles {
		m.upserted[a.URL] = a
	}
	return nil
}

func (m *mockStorage) GetArticleByURL(context.Context, string) (*model.ClassifiedArticle, error) {
	return nil, common.ErrNotFound
}

func (m *mockStorage) GetArticles(context.Context, service.ArticleFilter) ([]model.ClassifiedArticle, error) {
	return nil, nil
}

func (m *mockStorage) CountArticles(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserted), nil
}

func (m *mockStorage) SaveStagedRecords(context.Context, []model.ClassifiedArticle) error {
	return nil
}

func (m *mockStorage) GetStagedRecords(context.Context) ([]model.ClassifiedArticle, error) {
	return nil, nil
}

func (m *mockStorage) ClearStagedRecords(context.Context) error { return nil }
func (m *mockStorage) Migrate(context.Context) error            { return nil }
func (m *mockStorage) Close() error                             { return nil }

func fraudArticle(url string) model.ClassifiedArticle {
	return model.ClassifiedArticle{
		Article: model.Article{
			Title:  "Title " + url,
			URL:    url,
			Source: "test",
		},
		IsFraud:    true,
		FraudHits:  2,
		FraudScore: 2,
	}
}

func fastRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestLoader_LoadAll(t *testing.T) {
	store := newMockStorage()
	l := New(store, Config{BatchSize: 2, Concurrency: 2, Retry: fastRetry()})

	var articles []model.ClassifiedArticle
	for i := 0; i < 5; i++ {
		articles = append(articles, fraudArticle(fmt.Sprintf("https://x/%d", i)))
	}

	report := l.Load(context.Background(), articles)

	assert.Equal(t, 5, report.Attempted)
	assert.Equal(t, 5, report.Loaded)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Len(t, report.Batches, 3, "5 records at batch size 2 means 3 batches")
	assert.Len(t, store.upserted, 5)
}

func TestLoader_SkipsNonFraudAndIncomplete(t *testing.T) {
	store := newMockStorage()
	l := New(store, Config{BatchSize: 10, Retry: fastRetry()})

	clean := fraudArticle("https://x/1")
	notFraud := fraudArticle("https://x/2")
	notFraud.IsFraud = false
	noTitle := fraudArticle("https://x/3")
	noTitle.Title = " "

	report := l.Load(context.Background(), []model.ClassifiedArticle{clean, notFraud, noTitle})

	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, 2, report.Skipped, "skipped records are counted, not errors")
	assert.Equal(t, 0, report.Failed)
}

func TestLoader_TransientFailureRetriesAndSucceeds(t *testing.T) {
	store := newMockStorage()
	store.failURLs["https://x/1"] = 2 // fail twice, succeed on third attempt
	l := New(store, Config{BatchSize: 10, Retry: fastRetry()})

	report := l.Load(context.Background(), []model.ClassifiedArticle{fraudArticle("https://x/1")})

	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, store.upsertCalls)
}

func TestLoader_PersistentFailureIsolatedToBatch(t *testing.T) {
	store := newMockStorage()
	store.failURLs["https://x/bad"] = -1
	l := New(store, Config{BatchSize: 2, Concurrency: 1, Retry: fastRetry()})

	articles := []model.ClassifiedArticle{
		fraudArticle("https://x/1"),
		fraudArticle("https://x/2"),
		fraudArticle("https://x/bad"),
		fraudArticle("https://x/3"),
		fraudArticle("https://x/4"),
	}

	report := l.Load(context.Background(), articles)

	assert.Equal(t, 3, report.Loaded, "other batches succeed")
	assert.Equal(t, 2, report.Failed, "the failing batch's records are failed together")
	assert.Contains(t, report.FailedURLs(), "https://x/bad")

	var failed *model.BatchResult
	for i := range report.Batches {
		if report.Batches[i].Status == model.BatchFailed {
			require.Nil(t, failed, "exactly one batch should fail")
			failed = &report.Batches[i]
		}
	}
	require.NotNil(t, failed)
	assert.Contains(t, failed.Error, "max retries exceeded")
}

func TestLoader_NonRetryableFailsFast(t *testing.T) {
	store := newMockStorage()
	store.failURLs["https://x/1"] = -1
	store.failNonRetry = true
	l := New(store, Config{BatchSize: 10, Retry: fastRetry()})

	report := l.Load(context.Background(), []model.ClassifiedArticle{fraudArticle("https://x/1")})

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, store.upsertCalls, "non-retryable errors must not be retried")
}

func TestLoader_CancellationAbandonsBatches(t *testing.T) {
	store := newMockStorage()
	l := New(store, Config{BatchSize: 1, Concurrency: 1, Retry: fastRetry()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	articles := []model.ClassifiedArticle{
		fraudArticle("https://x/1"),
		fraudArticle("https://x/2"),
	}
	report := l.Load(ctx, articles)

	assert.Equal(t, 0, report.Loaded)
	assert.Equal(t, 2, report.Abandoned, "canceled runs abandon unissued batches")
	for _, b := range report.Batches {
		assert.Equal(t, model.BatchAbandoned, b.Status, "no batch status may be ambiguous")
	}
}

func TestLoader_EmptyInput(t *testing.T) {
	store := newMockStorage()
	l := New(store, DefaultConfig())

	report := l.Load(context.Background(), nil)

	assert.Equal(t, 0, report.Attempted)
	assert.Empty(t, report.Batches)
}
