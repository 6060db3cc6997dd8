package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/Veraticus/follow-the-money/internal/common"
	"github.com/Veraticus/follow-the-money/internal/model"
	"github.com/Veraticus/follow-the-money/internal/service"
)

// wrapStoreErr marks transient sqlite conditions (busy, locked) as
// common.ErrStoreUnavailable so callers retry them; everything else is a
// permanent failure.
func wrapStoreErr(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%w: %s: %v", common.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// UpsertArticles inserts or fully overwrites articles keyed on URL, as one
// transaction. Last write wins at this layer; "best score wins" is the
// deduplicator's job, not the store's.
func (s *SQLiteStorage) UpsertArticles(ctx context.Context, articles []model.ClassifiedArticle) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateArticles(articles); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (
			url, source, feed, title, published_at, body, summary,
			is_fraud, fraud_hits, fraud_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			source = excluded.source,
			feed = excluded.feed,
			title = excluded.title,
			published_at = excluded.published_at,
			body = excluded.body,
			summary = excluded.summary,
			is_fraud = excluded.is_fraud,
			fraud_hits = excluded.fraud_hits,
			fraud_score = excluded.fraud_score,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range articles {
		a := &articles[i]
		if _, err := stmt.ExecContext(ctx,
			a.URL,
			a.Source,
			a.Feed,
			a.Title,
			nullableTime(a.PublishedAt),
			a.Body,
			a.Summary,
			a.IsFraud,
			a.FraudHits,
			a.FraudScore,
		); err != nil {
			return wrapStoreErr(fmt.Sprintf("failed to upsert article %s", a.URL), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr("failed to commit upsert", err)
	}
	return nil
}

// GetArticleByURL fetches a single article by its identity key.
func (s *SQLiteStorage) GetArticleByURL(ctx context.Context, url string) (*model.ClassifiedArticle, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(url, "url"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT url, source, feed, title, published_at, body, summary,
		       is_fraud, fraud_hits, fraud_score
		FROM articles WHERE url = ?
	`, url)

	article, err := scanArticle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: article %s", common.ErrNotFound, url)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// GetArticles fetches articles matching the filter, newest first.
func (s *SQLiteStorage) GetArticles(ctx context.Context, filter service.ArticleFilter) ([]model.ClassifiedArticle, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any

	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Feed != "" {
		conditions = append(conditions, "feed = ?")
		args = append(args, filter.Feed)
	}
	if filter.FraudOnly {
		conditions = append(conditions, "is_fraud = 1")
	}

	query := `
		SELECT url, source, feed, title, published_at, body, summary,
		       is_fraud, fraud_hits, fraud_score
		FROM articles`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY published_at DESC, url"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectArticles(rows)
}

// CountArticles returns the total number of stored articles.
func (s *SQLiteStorage) CountArticles(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*model.ClassifiedArticle, error) {
	var a model.ClassifiedArticle
	var feed, body, summary sql.NullString
	var publishedAt sql.NullTime

	err := row.Scan(
		&a.URL,
		&a.Source,
		&feed,
		&a.Title,
		&publishedAt,
		&body,
		&summary,
		&a.IsFraud,
		&a.FraudHits,
		&a.FraudScore,
	)
	if err != nil {
		return nil, err
	}

	a.Feed = feed.String
	a.Body = body.String
	a.Summary = summary.String
	if publishedAt.Valid {
		ts := publishedAt.Time
		a.PublishedAt = &ts
	}
	return &a, nil
}

func collectArticles(rows *sql.Rows) ([]model.ClassifiedArticle, error) {
	var articles []model.ClassifiedArticle
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
