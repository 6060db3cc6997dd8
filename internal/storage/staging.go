package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/follow-the-money/internal/model"
)

// SaveStagedRecords appends normalized, tier-1-filtered records to the
// staging table. Insertion order is preserved through the autoincrement
// key so a later load observes records in ingest order.
func (s *SQLiteStorage) SaveStagedRecords(ctx context.Context, articles []model.ClassifiedArticle) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateArticles(articles); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO staged_records (
			url, source, feed, title, published_at, body, summary,
			is_fraud, fraud_hits, fraud_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
			return fmt.Errorf("failed to stage record %s: %w", a.URL, err)
		}
	}

	return tx.Commit()
}

// GetStagedRecords returns all staged records in the order they were staged.
func (s *SQLiteStorage) GetStagedRecords(ctx context.Context) ([]model.ClassifiedArticle, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT url, source, feed, title, published_at, body, summary,
		       is_fraud, fraud_hits, fraud_score
		FROM staged_records ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staged records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectArticles(rows)
}

// ClearStagedRecords empties the staging table.
func (s *SQLiteStorage) ClearStagedRecords(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM staged_records"); err != nil {
		return fmt.Errorf("failed to clear staged records: %w", err)
	}
	return nil
}
