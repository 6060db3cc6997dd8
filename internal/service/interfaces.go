// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/follow-the-money/internal/model"
)

// ArticleFilter defines filtering options for article queries.
type ArticleFilter struct {
	Source    string
	Feed      string
	FraudOnly bool
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Article operations. UpsertArticles overwrites all columns of an
	// existing row with the same URL.
	UpsertArticles(ctx context.Context, articles []model.ClassifiedArticle) error
	GetArticleByURL(ctx context.Context, url string) (*model.ClassifiedArticle, error)
	GetArticles(ctx context.Context, filter ArticleFilter) ([]model.ClassifiedArticle, error)
	CountArticles(ctx context.Context) (int, error)

	// Staging operations. Staged records preserve their insertion order so
	// a later load observes them in the order they were ingested.
	SaveStagedRecords(ctx context.Context, articles []model.ClassifiedArticle) error
	GetStagedRecords(ctx context.Context) ([]model.ClassifiedArticle, error)
	ClearStagedRecords(ctx context.Context) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for store operations.
type RetryOptions struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
}
