package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/follow-the-money/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidArticle = errors.New("invalid article")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateArticles validates a slice of classified articles.
func validateArticles(articles []model.ClassifiedArticle) error {
	if articles == nil {
		return fmt.Errorf("%w: articles", ErrNilParameter)
	}
	if len(articles) == 0 {
		return fmt.Errorf("%w: articles", ErrEmptySlice)
	}

	for i := range articles {
		if err := validateArticle(&articles[i]); err != nil {
			return fmt.Errorf("article at index %d: %w", i, err)
		}
	}
	return nil
}

// validateArticle validates a single classified article.
func validateArticle(article *model.ClassifiedArticle) error {
	if article == nil {
		return fmt.Errorf("%w: article", ErrNilParameter)
	}
	if strings.TrimSpace(article.URL) == "" {
		return fmt.Errorf("%w: missing URL", ErrInvalidArticle)
	}
	if strings.TrimSpace(article.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidArticle)
	}
	if article.FraudHits < 0 {
		return fmt.Errorf("%w: negative fraud hits", ErrInvalidArticle)
	}
	if article.FraudScore < 0 {
		return fmt.Errorf("%w: negative fraud score", ErrInvalidArticle)
	}
	return nil
}
