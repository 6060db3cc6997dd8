// Package model defines the core domain models used throughout the application.
package model

import "time"

// RawRecord is a loosely-typed record as emitted by a source adapter.
// Field names vary per source; it carries no schema of its own and is
// discarded once normalized.
type RawRecord map[string]any

// Article is the canonical record produced after source-specific
// normalization. URL is the sole identity key: two articles with the same
// URL denote the same logical article regardless of other metadata.
type Article struct {
	PublishedAt *time.Time
	Source      string
	Feed        string
	Title       string
	URL         string
	Body        string
	Summary     string
}

// ClassifiedArticle is an Article plus the fraud verdict attached by the
// classifier. FraudScore is a deterministic function of the article text
// and the keyword table in effect.
type ClassifiedArticle struct {
	Article
	FraudScore float64
	FraudHits  int
	IsFraud    bool
}
