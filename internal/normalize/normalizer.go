// Package normalize maps heterogeneous raw source records onto the
// canonical article schema.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/follow-the-money/internal/common"
	"github.com/Veraticus/follow-the-money/internal/model"
)

// Normalizer converts raw records from one source into canonical articles.
// It is a pure function of its spec and the record: no side effects, no
// content inference.
type Normalizer struct {
	spec SourceSpec
}

// New creates a normalizer for the given source spec.
func New(spec SourceSpec) *Normalizer {
	return &Normalizer{spec: spec}
}

// Normalize maps a raw record onto the canonical schema. Records missing a
// title or URL are rejected with common.ErrMissingRequiredField; the caller
// counts and skips them. An unparseable date is not an error.
func (n *Normalizer) Normalize(raw model.RawRecord) (*model.Article, error) {
	title := strings.TrimSpace(firstString(raw, n.spec.TitleKeys))
	if title == "" {
		return nil, fmt.Errorf("%w: title", common.ErrMissingRequiredField)
	}

	url := strings.TrimSpace(firstString(raw, n.spec.URLKeys))
	if url == "" {
		return nil, fmt.Errorf("%w: url", common.ErrMissingRequiredField)
	}

	article := &model.Article{
		Source:  n.spec.Source,
		Feed:    n.spec.Feed,
		Title:   title,
		URL:     url,
		Body:    strings.TrimSpace(firstString(raw, n.spec.BodyKeys)),
		Summary: strings.TrimSpace(firstString(raw, n.spec.SummaryKeys)),
	}

	if ts, ok := ParseTimestamp(firstString(raw, n.spec.DateKeys)); ok {
		article.PublishedAt = &ts
	}

	return article, nil
}

// firstString returns the first present, non-empty string value among the
// given keys. Scalar values are stringified; arrays and objects are not.
func firstString(raw model.RawRecord, keys []string) string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}
