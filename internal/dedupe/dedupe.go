// Package dedupe collapses a classified stream to one record per URL,
// keeping the best-scoring variant.
package dedupe

import "github.com/Veraticus/follow-the-money/internal/model"

// Deduplicator is a blocking reduction over a classified stream: it must
// observe every record before emitting. It owns its retained records until
// Records is called; no other component reads or writes its state.
type Deduplicator struct {
	byURL     map[string]model.ClassifiedArticle
	order     []string
	collapsed int
}

// New creates an empty deduplicator.
func New() *Deduplicator {
	return &Deduplicator{
		byURL: make(map[string]model.ClassifiedArticle),
	}
}

// Add folds one record into the reduction. A record with a new URL is
// inserted; a record with a seen URL replaces the stored one only when its
// score is strictly greater. On equal scores the earlier-seen record wins,
// which keeps the reduction deterministic for a deterministic input order.
func (d *Deduplicator) Add(article model.ClassifiedArticle) {
	stored, exists := d.byURL[article.URL]
	if !exists {
		d.byURL[article.URL] = article
		d.order = append(d.order, article.URL)
		return
	}

	d.collapsed++
	if article.FraudScore > stored.FraudScore {
		d.byURL[article.URL] = article
	}
}

// Records emits one record per distinct URL in first-insertion order.
func (d *Deduplicator) Records() []model.ClassifiedArticle {
	records := make([]model.ClassifiedArticle, 0, len(d.order))
	for _, url := range d.order {
		records = append(records, d.byURL[url])
	}
	return records
}

// Collapsed returns how many records were folded away as duplicates.
func (d *Deduplicator) Collapsed() int {
	return d.collapsed
}

// Len returns the number of distinct URLs seen so far.
func (d *Deduplicator) Len() int {
	return len(d.order)
}
