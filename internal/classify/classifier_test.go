package classify

import (
	"testing"

	"github.com/Veraticus/follow-the-money/internal/model"
)

func newClassifier(t *testing.T, minHits int, terms ...string) *Classifier {
	t.Helper()
	c, err := New(uniform("test", minHits, terms...))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name      string
		article   model.Article
		terms     []string
		minHits   int
		wantHits  int
		wantScore float64
		wantFraud bool
	}{
		{
			name: "word boundary prevents substring matches",
			article: model.Article{
				Title: "FTC Sues Scam Operation",
				URL:   "https://x/1",
				Body:  "The company ran a phishing scam defrauding consumers.",
			},
			terms:     []string{"scam", "phishing", "fraud"},
			minHits:   2,
			wantHits:  2,
			wantScore: 2.0,
			wantFraud: true,
		},
		{
			name: "zero matches is never fraud",
			article: model.Article{
				Title: "Quarterly Earnings Report",
				URL:   "https://x/2",
				Body:  "Revenue grew four percent.",
			},
			terms:     []string{"scam", "phishing"},
			minHits:   1,
			wantHits:  0,
			wantScore: 0,
			wantFraud: false,
		},
		{
			name: "hits below threshold are not fraud",
			article: model.Article{
				Title: "Alert",
				URL:   "https://x/3",
				Body:  "A phishing attempt was reported.",
			},
			terms:     []string{"phishing", "scam"},
			minHits:   2,
			wantHits:  1,
			wantScore: 1.0,
			wantFraud: false,
		},
		{
			name: "repeated occurrences of one term count once",
			article: model.Article{
				Title: "Scam warning",
				URL:   "https://x/4",
				Body:  "This scam is like every other scam.",
			},
			terms:     []string{"scam"},
			minHits:   1,
			wantHits:  1,
			wantScore: 1.0,
			wantFraud: true,
		},
		{
			name: "matching is case-insensitive",
			article: model.Article{
				Title: "PHISHING Campaign Dismantled",
				URL:   "https://x/5",
			},
			terms:     []string{"phishing"},
			minHits:   1,
			wantHits:  1,
			wantScore: 1.0,
			wantFraud: true,
		},
		{
			name: "phrases match across word boundaries",
			article: model.Article{
				Title: "Identity theft ring broken up",
				URL:   "https://x/6",
				Body:  "Victims of identity theft lost millions.",
			},
			terms:     []string{"identity theft"},
			minHits:   1,
			wantHits:  1,
			wantScore: 1.0,
			wantFraud: true,
		},
		{
			name: "summary text is part of the buffer",
			article: model.Article{
				Title:   "Enforcement news",
				URL:     "https://x/7",
				Summary: "FTC shuts down refund scam targeting seniors.",
			},
			terms:     []string{"refund scam"},
			minHits:   1,
			wantHits:  1,
			wantScore: 1.0,
			wantFraud: true,
		},
		{
			name: "term at end of buffer after a substring occurrence",
			article: model.Article{
				Title: "Fraudulent filings",
				URL:   "https://x/8",
				Body:  "an admitted fraud",
			},
			terms:     []string{"fraud"},
			minHits:   1,
			wantHits:  1,
			wantScore: 1.0,
			wantFraud: true,
		},
		{
			name: "punctuation is a word boundary",
			article: model.Article{
				Title: "Victims say: scam!",
				URL:   "https://x/9",
			},
			terms:     []string{"scam"},
			minHits:   1,
			wantHits:  1,
			wantScore: 1.0,
			wantFraud: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier(t, tt.minHits, tt.terms...)
			got := c.Classify(tt.article)
			if got.FraudHits != tt.wantHits {
				t.Errorf("FraudHits = %d, want %d", got.FraudHits, tt.wantHits)
			}
			if got.FraudScore != tt.wantScore {
				t.Errorf("FraudScore = %v, want %v", got.FraudScore, tt.wantScore)
			}
			if got.IsFraud != tt.wantFraud {
				t.Errorf("IsFraud = %v, want %v", got.IsFraud, tt.wantFraud)
			}
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := newClassifier(t, 2, "scam", "phishing", "fraud")
	article := model.Article{
		Title: "FTC Sues Scam Operation",
		URL:   "https://x/1",
		Body:  "The company ran a phishing scam defrauding consumers.",
	}

	first := c.Classify(article)
	for i := 0; i < 10; i++ {
		got := c.Classify(article)
		if got.FraudHits != first.FraudHits || got.FraudScore != first.FraudScore || got.IsFraud != first.IsFraud {
			t.Fatalf("classification is not deterministic: run %d got %+v, first %+v", i, got, first)
		}
	}
}

func TestClassifier_Weights(t *testing.T) {
	table := &Table{
		Name:    "weighted",
		MinHits: 1,
		Keywords: []Keyword{
			{Term: "scam", Weight: 1.0},
			{Term: "wire fraud", Weight: 2.5},
		},
	}
	c, err := New(table)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := c.Classify(model.Article{
		Title: "Wire fraud scam",
		URL:   "https://x/1",
		Body:  "Another wire fraud case.",
	})

	if got.FraudHits != 2 {
		t.Errorf("FraudHits = %d, want 2", got.FraudHits)
	}
	if got.FraudScore != 1.0+2.5 {
		t.Errorf("FraudScore = %v, want 3.5", got.FraudScore)
	}
}

func TestClassifier_SharedAlgorithmAcrossTiers(t *testing.T) {
	article := model.Article{
		Title: "Phishing scam alert",
		URL:   "https://x/1",
	}

	tier1, err := New(FilterTable())
	if err != nil {
		t.Fatalf("tier-1 New() error = %v", err)
	}
	tier2, err := New(ClassifyTable())
	if err != nil {
		t.Fatalf("tier-2 New() error = %v", err)
	}

	// Same counting definition in both tiers: only tables and thresholds differ.
	if got := tier1.Classify(article); got.FraudHits != 2 || !got.IsFraud {
		t.Errorf("tier-1 = %+v, want 2 hits and fraud", got)
	}
	if got := tier2.Classify(article); got.FraudHits != 2 || !got.IsFraud {
		t.Errorf("tier-2 = %+v, want 2 hits and fraud", got)
	}
}
