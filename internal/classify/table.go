package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/follow-the-money/internal/common"
)

// Keyword pairs a term or phrase with its scoring weight.
type Keyword struct {
	Term   string  `yaml:"term"`
	Weight float64 `yaml:"weight"`
}

// Table is a read-only keyword table. It is loaded once before any
// classification and never mutated during a run; sharing one table across
// concurrent classification work is safe.
type Table struct {
	Name     string    `yaml:"name"`
	Keywords []Keyword `yaml:"keywords"`
	MinHits  int       `yaml:"min_hits"`
}

// Validate checks that the table defines a usable scoring function. An
// invalid table is fatal at startup.
func (t *Table) Validate() error {
	if len(t.Keywords) == 0 {
		return fmt.Errorf("%w: %s", common.ErrEmptyKeywordTable, t.Name)
	}
	if t.MinHits < 1 {
		return fmt.Errorf("%w: %s: min_hits must be at least 1", common.ErrInvalidKeywordTable, t.Name)
	}

	seen := make(map[string]bool, len(t.Keywords))
	for _, kw := range t.Keywords {
		term := strings.ToLower(strings.TrimSpace(kw.Term))
		if term == "" {
			return fmt.Errorf("%w: %s: empty term", common.ErrInvalidKeywordTable, t.Name)
		}
		if kw.Weight <= 0 {
			return fmt.Errorf("%w: %s: term %q has non-positive weight", common.ErrInvalidKeywordTable, t.Name, kw.Term)
		}
		if seen[term] {
			return fmt.Errorf("%w: %s: duplicate term %q", common.ErrInvalidKeywordTable, t.Name, kw.Term)
		}
		seen[term] = true
	}

	return nil
}

// LoadTable reads a keyword table from a YAML file and validates it.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword table: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrInvalidKeywordTable, path, err)
	}
	if table.Name == "" {
		table.Name = path
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}

	return &table, nil
}

// uniform builds a table where every term carries weight 1.0, so scores
// equal hit counts unless a custom table overrides the weights.
func uniform(name string, minHits int, terms ...string) *Table {
	keywords := make([]Keyword, len(terms))
	for i, term := range terms {
		keywords[i] = Keyword{Term: term, Weight: 1.0}
	}
	return &Table{Name: name, MinHits: minHits, Keywords: keywords}
}

// FilterTable returns the default tier-1 table: a short term list applied
// close to the source, with a single hit enough to keep a record.
func FilterTable() *Table {
	return uniform("tier1-filter", 1,
		"fraud", "scam", "scams", "scammer", "scammers",
		"phishing",
		"identity theft", "identity fraud",
	)
}

// ClassifyTable returns the default tier-2 table: the extended term list
// applied at load time, requiring at least two hits.
func ClassifyTable() *Table {
	return uniform("tier2-classify", 2,
		"fraud", "frauds", "scam", "scams", "scheme", "schemes",
		"phishing", "smishing", "vishing",
		"identity theft", "id theft",
		"imposter", "impersonation",
		"business email compromise", "bec",
		"investment scam", "investment fraud",
		"account takeover",
		"money mule", "money mules",
		"skimming", "carding",
		"check fraud", "wire fraud",
		"refund scam", "refund fraud",
		"crypto scam", "cryptocurrency scam", "ransomware",
	)
}
