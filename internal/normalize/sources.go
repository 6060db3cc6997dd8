package normalize

import "path/filepath"

// SourceSpec declares how one source's raw records map onto canonical
// fields. Each key list is tried in order and the first present, non-empty
// value wins. The mapping is data, not code: adding a source is a new entry
// here, not a new branch in the normalizer.
type SourceSpec struct {
	Source      string
	Feed        string
	TitleKeys   []string
	URLKeys     []string
	BodyKeys    []string
	SummaryKeys []string
	DateKeys    []string
}

// defaultKeys are the raw field names shared by most feeds.
var (
	defaultTitleKeys   = []string{"title"}
	defaultURLKeys     = []string{"url", "link"}
	defaultBodyKeys    = []string{"body", "content", "full_text"}
	defaultSummaryKeys = []string{"summary", "description"}
	defaultDateKeys    = []string{"published", "published_at", "date"}
)

// DefaultSpec returns a SourceSpec with the shared key lists and the given
// source/feed identity.
func DefaultSpec(source, feed string) SourceSpec {
	return SourceSpec{
		Source:      source,
		Feed:        feed,
		TitleKeys:   defaultTitleKeys,
		URLKeys:     defaultURLKeys,
		BodyKeys:    defaultBodyKeys,
		SummaryKeys: defaultSummaryKeys,
		DateKeys:    defaultDateKeys,
	}
}

// fileSources maps known adapter output filenames to their source identity.
var fileSources = map[string]SourceSpec{
	"ftc_press_releases.jsonl":     DefaultSpec("ftc_press", "press"),
	"ftc_legal_cases.jsonl":        DefaultSpec("ftc_legal_cases", "legal"),
	"ftc_consumer_scams.jsonl":     DefaultSpec("ftc_consumer_scams", "scams"),
	"ftc_data_spotlight.jsonl":     DefaultSpec("ftc_data_spotlight", "data_spotlight"),
	"ftc_legal_search.jsonl":       DefaultSpec("ftc_legal_search", "search_all"),
	"ftc_legal_search_fraud.jsonl": DefaultSpec("ftc_legal_search", "search_fraud"),
	"ftc_dnc_complaints.jsonl":     DefaultSpec("ftc_dnc", "complaints"),
}

// KnownFiles returns the adapter output filenames with registered specs.
func KnownFiles() []string {
	files := make([]string, 0, len(fileSources))
	for name := range fileSources {
		files = append(files, name)
	}
	return files
}

// SpecForFile resolves the source spec for an adapter output file. Unknown
// files get a spec derived from the filename so ad-hoc feeds still ingest
// with a usable source identifier.
func SpecForFile(path string) SourceSpec {
	name := filepath.Base(path)
	if spec, ok := fileSources[name]; ok {
		return spec
	}

	source := name
	if ext := filepath.Ext(name); ext != "" {
		source = name[:len(name)-len(ext)]
	}
	return DefaultSpec(source, "")
}
