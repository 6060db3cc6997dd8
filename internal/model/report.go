package model

// BatchStatus describes the final disposition of one load batch.
type BatchStatus string

// Batch status constants.
const (
	BatchLoaded    BatchStatus = "LOADED"
	BatchFailed    BatchStatus = "FAILED"
	BatchAbandoned BatchStatus = "ABANDONED"
)

// BatchResult records the outcome of a single upsert batch.
type BatchResult struct {
	Status BatchStatus
	Error  string
	URLs   []string
	Index  int
}

// LoadReport describes the outcome of the batch-load stage. Every record
// handed to the loader is accounted for in exactly one of Loaded, Skipped,
// Failed, or Abandoned.
type LoadReport struct {
	Batches   []BatchResult
	Attempted int
	Loaded    int
	Skipped   int
	Failed    int
	Abandoned int
}

// FailedURLs returns the URLs of every record in a failed batch, for
// operator follow-up.
func (r *LoadReport) FailedURLs() []string {
	var urls []string
	for _, b := range r.Batches {
		if b.Status == BatchFailed {
			urls = append(urls, b.URLs...)
		}
	}
	return urls
}

// RunReport aggregates per-stage counts for one pipeline run. Dropped and
// skipped records are counted, never silently lost.
type RunReport struct {
	Load       LoadReport
	Read       int
	Malformed  int
	Rejected   int
	Filtered   int
	Staged     int
	Classified int
	Duplicates int
}
