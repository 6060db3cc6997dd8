package normalize

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Veraticus/follow-the-money/internal/model"
)

// maxLineBytes bounds a single JSONL line. Some legal-case bodies run long.
const maxLineBytes = 4 * 1024 * 1024

// ReadRecords reads newline-delimited JSON records from r. Blank lines are
// ignored. Lines that fail to parse are counted as malformed and skipped;
// only I/O failures return an error.
func ReadRecords(r io.Reader) ([]model.RawRecord, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var records []model.RawRecord
	malformed := 0

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record model.RawRecord
		if err := json.Unmarshal(line, &record); err != nil {
			malformed++
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return records, malformed, fmt.Errorf("failed to read records: %w", err)
	}

	return records, malformed, nil
}
