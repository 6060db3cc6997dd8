package normalize

import (
	"strings"
	"time"
)

// timestampFormats is the ordered list of known date formats. The first
// format that parses successfully wins; ordering matters because several
// sources emit bare dates that would also satisfy looser formats.
var timestampFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseTimestamp attempts each known format in order and returns the first
// successful parse. An unparseable value is not an error: the caller leaves
// the timestamp absent and the record proceeds.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, raw); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}
