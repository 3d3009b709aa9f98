package api

import (
	"fmt"
	"time"
)

// historyDateLayouts covers the sqlite CURRENT_TIMESTAMP format as well as
// ISO and HTTP date renderings of the same value.
var historyDateLayouts = []string{
	time.DateTime,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	time.RFC1123,
	time.RFC1123Z,
}

// parseHistoryDate parses a backend date. Values without a zone are UTC.
func parseHistoryDate(value string) (time.Time, error) {
	for _, layout := range historyDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
