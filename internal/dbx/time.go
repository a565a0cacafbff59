package dbx

import (
	"fmt"
	"time"
)

// TextTimeLayout is how timestamps are stored in SQLite TEXT columns.
// It is fixed width and always UTC, so string order equals time order.
const TextTimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTextTime renders t in TextTimeLayout.
func FormatTextTime(t time.Time) string {
	return t.UTC().Format(TextTimeLayout)
}

// ParseTextTime parses a value written by FormatTextTime.
func ParseTextTime(s string) (time.Time, error) {
	t, err := time.Parse(TextTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}
