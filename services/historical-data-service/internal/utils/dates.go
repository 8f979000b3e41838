package utils

import (
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD (read as midnight UTC)
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnlyLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", value)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(dateOnlyLayout)
}
