package utils

import "strings"

// NormalizeSortDirection normalizes sort direction to "ASC" or "DESC",
// falling back to def for anything else
func NormalizeSortDirection(direction, def string) string {
	direction = strings.ToUpper(strings.TrimSpace(direction))
	if direction != "ASC" && direction != "DESC" {
		return def
	}
	return direction
}
