package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField resolves an API sort key against a whitelist mapping
// keys to columns. Column names are accepted as keys too. Returns
// defaultColumn when the key is empty or unknown.
func ValidateSortField(sortKey string, allowed map[string]string, defaultColumn string) string {
	trimmed := strings.TrimSpace(sortKey)
	if trimmed == "" {
		return defaultColumn
	}
	if col, ok := allowed[trimmed]; ok {
		return col
	}
	for _, col := range allowed {
		if col == trimmed {
			return col
		}
	}
	return defaultColumn
}

// commonSortColumns are sortable on every table
var commonSortColumns = map[string]string{
	"id":        "id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// sortColumns merges the common sort keys with entity specific ones
func sortColumns(extra map[string]string) map[string]string {
	out := make(map[string]string, len(commonSortColumns)+len(extra))
	for k, v := range commonSortColumns {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
