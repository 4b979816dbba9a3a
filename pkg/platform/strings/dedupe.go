// Package strings holds small string-slice helpers shared by middleware.
package strings

import (
	"strings"
)

// DedupeFold trims and lowercases each value, drops blanks and keeps the
// first occurrence of each result in input order.
func DedupeFold(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
