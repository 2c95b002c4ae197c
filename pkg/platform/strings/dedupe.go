// Package strings holds small string-slice helpers shared by the HTTP
// handlers.
package strings

import "strings"

// DedupeAndTrim trims whitespace from each element and drops empties and
// repeats, keeping first occurrences in order. Bulk label lists pass through
// here before parsing so a sloppy scan counts each box once.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
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
