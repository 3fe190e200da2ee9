// Package canon normalizes task titles into comparison keys.
package canon

import "strings"

// Title returns the canonical form of a task title: runs of whitespace
// collapsed to a single space, leading/trailing whitespace trimmed,
// lower-cased. Idempotent: Title(Title(s)) == Title(s).
func Title(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
