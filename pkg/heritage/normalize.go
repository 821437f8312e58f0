package heritage

import "strings"

// NormalizeEmail trims and lowercases a subscriber email.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
