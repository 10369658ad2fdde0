// Package naming turns free-form job names into cluster-safe identifiers.
package naming

import "regexp"

// maxNameLength is the cluster resource-name limit.
const maxNameLength = 63

var unsafeRuns = regexp.MustCompile(`[^0-9a-zA-Z_.]+`)

// Sanitize maps an arbitrary string onto the alphabet [0-9a-zA-Z_.],
// collapsing every run of other characters into a single underscore,
// truncating to 63 characters and stripping trailing non-alphanumerics.
// It never fails: empty input yields the empty string. Sanitizing an
// already-sanitized name is a no-op.
func Sanitize(name string) string {
	result := unsafeRuns.ReplaceAllString(name, "_")
	if len(result) > maxNameLength {
		result = result[:maxNameLength]
	}
	end := len(result)
	for end > 0 && !isAlphanumeric(result[end-1]) {
		end--
	}
	return result[:end]
}

func isAlphanumeric(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
