package keys

import (
	"fmt"
	"path"
	"strings"
)

// PagePrefix names dumped identifier pages.
const PagePrefix = "T0_results"

// sanitize lowercases and replaces spaces and slashes so the value is safe as a
// Slug header and as a single object key segment.
func sanitize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "-", "/", "-").Replace(s)
}

// Batch returns the label of a result batch, e.g. "t6-1-100.ttl".
func Batch(prefix string, first, last int, ext string) string {
	if prefix == "" {
		prefix = "results"
	}
	return fmt.Sprintf("%s-%d-%d.%s", sanitize(prefix), first, last, ext)
}

// Object returns the storage key of a labelled batch below root.
func Object(root, label string) string {
	if root == "" {
		return label
	}
	return path.Join(root, label)
}

// Page returns the file name of a dumped identifier page, e.g. "T0_results.3".
func Page(prefix string, n int) string {
	return fmt.Sprintf("%s.%d", prefix, n)
}
