// Package source produces the pages of identifiers a job iterates over, either
// live from the SPARQL endpoint or from pre-fetched page files.
package source

import (
	"context"
	"strings"
)

// Page is one slice of identifiers in source order.
type Page struct {
	// Number is 1-based and counts pages handed out by the source.
	Number int
	IDs    []string
}

// PageSource hands out pages until it is exhausted, then returns io.EOF.
// A source is owned by a single caller and is not safe for concurrent use.
type PageSource interface {
	Next(ctx context.Context) (Page, error)
}

// ParseLines splits data into identifiers, one per line. CRLF and LF endings
// are accepted, surrounding whitespace is trimmed and blank lines are dropped.
func ParseLines(data string) []string {
	lines := strings.Split(data, "\n")
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// chunk splits ids into pages of at most size entries. size <= 0 keeps a
// single page.
func chunk(ids []string, size int) [][]string {
	if size <= 0 || len(ids) <= size {
		return [][]string{ids}
	}
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		out = append(out, ids[start:end])
	}
	return out
}
