package models

import "fmt"

// Batch is one flush of the result buffer: the bodies collected for the
// identifiers at positions First..Last, joined by newlines.
type Batch struct {
	Label       string
	First       int
	Last        int
	Count       int
	ContentType string
	Payload     []byte
}

// Range renders the covered positions, e.g. "101-200".
func (b Batch) Range() string {
	return fmt.Sprintf("%d-%d", b.First, b.Last)
}
