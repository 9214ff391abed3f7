package template

import (
	"strconv"
	"strings"
)

// SampleURI is the authority record the query files were written against.
const SampleURI = "http://d-nb.info/gnd/118529692"

const (
	offsetToken = "<offset>"
	limitToken  = "<limit>"
)

// Instantiate replaces every literal occurrence of sample with id.
func (t Template) Instantiate(sample, id string) string {
	return strings.ReplaceAll(t.Text, sample, id)
}

// InstantiateSegments replaces sample with id and the last path segment of
// sample with the last path segment of id. Some queries embed the local name
// of the record on its own (for example inside a graph name), so the full URI
// pass alone leaves it behind. Both run in one pass over the template: where
// both match, the full URI wins, and inserted text is never scanned again.
func (t Template) InstantiateSegments(sample, id string) string {
	from := LastSegment(sample)
	if from == "" {
		return t.Instantiate(sample, id)
	}
	return strings.NewReplacer(sample, id, from, LastSegment(id)).Replace(t.Text)
}

// Page fills the <offset> and <limit> tokens of a paginated select.
func (t Template) Page(offset, limit int) string {
	r := strings.NewReplacer(
		offsetToken, strconv.Itoa(offset),
		limitToken, strconv.Itoa(limit),
	)
	return r.Replace(t.Text)
}

// LastSegment returns the text after the final '/' of uri, or uri itself when
// it has none.
func LastSegment(uri string) string {
	return uri[strings.LastIndex(uri, "/")+1:]
}
