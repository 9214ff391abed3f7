package enrich

import (
	"fmt"

	"gndsync/internal/template"
	"gndsync/pkg/sparql"
)

// Query is one named template of a group.
type Query struct {
	Name     string
	Template template.Template
	Format   sparql.Format
	// Segments also replaces the sample's last path segment, for templates
	// that embed the record's local name on its own.
	Segments bool
	// Collect forwards a successful response body to the result sink.
	Collect bool
}

// Build instantiates the query for id.
func (q Query) Build(sample, id string) string {
	if q.Segments {
		return q.Template.InstantiateSegments(sample, id)
	}
	return q.Template.Instantiate(sample, id)
}

// Group is a set of queries that all complete before the next group starts.
type Group struct {
	Name    string
	Queries []Query
}

// Plan is the ordered list of groups run for every identifier.
type Plan struct {
	Name string
	// Sample is the URI the templates were written against.
	Sample string
	Groups []Group
}

// Collects reports whether any query forwards its body to the sink.
func (p Plan) Collects() bool {
	for _, g := range p.Groups {
		for _, q := range g.Queries {
			if q.Collect {
				return true
			}
		}
	}
	return false
}

// Validate checks the plan is runnable.
func (p Plan) Validate() error {
	if p.Sample == "" {
		return fmt.Errorf("plan %s: sample uri is empty", p.Name)
	}
	if len(p.Groups) == 0 {
		return fmt.Errorf("plan %s: no groups", p.Name)
	}
	for _, g := range p.Groups {
		if len(g.Queries) == 0 {
			return fmt.Errorf("plan %s: group %s has no queries", p.Name, g.Name)
		}
	}
	return nil
}
