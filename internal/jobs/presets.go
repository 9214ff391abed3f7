// Package jobs holds the query plans the tool ships with.
package jobs

import (
	"fmt"
	"sort"

	"gndsync/internal/enrich"
	"gndsync/internal/template"
	"gndsync/pkg/sparql"
)

// PageTemplate selects every GND identifier, one page at a time.
const PageTemplate = "T0_select-all-GND-IDs-(milos).rq"

type query struct {
	name     string
	file     string
	format   sparql.Format
	segments bool
	collect  bool
}

// Preset is a named job: its groups of query files and the defaults it runs
// with.
type Preset struct {
	Name        string
	Description string
	// PageLimit is the default LIMIT of the identifier select.
	PageLimit int
	// ResultFormat is the format of the collected results, if any.
	ResultFormat sparql.Format

	groups [][]query
}

var presets = map[string]Preset{
	"enrich": {
		Name:        "enrich",
		Description: "build the GND graph and add DBpedia, co-occurrence and title data",
		PageLimit:   10000,
		groups: [][]query{
			{
				{name: "T1", file: "T1_create-RDF-Graph-for-a-GND-ID-(milos).rq"},
				{name: "T3", file: "T3_data-from-DBpedia-(milos)-insert.rq"},
				{name: "T32", file: "T3-2_textsDBpedia-incl-subjects+categories-(carl+milos)-insert.rq", segments: true},
				{name: "T4", file: "T4_coocConcepts-(milos)-insert.rq"},
				{name: "T43", file: "T4-3_coocConcepts_w-distance-(milos)-insert.rq"},
				{name: "T5", file: "T5_getTitlesByConcept-(milos)-insert.rq"},
			},
			{
				{name: "T44DDC", file: "T4-4_coocConcepts_w-distance-add-type-DDC-(milos)-insert.rq"},
				{name: "T44GND", file: "T4-4_coocConcepts_w-distance-add-type-GND-(milos)-insert.rq"},
				{name: "T44RVK", file: "T4-4_coocConcepts_w-distance-add-type-RVK-(milos)-insert.rq"},
				{name: "T44SSG", file: "T4-4_coocConcepts_w-distance-add-type-SSG-(milos)-insert.rq"},
			},
		},
	},
	"dbpedia": {
		Name:        "dbpedia",
		Description: "refresh the DBpedia data of every GND record",
		PageLimit:   1000,
		groups: [][]query{
			{{name: "T3", file: "T3-new_data-from-DBpedia-(milos)-insert.rq", segments: true}},
		},
	},
	"export": {
		Name:         "export",
		Description:  "construct every GND record as Turtle and store it in batches",
		PageLimit:    10000,
		ResultFormat: sparql.FormatTurtle,
		groups: [][]query{
			{{name: "T6", file: "T6_construct-query.rq", format: sparql.FormatTurtle, collect: true}},
		},
	},
}

// Lookup returns the preset called name.
func Lookup(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown job %q (known: %v)", name, Names())
	}
	return p, nil
}

// Names lists the presets in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Files lists every template file the preset needs, page template excluded.
func (p Preset) Files() []string {
	var files []string
	for _, g := range p.groups {
		for _, q := range g {
			files = append(files, q.file)
		}
	}
	return files
}

// WithResultFormat returns a copy whose collecting queries ask the endpoint for
// f and whose results are stored as f.
func (p Preset) WithResultFormat(f sparql.Format) Preset {
	groups := make([][]query, len(p.groups))
	for i, g := range p.groups {
		groups[i] = append([]query(nil), g...)
		for j := range groups[i] {
			if groups[i][j].collect {
				groups[i][j].format = f
			}
		}
	}
	p.groups = groups
	p.ResultFormat = f
	return p
}

// Plan loads the preset's templates from store and returns the runnable plan.
// A missing or empty template fails the whole plan.
func (p Preset) Plan(store *template.Store, sample string) (enrich.Plan, error) {
	loaded, err := store.LoadAll(p.Files()...)
	if err != nil {
		return enrich.Plan{}, fmt.Errorf("job %s: %w", p.Name, err)
	}

	plan := enrich.Plan{Name: p.Name, Sample: sample}
	for i, g := range p.groups {
		group := enrich.Group{Name: fmt.Sprintf("group-%d", i+1)}
		for _, q := range g {
			format := q.format
			if format == "" {
				format = sparql.FormatAuto
			}
			group.Queries = append(group.Queries, enrich.Query{
				Name:     q.name,
				Template: loaded[q.file],
				Format:   format,
				Segments: q.segments,
				Collect:  q.collect,
			})
		}
		plan.Groups = append(plan.Groups, group)
	}
	return plan, plan.Validate()
}
