package jobs

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gndsync/internal/template"
	"gndsync/pkg/sparql"
)

func storeFor(p Preset, override map[string]string) *template.Store {
	fsys := fstest.MapFS{}
	for _, f := range p.Files() {
		fsys[f] = &fstest.MapFile{Data: []byte("# " + f + "\nINSERT { <" + template.SampleURI + "> ?p ?o } WHERE { ?s ?p ?o }\n")}
	}
	for name, text := range override {
		fsys[name] = &fstest.MapFile{Data: []byte(text)}
	}
	return template.NewStoreFS(fsys)
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"dbpedia", "enrich", "export"}, Names())

	_, err := Lookup("nope")
	assert.ErrorContains(t, err, "unknown job")
}

func TestEnrichPlan(t *testing.T) {
	p, err := Lookup("enrich")
	require.NoError(t, err)

	plan, err := p.Plan(storeFor(p, nil), template.SampleURI)
	require.NoError(t, err)
	require.Len(t, plan.Groups, 2)

	var first, second []string
	for _, q := range plan.Groups[0].Queries {
		first = append(first, q.Name)
		assert.Equal(t, sparql.FormatAuto, q.Format)
		assert.Equal(t, q.Name == "T32", q.Segments, q.Name)
	}
	for _, q := range plan.Groups[1].Queries {
		second = append(second, q.Name)
	}
	assert.Equal(t, []string{"T1", "T3", "T32", "T4", "T43", "T5"}, first)
	assert.Equal(t, []string{"T44DDC", "T44GND", "T44RVK", "T44SSG"}, second)
	assert.False(t, plan.Collects())
	assert.NotContains(t, plan.Groups[0].Queries[0].Template.Text, "#")
}

func TestExportPlanCollects(t *testing.T) {
	p, err := Lookup("export")
	require.NoError(t, err)

	plan, err := p.Plan(storeFor(p, nil), template.SampleURI)
	require.NoError(t, err)
	assert.True(t, plan.Collects())
	assert.Equal(t, sparql.FormatTurtle, plan.Groups[0].Queries[0].Format)
	assert.Equal(t, sparql.FormatTurtle, p.ResultFormat)
}

func TestWithResultFormat(t *testing.T) {
	p, err := Lookup("export")
	require.NoError(t, err)

	rdf := p.WithResultFormat(sparql.FormatRDFXML)
	plan, err := rdf.Plan(storeFor(rdf, nil), template.SampleURI)
	require.NoError(t, err)
	assert.Equal(t, sparql.FormatRDFXML, plan.Groups[0].Queries[0].Format)
	assert.Equal(t, sparql.FormatRDFXML, rdf.ResultFormat)

	orig, err := p.Plan(storeFor(p, nil), template.SampleURI)
	require.NoError(t, err)
	assert.Equal(t, sparql.FormatTurtle, orig.Groups[0].Queries[0].Format, "original preset untouched")
}

func TestPlanFailsOnEmptyTemplate(t *testing.T) {
	p, err := Lookup("dbpedia")
	require.NoError(t, err)

	_, err = p.Plan(storeFor(p, map[string]string{p.Files()[0]: "# only a comment\n\n"}), template.SampleURI)
	assert.True(t, errors.Is(err, template.ErrEmptyTemplate))
}

func TestPlanFailsOnMissingTemplate(t *testing.T) {
	p, err := Lookup("export")
	require.NoError(t, err)

	_, err = p.Plan(template.NewStoreFS(fstest.MapFS{}), template.SampleURI)
	assert.Error(t, err)
}
