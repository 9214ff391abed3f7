package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gndsync/internal/template"
	"gndsync/pkg/sparql"
)

// drain collects every page until io.EOF.
func drain(t *testing.T, src PageSource) []Page {
	t.Helper()
	var pages []Page
	for {
		p, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return pages
		}
		require.NoError(t, err)
		pages = append(pages, p)
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestParseLines(t *testing.T) {
	got := ParseLines("http://d-nb.info/gnd/1\r\n\r\n  http://d-nb.info/gnd/2  \n\nhttp://d-nb.info/gnd/3")
	assert.Equal(t, []string{"http://d-nb.info/gnd/1", "http://d-nb.info/gnd/2", "http://d-nb.info/gnd/3"}, got)
	assert.Empty(t, ParseLines("\n \r\n"))
}

func TestFile_SkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "T0.txt", "http://d-nb.info/gnd/a\r\nhttp://d-nb.info/gnd/b\r\n\r\nhttp://d-nb.info/gnd/c\r\n")

	pages := drain(t, NewFile(p, "", 0))

	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, []string{"http://d-nb.info/gnd/a", "http://d-nb.info/gnd/b", "http://d-nb.info/gnd/c"}, pages[0].IDs)
}

func TestFile_SeparatorAndPageSize(t *testing.T) {
	dir := t.TempDir()
	body := strings.Join([]string{"a", "b", "c", "%%", "", "%%", "d", "e", "%%", "f"}, "\n")
	p := writeFile(t, dir, "multi.txt", body)

	tests := []struct {
		name     string
		sep      string
		pageSize int
		want     [][]string
	}{
		{"records become pages", "%%", 0, [][]string{{"a", "b", "c"}, {"d", "e"}, {"f"}}},
		{"page size splits records", "%%", 2, [][]string{{"a", "b"}, {"c"}, {"d", "e"}, {"f"}}},
		{"page size alone", "", 4, [][]string{{"a", "b", "c", "%%"}, {"%%", "d", "e", "%%"}, {"f"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := drain(t, NewFile(p, tt.sep, tt.pageSize))
			var got [][]string
			for i, pg := range pages {
				assert.Equal(t, i+1, pg.Number)
				got = append(got, pg.IDs)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile_EmptyIsExhausted(t *testing.T) {
	p := writeFile(t, t.TempDir(), "empty.txt", "\r\n\r\n")
	_, err := NewFile(p, "", 0).Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestFile_Unreadable(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.txt"), "", 0).Next(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDir_NaturalOrderAndSkipsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "T0_results.10", "j\n")
	writeFile(t, dir, "T0_results.2", "b\n\nc\n")
	writeFile(t, dir, "T0_results.1", "a\n")
	writeFile(t, dir, "T0_results.3", "\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	pages := drain(t, NewDir(dir))

	require.Len(t, pages, 3)
	assert.Equal(t, []string{"a"}, pages[0].IDs)
	assert.Equal(t, []string{"b", "c"}, pages[1].IDs)
	assert.Equal(t, []string{"j"}, pages[2].IDs)
	assert.Equal(t, 3, pages[2].Number)
}

func TestDir_Unreadable(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "missing")).Next(context.Background())
	assert.ErrorContains(t, err, "could not read directory")
}

type fakeObjects struct {
	objects map[string]string
	listErr error
}

func (f *fakeObjects) ListKeys(_ context.Context, bucket, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, bucket+"/"+prefix) {
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	return keys, nil
}

func (f *fakeObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	v, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return []byte(v), nil
}

func TestObjects(t *testing.T) {
	store := &fakeObjects{objects: map[string]string{
		"ids/pages/T0_results.2": "c\n",
		"ids/pages/T0_results.1": "a\nb\n",
		"ids/other/x":            "z\n",
	}}

	pages := drain(t, NewObjects(store, "ids", "pages/"))

	require.Len(t, pages, 2)
	assert.Equal(t, []string{"a", "b"}, pages[0].IDs)
	assert.Equal(t, []string{"c"}, pages[1].IDs)
}

func TestObjects_ListError(t *testing.T) {
	store := &fakeObjects{listErr: errors.New("access denied")}
	_, err := NewObjects(store, "ids", "").Next(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

// scriptedSelecter answers page queries from a fixed list and records them.
type scriptedSelecter struct {
	pages   [][]string
	queries []string
	err     error
}

func (s *scriptedSelecter) Select(_ context.Context, _ string, query string) (*sparql.Results, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	res := &sparql.Results{}
	call := len(s.queries) - 1
	if call < len(s.pages) {
		for _, id := range s.pages[call] {
			res.Results.Bindings = append(res.Results.Bindings, map[string]sparql.Binding{
				"gndid": {Type: "uri", Value: id},
			})
		}
	}
	return res, nil
}

func TestLive_AdvancesByLimitAndStopsOnEmpty(t *testing.T) {
	tmpl := template.Template{Name: "T0.rq", Text: "SELECT ?gndid OFFSET <offset> LIMIT <limit>"}
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("http://d-nb.info/gnd/%d", i)
	}
	sel := &scriptedSelecter{pages: [][]string{ids, {"http://d-nb.info/gnd/x"}}}
	live := NewLive(sel, tmpl, "gndid", 0, 10)

	p1, err := live.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ids, p1.IDs)
	assert.Equal(t, 10, live.Offset())

	p2, err := live.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, p2.Number)
	assert.Equal(t, 20, live.Offset())

	_, err = live.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 30, live.Offset())

	// exhausted sources do not query again
	_, err = live.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, []string{
		"SELECT ?gndid OFFSET 0 LIMIT 10",
		"SELECT ?gndid OFFSET 10 LIMIT 10",
		"SELECT ?gndid OFFSET 20 LIMIT 10",
	}, sel.queries)
}

func TestLive_ErrorIsNotEOF(t *testing.T) {
	sel := &scriptedSelecter{err: &sparql.TransportError{Query: "T0", Err: errors.New("connection refused")}}
	live := NewLive(sel, template.Template{Text: "q"}, "gndid", 0, 10)

	_, err := live.Next(context.Background())
	var te *sparql.TransportError
	require.ErrorAs(t, err, &te)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestDump_RoundTripsThroughDir(t *testing.T) {
	sel := &scriptedSelecter{pages: [][]string{{"a", "b"}, {"c"}}}
	live := NewLive(sel, template.Template{Name: "T0.rq", Text: "q"}, "gndid", 0, 2)
	dir := t.TempDir()

	stats, err := Dump(context.Background(), live, dir, "T0_results")
	require.NoError(t, err)
	assert.Equal(t, DumpStats{Pages: 2, IDs: 3}, stats)

	data, err := os.ReadFile(filepath.Join(dir, "T0_results.1"))
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))

	pages := drain(t, NewDir(dir))
	require.Len(t, pages, 2)
	assert.Equal(t, []string{"c"}, pages[1].IDs)
}

func TestDump_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dump(ctx, &File{}, t.TempDir(), "p")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("p.2", "p.10"))
	assert.False(t, naturalLess("p.10", "p.9"))
	assert.True(t, naturalLess("a.txt", "b.txt"))
	assert.True(t, naturalLess("a.1", "b.0"))
}

func TestNaturalLess_MixedKeysAreTotallyOrdered(t *testing.T) {
	keys := []string{"a10", "a1x", "a9", "a", "b2", "a09"}
	for _, x := range keys {
		assert.False(t, naturalLess(x, x), x)
		for _, y := range keys {
			if x != y {
				assert.NotEqual(t, naturalLess(x, y), naturalLess(y, x), "%s vs %s", x, y)
			}
			for _, z := range keys {
				if naturalLess(x, y) && naturalLess(y, z) {
					assert.True(t, naturalLess(x, z), "%s < %s < %s", x, y, z)
				}
			}
		}
	}
	assert.True(t, naturalLess("a9", "a10"))
	assert.True(t, naturalLess("a10", "a1x"))
	assert.True(t, naturalLess("a9", "a1x"))
}
