// Package template loads the SPARQL query templates a job is built from and
// instantiates them for a single identifier or a single page.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
)

// ErrEmptyTemplate is returned when a template holds nothing but comments and
// blank lines.
var ErrEmptyTemplate = errors.New("template is empty")

// Template is an immutable, comment-free query text.
type Template struct {
	Name string
	Text string
}

// Store reads templates from a filesystem and keeps each one after the first
// successful load.
type Store struct {
	fsys  fs.FS
	mu    sync.Mutex
	cache map[string]Template
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return NewStoreFS(os.DirFS(dir))
}

// NewStoreFS returns a Store reading from fsys.
func NewStoreFS(fsys fs.FS) *Store {
	return &Store{fsys: fsys, cache: make(map[string]Template)}
}

// Load returns the named template. A missing file or a file that is empty once
// comments are stripped is a configuration error and is not retried.
func (s *Store) Load(name string) (Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.cache[name]; ok {
		return t, nil
	}
	raw, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return Template{}, fmt.Errorf("read template %q: %w", name, err)
	}
	t, err := Parse(name, raw)
	if err != nil {
		return Template{}, err
	}
	s.cache[name] = t
	return t, nil
}

// LoadAll loads every named template and stops at the first failure.
func (s *Store) LoadAll(names ...string) (map[string]Template, error) {
	out := make(map[string]Template, len(names))
	for _, name := range names {
		t, err := s.Load(name)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

// Parse strips comment lines (starting with '#') and whitespace-only lines.
func Parse(name string, raw []byte) (Template, error) {
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "#") || strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return Template{}, fmt.Errorf("template %q: %w", name, ErrEmptyTemplate)
	}
	return Template{Name: name, Text: strings.Join(kept, "\n")}, nil
}
