package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"gndsync/pkg/logging"
)

// File reads a single pre-fetched identifier file. Lines equal to separator
// divide the file into synthetic pages; pageSize further splits every record
// into pages of at most that many identifiers. Records without identifiers are
// skipped.
type File struct {
	path      string
	separator string
	pageSize  int
	pages     [][]string
	loaded    bool
	next      int
}

// NewFile returns a file source. An empty separator keeps the whole file as
// one record.
func NewFile(path, separator string, pageSize int) *File {
	return &File{path: path, separator: separator, pageSize: pageSize}
}

func (f *File) Next(ctx context.Context) (Page, error) {
	if !f.loaded {
		if err := f.load(); err != nil {
			return Page{}, err
		}
	}
	if f.next >= len(f.pages) {
		return Page{}, io.EOF
	}
	ids := f.pages[f.next]
	f.next++
	return Page{Number: f.next, IDs: ids}, nil
}

func (f *File) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("could not read file %q: %w", f.path, err)
	}
	f.loaded = true

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	for _, record := range splitRecords(text, f.separator) {
		ids := ParseLines(record)
		if len(ids) == 0 {
			continue
		}
		f.pages = append(f.pages, chunk(ids, f.pageSize)...)
	}
	logger := logging.For("source.file")
	logger.Info().Str("file", f.path).Int("pages", len(f.pages)).Msg("identifier file loaded")
	return nil
}

func splitRecords(text, separator string) []string {
	if separator == "" {
		return []string{text}
	}
	var records []string
	var cur []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == separator {
			records = append(records, strings.Join(cur, "\n"))
			cur = cur[:0]
			continue
		}
		cur = append(cur, line)
	}
	return append(records, strings.Join(cur, "\n"))
}

// Keyed hands out one page per key (a file in a directory, an object below a
// prefix). Keys are listed once, on the first call, and visited in lexical
// order except that a trailing page number compares numerically, so
// "T0_results.10" follows "T0_results.9". Keys whose content holds no
// identifiers are skipped.
type Keyed struct {
	list   func(ctx context.Context) ([]string, error)
	read   func(ctx context.Context, key string) ([]byte, error)
	keys   []string
	listed bool
	next   int
	page   int
	logger zerolog.Logger
}

// NewDir returns a source reading one page per regular file in dir.
func NewDir(dir string) *Keyed {
	return &Keyed{
		list: func(context.Context) ([]string, error) {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil, fmt.Errorf("could not read directory %q: %w", dir, err)
			}
			var names []string
			for _, e := range entries {
				if e.Type().IsRegular() {
					names = append(names, filepath.Join(dir, e.Name()))
				}
			}
			return names, nil
		},
		read: func(_ context.Context, name string) ([]byte, error) {
			data, err := os.ReadFile(name)
			if err != nil {
				return nil, fmt.Errorf("could not read file %q: %w", name, err)
			}
			return data, nil
		},
		logger: logging.For("source.dir"),
	}
}

// ObjectReader is the subset of the object store a page source needs.
type ObjectReader interface {
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// NewObjects returns a source reading one page per object below prefix.
func NewObjects(store ObjectReader, bucket, prefix string) *Keyed {
	return &Keyed{
		list: func(ctx context.Context) ([]string, error) {
			return store.ListKeys(ctx, bucket, prefix)
		},
		read: func(ctx context.Context, key string) ([]byte, error) {
			return store.GetObject(ctx, bucket, key)
		},
		logger: logging.For("source.s3").With().Str("bucket", bucket).Logger(),
	}
}

func (k *Keyed) Next(ctx context.Context) (Page, error) {
	if !k.listed {
		keys, err := k.list(ctx)
		if err != nil {
			return Page{}, err
		}
		sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
		k.keys = keys
		k.listed = true
	}
	for k.next < len(k.keys) {
		key := k.keys[k.next]
		k.next++

		k.logger.Info().Str("key", key).Msg("reading page")
		data, err := k.read(ctx, key)
		if err != nil {
			return Page{}, err
		}
		ids := ParseLines(string(data))
		if len(ids) == 0 {
			k.logger.Warn().Str("key", key).Msg("page holds no identifiers, skipping")
			continue
		}
		k.page++
		return Page{Number: k.page, IDs: ids}, nil
	}
	return Page{}, io.EOF
}

// naturalLess orders keys by the text before their trailing digits, then puts
// keys without trailing digits first, then compares the value of the digits and
// finally the whole key. It is a strict total order, so "T0_results.10"
// follows "T0_results.9" however keys are mixed.
func naturalLess(a, b string) bool {
	pa, na, oka := splitNumber(a)
	pb, nb, okb := splitNumber(b)
	if pa != pb {
		return pa < pb
	}
	if oka != okb {
		return okb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitNumber(s string) (string, int, bool) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	if i == len(s) {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}
