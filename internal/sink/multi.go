package sink

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"gndsync/internal/models"
)

// Multi hands every batch to all of its writers concurrently.
type Multi struct {
	writers []Writer
}

func NewMulti(writers ...Writer) *Multi {
	return &Multi{writers: writers}
}

func (m *Multi) Name() string {
	names := make([]string, len(m.writers))
	for i, w := range m.writers {
		names[i] = w.Name()
	}
	return strings.Join(names, "+")
}

// Write waits for every writer and returns the first failure. A failing writer
// does not stop the others.
func (m *Multi) Write(ctx context.Context, b models.Batch) error {
	var g errgroup.Group
	for _, w := range m.writers {
		g.Go(func() error {
			if err := w.Write(ctx, b); err != nil {
				return fmt.Errorf("%s: %w", w.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
