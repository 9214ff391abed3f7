package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gndsync/internal/keys"
	"gndsync/pkg/logging"
)

// DumpStats reports what Dump wrote.
type DumpStats struct {
	Pages int
	IDs   int
}

// Dump drains src and writes every page to dir/<prefix>.<n>, one identifier
// per line. The resulting directory can be fed back with NewDir.
func Dump(ctx context.Context, src PageSource, dir, prefix string) (DumpStats, error) {
	var stats DumpStats
	logger := logging.For("source.dump")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return stats, fmt.Errorf("create dump directory: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		page, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		name := filepath.Join(dir, keys.Page(prefix, page.Number))
		body := strings.Join(page.IDs, "\n") + "\n"
		if err := os.WriteFile(name, []byte(body), 0o644); err != nil {
			return stats, fmt.Errorf("write page %d: %w", page.Number, err)
		}
		stats.Pages++
		stats.IDs += len(page.IDs)
		logger.Info().Str("file", name).Int("ids", len(page.IDs)).Int("total", stats.IDs).Msg("page written")
	}
}
