// Package sink collects the bodies of result-producing queries and writes them
// downstream in labelled batches.
package sink

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"

	"gndsync/internal/keys"
	"gndsync/internal/models"
	"gndsync/pkg/logging"
	"gndsync/pkg/sparql"
)

// Writer stores one batch somewhere.
type Writer interface {
	Name() string
	Write(ctx context.Context, b models.Batch) error
}

// Stats counts what left the buffer.
type Stats struct {
	Batches int
	Entries int
	Failed  int
}

// Buffer accumulates bodies and hands them to a Writer once threshold bodies
// are held. It is owned by the orchestrator goroutine and is not safe for
// concurrent use.
type Buffer struct {
	writer    Writer
	threshold int
	prefix    string
	format    sparql.Format

	bodies [][]byte
	first  int
	last   int
	stats  Stats
	logger zerolog.Logger
}

// NewBuffer returns a buffer flushing every threshold bodies. A threshold below
// one is treated as one, which forwards each body on its own.
func NewBuffer(w Writer, threshold int, prefix string, format sparql.Format) *Buffer {
	if threshold < 1 {
		threshold = 1
	}
	return &Buffer{
		writer:    w,
		threshold: threshold,
		prefix:    prefix,
		format:    format,
		logger:    logging.For("sink").With().Str("writer", w.Name()).Logger(),
	}
}

// Len is the number of bodies waiting for the next flush.
func (b *Buffer) Len() int { return len(b.bodies) }

// Stats reports flushed batches and entries so far.
func (b *Buffer) Stats() Stats { return b.stats }

// Accumulate appends the body produced for the identifier at position and
// flushes when the threshold is reached.
func (b *Buffer) Accumulate(ctx context.Context, position int, body []byte) {
	if len(b.bodies) == 0 || position < b.first {
		b.first = position
	}
	if position > b.last {
		b.last = position
	}
	b.bodies = append(b.bodies, body)
	if len(b.bodies) >= b.threshold {
		_ = b.Flush(ctx)
	}
}

// Flush writes the held bodies as one batch and clears the buffer. An empty
// buffer is not written. The buffer is cleared even when the write fails;
// failed batches are logged, counted and returned but never retried.
func (b *Buffer) Flush(ctx context.Context) error {
	if len(b.bodies) == 0 {
		return nil
	}
	batch := models.Batch{
		Label:       keys.Batch(b.prefix, b.first, b.last, b.format.Extension()),
		First:       b.first,
		Last:        b.last,
		Count:       len(b.bodies),
		ContentType: b.format.ContentType(),
		Payload:     bytes.Join(b.bodies, []byte("\n")),
	}
	b.bodies = nil
	b.first, b.last = 0, 0

	if err := b.writer.Write(ctx, batch); err != nil {
		b.stats.Failed++
		b.logger.Error().Err(err).Str("batch", batch.Label).Int("entries", batch.Count).Msg("batch write failed")
		return err
	}
	b.stats.Batches++
	b.stats.Entries += batch.Count
	b.logger.Info().Str("batch", batch.Label).Int("entries", batch.Count).Msg("batch written")
	return nil
}
