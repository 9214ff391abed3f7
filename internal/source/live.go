package source

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"gndsync/internal/template"
	"gndsync/pkg/logging"
	"gndsync/pkg/sparql"
)

// Selecter runs a SELECT query and returns the decoded results table.
type Selecter interface {
	Select(ctx context.Context, name, query string) (*sparql.Results, error)
}

// Live pages through the endpoint with a select template carrying <offset>
// and <limit> tokens. The offset advances by limit on every call and the
// first empty page ends pagination.
type Live struct {
	client   Selecter
	tmpl     template.Template
	variable string
	offset   int
	limit    int
	page     int
	done     bool
	logger   zerolog.Logger
}

// NewLive returns a live source starting at offset. variable names the
// projected column holding the identifiers (e.g. "gndid").
func NewLive(client Selecter, tmpl template.Template, variable string, offset, limit int) *Live {
	return &Live{
		client:   client,
		tmpl:     tmpl,
		variable: variable,
		offset:   offset,
		limit:    limit,
		logger:   logging.For("source.live"),
	}
}

// Offset is the offset the next call will query.
func (l *Live) Offset() int { return l.offset }

func (l *Live) Next(ctx context.Context) (Page, error) {
	if l.done {
		return Page{}, io.EOF
	}
	l.logger.Info().
		Int("iteration", l.page+1).
		Int("offset", l.offset).
		Int("limit", l.limit).
		Msgf("executing %s", l.tmpl.Name)

	res, err := l.client.Select(ctx, l.tmpl.Name, l.tmpl.Page(l.offset, l.limit))
	if err != nil {
		return Page{}, fmt.Errorf("fetch page at offset %d: %w", l.offset, err)
	}
	l.offset += l.limit

	ids := res.Column(l.variable)
	if len(ids) == 0 {
		l.done = true
		return Page{}, io.EOF
	}
	l.page++
	return Page{Number: l.page, IDs: ids}, nil
}
