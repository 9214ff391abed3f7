package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"gndsync/internal/source"
	"gndsync/pkg/logging"
	"gndsync/pkg/sparql"
)

var (
	identifiersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrich_identifiers_total",
		Help: "Identifiers whose groups all completed, by plan",
	}, []string{"plan"})

	queryFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrich_query_failures_total",
		Help: "Queries that failed and were skipped, by plan and query",
	}, []string{"plan", "query"})

	groupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enrich_group_duration_seconds",
		Help:    "Time from dispatching a group until its last query reported",
		Buckets: []float64{0.1, 0.5, 1, 5, 30, 120, 600},
	}, []string{"plan", "group"})
)

// Querier sends one instantiated query.
type Querier interface {
	Send(ctx context.Context, r sparql.Request) (*sparql.Response, error)
}

// Accumulator receives the bodies of collecting queries. *sink.Buffer
// implements it.
type Accumulator interface {
	Accumulate(ctx context.Context, position int, body []byte)
	Flush(ctx context.Context) error
}

// Summary describes a finished run.
type Summary struct {
	Pages       int
	Identifiers int
	Queries     int
	Failed      int
	Elapsed     time.Duration
}

type state int

const (
	stateFetchingPage state = iota
	stateProcessingIdentifier
	stateAdvancingIdentifier
	stateAdvancingPage
	stateDone
)

// cursor is the run's position. It is owned by Run and never shared.
type cursor struct {
	page     source.Page
	index    int
	group    int
	position int
}

// Pipeline runs a Plan over every identifier of a page source. Exactly one
// group is in flight at any time: group N+1 for an identifier starts only after
// every query of group N reported, and the next identifier starts only after
// the last group of the current one. A failed query is logged and counted but
// still completes its group.
type Pipeline struct {
	plan   Plan
	client Querier
	sink   Accumulator
	logger zerolog.Logger
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithSink forwards the bodies of collecting queries to acc.
func WithSink(acc Accumulator) Option {
	return func(p *Pipeline) { p.sink = acc }
}

// NewPipeline returns a pipeline running plan through client.
func NewPipeline(plan Plan, client Querier, opts ...Option) *Pipeline {
	p := &Pipeline{
		plan:   plan,
		client: client,
		logger: logging.For("enrich").With().Str("plan", plan.Name).Logger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes src until it is exhausted. An empty first page is a normal,
// empty run. Page source errors end the run and are returned. When ctx is
// cancelled the identifier in progress still runs all of its groups and the
// run stops before the next one. In every case buffered results are flushed
// before Run returns.
func (p *Pipeline) Run(ctx context.Context, src source.PageSource) (Summary, error) {
	start := time.Now()
	// queries and sink writes of the current identifier outlive cancellation
	work := context.WithoutCancel(ctx)
	var (
		sum    Summary
		cur    cursor
		runErr error
	)

	st := stateFetchingPage
	for st != stateDone {
		switch st {
		case stateFetchingPage, stateAdvancingPage:
			if err := ctx.Err(); err != nil {
				runErr = err
				st = stateDone
				continue
			}
			page, err := src.Next(ctx)
			if err != nil && !errors.Is(err, io.EOF) {
				runErr = fmt.Errorf("fetch page %d: %w", sum.Pages+1, err)
				st = stateDone
				continue
			}
			if err != nil || len(page.IDs) == 0 {
				if st == stateFetchingPage {
					p.logger.Info().Msg("identifier source is empty, nothing to do")
				}
				st = stateDone
				continue
			}
			sum.Pages++
			cur.page, cur.index, cur.group = page, 0, 0
			p.logger.Info().Int("page", page.Number).Int("ids", len(page.IDs)).Msg("iterating page")
			st = stateProcessingIdentifier

		case stateProcessingIdentifier:
			id := cur.page.IDs[cur.index]
			if cur.group == 0 {
				cur.position++
				p.logger.Info().Int("position", cur.position).Str("id", id).Msgf("%d. <%s>", cur.position, id)
			}
			if cur.group < len(p.plan.Groups) {
				queries, failed := p.runGroup(work, p.plan.Groups[cur.group], id, cur.position)
				sum.Queries += queries
				sum.Failed += failed
				cur.group++
			}
			if cur.group >= len(p.plan.Groups) {
				st = stateAdvancingIdentifier
			}

		case stateAdvancingIdentifier:
			sum.Identifiers++
			identifiersTotal.WithLabelValues(p.plan.Name).Inc()
			cur.index++
			cur.group = 0
			switch {
			case ctx.Err() != nil:
				runErr = ctx.Err()
				st = stateDone
			case cur.index < len(cur.page.IDs):
				st = stateProcessingIdentifier
			default:
				st = stateAdvancingPage
			}
		}
	}

	if p.sink != nil {
		if err := p.sink.Flush(work); err != nil {
			p.logger.Error().Err(err).Msg("final flush failed")
		}
	}
	sum.Elapsed = time.Since(start)

	ev := p.logger.Info()
	if runErr != nil {
		ev = p.logger.Warn().Err(runErr)
	}
	ev.Int("pages", sum.Pages).
		Int("identifiers", sum.Identifiers).
		Int("queries", sum.Queries).
		Int("failed", sum.Failed).
		Dur("elapsed", sum.Elapsed).
		Msg("DONE")
	return sum, runErr
}

// runGroup instantiates and dispatches one group for id and waits for it.
func (p *Pipeline) runGroup(ctx context.Context, g Group, id string, position int) (queries, failed int) {
	tasks := make([]Task, len(g.Queries))
	for i, q := range g.Queries {
		req := sparql.Request{Name: q.Name, Query: q.Build(p.plan.Sample, id), Format: q.Format}
		tasks[i] = Task{
			Name: q.Name,
			Run: func(ctx context.Context) ([]byte, error) {
				resp, err := p.client.Send(ctx, req)
				if err != nil {
					return nil, err
				}
				return resp.Body, nil
			},
		}
	}

	start := time.Now()
	outcomes := RunGroup(ctx, tasks)
	groupDuration.WithLabelValues(p.plan.Name, g.Name).Observe(time.Since(start).Seconds())

	for i, o := range outcomes {
		if o.Err != nil {
			failed++
			queryFailuresTotal.WithLabelValues(p.plan.Name, o.Name).Inc()
			p.logger.Error().Err(o.Err).Str("query", o.Name).Str("id", id).Msgf("ERROR: query %q failed", o.Name)
			continue
		}
		p.logger.Info().Str("query", o.Name).Msgf("\t%s done", o.Name)
		if g.Queries[i].Collect && p.sink != nil {
			p.sink.Accumulate(ctx, position, o.Body)
		}
	}
	return len(outcomes), failed
}
