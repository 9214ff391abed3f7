package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"gndsync/internal/config"
	"gndsync/internal/enrich"
	"gndsync/internal/env"
	"gndsync/internal/jobs"
	"gndsync/internal/keys"
	"gndsync/internal/source"
	"gndsync/internal/template"
	"gndsync/pkg/graceful"
	"gndsync/pkg/logging"
	"gndsync/pkg/sparql"
)

func main() {
	job := flag.String("job", "enrich", fmt.Sprintf("query plan to run %v", jobs.Names()))
	prompt := flag.Bool("prompt", false, "ask for endpoint credentials and whether to run T0")
	dump := flag.String("dump", "", "write every identifier page to this directory and exit")
	flag.Parse()

	// Load environment variables from a .env file when there is one.
	env.LoadEnv()
	cfg := config.FromEnv()
	logging.Setup(logging.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if *prompt {
		if err := config.NewPrompter(os.Stdin, os.Stdout).Ask(&cfg); err != nil {
			log.Fatal().Err(err).Msg("prompt failed")
		}
	}

	ctx, cancel := graceful.Context(context.Background())
	defer cancel()

	if err := run(ctx, cfg, *job, *dump); err != nil {
		cancel()
		log.Fatal().Err(err).Str("job", *job).Msg("run failed")
	}
}

func run(ctx context.Context, cfg config.Config, job, dumpDir string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	preset, err := jobs.Lookup(job)
	if err != nil {
		return err
	}
	if cfg.ResultFormat != "" {
		f, err := sparql.ParseFormat(cfg.ResultFormat)
		if err != nil {
			return err
		}
		preset = preset.WithResultFormat(f)
	}
	if cfg.PageLimit == 0 {
		cfg.PageLimit = preset.PageLimit
	}

	if cfg.MetricsAddr != "" {
		stop := serveMetrics(cfg.MetricsAddr)
		defer stop()
	}

	store := template.NewStore(cfg.TemplateDir)
	client := sparql.NewClient(cfg.Endpoint,
		sparql.WithBasicAuth(cfg.User, cfg.Password),
		sparql.WithTimeout(cfg.Timeout),
	)

	src, err := newSource(cfg, store, client)
	if err != nil {
		return err
	}

	if dumpDir != "" {
		stats, err := source.Dump(ctx, src, dumpDir, keys.PagePrefix)
		if err != nil {
			return fmt.Errorf("dump identifiers: %w", err)
		}
		log.Info().Int("pages", stats.Pages).Int("ids", stats.IDs).Str("dir", dumpDir).Msg("identifiers saved")
		return nil
	}

	plan, err := preset.Plan(store, cfg.Sample)
	if err != nil {
		return err
	}

	var opts []enrich.Option
	if plan.Collects() {
		buf, closeSinks, err := newSink(ctx, cfg, preset)
		if err != nil {
			return err
		}
		defer closeSinks()
		opts = append(opts, enrich.WithSink(buf))
		defer func() {
			st := buf.Stats()
			log.Info().Int("batches", st.Batches).Int("entries", st.Entries).Int("failed", st.Failed).Msg("results written")
		}()
	}

	log.Info().Str("job", plan.Name).Str("endpoint", client.Endpoint()).Str("source", cfg.Source).Msg("starting")
	sum, err := enrich.NewPipeline(plan, client, opts...).Run(ctx, src)
	if errors.Is(err, context.Canceled) {
		log.Warn().Int("identifiers", sum.Identifiers).Msg("interrupted, stopped after the current identifier")
		return nil
	}
	return err
}

// newSource builds the identifier source the configuration asks for.
func newSource(cfg config.Config, store *template.Store, client *sparql.Client) (source.PageSource, error) {
	switch cfg.Source {
	case config.SourceFile:
		return source.NewFile(cfg.SourcePath, cfg.SourceSeparator, cfg.PageSize), nil
	case config.SourceDir:
		return source.NewDir(cfg.SourcePath), nil
	case config.SourceS3:
		s3, err := newS3()
		if err != nil {
			return nil, err
		}
		return source.NewObjects(s3, cfg.SourceBucket, cfg.SourcePath), nil
	default:
		tmpl, err := store.Load(jobs.PageTemplate)
		if err != nil {
			return nil, err
		}
		return source.NewLive(client, tmpl, cfg.IDVariable, cfg.PageOffset, cfg.PageLimit), nil
	}
}

func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
