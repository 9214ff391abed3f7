// Package config collects the runtime settings of a gndsync run from the
// environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"gndsync/internal/env"
	"gndsync/internal/template"
	"gndsync/pkg/sparql"
)

// Identifier sources.
const (
	SourceLive = "live"
	SourceFile = "file"
	SourceDir  = "dir"
	SourceS3   = "s3"
)

type Config struct {
	Endpoint string
	User     string
	Password string
	Timeout  time.Duration

	TemplateDir string
	Sample      string
	IDVariable  string

	Source          string
	SourcePath      string
	SourceBucket    string
	SourceSeparator string
	PageSize        int
	PageLimit       int
	PageOffset      int

	SinkThreshold int
	SinkPrefix    string
	ResultFormat  string
	LDPContainer  string
	LDPUser       string
	LDPPassword   string
	ResultBucket  string
	ResultPrefix  string
	KafkaBroker   string
	KafkaTopic    string
	DatabaseURL   string
	ResultTable   string

	MetricsAddr string
	LogLevel    string
	LogPretty   bool
}

// FromEnv reads the configuration. Call env.LoadEnv first to pick up a .env
// file. The result is not validated.
func FromEnv() Config {
	return Config{
		Endpoint: env.GetEnv("SPARQL_ENDPOINT", ""),
		User:     env.GetEnv("SPARQL_USER", ""),
		Password: env.GetEnv("SPARQL_PASSWORD", ""),
		Timeout:  time.Duration(env.GetInt("SPARQL_TIMEOUT_MS", int(sparql.DefaultTimeout.Milliseconds()))) * time.Millisecond,

		TemplateDir: env.GetEnv("TEMPLATE_DIR", "sparql"),
		Sample:      env.GetEnv("SAMPLE_URI", template.SampleURI),
		IDVariable:  env.GetEnv("ID_VARIABLE", "gndid"),

		Source:          env.GetEnv("SOURCE", SourceLive),
		SourcePath:      env.GetEnv("SOURCE_PATH", ""),
		SourceBucket:    env.GetEnv("SOURCE_BUCKET", ""),
		SourceSeparator: env.GetEnv("SOURCE_SEPARATOR", ""),
		PageSize:        env.GetInt("PAGE_SIZE", 0),
		PageLimit:       env.GetInt("PAGE_LIMIT", 0),
		PageOffset:      env.GetInt("PAGE_OFFSET", 0),

		SinkThreshold: env.GetInt("SINK_THRESHOLD", 100),
		SinkPrefix:    env.GetEnv("SINK_PREFIX", ""),
		ResultFormat:  env.GetEnv("RESULT_FORMAT", ""),
		LDPContainer:  env.GetEnv("LDP_CONTAINER", ""),
		LDPUser:       env.GetEnv("LDP_USER", ""),
		LDPPassword:   env.GetEnv("LDP_PASSWORD", ""),
		ResultBucket:  env.GetEnv("RESULT_BUCKET", ""),
		ResultPrefix:  env.GetEnv("RESULT_PREFIX", ""),
		KafkaBroker:   env.GetEnv("KAFKA_BROKER", ""),
		KafkaTopic:    env.GetEnv("KAFKA_TOPIC", ""),
		DatabaseURL:   env.GetEnv("DATABASE_URL", ""),
		ResultTable:   env.GetEnv("RESULT_TABLE", ""),

		MetricsAddr: env.GetEnv("METRICS_ADDR", ""),
		LogLevel:    env.GetEnv("LOG_LEVEL", "info"),
		LogPretty:   env.GetBool("LOG_PRETTY", false),
	}
}

// HasSink reports whether any result writer is configured.
func (c Config) HasSink() bool {
	return c.LDPContainer != "" || c.ResultBucket != "" || c.KafkaBroker != "" || c.DatabaseURL != ""
}

// Validate reports every missing or contradictory setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Endpoint == "" {
		errs = append(errs, errors.New("SPARQL_ENDPOINT is required"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("SPARQL_TIMEOUT_MS must be positive"))
	}
	if c.Sample == "" {
		errs = append(errs, errors.New("SAMPLE_URI must not be empty"))
	}
	switch c.Source {
	case SourceLive:
		if c.PageLimit < 0 {
			errs = append(errs, errors.New("PAGE_LIMIT must not be negative"))
		}
	case SourceFile, SourceDir:
		if c.SourcePath == "" {
			errs = append(errs, fmt.Errorf("SOURCE_PATH is required for source %q", c.Source))
		}
	case SourceS3:
		if c.SourceBucket == "" {
			errs = append(errs, errors.New("SOURCE_BUCKET is required for source \"s3\""))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SOURCE %q", c.Source))
	}
	if c.PageSize < 0 {
		errs = append(errs, errors.New("PAGE_SIZE must not be negative"))
	}
	if c.ResultFormat != "" {
		if _, err := sparql.ParseFormat(c.ResultFormat); err != nil {
			errs = append(errs, fmt.Errorf("RESULT_FORMAT: %w", err))
		}
	}
	if c.KafkaBroker != "" && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required with KAFKA_BROKER"))
	}
	return errors.Join(errs...)
}
