package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"gndsync/internal/config"
	"gndsync/internal/jobs"
	"gndsync/internal/sink"
	"gndsync/internal/storage"
	"gndsync/pkg/kafkaclient"
)

func newS3() (*storage.S3Service, error) {
	s3cfg, err := storage.S3ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return storage.NewS3Service(s3cfg)
}

// newSink connects every configured writer and returns the buffer feeding
// them, plus a func releasing the connections.
func newSink(ctx context.Context, cfg config.Config, preset jobs.Preset) (*sink.Buffer, func(), error) {
	var (
		writers []sink.Writer
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.LDPContainer != "" {
		writers = append(writers, sink.NewLDP(cfg.LDPContainer, cfg.LDPUser, cfg.LDPPassword))
	}
	if cfg.ResultBucket != "" {
		s3, err := newS3()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		if _, err := s3.CreateBucket(ctx, cfg.ResultBucket, ""); err != nil {
			closeAll()
			return nil, nil, err
		}
		writers = append(writers, sink.NewS3(s3, cfg.ResultBucket, cfg.ResultPrefix))
	}
	if cfg.KafkaBroker != "" {
		producer, err := kafkaclient.NewKafkaProducer(cfg.KafkaTopic, cfg.KafkaBroker)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := producer.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close kafka producer")
			}
		})
		writers = append(writers, sink.NewKafka(producer))
	}
	if cfg.DatabaseURL != "" {
		conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close(context.Background()) })
		pg := sink.NewPostgres(conn, cfg.ResultTable)
		if err := pg.EnsureTable(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		writers = append(writers, pg)
	}
	if len(writers) == 0 {
		return nil, nil, fmt.Errorf("job %s collects results but no sink is configured (LDP_CONTAINER, RESULT_BUCKET, KAFKA_BROKER or DATABASE_URL)", preset.Name)
	}

	var w sink.Writer = writers[0]
	if len(writers) > 1 {
		w = sink.NewMulti(writers...)
	}
	prefix := cfg.SinkPrefix
	if prefix == "" {
		prefix = preset.Name
	}
	log.Info().Str("writer", w.Name()).Int("threshold", cfg.SinkThreshold).Msg("result sink ready")
	return sink.NewBuffer(w, cfg.SinkThreshold, prefix, preset.ResultFormat), closeAll, nil
}
