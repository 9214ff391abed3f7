package sink

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"gndsync/internal/keys"
	"gndsync/internal/models"
)

// ObjectWriter is the part of the object store the S3 writer needs.
type ObjectWriter interface {
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// S3 stores each batch as one object below root.
type S3 struct {
	store  ObjectWriter
	bucket string
	root   string
}

func NewS3(store ObjectWriter, bucket, root string) *S3 {
	return &S3{store: store, bucket: bucket, root: root}
}

func (s *S3) Name() string { return "s3" }

func (s *S3) Write(ctx context.Context, b models.Batch) error {
	return s.store.PutObject(ctx, s.bucket, keys.Object(s.root, b.Label), b.Payload, b.ContentType)
}

// Publisher is the part of the Kafka producer the Kafka writer needs.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// Kafka publishes each batch as one message keyed by its label.
type Kafka struct {
	pub Publisher
}

func NewKafka(pub Publisher) *Kafka { return &Kafka{pub: pub} }

func (k *Kafka) Name() string { return "kafka" }

func (k *Kafka) Write(ctx context.Context, b models.Batch) error {
	return k.pub.Publish(ctx, b.Label, b.Payload, map[string]string{
		"content-type": b.ContentType,
		"range":        b.Range(),
		"count":        strconv.Itoa(b.Count),
	})
}

// Execer is satisfied by *pgx.Conn and *pgxpool.Pool.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres inserts one row per batch.
type Postgres struct {
	db    Execer
	table string
}

// NewPostgres returns a writer for table. The name is quoted as an identifier.
func NewPostgres(db Execer, table string) *Postgres {
	if table == "" {
		table = "sparql_results"
	}
	return &Postgres{db: db, table: pgx.Identifier{table}.Sanitize()}
}

func (p *Postgres) Name() string { return "postgres" }

// EnsureTable creates the results table when it does not exist yet.
func (p *Postgres) EnsureTable(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+p.table+` (
	label        text PRIMARY KEY,
	first_pos    integer NOT NULL,
	last_pos     integer NOT NULL,
	entries      integer NOT NULL,
	content_type text NOT NULL,
	payload      bytea NOT NULL,
	written_at   timestamptz NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create table %s: %w", p.table, err)
	}
	return nil
}

func (p *Postgres) Write(ctx context.Context, b models.Batch) error {
	_, err := p.db.Exec(ctx, `INSERT INTO `+p.table+` (label, first_pos, last_pos, entries, content_type, payload)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (label) DO UPDATE SET
	first_pos = EXCLUDED.first_pos,
	last_pos = EXCLUDED.last_pos,
	entries = EXCLUDED.entries,
	content_type = EXCLUDED.content_type,
	payload = EXCLUDED.payload,
	written_at = now()`,
		b.Label, b.First, b.Last, b.Count, b.ContentType, b.Payload)
	if err != nil {
		return fmt.Errorf("insert %s: %w", b.Label, err)
	}
	return nil
}
