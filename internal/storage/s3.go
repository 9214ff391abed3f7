package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"gndsync/pkg/logging"
)

// S3Config holds the connection settings of an S3-compatible store.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// S3ConfigFromEnv reads MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and
// MINIO_USE_SSL.
func S3ConfigFromEnv() (S3Config, error) {
	cfg := S3Config{
		Endpoint:  os.Getenv("MINIO_ENDPOINT"),
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return S3Config{}, fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}
	return cfg, nil
}

// S3Service is a client for S3-compatible storage. It serves both as a page
// source (one object per identifier page) and as a result batch store.
type S3Service struct {
	client *minio.Client
	logger zerolog.Logger
}

// NewS3Service connects to the configured endpoint.
func NewS3Service(cfg S3Config) (*S3Service, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	logger := logging.For("storage")
	logger.Info().Str("endpoint", cfg.Endpoint).Msg("connected to object store")
	return &S3Service{client: minioClient, logger: logger}, nil
}

// CreateBucket makes bucketName unless it already exists.
func (s *S3Service) CreateBucket(ctx context.Context, bucketName string, location string) (bool, error) {
	exists, err := s.client.BucketExists(ctx, bucketName)
	if err != nil {
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		err = s.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location})
		if err != nil {
			return false, err
		}
	}
	return true, nil
}

// PutObject stores data under key, replacing any previous object.
func (s *S3Service) PutObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		bucketName,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %q: %w", key, err)
	}
	s.logger.Debug().Str("bucket", bucketName).Str("key", key).Int("bytes", len(data)).Msg("stored object")
	return nil
}

// ListKeys returns the keys below prefix in lexical order.
func (s *S3Service) ListKeys(ctx context.Context, bucketName, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %q: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// GetObject reads the whole object.
func (s *S3Service) GetObject(ctx context.Context, bucketName, key string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", key, err)
	}
	return data, nil
}
