package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3ConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    S3Config
		wantErr bool
	}{
		{
			name: "all set",
			env: map[string]string{
				"MINIO_ENDPOINT":   "localhost:9000",
				"MINIO_ACCESS_KEY": "minio",
				"MINIO_SECRET_KEY": "minio123",
				"MINIO_USE_SSL":    "true",
			},
			want: S3Config{Endpoint: "localhost:9000", AccessKey: "minio", SecretKey: "minio123", UseSSL: true},
		},
		{
			name: "ssl off by default",
			env: map[string]string{
				"MINIO_ENDPOINT":   "s3.local",
				"MINIO_ACCESS_KEY": "a",
				"MINIO_SECRET_KEY": "b",
				"MINIO_USE_SSL":    "",
			},
			want: S3Config{Endpoint: "s3.local", AccessKey: "a", SecretKey: "b"},
		},
		{
			name: "missing secret",
			env: map[string]string{
				"MINIO_ENDPOINT":   "s3.local",
				"MINIO_ACCESS_KEY": "a",
				"MINIO_SECRET_KEY": "",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			got, err := S3ConfigFromEnv()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewS3Service_DoesNotDial(t *testing.T) {
	svc, err := NewS3Service(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
