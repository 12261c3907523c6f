package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const (
	BackendS3    = "s3"
	BackendGCS   = "gcs"
	BackendLocal = "local"
)

type Config struct {
	Backend string

	S3Bucket   string
	S3Region   string
	S3Endpoint string

	GCSBucket         string
	GCSAccessID       string
	GCSPrivateKeyFile string

	DataDir  string
	BaseURL  string
	TempURLs TempURLIssuer
}

// New builds the publisher selected by cfg.Backend.
func New(ctx context.Context, cfg Config) (Publisher, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendS3:
		return NewS3Publisher(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
	case BackendGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		var opts []GCSOption
		if cfg.GCSPrivateKeyFile != "" {
			key, err := os.ReadFile(cfg.GCSPrivateKeyFile)
			if err != nil {
				return nil, fmt.Errorf("read gcs signing key: %w", err)
			}
			opts = append(opts, WithSigningKey(cfg.GCSAccessID, key))
		}
		return NewGCSPublisher(client, cfg.GCSBucket, opts...)
	case BackendLocal, "":
		return NewLocalPublisher(cfg.DataDir, cfg.BaseURL, cfg.TempURLs)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
