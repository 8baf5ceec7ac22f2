// Package gcs stores rendered certificate documents in a Google Cloud
// Storage bucket, keyed by activity and certificate identifier.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"ugnayan/contexts/community-engagement/certificate-service/ports"
)

type BlobStore struct {
	client *storage.Client
	bucket *storage.BucketHandle

	bucketName string
	logger     *slog.Logger
}

type BlobStoreConfig struct {
	Bucket          string
	CredentialsFile string
}

func NewBlobStore(ctx context.Context, cfg BlobStoreConfig, logger *slog.Logger) (*BlobStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs blob store: bucket not set")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gcs blob store: create client: %w", err)
	}

	return &BlobStore{
		client:     client,
		bucket:     client.Bucket(cfg.Bucket),
		bucketName: cfg.Bucket,
		logger:     logger,
	}, nil
}

// Put writes the object at key, replacing any existing object. Re-running a
// batch overwrites the prior document for the same identifier.
func (s *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	writer := s.bucket.Object(key).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		s.logger.Error("certificate blob upload failed",
			"event", "certificate_blob_upload_failed",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"key", key,
			"error", err.Error(),
		)
		return "", fmt.Errorf("gcs blob store: write %s: %w", key, err)
	}
	if err := writer.Close(); err != nil {
		s.logger.Error("certificate blob upload failed",
			"event", "certificate_blob_upload_failed",
			"module", "community-engagement/certificate-service",
			"layer", "adapter",
			"key", key,
			"error", err.Error(),
		)
		return "", fmt.Errorf("gcs blob store: close %s: %w", key, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key), nil
}

func (s *BlobStore) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

var _ ports.BlobStore = (*BlobStore)(nil)
