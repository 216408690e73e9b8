package storage

import (
	"context"
	"fmt"
	"log/slog"

	"gallery/internal/config"
	svc "gallery/internal/domain/services/gallery"
)

// NewContentStore creates the content store selected by CONTENT_BACKEND.
func NewContentStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (svc.ContentStore, error) {
	switch cfg.ContentBackend {
	case "s3":
		store, err := NewS3Store(ctx, S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("content store ready", "backend", "s3", "bucket", cfg.S3Bucket)
		return store, nil

	case "filesystem", "":
		store, err := NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("content store ready", "backend", "filesystem", "dir", cfg.MediaDir, "base_url", cfg.MediaBaseURL)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown CONTENT_BACKEND %q (want s3 or filesystem)", cfg.ContentBackend)
	}
}
