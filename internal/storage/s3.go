package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	models "gallery/internal/domain/models/gallery"
	svc "gallery/internal/domain/services/gallery"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures an S3 compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string // optional; set for R2/MinIO
	PublicBaseURL string // optional; where objects are publicly readable
	AccessKey     string // optional; falls back to the default credential chain
	SecretKey     string
}

// S3Store keeps images in an S3 bucket.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	logger        *slog.Logger
}

var _ svc.ContentStore = (*S3Store)(nil)

// NewS3Store loads AWS configuration and creates the store.
func NewS3Store(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for the s3 content backend")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, cfg, logger), nil
}

func newS3Store(client *s3.Client, cfg S3Config, logger *slog.Logger) *S3Store {
	base := cfg.PublicBaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		logger:        logger,
	}
}

// Put uploads the image and returns its public URL.
func (s *S3Store) Put(ctx context.Context, blob svc.Blob, pathHint models.Path) (string, error) {
	info, err := InspectImage(blob.Data)
	if err != nil {
		return "", err
	}

	key := objectKey(pathHint, blob.Filename, info.Extension)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob.Data),
		ContentType: aws.String(info.MIME),
	})
	if err != nil {
		return "", fmt.Errorf("upload image to s3: %w", err)
	}

	s.logger.Debug("image uploaded",
		"bucket", s.bucket,
		"key", key,
		"mime", info.MIME,
		"size", len(blob.Data),
	)

	return keyURL(s.publicBaseURL, key), nil
}

// Delete removes the object behind uri. S3 treats deleting a missing key as
// success; URIs outside the bucket's base URL are ignored.
func (s *S3Store) Delete(ctx context.Context, uri string) error {
	key, ok := keyFromURL(s.publicBaseURL, uri)
	if !ok {
		s.logger.Debug("skipping delete of foreign image", "uri", uri)
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image from s3: %w", err)
	}

	s.logger.Debug("image deleted", "bucket", s.bucket, "key", key)
	return nil
}
