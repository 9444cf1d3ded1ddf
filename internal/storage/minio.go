package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stanford-ddl/transcript-analyzer/internal/config"
	"github.com/stanford-ddl/transcript-analyzer/internal/domain"
)

const (
	uploadsPrefix   = "inputs"
	processedPrefix = "outputs"

	contentType = "application/octet-stream"
)

// S3 stores uploads and processed artifacts as objects in one bucket,
// separated by key prefix.
type S3 struct {
	client *minio.Client
	bucket string
}

func NewS3(ctx context.Context, cfg config.S3) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Bucket, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &S3{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func (s *S3) SaveUpload(ctx context.Context, name string, r io.Reader, limit int64) (string, error) {
	key := path.Join(uploadsPrefix, name)

	// Size is unknown up front, so stream one byte past the limit and check
	// the reported object size afterwards.
	info, err := s.client.PutObject(ctx, s.bucket, key, io.LimitReader(r, limit+1), -1,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to put object %q: %w", key, err)
	}

	if info.Size > limit {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return "", fmt.Errorf("failed to remove oversize object %q: %w", key, err)
		}

		return "", domain.ErrFileTooLarge
	}

	return key, nil
}

func (s *S3) OpenUpload(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, fmt.Errorf("failed to stat object %q: %w", key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}

	return obj, nil
}

func (s *S3) DeleteUpload(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %q: %w", key, err)
	}

	return nil
}

func (s *S3) SaveProcessed(ctx context.Context, name string, r io.Reader) (string, error) {
	key := path.Join(processedPrefix, name)

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, -1,
		minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("failed to put object %q: %w", key, err)
	}

	return key, nil
}

func (s *S3) OpenProcessed(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrArtifactMissing
		}

		return nil, fmt.Errorf("failed to stat object %q: %w", key, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}

	return obj, nil
}
