package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	infraconfig "github.com/shadeworks/backend/internal/infrastructure/config"
)

// S3Storage archives documents in an S3-compatible bucket.
// It works with AWS S3 as well as MinIO and other compatible backends.
type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	publicURL string
	logger    *zap.Logger
}

// S3StorageOption is a functional option for configuring S3Storage
type S3StorageOption func(*S3Storage)

// WithS3Logger sets a custom logger for S3Storage
func WithS3Logger(logger *zap.Logger) S3StorageOption {
	return func(s *S3Storage) {
		s.logger = logger
	}
}

// NewS3Storage creates an S3-backed document storage from configuration.
// Credentials are resolved through the default AWS provider chain.
func NewS3Storage(cfg infraconfig.DocumentsConfig, opts ...S3StorageOption) (*S3Storage, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("documents s3 bucket is required")
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			endpoint := cfg.S3Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			// Custom endpoints (MinIO etc.) generally require path-style addressing
			o.UsePathStyle = true
		}
	})

	storage := &S3Storage{
		client:    client,
		bucket:    cfg.S3Bucket,
		region:    region,
		publicURL: strings.TrimSuffix(cfg.S3PublicURL, "/"),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(storage)
	}

	return storage, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("creating document bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		// Ignore "BucketAlreadyOwnedByYou" error (race condition)
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Store uploads a document and returns its public URL
func (s *S3Storage) Store(ctx context.Context, key string, data []byte) (string, error) {
	if key == "" {
		return "", NewRenderError(ErrCodeStorageFailed, "document key is required", nil)
	}
	if len(data) == 0 {
		return "", NewRenderError(ErrCodeStorageFailed, "document data is empty", nil)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to upload document", err)
	}

	url := s.url(key)

	s.logger.Info("document archived",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
		zap.String("url", url))

	return url, nil
}

// Get retrieves a document by key
func (s *S3Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, NewRenderError(ErrCodeStorageFailed, "document key is required", nil)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, NewRenderError(ErrCodeStorageFailed, "document not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to fetch document", err)
	}

	return out.Body, nil
}

// Delete removes a document from the bucket
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return NewRenderError(ErrCodeStorageFailed, "document key is required", nil)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete document", err)
	}

	return nil
}

// url maps a key to its public URL
func (s *S3Storage) url(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// Ensure S3Storage implements DocumentStorage
var _ DocumentStorage = (*S3Storage)(nil)
