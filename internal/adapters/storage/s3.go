package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

// S3Options configures the object-store backend.
// Credentials come from the default AWS chain (env, shared config, IMDS).
type S3Options struct {
	Bucket       string
	Region       string
	Endpoint     string
	Prefix       string
	UsePathStyle bool
}

// S3Store keeps one object per key under Prefix in a single bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// OpenS3 builds an S3 client from the default config chain.
func OpenS3(ctx context.Context, opts S3Options, loadOpts ...func(*config.LoadOptions) error) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, domain.NewValidationError("bucket", "s3 bucket required")
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, append([]func(*config.LoadOptions) error{config.WithRegion(region)}, loadOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return NewS3Store(client, opts.Bucket, opts.Prefix), nil
}

// NewS3Store wraps an existing client.
func NewS3Store(client *s3.Client, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) objectKey(key string) *string {
	return aws.String(s.prefix + key)
}

// Get downloads the object for key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: s.objectKey(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, domain.NewNotFoundError("key", key)
		}

		return nil, domain.NewPersistenceError("read", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, domain.NewPersistenceError("read", key, err)
	}

	return data, nil
}

// Set uploads value, replacing any existing object.
func (s *S3Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         s.objectKey(key),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return domain.NewPersistenceError("write", key, err)
	}

	return nil
}

func (s *S3Store) Name() string { return "storage:s3" }

// Check confirms the bucket is reachable with the current credentials.
func (s *S3Store) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &s.bucket})

	return err
}

func (s *S3Store) Close() error { return nil }
