// Package storage keeps generated BOL artifacts in S3-compatible object
// storage (AWS S3, MinIO, RustFS).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/domain/bol"
	"github.com/freightdesk/backend/internal/domain/shared"
)

const (
	defaultEndpoint          = "http://localhost:9000"
	defaultRegion            = "us-east-1"
	defaultPrefix            = "bols"
	defaultPresignExpiration = 15 * time.Minute
)

// S3Config holds connection settings for an S3-compatible bucket.
type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKey         string
	SecretKey         string
	UseSSL            bool
	UsePathStyle      bool
	Prefix            string
	PresignExpiration time.Duration
}

// Validate reports the first missing required setting.
func (c S3Config) Validate() error {
	switch {
	case c.Bucket == "":
		return configError("storage.bucket is required", nil)
	case c.AccessKey == "":
		return configError("storage.access_key is required", nil)
	case c.SecretKey == "":
		return configError("storage.secret_key is required", nil)
	}
	return nil
}

func configError(msg string, cause error) error {
	return shared.WrapDomainError(shared.CodeConfiguration, "storage: "+msg, cause)
}

// S3ArtifactStore uploads artifacts and hands back presigned download URLs.
type S3ArtifactStore struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	prefix            string
	presignExpiration time.Duration
	logger            *zap.Logger
	now               func() time.Time
}

// Option configures an S3ArtifactStore.
type Option func(*S3ArtifactStore)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3ArtifactStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPresignExpiration overrides how long download URLs stay valid.
func WithPresignExpiration(d time.Duration) Option {
	return func(s *S3ArtifactStore) {
		if d > 0 {
			s.presignExpiration = d
		}
	}
}

// NewS3ArtifactStore builds a client with static credentials against
// cfg.Endpoint.
func NewS3ArtifactStore(ctx context.Context, cfg S3Config, opts ...Option) (*S3ArtifactStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
		// MinIO and RustFS reject trailing checksums on plain HTTP.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	s := &S3ArtifactStore{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		prefix:            prefix,
		presignExpiration: cfg.PresignExpiration,
		logger:            zap.NewNop(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.presignExpiration <= 0 {
		s.presignExpiration = defaultPresignExpiration
	}
	return s, nil
}

func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", configError("storage.endpoint is invalid", err)
	}
	return endpoint, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3ArtifactStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Ping checks that the bucket is reachable with the configured credentials.
func (s *S3ArtifactStore) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("storage: bucket %s unreachable: %w", s.bucket, err)
	}
	return nil
}

// Save uploads data under {prefix}/{year}/{month}/{name} and presigns a
// GET for it.
func (s *S3ArtifactStore) Save(ctx context.Context, name string, data []byte, contentType string) (*bol.Artifact, error) {
	if len(data) == 0 {
		return nil, errors.New("storage: artifact is empty")
	}
	key := bol.ArtifactKey(s.prefix, name, s.now())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: failed to upload %s: %w", key, err)
	}

	presigned, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return nil, fmt.Errorf("storage: failed to presign %s: %w", key, err)
	}

	s.logger.Info("Artifact uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)))

	return &bol.Artifact{
		Name:        key[strings.LastIndex(key, "/")+1:],
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Location:    "s3://" + s.bucket + "/" + key,
		URL:         presigned.URL,
	}, nil
}

// Bucket returns the bucket name.
func (s *S3ArtifactStore) Bucket() string {
	return s.bucket
}
