package photostore

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// S3Config configures an S3Store.
type S3Config struct {
	// Endpoint is set for S3-compatible services such as MinIO. Path-style
	// addressing is used when it is set.
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string

	// Timeout for upload requests
	// Default: 30 seconds
	Timeout time.Duration
}

// Validate checks if the configuration is valid
func (c *S3Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Region, validation.Required),
		validation.Field(&c.Bucket, validation.Required),
		validation.Field(&c.SecretKey, validation.When(c.AccessKey != "", validation.Required)),
	)
}

// SetDefaults fills unset optional fields
func (c *S3Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

// S3Store uploads photos to an S3 bucket.
type S3Store struct {
	client *s3.Client
	cfg    *S3Config
	logger hclog.Logger
}

// NewS3Store creates an S3 photo store.
func NewS3Store(ctx context.Context, cfg *S3Config, logger hclog.Logger) (*S3Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 configuration: %w", err)
	}
	cfg.SetDefaults()

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	awsCfg, err := createAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client: client,
		cfg:    cfg,
		logger: logger.Named("photostore"),
	}, nil
}

// createAWSConfig creates AWS SDK configuration from S3 config
func createAWSConfig(ctx context.Context, cfg *S3Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}

	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	return config.LoadDefaultConfig(ctx, opts...)
}

// Put uploads data to bucket/prefix/key and returns its s3:// URI.
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	objectKey := key
	if s.cfg.Prefix != "" {
		objectKey = path.Join(s.cfg.Prefix, key)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload photo %s to bucket %s: %w", objectKey, s.cfg.Bucket, err)
	}

	s.logger.Debug("photo uploaded", "bucket", s.cfg.Bucket, "key", objectKey, "bytes", len(data))
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, objectKey), nil
}
