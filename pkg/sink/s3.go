package sink

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// S3Config configures an S3Sink.
type S3Config struct {
	Endpoint  string `hcl:"endpoint,optional"`   // custom endpoint for MinIO and other S3-compatible services
	Region    string `hcl:"region,optional"`     // default: us-east-1
	Bucket    string `hcl:"bucket"`              // bucket name
	Prefix    string `hcl:"prefix,optional"`     // key prefix, e.g. "documents/"
	AccessKey string `hcl:"access_key,optional"` // static credentials; the default chain is used when empty
	SecretKey string `hcl:"secret_key,optional"`

	Overwrite             bool `hcl:"overwrite,optional"`
	RequestTimeoutSeconds int  `hcl:"request_timeout_seconds,optional"` // default: 30
	InsecureSkipVerify    bool `hcl:"insecure_skip_verify,optional"`    // testing only
}

// Validate validates the S3 configuration.
func (c *S3Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Bucket, validation.Required.Error("bucket is required")),
		validation.Field(&c.SecretKey,
			validation.When(c.AccessKey != "", validation.Required.Error("secret_key is required with access_key"))),
		validation.Field(&c.RequestTimeoutSeconds, validation.Min(0)),
	)
}

// SetDefaults sets default values for optional fields.
func (c *S3Config) SetDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = 30
	}
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads blobs as objects.
type S3Sink struct {
	client    putObjectAPI
	bucket    string
	prefix    string
	overwrite bool
	logger    hclog.Logger
}

// NewS3Sink creates a new S3Sink.
func NewS3Sink(ctx context.Context, cfg *S3Config, logger hclog.Logger) (*S3Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid S3 configuration: %w", err)
	}
	cfg.SetDefaults()

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newS3Sink(client, cfg, logger), nil
}

func newS3Sink(client putObjectAPI, cfg *S3Config, logger hclog.Logger) *S3Sink {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &S3Sink{
		client:    client,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		overwrite: cfg.Overwrite,
		logger:    logger.Named("s3-sink"),
	}
}

// newS3Client builds a traced client for cfg. A custom endpoint such as
// MinIO or LocalStack is addressed path-style.
func newS3Client(ctx context.Context, cfg *S3Config) (*s3.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(&http.Client{
			Timeout:   time.Duration(cfg.RequestTimeoutSeconds) * time.Second,
			Transport: otelhttp.NewTransport(transport),
		}),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Key returns the object key a name is stored under.
func (s *S3Sink) Key(name string) string {
	if s.prefix == "" {
		return FileName(name)
	}
	return path.Join(s.prefix, FileName(name))
}

// Save uploads data and returns its s3:// location. Without Overwrite the
// upload is conditional on the key not existing.
func (s *S3Sink) Save(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	key := s.Key(name)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if mimeType != "" {
		input.ContentType = aws.String(mimeType)
	}
	if !s.overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return "", fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrExists)
		}
		return "", fmt.Errorf("failed to put object to S3: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	s.logger.Debug("uploaded document", "location", location, "bytes", len(data))
	return location, nil
}
