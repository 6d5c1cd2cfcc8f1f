package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/colorstudio/server/internal/infra/config"
	"github.com/colorstudio/server/internal/port/outbound"
)

// ImageStorageAdapter implements ImageStoragePort using S3-compatible storage (R2, MinIO, S3).
type ImageStorageAdapter struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewClient creates an S3 client for the configured endpoint.
func NewClient(ctx context.Context, cfg *config.StorageConfig) (*s3.Client, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil, errors.New("incomplete storage configuration")
	}

	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewImageStorageAdapter creates a new image storage adapter.
// Objects are addressed as publicBaseURL/key; without a public base URL the
// client endpoint is used with path-style addressing.
func NewImageStorageAdapter(client *s3.Client, bucket, publicBaseURL string) *ImageStorageAdapter {
	if publicBaseURL == "" && client != nil {
		if ep := client.Options().BaseEndpoint; ep != nil {
			publicBaseURL = strings.TrimRight(*ep, "/") + "/" + bucket
		}
	}
	return &ImageStorageAdapter{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Put uploads an object.
func (a *ImageStorageAdapter) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := a.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// URL returns the public URL of an object.
func (a *ImageStorageAdapter) URL(key string) string {
	return a.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}

// Compile-time check
var _ outbound.ImageStoragePort = (*ImageStorageAdapter)(nil)
