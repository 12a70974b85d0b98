package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// 업로드 이미지는 키에 타임스탬프가 있어 덮어쓰지 않음
const immutableCacheControl = "public, max-age=31536000, immutable"

// objectAPI is the part of the S3 client the store calls
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Config holds S3-compatible storage configuration (AWS, R2, MinIO)
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	CDNURL          string
	BasePath        string
	ForcePathStyle  bool
}

// S3Client stores product images in an S3-compatible bucket
type S3Client struct {
	api     objectAPI
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Client creates a new S3-compatible storage client. Nothing is contacted until Ping or Upload.
func NewS3Client(cfg S3Config) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	api := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.ForcePathStyle,
	}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3Client(api, cfg), nil
}

func newS3Client(api objectAPI, cfg S3Config) *S3Client {
	return &S3Client{
		api:     api,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.BasePath, "/"),
		baseURL: publicBaseURL(cfg),
	}
}

// publicBaseURL picks the CDN, then the custom endpoint, then the AWS virtual-hosted bucket URL
func publicBaseURL(cfg S3Config) string {
	switch {
	case cfg.CDNURL != "":
		return strings.TrimRight(cfg.CDNURL, "/")
	case cfg.Endpoint != "" && cfg.ForcePathStyle:
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/")
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// Ping checks that the bucket exists and the credentials can reach it
func (c *S3Client) Ping(ctx context.Context) error {
	if _, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Upload puts the object under the configured base path
func (c *S3Client) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) (*UploadResult, error) {
	fullKey := key
	if c.prefix != "" {
		fullKey = c.prefix + "/" + key
	}

	in := &s3.PutObjectInput{
		Bucket:       aws.String(c.bucket),
		Key:          aws.String(fullKey),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(immutableCacheControl),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := c.api.PutObject(ctx, in); err != nil {
		return nil, fmt.Errorf("s3 upload %s: %w", fullKey, err)
	}

	return &UploadResult{
		Key:         fullKey,
		URL:         c.PublicURL(fullKey),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// PublicURL returns the URL an uploaded key is served from
func (c *S3Client) PublicURL(key string) string {
	return c.baseURL + "/" + key
}
