package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/rpupo63/melba-site-backend/errs"
)

// objectAPI is the slice of the S3 client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket string
	Prefix string // e.g. "images/uploads/"
	// PublicBaseURL is the origin objects are served from, such as a CDN.
	PublicBaseURL string

	// Endpoint and static keys target S3-compatible providers. Left blank,
	// the default AWS endpoint and credential chain are used.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Store keeps uploads in a bucket and returns their public URL.
type S3Store struct {
	client  objectAPI
	bucket  string
	prefix  string
	baseURL string
}

func NewS3Store(client objectAPI, cfg S3Config) *S3Store {
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, prefix: prefix, baseURL: baseURL}
}

// NewS3StoreFromRegion builds the client for region from cfg.
func NewS3StoreFromRegion(ctx context.Context, region string, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions(region, cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(awsCfg, clientOptions(cfg)), cfg), nil
}

func loadOptions(region string, cfg S3Config) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	return opts
}

// clientOptions points the client at a custom endpoint with path-style
// addressing, which most S3-compatible providers require.
func clientOptions(cfg S3Config) func(*s3.Options) {
	return func(o *s3.Options) {
		if cfg.Endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	}
}

func (s *S3Store) Save(ctx context.Context, upload Upload) (string, error) {
	key := s.prefix + uuid.NewString() + upload.Extension
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        upload.Reader(),
		ContentType: aws.String(upload.ContentType),
	})
	if err != nil {
		return "", errs.NewUploadFailedError(err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *S3Store) Owns(path string) bool {
	return strings.HasPrefix(path, s.baseURL+"/"+s.prefix)
}

// Delete removes the object behind path. S3 reports success for keys that
// do not exist.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	if !s.Owns(path) {
		return nil
	}
	key := strings.TrimPrefix(path, s.baseURL+"/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}
