package storage

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/lebarbier/lebarbier-api/internal/config"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

// ObjectStore accepts already-processed objects and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Store(cfg *config.Config) *S3Store {
	opts := s3.Options{
		Region: cfg.S3.Region,
	}
	if cfg.S3.AccessKey != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")
	}
	if cfg.S3.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.S3.Endpoint)
		opts.UsePathStyle = true
	}

	base := strings.TrimRight(cfg.S3.PublicBaseURL, "/")
	if base == "" {
		base = "https://" + cfg.S3.Bucket + ".s3." + cfg.S3.Region + ".amazonaws.com"
	}

	return &S3Store{
		client:  s3.New(opts),
		bucket:  cfg.S3.Bucket,
		baseURL: base,
	}
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", errors.Wrapf(err, "put s3 object %s", key)
	}

	return s.baseURL + "/" + key, nil
}

// DisabledStore rejects uploads when no bucket is configured.
type DisabledStore struct{}

func (DisabledStore) Put(context.Context, string, []byte, string) (string, error) {
	return "", httperr.Conflict("uploads_disabled", "Le stockage d'images n'est pas configuré.")
}

func NewObjectStore(cfg *config.Config) ObjectStore {
	if !cfg.S3.Enabled {
		return DisabledStore{}
	}
	return NewS3Store(cfg)
}
