package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/metrics"
)

// BlobStore stores uploaded media and returns a stable public URL.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Backend() string
}

// NewBlobStore picks the backend named by cfg.Driver.
func NewBlobStore(cfg config.StorageConfig) (BlobStore, error) {
	if cfg.Driver == "s3" {
		return NewS3Store(cfg)
	}
	return NewLocalStore(cfg.LocalDir, "/uploads")
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// NewKey builds a collision-free object key under folder that keeps the
// original file extension.
func NewKey(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	ext = unsafeKeyChars.ReplaceAllString(ext, "")
	return path.Join(folder, uuid.New().String()+ext)
}

// S3Store writes to an S3 bucket. A custom endpoint switches to path-style
// addressing for MinIO.
type S3Store struct {
	client *s3.S3
	bucket string
}

func NewS3Store(cfg config.StorageConfig) (*S3Store, error) {
	awsConfig := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!cfg.UseSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	store := &S3Store{client: s3.New(sess), bucket: cfg.Bucket}

	if _, err := store.client.HeadBucket(&s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		if _, err := store.client.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
			logger.Warn().Err(err).Str("bucket", cfg.Bucket).Msg("bucket not reachable and could not be created")
		}
	}
	return store, nil
}

func (s *S3Store) Backend() string { return "s3" }

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		metrics.BlobUploads.WithLabelValues(s.Backend(), "failed").Inc()
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}
	metrics.BlobUploads.WithLabelValues(s.Backend(), "ok").Inc()
	return s.objectURL(key), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}

func (s *S3Store) objectURL(key string) string {
	endpoint := aws.StringValue(s.client.Config.Endpoint)
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		scheme := "https"
		if aws.BoolValue(s.client.Config.DisableSSL) {
			scheme = "http"
		}
		endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "http://"), "https://")
		return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, s.bucket, key)
	}
	region := aws.StringValue(s.client.Config.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, region, key)
}

// LocalStore writes under a directory that the HTTP server exposes at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (l *LocalStore) Backend() string { return "local" }

func (l *LocalStore) Dir() string { return l.dir }

func (l *LocalStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		metrics.BlobUploads.WithLabelValues(l.Backend(), "failed").Inc()
		return "", fmt.Errorf("failed to write file %s: %w", full, err)
	}
	metrics.BlobUploads.WithLabelValues(l.Backend(), "ok").Inc()
	return l.baseURL + "/" + filepath.ToSlash(key), nil
}

func (l *LocalStore) Delete(ctx context.Context, key string) error {
	full, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", full, err)
	}
	return nil
}

// resolve maps key into dir and rejects keys escaping it.
func (l *LocalStore) resolve(key string) (string, error) {
	full := filepath.Join(l.dir, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.dir, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return full, nil
}
