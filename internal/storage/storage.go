// Package storage stores image objects in S3-compatible object storage and
// serves TTL-bound presigned access URLs through the two-tier cache.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kektor/gallery-images/pkg/cache"
)

// ErrUpload wraps object-storage upload failures.
var ErrUpload = errors.New("object upload failed")

const keyTemplate = "users/%d/%s%s"

// System provides object storage operations for image assets.
type System interface {
	// Upload stores the object under key. The caller composes Upload with its
	// own transaction ordering; a failed upload must abort the enclosing save.
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// SignedURL returns a presigned GET URL for key, cached by storage key
	// for a window shorter than the URL validity.
	SignedURL(ctx context.Context, key string) (string, error)

	// Remove deletes the object under key.
	Remove(ctx context.Context, key string) error
}

// objectClient is the slice of the MinIO client the system uses.
type objectClient interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, key string, expires time.Duration, params url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

// Options configures the storage system.
type Options struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	Bucket       string
	SignedURLTTL time.Duration
}

type store struct {
	client objectClient
	bucket string
	urlTTL time.Duration
	urls   *cache.TwoTier
}

// New creates a MinIO-backed storage system. urls caches presigned URLs
// keyed by storage key.
func New(opts Options, urls *cache.TwoTier) (System, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	return &store{
		client: client,
		bucket: opts.Bucket,
		urlTTL: opts.SignedURLTTL,
		urls:   urls,
	}, nil
}

// Key derives a fresh storage key for an upload by the given user, keeping
// the original file extension.
func Key(userID int64, filename string) string {
	return fmt.Sprintf(keyTemplate, userID, uuid.NewString(), filepath.Ext(filename))
}

func (s *store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	return nil
}

func (s *store) SignedURL(ctx context.Context, key string) (string, error) {
	return s.urls.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
		u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlTTL, nil)
		if err != nil {
			return "", fmt.Errorf("presign %s: %w", key, err)
		}
		return u.String(), nil
	})
}

func (s *store) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
