package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
// The client is created once at startup and is safe for concurrent use.
type MinioStorage struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewMinioStorage creates a MinIO client and provisions the bucket (create if
// absent, then apply a public-read policy for GetObject). Provisioning failure
// is logged, not fatal: the service starts degraded and every operation keeps
// being attempted, so a backend that comes up late needs no restart here.
func NewMinioStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool, logger zerolog.Logger) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	s := &MinioStorage{
		client: client,
		bucket: bucket,
		log:    logger.With().Str("component", "storage").Logger(),
	}

	if err := s.ensureBucket(context.Background()); err != nil {
		s.log.Error().Err(err).Str("bucket", bucket).Msg("bucket provisioning failed, starting degraded")
	}

	return s, nil
}

// ensureBucket is idempotent: check existence, create if absent, apply the
// anonymous-read policy either way (a restart must repair a missing policy).
func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
		s.log.Info().Str("bucket", s.bucket).Msg("created bucket")
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

// Put streams reader to the bucket under key. An existing key is overwritten;
// keys carry a millisecond timestamp so that only happens for two identical
// uploads within the same millisecond.
func (s *MinioStorage) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, classify(err))
	}
	return nil
}

// Get returns the object's byte stream. The object is stat'ed before the
// stream is handed out: minio defers the NoSuchKey error to the first read,
// and callers need it before they commit a response status.
func (s *MinioStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", key, classify(err))
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, fmt.Errorf("stat object %q: %w", key, classify(err))
	}
	return obj, nil
}

// List enumerates every object under prefix, recursively. The returned channel
// carries entries in backend arrival order; a mid-stream failure is delivered
// as a final entry with Err set.
func (s *MinioStorage) List(ctx context.Context, prefix string) <-chan ObjectEntry {
	out := make(chan ObjectEntry)

	go func() {
		defer close(out)
		for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if obj.Err != nil {
				out <- ObjectEntry{Err: fmt.Errorf("list prefix %q: %w", prefix, classify(obj.Err))}
				return
			}
			select {
			case out <- ObjectEntry{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// classify maps a minio error onto the package's failure classes. Responses
// carrying an S3 error code came from the backend itself; anything without one
// is a transport failure.
func classify(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey":
		return ErrObjectNotFound
	case "":
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return fmt.Errorf("%w: %s", ErrRejected, resp.Code)
	}
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET
// on all objects in the bucket.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
