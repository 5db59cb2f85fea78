package storage

import (
	"context"
	"fmt"

	gstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCSStore relays files into a Google Cloud Storage bucket.
type GCSStore struct {
	client *gstorage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSStore creates a GCS-backed ObjectStore for the given bucket.
func NewGCSStore(ctx context.Context, bucket string, logger *zap.Logger, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := gstorage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Upload writes content to the bucket under name and returns the object name.
// The DoesNotExist precondition guards against overwriting should two uploads
// ever derive the same name.
func (s *GCSStore) Upload(ctx context.Context, name, contentType string, content []byte) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(name).If(gstorage.Conditions{DoesNotExist: true})

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS upload: %w", err)
	}

	s.logger.Debug("Uploaded object to GCS",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.String("content_type", contentType))

	return name, nil
}

// PublicLink makes the object world-readable and returns its public URL.
// Re-granting the ACL on an already-public object is a no-op, not an error.
func (s *GCSStore) PublicLink(ctx context.Context, objectName string) (string, error) {
	acl := s.client.Bucket(s.bucket).Object(objectName).ACL()
	if err := acl.Set(ctx, gstorage.AllUsers, gstorage.RoleReader); err != nil {
		return "", fmt.Errorf("failed to make GCS object public: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
