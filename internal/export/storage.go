package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// Storage persists exported documents and returns a stable URL for each one.
// Uploads are best-effort side effects; callers log failures and move on.
type Storage interface {
	Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error)
	DeleteFolder(ctx context.Context, prefix string) error
}

// GCSStorage stores exports in a Google Cloud Storage bucket.
type GCSStorage struct {
	client *storage.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed export store. Credentials come from the
// ambient application default credentials.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: bucket,
	}, nil
}

// Upload writes an object and returns its public URL.
func (s *GCSStorage) Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", objectPath, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectPath), nil
}

// DeleteFolder removes every object under a prefix. Used when a client is
// deleted to clean up exported documents; individual delete failures abort.
func (s *GCSStorage) DeleteFolder(ctx context.Context, prefix string) error {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list objects under %s: %w", prefix, err)
		}

		if err := s.client.Bucket(s.bucket).Object(attrs.Name).Delete(ctx); err != nil {
			return fmt.Errorf("delete object %s: %w", attrs.Name, err)
		}
	}
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
