// Package storage wraps a gocloud.dev blob bucket for order reference
// images. The bucket URL decides the backing store (file, memory, cloud).
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// bucket driver
	_ "gocloud.dev/blob/memblob"  // mem:// bucket driver, used in tests
)

// ImageStore uploads images and resolves their public URLs.
type ImageStore struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

// OpenImageStore opens the bucket at bucketURL. Close must be called when
// the store is no longer needed.
func OpenImageStore(ctx context.Context, bucketURL, publicBaseURL string) (*ImageStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open image bucket %q: %w", bucketURL, err)
	}
	return &ImageStore{
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

// Upload writes the reader's content under key with the given content type.
func (s *ImageStore) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to open writer for %q: %w", key, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish upload of %q: %w", key, err)
	}
	return nil
}

// PublicURL maps a stored key to its externally reachable URL.
func (s *ImageStore) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// Close releases the underlying bucket.
func (s *ImageStore) Close() error {
	return s.bucket.Close()
}
