// Package gcs moves SMS export files in and out of Google Cloud Storage.
// It assumes Application Default Credentials are configured (gcloud auth
// application-default login).
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// StorageService provides an interface for object storage operations.
// This interface enables mocking and testing of storage functionality.
type StorageService interface {
	// Upload streams an export to the bucket under the given object name.
	Upload(ctx context.Context, bucketName, objectName, contentType string, r io.Reader) (int64, error)

	// Fetch downloads object bytes from the given storage URI.
	Fetch(ctx context.Context, gcsURI string) ([]byte, error)
}

// Client is the concrete StorageService backed by Google Cloud Storage.
type Client struct{}

func NewClient() *Client {
	return &Client{}
}

// Upload streams r into gs://bucketName/objectName and returns the number
// of bytes written.
func (c *Client) Upload(ctx context.Context, bucketName, objectName, contentType string, r io.Reader) (int64, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return 0, fmt.Errorf("gcs.Upload: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	written, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("gcs.Upload: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("gcs.Upload: finalize upload: %w", err)
	}

	return written, nil
}

// Fetch downloads the object bytes for a URI like "gs://bucket/path/file.xml".
func (c *Client) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	bucketName, objectPath, err := ParseURI(gcsURI)
	if err != nil {
		return nil, fmt.Errorf("gcs.Fetch: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs.Fetch: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs.Fetch: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("gcs.Fetch: reading bytes: %w", err)
	}

	return data, nil
}

// ParseURI splits "gs://bucket/path/to/file.xml" into bucket and object path.
func ParseURI(gcsURI string) (bucket, object string, err error) {
	if !strings.HasPrefix(gcsURI, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", gcsURI)
	}

	trimmed := strings.TrimPrefix(gcsURI, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", gcsURI)
	}

	return parts[0], parts[1], nil
}

// URI builds the gs:// URI for an object.
func URI(bucket, object string) string {
	return fmt.Sprintf("gs://%s/%s", bucket, object)
}

// FilenameFromURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/export.xml" → "export.xml"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
