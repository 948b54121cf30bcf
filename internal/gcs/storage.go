// Package gcs moves statement text and result payloads in and out of Google
// Cloud Storage. It assumes Application Default Credentials are configured
// (gcloud auth application-default login).
package gcs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// StorageService abstracts the GCS operations the pipeline and API need, so
// handlers and workers can be tested against a fake.
type StorageService interface {
	FetchText(ctx context.Context, gcsURI string) (string, error)
	UploadJSON(ctx context.Context, bucketName, objectName string, payload interface{}) error
}

// Client implements StorageService against real Google Cloud Storage.
type Client struct{}

// NewClient returns a GCS-backed StorageService.
func NewClient() *Client {
	return &Client{}
}

// FetchText downloads the statement text at the given gs:// URI.
func (c *Client) FetchText(ctx context.Context, gcsURI string) (string, error) {
	bucketName, objectPath, err := splitURI(gcsURI)
	if err != nil {
		return "", err
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("FetchText: creating storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucketName).Object(objectPath).NewReader(ctx)
	if err != nil {
		return "", fmt.Errorf("FetchText: reading object %s/%s: %w", bucketName, objectPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("FetchText: reading bytes: %w", err)
	}
	return string(data), nil
}

// UploadJSON marshals the payload and writes it to the bucket under the
// given object name.
func (c *Client) UploadJSON(ctx context.Context, bucketName, objectName string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("UploadJSON: marshal payload: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("UploadJSON: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("UploadJSON: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("UploadJSON: finalize upload: %w", err)
	}
	return nil
}

// ObjectName extracts the final path element from a GCS URI, without its
// extension. e.g. "gs://bucket/folder/statement.txt" becomes "statement".
func ObjectName(uri string) string {
	base := path.Base(strings.TrimPrefix(uri, "gs://"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func splitURI(gcsURI string) (bucket, object string, err error) {
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
