// Package publish delivers finished documents to their destination.
package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/akeil/coursedoc/internal/fs"
	"github.com/akeil/coursedoc/internal/logging"
)

// ContentType of published documents.
const ContentType = "application/pdf"

// A Sink stores a named document and returns its location.
type Sink interface {
	Publish(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes documents to a local directory.
type DirSink struct {
	Dir string
}

// NewDirSink creates a sink for dir. The directory is created on first use.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir}
}

// Publish writes the file atomically and returns its path.
func (d *DirSink) Publish(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err := os.MkdirAll(d.Dir, 0755)
	if err != nil {
		return "", err
	}

	p := filepath.Join(d.Dir, filepath.Base(name))
	logging.Debug("Write %d bytes to %q", len(data), p)
	err = fs.WriteFile(p, data, 0644)
	if err != nil {
		return "", err
	}
	return p, nil
}

// GCSSink uploads documents to a Google Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSink connects to Cloud Storage with the default credentials
// unless other options are given.
func NewGCSSink(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSSink, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSSink{client: client, bucket: bucket, prefix: prefix}, nil
}

// Publish uploads the document and returns its gs:// URL.
func (g *GCSSink) Publish(ctx context.Context, name string, data []byte) (string, error) {
	object := path.Join(g.prefix, name)
	w := g.client.Bucket(g.bucket).Object(object).NewWriter(ctx)
	w.ContentType = ContentType

	_, err := w.Write(data)
	if err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	url := fmt.Sprintf("gs://%s/%s", g.bucket, object)
	logging.Info("Uploaded %q", url)
	return url, nil
}

// Close releases the storage client.
func (g *GCSSink) Close() error {
	return g.client.Close()
}
