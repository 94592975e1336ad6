// Package storage reads and writes the app's audio assets. A FileStore is
// either a local directory (the web app's public/audio) or an S3-compatible
// bucket, so the clip generator can publish straight to object storage and
// the asset server can serve from it.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// FileStore is file-oriented storage addressed by slash-separated paths
// relative to the store root. Implementations must be safe for concurrent
// use.
type FileStore interface {
	// Read opens the named file. A missing file yields an error wrapping
	// os.ErrNotExist. The caller closes the reader.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or truncates the named file. Data is durable once the
	// returned writer has been closed without error.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file; a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// Open returns the store for location: "s3://bucket/prefix" opens an
// [S3Store] configured by cfg, anything else is a local directory.
func Open(ctx context.Context, location string, cfg S3Config) (FileStore, error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return NewLocal(location)
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("storage: %q has no bucket", location)
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewS3(client, bucket, strings.Trim(prefix, "/")), nil
}

// WriteFile writes data to name in one call.
func WriteFile(ctx context.Context, fs FileStore, name string, data []byte) error {
	w, err := fs.Write(ctx, name)
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: write %s: %w", name, err)
	}
	return nil
}

// ContentType guesses the MIME type of an asset from its extension.
func ContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".json":
		return "application/json"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// clean rejects paths that would escape the store root.
func clean(name string) (string, error) {
	c := path.Clean("/" + name)
	if c == "/" {
		return "", fmt.Errorf("storage: empty path %q", name)
	}
	return strings.TrimPrefix(c, "/"), nil
}
