package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrWong99/littlewords/pkg/storage"
)

// ClipSource serves audio assets by slash-separated path relative to the
// audio root, e.g. "words/lion.mp3" or "positive/tier0/0.mp3".
type ClipSource interface {
	// Open returns the asset content. A missing asset is an error.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether the asset is present.
	Exists(ctx context.Context, path string) (bool, error)
}

// StatusError reports a non-success HTTP response for an asset.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("speech: GET %s: status %d", e.Path, e.StatusCode)
}

// HTTPSource reads assets from a static file server, typically the web
// app's own "/audio" directory.
type HTTPSource struct {
	base   string
	client *http.Client
}

// HTTPOption configures an [HTTPSource].
type HTTPOption func(*HTTPSource)

// WithHTTPClient replaces the default client (10 s timeout).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		s.client = c
	}
}

// NewHTTPSource creates a source rooted at baseURL, e.g.
// "http://localhost:8080/audio".
func NewHTTPSource(baseURL string, opts ...HTTPOption) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("speech: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("speech: base url %q must be http or https", baseURL)
	}
	s := &HTTPSource{
		base:   strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *HTTPSource) url(path string) string {
	return s.base + "/" + strings.TrimPrefix(path, "/")
}

// Open implements [ClipSource].
func (s *HTTPSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("speech: open %s: %w", path, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech: open %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{Path: path, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// Exists implements [ClipSource] with a HEAD request.
func (s *HTTPSource) Exists(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url(path), nil)
	if err != nil {
		return false, fmt.Errorf("speech: head %s: %w", path, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("speech: head %s: %w", path, err)
	}
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
}

// StoreSource reads assets from a [storage.FileStore], e.g. the directory
// or bucket the clip generator wrote to.
type StoreSource struct {
	store storage.FileStore
}

// NewStoreSource wraps store.
func NewStoreSource(store storage.FileStore) *StoreSource {
	return &StoreSource{store: store}
}

// Open implements [ClipSource].
func (s *StoreSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, err := s.store.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("speech: open %s: %w", path, err)
	}
	return rc, nil
}

// Exists implements [ClipSource].
func (s *StoreSource) Exists(ctx context.Context, path string) (bool, error) {
	return s.store.Exists(ctx, path)
}
