package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrWong99/littlewords/pkg/clipkey"
)

// fakeSource serves a manifest and returns each asset's path as its
// content, which the mock player records as the clip name.
type fakeSource struct {
	mu          sync.Mutex
	keys        []string
	manifestErr error
	gate        chan struct{}
	missing     map[string]bool
	opens       map[string]int
}

func newFakeSource(keys ...string) *fakeSource {
	return &fakeSource{keys: keys, missing: map[string]bool{}, opens: map[string]int{}}
}

func (f *fakeSource) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	f.opens[path]++
	gate, merr, missing := f.gate, f.manifestErr, f.missing[path]
	f.mu.Unlock()

	if path == clipkey.ManifestPath {
		if gate != nil {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if merr != nil {
			return nil, merr
		}
		data, _ := json.Marshal(f.keys)
		return io.NopCloser(strings.NewReader(string(data))), nil
	}
	if missing {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(path)), nil
}

func (f *fakeSource) Exists(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.missing[path], nil
}

func (f *fakeSource) openCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[path]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func recv(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback to start")
		return ""
	}
}
