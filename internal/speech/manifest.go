package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/clipkey"
)

// Manifest is the set of clip keys available from a [ClipSource]. It is
// fetched at most once per lifetime; a failed fetch leaves it empty so
// every lookup falls through to synthesis.
type Manifest struct {
	source  ClipSource
	metrics *observe.Metrics

	// life bounds every fetch; Close cancels it.
	life context.Context
	stop context.CancelFunc

	group  singleflight.Group
	loaded atomic.Bool
	keys   atomic.Pointer[map[string]struct{}]
}

// NewManifest creates an empty, unloaded manifest backed by source.
func NewManifest(source ClipSource, m *observe.Metrics) *Manifest {
	if m == nil {
		m = observe.DefaultMetrics()
	}
	life, stop := context.WithCancel(context.Background())
	return &Manifest{source: source, metrics: m, life: life, stop: stop}
}

// fetchTimeout bounds one manifest fetch. Clip sources without their own
// client timeout (S3) would otherwise hang a stalled load forever.
const fetchTimeout = 15 * time.Second

// Close abandons an in-flight fetch. A fetch cut short this way leaves
// the manifest empty, and later loads return at once.
func (m *Manifest) Close() {
	m.stop()
}

// Load fetches the manifest unless it has already been fetched. Concurrent
// callers share the in-flight fetch. Load only returns an error when ctx
// ends first; the shared fetch keeps running for the other waiters.
func (m *Manifest) Load(ctx context.Context) error {
	if m.loaded.Load() {
		return nil
	}
	ch := m.group.DoChan("manifest", func() (any, error) {
		if m.loaded.Load() {
			return nil, nil
		}
		// Shared by every waiter: detached from the caller, bounded by
		// fetchTimeout and Close.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		defer context.AfterFunc(m.life, cancel)()
		keys := m.fetch(fetchCtx)
		m.keys.Store(&keys)
		m.loaded.Store(true)
		return nil, nil
	})
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manifest) fetch(ctx context.Context) map[string]struct{} {
	log := observe.Logger(ctx)
	keys, err := m.read(ctx)
	if err != nil {
		log.Warn("speech: clip manifest unavailable, using synthesis only", "err", err)
		m.metrics.ManifestLoads.Add(ctx, 1, observe.Status("error"))
		m.metrics.ManifestKeys.Record(ctx, 0)
		return map[string]struct{}{}
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	log.Info("speech: clip manifest loaded", "keys", len(set))
	m.metrics.ManifestLoads.Add(ctx, 1, observe.Status("ok"))
	m.metrics.ManifestKeys.Record(ctx, int64(len(set)))
	return set
}

func (m *Manifest) read(ctx context.Context) ([]string, error) {
	if m.source == nil {
		return nil, fmt.Errorf("speech: no clip source configured")
	}
	rc, err := m.source.Open(ctx, clipkey.ManifestPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var keys []string
	if err := json.NewDecoder(rc).Decode(&keys); err != nil {
		return nil, fmt.Errorf("speech: decode manifest: %w", err)
	}
	return keys, nil
}

// Ready reports whether a fetch has completed, successfully or not.
func (m *Manifest) Ready() bool {
	return m.loaded.Load()
}

// Has reports whether key has a clip. It never blocks and returns false
// before the manifest is loaded.
func (m *Manifest) Has(key string) bool {
	p := m.keys.Load()
	if p == nil {
		return false
	}
	_, ok := (*p)[key]
	return ok
}

// Len returns the number of known clip keys.
func (m *Manifest) Len() int {
	p := m.keys.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}
