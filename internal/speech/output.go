package speech

import (
	"context"
	"slices"
	"sync"
)

type handleKind int

const (
	kindClip handleKind = iota
	kindSynth
)

type handle struct {
	kind   handleKind
	cancel context.CancelFunc
	done   chan struct{}
}

// Output is the single audio output shared by clip playback and synthesis.
// At most one handle is current; acquiring a new one stops the previous
// one and waits for it to be released before returning.
type Output struct {
	mu      sync.Mutex
	current *handle
}

// acquire registers a new current handle of kind. It returns a nil handle
// when ctx ends before the previous handle has been released.
func (o *Output) acquire(ctx context.Context, kind handleKind) (context.Context, *handle) {
	o.mu.Lock()
	if ctx.Err() != nil {
		o.mu.Unlock()
		return nil, nil
	}
	prev := o.current
	hctx, cancel := context.WithCancel(ctx)
	h := &handle{kind: kind, cancel: cancel, done: make(chan struct{})}
	o.current = h
	o.mu.Unlock()

	if prev != nil {
		prev.cancel()
		<-prev.done
	}
	if hctx.Err() != nil {
		o.release(h)
		return nil, nil
	}
	return hctx, h
}

// release must be called exactly once by the owner of h.
func (o *Output) release(h *handle) {
	o.mu.Lock()
	if o.current == h {
		o.current = nil
	}
	o.mu.Unlock()
	h.cancel()
	close(h.done)
}

// stop cancels the current handle if it matches kinds (any kind when
// kinds is empty) and waits until it is released.
func (o *Output) stop(kinds ...handleKind) {
	o.mu.Lock()
	h := o.current
	if h == nil || (len(kinds) > 0 && !slices.Contains(kinds, h.kind)) {
		o.mu.Unlock()
		return
	}
	o.current = nil
	o.mu.Unlock()
	h.cancel()
	<-h.done
}

// Busy reports whether any audio is currently playing.
func (o *Output) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current != nil
}
