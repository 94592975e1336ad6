// Package speech turns text into audible speech. A lookup key derived
// from the text selects a pre-recorded clip when the clip manifest lists
// one; otherwise the text is synthesized. Every new request preempts the
// previous one, so at most one utterance is audible at any time.
package speech

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/clipkey"
)

// ErrClosed is returned by [Service.WaitReady] after [Service.Close].
var ErrClosed = errors.New("speech: service closed")

// State describes what the service is doing.
type State int

const (
	Idle State = iota
	Speaking
	SequencePlaying
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case SequencePlaying:
		return "sequence"
	default:
		return "idle"
	}
}

// Part is one element of a sequence. When Asset is set, that asset path
// is played as-is; otherwise Text is resolved to a clip or synthesized.
type Part struct {
	Text  string
	Asset string
}

// Option configures a [Service].
type Option func(*Service)

// WithMetrics sets the instruments. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithFallbackConfig tunes synthesized speech.
func WithFallbackConfig(cfg FallbackConfig) Option {
	return func(s *Service) {
		s.fallbackCfg = cfg
	}
}

type operation struct {
	id     string
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// Service is the speech facade used by the rest of the app. All methods
// are safe for concurrent use and return without waiting for audio.
type Service struct {
	metrics     *observe.Metrics
	fallbackCfg FallbackConfig

	manifest *Manifest
	engine   *Engine
	fallback *Fallback
	out      *Output

	base     context.Context
	stopBase context.CancelFunc
	wg       sync.WaitGroup

	mu     sync.Mutex
	cur    *operation
	closed bool
}

// New creates a service. source and player serve clips; synth speaks
// everything else. Any of them may be nil, which silences that path.
func New(source ClipSource, player audio.Player, synth audio.Synthesizer, opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	s.out = &Output{}
	s.manifest = NewManifest(source, s.metrics)
	s.engine = NewEngine(source, player, s.out, s.metrics)
	s.fallback = NewFallback(synth, s.fallbackCfg, s.out, s.metrics)
	s.base, s.stopBase = context.WithCancel(context.Background())
	return s
}

// Init starts loading the clip manifest in the background and returns
// immediately. Speech requested before the load finishes waits for it.
// The load is abandoned when ctx ends or the service is closed.
func (s *Service) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	unhook := context.AfterFunc(s.base, cancel)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer unhook()
		_ = s.manifest.Load(ctx)
	}()
}

// WaitReady blocks until the manifest load has completed or ctx ends.
func (s *Service) WaitReady(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return s.manifest.Load(ctx)
}

// Manifest exposes the clip manifest.
func (s *Service) Manifest() *Manifest {
	return s.manifest
}

// Speak says text, replacing anything currently audible. Empty text is
// ignored.
func (s *Service) Speak(text string) {
	if text == "" {
		return
	}
	s.start(Speaking, []Part{{Text: text}})
}

// SpeakSequence says texts back to back. A later call to any Speak
// method abandons the remaining parts.
func (s *Service) SpeakSequence(texts []string) {
	if len(texts) == 0 {
		return
	}
	parts := make([]Part, len(texts))
	for i, t := range texts {
		parts[i] = Part{Text: t}
	}
	s.start(SequencePlaying, parts)
}

// SpeakParts is [Service.SpeakSequence] with explicit clip assets.
func (s *Service) SpeakParts(parts []Part) {
	switch len(parts) {
	case 0:
		return
	case 1:
		s.start(Speaking, parts)
	default:
		s.start(SequencePlaying, parts)
	}
}

// Cancel stops whatever is audible and abandons any pending sequence.
func (s *Service) Cancel() {
	s.mu.Lock()
	op := s.cur
	s.cur = nil
	s.mu.Unlock()
	s.stopOp(op)
	s.out.stop()
}

// State reports the current activity.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return Idle
	}
	return s.cur.state
}

// Wait blocks until the current operation, if any, has finished or ctx
// ends.
func (s *Service) Wait(ctx context.Context) error {
	s.mu.Lock()
	op := s.cur
	s.mu.Unlock()
	if op == nil {
		return nil
	}
	select {
	case <-op.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels all speech and waits for background work to finish.
// Later Speak calls are ignored.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	op := s.cur
	s.cur = nil
	s.mu.Unlock()

	s.stopOp(op)
	s.manifest.Close()
	s.stopBase()
	s.wg.Wait()
	return nil
}

// start makes a new operation current. The previous operation is
// cancelled and fully released before the new one begins.
func (s *Service) start(state State, parts []Part) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.cur
	ctx, cancel := context.WithCancel(s.base)
	op := &operation{
		id:     uuid.NewString(),
		state:  state,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.cur = op
	s.wg.Add(1)
	s.mu.Unlock()

	kind := metric.WithAttributes(attribute.String("kind", kindLabel(state)))
	s.metrics.SpeechRequests.Add(ctx, 1, kind)
	if prev != nil {
		s.metrics.SpeechPreempted.Add(ctx, 1, kind)
	}
	s.stopOp(prev)

	go s.run(ctx, op, parts)
}

func (s *Service) stopOp(op *operation) {
	if op == nil {
		return
	}
	op.cancel()
	<-op.done
}

func (s *Service) run(ctx context.Context, op *operation, parts []Part) {
	defer s.wg.Done()
	defer close(op.done)
	defer op.cancel()
	defer s.finish(op)

	ctx, span := observe.StartSpan(ctx, "speech."+kindLabel(op.state),
		trace.WithAttributes(
			attribute.String("speech.op", op.id),
			attribute.Int("speech.parts", len(parts)),
		))
	defer span.End()

	for i, p := range parts {
		if ctx.Err() != nil {
			observe.Logger(ctx).Debug("speech: operation superseded", "op", op.id, "part", i)
			return
		}
		s.playPart(ctx, p)
	}
}

func (s *Service) playPart(ctx context.Context, p Part) {
	if p.Asset != "" {
		s.engine.PlayAsset(ctx, p.Asset)
		return
	}
	if p.Text == "" {
		return
	}
	if err := s.manifest.Load(ctx); err != nil {
		return
	}
	if ctx.Err() != nil {
		return
	}
	if key := clipkey.Normalize(p.Text); key != "" && s.manifest.Has(key) {
		s.engine.PlayClip(ctx, key)
		return
	}
	s.fallback.SpeakSynthesized(ctx, p.Text)
}

func (s *Service) finish(op *operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == op {
		s.cur = nil
	}
}

func kindLabel(st State) string {
	if st == SequencePlaying {
		return "sequence"
	}
	return "speak"
}
