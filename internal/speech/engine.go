package speech

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/clipkey"
)

// Engine plays pre-recorded clips through an [audio.Player].
type Engine struct {
	source  ClipSource
	player  audio.Player
	out     *Output
	metrics *observe.Metrics
}

// NewEngine creates an engine that plays assets from source on player.
// out is shared with the synthesis path; nil gives the engine its own.
func NewEngine(source ClipSource, player audio.Player, out *Output, m *observe.Metrics) *Engine {
	if out == nil {
		out = &Output{}
	}
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Engine{source: source, player: player, out: out, metrics: m}
}

// PlayClip plays the clip for an already-normalised key.
func (e *Engine) PlayClip(ctx context.Context, key string) {
	e.PlayAsset(ctx, clipkey.WordPath(key))
}

// PlayAsset stops whatever is playing, then plays the asset at path and
// returns when it ends, fails or is stopped. It never reports an error;
// failures are logged and counted.
func (e *Engine) PlayAsset(ctx context.Context, path string) {
	hctx, h := e.out.acquire(ctx, kindClip)
	if h == nil {
		return
	}
	defer e.out.release(h)

	hctx, span := observe.StartSpan(hctx, "speech.clip",
		trace.WithAttributes(attribute.String("clip.path", path)))
	defer span.End()

	start := time.Now()
	status := "ok"
	err := e.play(hctx, path)
	switch {
	case err == nil:
	case hctx.Err() != nil:
		status = "cancelled"
	default:
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observe.Logger(hctx).Warn("speech: clip playback failed", "path", path, "err", err)
	}
	e.metrics.ClipPlays.Add(hctx, 1, observe.Status(status))
	e.metrics.ClipDuration.Record(hctx, time.Since(start).Seconds(), observe.Status(status))
}

func (e *Engine) play(ctx context.Context, path string) error {
	if e.source == nil || e.player == nil {
		return errors.New("speech: clip playback not configured")
	}
	rc, err := e.source.Open(ctx, path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return e.player.Play(ctx, rc)
}

// Stop halts the current clip, if any, and waits until its output is
// released. Synthesis in progress is left alone.
func (e *Engine) Stop() {
	e.out.stop(kindClip)
}

// Active reports whether a clip is currently playing.
func (e *Engine) Active() bool {
	e.out.mu.Lock()
	defer e.out.mu.Unlock()
	return e.out.current != nil && e.out.current.kind == kindClip
}
