// Package clipgen renders the app's pre-recorded audio: tiered praise,
// encouragement and one clip per learning word, plus the word manifest
// the device reads to decide between a clip and synthesis.
package clipgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/clipkey"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
	"github.com/MrWong99/littlewords/pkg/storage"
)

// Defaults for [Options].
const (
	DefaultVoice       = "FGY2WhTYpPnrIDTdsKH5"
	DefaultModel       = "eleven_v3"
	DefaultFormat      = "mp3_44100_128"
	DefaultRPS         = 2.0
	DefaultConcurrency = 2
)

// Options controls a generator run.
type Options struct {
	VoiceID string
	ModelID string

	// Feedback and Words select the clip groups to render.
	Feedback bool
	Words    bool

	// Force re-renders clips that already exist.
	Force bool

	// RPS caps upstream requests per second. Zero means [DefaultRPS].
	RPS float64

	// Concurrency is the number of clips rendered at once.
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.VoiceID == "" {
		o.VoiceID = DefaultVoice
	}
	if o.ModelID == "" {
		o.ModelID = DefaultModel
	}
	if o.RPS <= 0 {
		o.RPS = DefaultRPS
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	return o
}

// Summary reports what a run did.
type Summary struct {
	Generated int
	Skipped   int
	Bytes     int64

	// ManifestKeys is the number of keys written to the manifest, zero if
	// words were not rendered.
	ManifestKeys int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d generated, %d skipped, %s written", s.Generated, s.Skipped, humanize.Bytes(uint64(s.Bytes)))
}

// Generator renders clips with a [tts.Converter] into a [storage.FileStore].
type Generator struct {
	conv    tts.Converter
	store   storage.FileStore
	opts    Options
	limiter *rate.Limiter
	metrics *observe.Metrics
	log     *slog.Logger

	generated atomic.Int64
	skipped   atomic.Int64
	bytes     atomic.Int64
}

// Option configures a [Generator].
type Option func(*Generator)

// WithMetrics records clip counts on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithLogger sets the progress logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New creates a Generator.
func New(conv tts.Converter, store storage.FileStore, opts Options, o ...Option) *Generator {
	opts = opts.withDefaults()
	g := &Generator{
		conv:    conv,
		store:   store,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RPS), 1),
		log:     slog.Default(),
	}
	for _, fn := range o {
		fn(g)
	}
	if g.metrics == nil {
		g.metrics = observe.DefaultMetrics()
	}
	return g
}

// Run renders the selected groups. The first upstream failure cancels the
// run; clips already written are kept and the manifest is not written.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	if g.opts.Feedback {
		stability := BaseStability(g.opts.ModelID)
		g.log.Info("rendering feedback clips", "voice", g.opts.VoiceID, "model", g.opts.ModelID, "stability", stability)
		if err := g.render(ctx, FeedbackJobs(stability)); err != nil {
			return g.summary(sum), err
		}
	}
	if g.opts.Words {
		jobs, keys := LearningWordJobs()
		g.log.Info("rendering word clips", "count", len(jobs))
		if err := g.render(ctx, jobs); err != nil {
			return g.summary(sum), err
		}
		if err := WriteManifest(ctx, g.store, keys); err != nil {
			return g.summary(sum), err
		}
		sum.ManifestKeys = len(keys)
		g.log.Info("manifest written", "path", clipkey.ManifestPath, "keys", len(keys))
	}
	return g.summary(sum), nil
}

func (g *Generator) summary(s Summary) Summary {
	s.Generated = int(g.generated.Load())
	s.Skipped = int(g.skipped.Load())
	s.Bytes = g.bytes.Load()
	return s
}

func (g *Generator) render(ctx context.Context, jobs []Job) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Concurrency)
	for _, job := range jobs {
		eg.Go(func() error { return g.renderOne(ctx, job) })
	}
	return eg.Wait()
}

func (g *Generator) renderOne(ctx context.Context, job Job) error {
	if !g.opts.Force {
		exists, err := g.store.Exists(ctx, job.Path)
		if err != nil {
			return fmt.Errorf("clipgen: check %s: %w", job.Path, err)
		}
		if exists {
			g.skipped.Add(1)
			g.metrics.ClipgenClips.Add(ctx, 1, observe.Status("skipped"))
			g.log.Debug("skipped existing clip", "path", job.Path)
			return nil
		}
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	audio, err := g.conv.Convert(ctx, tts.ConvertRequest{
		Text:         job.Text,
		VoiceID:      g.opts.VoiceID,
		ModelID:      g.opts.ModelID,
		OutputFormat: DefaultFormat,
		Settings:     job.Settings,
	})
	if err == nil && len(audio) == 0 {
		err = errors.New("empty audio")
	}
	if err != nil {
		if ctx.Err() == nil {
			g.metrics.ClipgenClips.Add(ctx, 1, observe.Status("failed"))
		}
		return fmt.Errorf("clipgen: %s %q: %w", job.Path, job.Text, err)
	}
	if err := storage.WriteFile(ctx, g.store, job.Path, audio); err != nil {
		return fmt.Errorf("clipgen: %w", err)
	}

	g.generated.Add(1)
	g.bytes.Add(int64(len(audio)))
	g.metrics.ClipgenClips.Add(ctx, 1, observe.Status("generated"))
	g.metrics.ClipgenBytes.Add(ctx, int64(len(audio)))
	g.log.Info("clip", "path", job.Path, "text", job.Text, "size", humanize.Bytes(uint64(len(audio))), "took", time.Since(start).Round(time.Millisecond))
	return nil
}

// WriteManifest stores keys as a pretty-printed JSON array at
// [clipkey.ManifestPath].
func WriteManifest(ctx context.Context, store storage.FileStore, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("clipgen: encode manifest: %w", err)
	}
	if err := storage.WriteFile(ctx, store, clipkey.ManifestPath, data); err != nil {
		return fmt.Errorf("clipgen: %w", err)
	}
	return nil
}
