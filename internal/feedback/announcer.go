package feedback

import (
	"context"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MrWong99/littlewords/internal/catalog"
	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/internal/speech"
)

// Speaker is the part of [speech.Service] the announcer drives.
type Speaker interface {
	Speak(text string)
	SpeakParts(parts []speech.Part)
}

// AssetProber reports whether a pre-rendered asset exists.
type AssetProber interface {
	Exists(ctx context.Context, path string) (bool, error)
}

// AnnouncerOption configures an [Announcer].
type AnnouncerOption func(*Announcer)

// WithProber sets the source checked by [Announcer.Probe].
func WithProber(p AssetProber) AnnouncerOption {
	return func(a *Announcer) {
		a.prober = p
	}
}

// WithMetrics records picks on m instead of [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) AnnouncerOption {
	return func(a *Announcer) {
		a.metrics = m
	}
}

// Announcer turns quiz events into speech. Praise and encouragement use
// their pre-rendered clips once [Announcer.Probe] found them, and the plain
// phrase text otherwise.
type Announcer struct {
	speaker  Speaker
	selector *Selector
	prober   AssetProber
	metrics  *observe.Metrics

	clips atomic.Bool
}

// NewAnnouncer creates an Announcer speaking through speaker. A nil
// selector gets a fresh [NewSelector].
func NewAnnouncer(speaker Speaker, selector *Selector, opts ...AnnouncerOption) *Announcer {
	if selector == nil {
		selector = NewSelector()
	}
	a := &Announcer{speaker: speaker, selector: selector}
	for _, o := range opts {
		o(a)
	}
	if a.metrics == nil {
		a.metrics = observe.DefaultMetrics()
	}
	return a
}

// Probe checks once whether feedback clips were generated by looking for
// the first tier-0 clip. Without a prober, or on any error, clips are
// treated as absent.
func (a *Announcer) Probe(ctx context.Context) bool {
	if a.prober == nil {
		return false
	}
	ok, err := a.prober.Exists(ctx, PositiveClipPath(0, 0))
	if err != nil {
		slog.Debug("feedback clips unavailable", "err", err)
		ok = false
	}
	a.clips.Store(ok)
	return ok
}

// ClipsAvailable reports the result of the last [Announcer.Probe].
func (a *Announcer) ClipsAvailable() bool {
	return a.clips.Load()
}

// Correct praises a right answer. correctCount is the running number of
// correct answers including this one.
func (a *Announcer) Correct(correctCount int) Pick {
	pick := a.selector.PickPositive(correctCount)
	a.record(pick)
	a.speaker.SpeakParts([]speech.Part{a.part(pick)})
	return pick
}

// Wrong encourages after a wrong answer and names both the picked and the
// expected item, e.g. "Whoops! Try again! That was Lion. Try to find Tiger."
// Every fragment is its own part so each can use its word clip.
func (a *Announcer) Wrong(picked, target string) Pick {
	pick := a.selector.PickEncouragement()
	a.record(pick)
	a.speaker.SpeakParts([]speech.Part{
		a.part(pick),
		{Text: catalog.ThatWas},
		{Text: picked},
		{Text: catalog.TryToFind},
		{Text: target},
	})
	return pick
}

// Ask speaks the question for target.
func (a *Announcer) Ask(target string) {
	a.speaker.Speak(catalog.Question(target))
}

func (a *Announcer) part(pick Pick) speech.Part {
	part := speech.Part{Text: pick.Text}
	if a.clips.Load() {
		part.Asset = pick.ClipPath()
	}
	return part
}

func (a *Announcer) record(pick Pick) {
	a.metrics.FeedbackPicks.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("pool", string(pick.Pool))))
}
