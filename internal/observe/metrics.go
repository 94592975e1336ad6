// Package observe provides the observability primitives shared by the
// speech service, the asset server and the clip generator: OpenTelemetry
// metrics, tracing helpers, trace-aware logging and HTTP middleware.
//
// Metrics are recorded through the OpenTelemetry Metrics API and exposed to
// Prometheus by [InitProvider]. [DefaultMetrics] returns a package-level
// instance for convenience; tests should call [NewMetrics] with their own
// [metric.MeterProvider] so assertions do not leak between tests.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope of every littlewords metric.
const meterName = "github.com/MrWong99/littlewords"

// Metrics holds all metric instruments of the application. The OTel
// instruments synchronise internally, so a Metrics value is safe for
// concurrent use.
type Metrics struct {
	// --- Speech service ---

	// SpeechRequests counts accepted speech operations. Attributes:
	//   attribute.String("kind", "speak"|"sequence")
	SpeechRequests metric.Int64Counter

	// SpeechPreempted counts operations cut short by a newer request or an
	// explicit cancel.
	SpeechPreempted metric.Int64Counter

	// ClipPlays counts clip playback attempts. Attributes:
	//   attribute.String("status", "ok"|"error"|"cancelled")
	ClipPlays metric.Int64Counter

	// ClipDuration tracks wall time from clip open to playback end.
	ClipDuration metric.Float64Histogram

	// SynthUtterances counts device synthesis attempts. Attributes:
	//   attribute.String("engine", ...), attribute.String("status", ...)
	SynthUtterances metric.Int64Counter

	// SynthDuration tracks synthesis latency from request to end of speech.
	SynthDuration metric.Float64Histogram

	// ManifestKeys reports the number of keys in the loaded clip manifest.
	ManifestKeys metric.Int64Gauge

	// ManifestLoads counts manifest fetches. Attributes:
	//   attribute.String("status", "ok"|"error")
	ManifestLoads metric.Int64Counter

	// --- Feedback ---

	// FeedbackPicks counts feedback phrase picks. Attributes:
	//   attribute.String("pool", ...)
	FeedbackPicks metric.Int64Counter

	// --- Providers and clip generation ---

	// ProviderRequests counts cloud TTS calls. Attributes:
	//   attribute.String("provider", ...), attribute.String("kind", ...), attribute.String("status", ...)
	ProviderRequests metric.Int64Counter

	// ProviderDuration tracks cloud TTS request latency.
	ProviderDuration metric.Float64Histogram

	// ClipgenClips counts clips handled by the generator. Attributes:
	//   attribute.String("status", "generated"|"skipped"|"failed")
	ClipgenClips metric.Int64Counter

	// ClipgenBytes counts audio bytes written by the generator.
	ClipgenBytes metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks request processing time. Attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets are histogram boundaries in seconds sized for spoken words
// and short phrases.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 0.75, 1, 1.5, 2.5, 5, 10,
}

// NewMetrics creates every instrument on the given [metric.MeterProvider].
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SpeechRequests, err = m.Int64Counter("littlewords.speech.requests",
		metric.WithDescription("Speech operations accepted by kind."),
	); err != nil {
		return nil, err
	}
	if met.SpeechPreempted, err = m.Int64Counter("littlewords.speech.preempted",
		metric.WithDescription("Speech operations stopped by a newer request or cancel."),
	); err != nil {
		return nil, err
	}
	if met.ClipPlays, err = m.Int64Counter("littlewords.clip.plays",
		metric.WithDescription("Clip playback attempts by status."),
	); err != nil {
		return nil, err
	}
	if met.ClipDuration, err = m.Float64Histogram("littlewords.clip.duration",
		metric.WithDescription("Clip playback wall time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SynthUtterances, err = m.Int64Counter("littlewords.synth.utterances",
		metric.WithDescription("Device synthesis attempts by engine and status."),
	); err != nil {
		return nil, err
	}
	if met.SynthDuration, err = m.Float64Histogram("littlewords.synth.duration",
		metric.WithDescription("Device synthesis wall time."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ManifestKeys, err = m.Int64Gauge("littlewords.manifest.keys",
		metric.WithDescription("Keys in the loaded clip manifest."),
	); err != nil {
		return nil, err
	}
	if met.ManifestLoads, err = m.Int64Counter("littlewords.manifest.loads",
		metric.WithDescription("Manifest fetches by status."),
	); err != nil {
		return nil, err
	}
	if met.FeedbackPicks, err = m.Int64Counter("littlewords.feedback.picks",
		metric.WithDescription("Feedback phrase picks by pool."),
	); err != nil {
		return nil, err
	}
	if met.ProviderRequests, err = m.Int64Counter("littlewords.provider.requests",
		metric.WithDescription("Cloud TTS requests by provider, kind, and status."),
	); err != nil {
		return nil, err
	}
	if met.ProviderDuration, err = m.Float64Histogram("littlewords.provider.duration",
		metric.WithDescription("Cloud TTS request latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ClipgenClips, err = m.Int64Counter("littlewords.clipgen.clips",
		metric.WithDescription("Clips handled by the generator by status."),
	); err != nil {
		return nil, err
	}
	if met.ClipgenBytes, err = m.Int64Counter("littlewords.clipgen.bytes",
		metric.WithDescription("Audio bytes written by the generator."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("littlewords.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] created from the
// global [otel.GetMeterProvider] on first use. It panics if instrument
// creation fails, which does not happen with the global provider.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Status is a shorthand for the "status" attribute set.
func Status(s string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("status", s))
}

// RecordSynth records one synthesis attempt for engine.
func (m *Metrics) RecordSynth(ctx context.Context, engine, status string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("status", status),
	)
	m.SynthUtterances.Add(ctx, 1, attrs)
	m.SynthDuration.Record(ctx, seconds, attrs)
}

// RecordProviderRequest records one cloud TTS call.
func (m *Metrics) RecordProviderRequest(ctx context.Context, provider, kind, status string, seconds float64) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("kind", kind),
		attribute.String("status", status),
	)
	m.ProviderRequests.Add(ctx, 1, attrs)
	m.ProviderDuration.Record(ctx, seconds, attrs)
}
