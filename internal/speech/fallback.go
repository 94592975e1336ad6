package speech

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/audio"
)

// Default synthesis parameters. The slightly slow rate and raised pitch
// suit a toddler audience.
const (
	DefaultLanguage = "en-US"
	DefaultRate     = 0.9
	DefaultPitch    = 1.1
)

// FallbackConfig tunes synthesized speech.
type FallbackConfig struct {
	// Language is the BCP 47 tag used for voice selection.
	Language string
	// Rate and Pitch are multipliers of the engine default (1.0).
	Rate  float64
	Pitch float64
	// Voice, when set, names a voice ID or name that wins over automatic
	// selection.
	Voice string
}

func (c FallbackConfig) withDefaults() FallbackConfig {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Rate <= 0 {
		c.Rate = DefaultRate
	}
	if c.Pitch <= 0 {
		c.Pitch = DefaultPitch
	}
	return c
}

// Fallback speaks text with an [audio.Synthesizer] when no clip exists.
type Fallback struct {
	synth   audio.Synthesizer
	cfg     FallbackConfig
	out     *Output
	metrics *observe.Metrics

	mu       sync.Mutex
	selected bool
	voice    audio.Voice
}

// NewFallback creates a fallback on synth. A nil synth makes every call
// silent.
func NewFallback(synth audio.Synthesizer, cfg FallbackConfig, out *Output, m *observe.Metrics) *Fallback {
	if out == nil {
		out = &Output{}
	}
	if m == nil {
		m = observe.DefaultMetrics()
	}
	return &Fallback{synth: synth, cfg: cfg.withDefaults(), out: out, metrics: m}
}

// SpeakSynthesized speaks text and returns when the utterance ends, fails
// or is cancelled. It never reports an error.
func (f *Fallback) SpeakSynthesized(ctx context.Context, text string) {
	if f.synth == nil {
		return
	}
	text = adjustText(text)
	if strings.TrimSpace(text) == "" {
		return
	}
	voice := f.selectVoice(ctx)

	hctx, h := f.out.acquire(ctx, kindSynth)
	if h == nil {
		return
	}
	defer f.out.release(h)

	start := time.Now()
	err := f.synth.Speak(hctx, audio.Utterance{
		Text:     text,
		Voice:    voice,
		Language: f.cfg.Language,
		Rate:     f.cfg.Rate,
		Pitch:    f.cfg.Pitch,
	})
	status := "ok"
	switch {
	case err == nil:
	case hctx.Err() != nil:
		status = "cancelled"
	default:
		status = "error"
		observe.Logger(hctx).Warn("speech: synthesis failed", "engine", f.synth.Name(), "err", err)
	}
	f.metrics.RecordSynth(hctx, f.synth.Name(), status, time.Since(start).Seconds())
}

// Cancel stops in-progress synthesis and waits until it is released.
func (f *Fallback) Cancel() {
	f.out.stop(kindSynth)
}

// Voice returns the voice that will be used, selecting it on first use.
func (f *Fallback) Voice(ctx context.Context) audio.Voice {
	return f.selectVoice(ctx)
}

// selectVoice caches the chosen voice once the engine has listed its
// voices. A listing failure uses the engine default and retries next time.
func (f *Fallback) selectVoice(ctx context.Context) audio.Voice {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected {
		return f.voice
	}
	voices, err := f.synth.Voices(ctx)
	if err != nil {
		observe.Logger(ctx).Debug("speech: listing voices failed", "engine", f.synth.Name(), "err", err)
		return audio.Voice{}
	}
	f.voice = SelectVoice(voices, f.cfg.Language, f.cfg.Voice)
	f.selected = true
	return f.voice
}

// SelectVoice picks, in order: the voice whose ID or name equals
// preferred, a local voice whose language equals lang, the engine's
// default voice. The zero Voice means "engine default".
func SelectVoice(voices []audio.Voice, lang, preferred string) audio.Voice {
	if preferred != "" {
		for _, v := range voices {
			if v.ID == preferred || v.Name == preferred {
				return v
			}
		}
	}
	want := canonicalTag(lang)
	for _, v := range voices {
		if v.Local && canonicalTag(v.Language) == want {
			return v
		}
	}
	for _, v := range voices {
		if v.Default {
			return v
		}
	}
	return audio.Voice{}
}

func canonicalTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
}

// adjustText lowercases a lone uppercase letter so engines say the letter
// rather than "capital X".
func adjustText(text string) string {
	if utf8.RuneCountInString(text) != 1 {
		return text
	}
	r, _ := utf8.DecodeRuneInString(text)
	if unicode.IsUpper(r) {
		return string(unicode.ToLower(r))
	}
	return text
}
