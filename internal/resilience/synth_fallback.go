package resilience

import (
	"context"
	"strings"
	"sync"

	"github.com/MrWong99/littlewords/pkg/audio"
)

// SynthFallback is an [audio.Synthesizer] that speaks with the first
// healthy engine of an ordered chain.
//
// Voice IDs are engine-specific, so an utterance keeps its voice only on
// the engine whose list it came from; other engines get their default.
type SynthFallback struct {
	group *FallbackGroup[audio.Synthesizer]

	mu         sync.Mutex
	voicesFrom string
}

var _ audio.Synthesizer = (*SynthFallback)(nil)

// NewSynthFallback creates a chain whose preferred engine is primary.
func NewSynthFallback(primary audio.Synthesizer, cfg FallbackConfig) *SynthFallback {
	return &SynthFallback{group: NewFallbackGroup(primary, primary.Name(), cfg)}
}

// AddFallback appends an engine to the chain.
func (f *SynthFallback) AddFallback(s audio.Synthesizer) {
	f.group.AddFallback(s.Name(), s)
}

// Name implements [audio.Synthesizer], e.g. "elevenlabs>espeak-ng".
func (f *SynthFallback) Name() string {
	return strings.Join(f.group.Names(), ">")
}

// States reports each engine's breaker state.
func (f *SynthFallback) States() map[string]State {
	return f.group.States()
}

// Voices implements [audio.Synthesizer] with the voices of the first
// engine that can list them.
func (f *SynthFallback) Voices(ctx context.Context) ([]audio.Voice, error) {
	var from string
	voices, err := ExecuteWithResult(ctx, f.group, func(ctx context.Context, s audio.Synthesizer) ([]audio.Voice, error) {
		v, err := s.Voices(ctx)
		if err == nil {
			from = s.Name()
		}
		return v, err
	})
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.voicesFrom = from
	f.mu.Unlock()
	return voices, nil
}

// Speak implements [audio.Synthesizer]. Cancellation ends the call without
// trying further engines.
func (f *SynthFallback) Speak(ctx context.Context, u audio.Utterance) error {
	f.mu.Lock()
	from := f.voicesFrom
	f.mu.Unlock()

	return f.group.Execute(ctx, func(ctx context.Context, s audio.Synthesizer) error {
		eu := u
		if s.Name() != from {
			eu.Voice = audio.Voice{}
		}
		return s.Speak(ctx, eu)
	})
}
