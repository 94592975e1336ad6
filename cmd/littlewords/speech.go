package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrWong99/littlewords/internal/config"
	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/internal/resilience"
	"github.com/MrWong99/littlewords/internal/speech"
	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/audio/espeak"
	"github.com/MrWong99/littlewords/pkg/audio/remote"
	"github.com/MrWong99/littlewords/pkg/audio/speaker"
	"github.com/MrWong99/littlewords/pkg/provider/tts/coqui"
	"github.com/MrWong99/littlewords/pkg/provider/tts/elevenlabs"
	"github.com/MrWong99/littlewords/pkg/storage"
)

// registerEngines wires the built-in synthesis engines into reg. Remote
// engines stream into player.
func registerEngines(reg *config.Registry, player audio.PCMPlayer, m *observe.Metrics) {
	reg.RegisterSynth(config.EngineEspeak, func(*config.Config) (audio.Synthesizer, error) {
		s, err := espeak.Find()
		if err != nil {
			return nil, err
		}
		return s, nil
	})

	reg.RegisterSynth(config.EngineElevenLabs, func(cfg *config.Config) (audio.Synthesizer, error) {
		opts := []elevenlabs.Option{
			elevenlabs.WithModel(cfg.ElevenLabs.Model),
			elevenlabs.WithMetrics(m),
		}
		if cfg.ElevenLabs.BaseURL != "" {
			opts = append(opts, elevenlabs.WithBaseURL(cfg.ElevenLabs.BaseURL))
		}
		p, err := elevenlabs.New(cfg.ElevenLabs.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return remote.New(p, player, remote.WithDefaultVoice(cfg.ElevenLabs.VoiceID)), nil
	})

	reg.RegisterSynth(config.EngineCoqui, func(cfg *config.Config) (audio.Synthesizer, error) {
		p, err := coqui.New(cfg.Coqui.URL,
			coqui.WithLanguage(cfg.Coqui.Language),
			coqui.WithMetrics(m),
		)
		if err != nil {
			return nil, err
		}
		return remote.New(p, player, remote.WithDefaultVoice(cfg.Coqui.Speaker)), nil
	})
}

// buildSynth creates the configured engines in order and chains them
// behind circuit breakers. Engines that cannot be created are logged and
// left out; nil means no engine is usable.
func (a *app) buildSynth(reg *config.Registry) *resilience.SynthFallback {
	fbCfg := resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures:  a.cfg.Synth.Breaker.MaxFailures,
			ResetTimeout: a.cfg.Synth.Breaker.ResetTimeout,
		},
	}
	var chain *resilience.SynthFallback
	for _, name := range a.cfg.Synth.Engines {
		s, err := reg.CreateSynth(name, a.cfg)
		if err != nil {
			a.logger.Warn("synthesis engine unavailable", "engine", name, "err", err)
			continue
		}
		if chain == nil {
			chain = resilience.NewSynthFallback(s, fbCfg)
		} else {
			chain.AddFallback(s)
		}
	}
	if chain == nil {
		a.logger.Warn("no synthesis engine available, words without a clip stay silent")
		return nil
	}
	a.logger.Info("synthesis chain", "engines", chain.Name())
	return chain
}

// clipSource opens the configured clip source: an http(s) base URL, or a
// directory or S3 location read through [storage.Open].
func (a *app) clipSource(ctx context.Context) (speech.ClipSource, error) {
	loc := a.cfg.Speech.ClipSource
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		src, err := speech.NewHTTPSource(loc)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	store, err := storage.Open(ctx, loc, a.cfg.S3(a.secrets.S3))
	if err != nil {
		return nil, fmt.Errorf("open clip source: %w", err)
	}
	return speech.NewStoreSource(store), nil
}

// speechStack is a ready speech service on the device speaker.
type speechStack struct {
	svc    *speech.Service
	source speech.ClipSource
	chain  *resilience.SynthFallback // nil without a usable engine
}

// newSpeech opens the speaker and builds the speech service. The manifest
// starts loading in the background; callers must Close the service.
func (a *app) newSpeech(ctx context.Context) (*speechStack, error) {
	m := observe.DefaultMetrics()

	spk, err := speaker.Open(ctx)
	if err != nil {
		return nil, err
	}
	source, err := a.clipSource(ctx)
	if err != nil {
		return nil, err
	}

	reg := config.NewRegistry()
	registerEngines(reg, spk, m)

	// A nil chain must stay a nil interface so the service treats
	// synthesis as disabled.
	var synth audio.Synthesizer
	chain := a.buildSynth(reg)
	if chain != nil {
		synth = chain
	}

	svc := speech.New(source, spk, synth,
		speech.WithMetrics(m),
		speech.WithFallbackConfig(speech.FallbackConfig{
			Language: a.cfg.Speech.Language,
			Rate:     a.cfg.Speech.Rate,
			Pitch:    a.cfg.Speech.Pitch,
			Voice:    a.cfg.Speech.Voice,
		}),
	)
	svc.Init(ctx)
	return &speechStack{svc: svc, source: source, chain: chain}, nil
}
