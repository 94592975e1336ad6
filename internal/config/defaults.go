package config

import "time"

// Defaults applied by [ApplyDefaults].
const (
	DefaultListenAddr        = ":8080"
	DefaultAssets            = "public/audio"
	DefaultLanguage          = "en-US"
	DefaultRate              = 0.9
	DefaultPitch             = 1.1
	DefaultElevenLabsVoice   = "FGY2WhTYpPnrIDTdsKH5"
	DefaultElevenLabsModel   = "eleven_flash_v2_5"
	DefaultBreakerFailures   = 3
	DefaultBreakerResetAfter = 30 * time.Second
)

// ApplyDefaults fills every unset field of cfg.
func ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.ListenAddr == "" {
		s.ListenAddr = DefaultListenAddr
	}
	if s.LogLevel == "" {
		s.LogLevel = LogInfo
	}
	if s.Assets == "" {
		s.Assets = DefaultAssets
	}

	sp := &cfg.Speech
	if sp.ClipSource == "" {
		sp.ClipSource = s.Assets
	}
	if sp.Language == "" {
		sp.Language = DefaultLanguage
	}
	if sp.Rate == 0 {
		sp.Rate = DefaultRate
	}
	if sp.Pitch == 0 {
		sp.Pitch = DefaultPitch
	}

	if len(cfg.Synth.Engines) == 0 {
		cfg.Synth.Engines = []string{EngineEspeak}
	}
	if cfg.Synth.Breaker.MaxFailures == 0 {
		cfg.Synth.Breaker.MaxFailures = DefaultBreakerFailures
	}
	if cfg.Synth.Breaker.ResetTimeout == 0 {
		cfg.Synth.Breaker.ResetTimeout = DefaultBreakerResetAfter
	}

	if cfg.ElevenLabs.VoiceID == "" {
		cfg.ElevenLabs.VoiceID = DefaultElevenLabsVoice
	}
	if cfg.ElevenLabs.Model == "" {
		cfg.ElevenLabs.Model = DefaultElevenLabsModel
	}
	if cfg.Coqui.Language == "" {
		cfg.Coqui.Language = "en"
	}
}
