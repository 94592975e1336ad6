// Package config provides the configuration schema, loader, watcher and
// speech engine registry for littlewords.
package config

import (
	"time"

	"github.com/MrWong99/littlewords/pkg/storage"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Engine names accepted in synth.engines.
const (
	EngineElevenLabs = "elevenlabs"
	EngineCoqui      = "coqui"
	EngineEspeak     = "espeak"
)

// Config is the root configuration structure. It is typically loaded from
// a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Speech     SpeechConfig     `yaml:"speech"`
	Synth      SynthConfig      `yaml:"synth"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Coqui      CoquiConfig      `yaml:"coqui"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ServerConfig holds the asset server settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. It is applied on hot reload.
	LogLevel LogLevel `yaml:"log_level"`

	// Assets is the store served under /audio/: a directory or
	// s3://bucket/prefix.
	Assets string `yaml:"assets"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// SpeechConfig configures device playback and the synthesis fallback.
type SpeechConfig struct {
	// ClipSource is where pre-generated clips are read from: an http(s)
	// base URL, a directory, or s3://bucket/prefix.
	ClipSource string `yaml:"clip_source"`

	// Language is the BCP 47 tag used to pick a synthesis voice.
	Language string  `yaml:"language"`
	Rate     float64 `yaml:"rate"`
	Pitch    float64 `yaml:"pitch"`

	// Voice optionally names the preferred synthesis voice (ID or name).
	Voice string `yaml:"voice"`
}

// SynthConfig selects the synthesis engines, tried in order.
type SynthConfig struct {
	Engines []string      `yaml:"engines"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the per-engine circuit breakers.
type BreakerConfig struct {
	MaxFailures  int           `yaml:"max_failures"`
	ResetTimeout time.Duration `yaml:"reset_timeout"`
}

// ElevenLabsConfig configures the ElevenLabs engine. The API key is
// usually supplied through ELEVENLABS_API_KEY instead.
type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// CoquiConfig configures a self-hosted Coqui TTS server.
type CoquiConfig struct {
	URL      string `yaml:"url"`
	Language string `yaml:"language"`
	Speaker  string `yaml:"speaker"`
}

// StorageConfig holds the non-secret S3 settings. Credentials come from
// the environment, see [LoadSecrets].
type StorageConfig struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// S3 merges the storage section over the environment-derived settings in
// base. File values win when set.
func (c *Config) S3(base storage.S3Config) storage.S3Config {
	if c.Storage.Region != "" {
		base.Region = c.Storage.Region
	}
	if c.Storage.Endpoint != "" {
		base.Endpoint = c.Storage.Endpoint
	}
	if c.Storage.PathStyle {
		base.UsePathStyle = true
	}
	return base
}
