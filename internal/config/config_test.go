package config_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/littlewords/internal/config"
	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/audio/mock"
	"github.com/MrWong99/littlewords/pkg/storage"
)

const fullYAML = `
server:
  listen_addr: ":9090"
  log_level: debug
  assets: s3://toddler-assets/audio
speech:
  clip_source: https://cdn.example.com/audio
  language: en-GB
  rate: 0.8
  pitch: 1.2
  voice: Daniel
synth:
  engines: [elevenlabs, coqui, espeak]
  breaker:
    max_failures: 5
    reset_timeout: 1m
elevenlabs:
  voice_id: abc
coqui:
  url: http://localhost:5002
storage:
  region: eu-central-1
  endpoint: http://minio:9000
  path_style: true
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" || cfg.Server.LogLevel != config.LogDebug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Speech.Language != "en-GB" || cfg.Speech.Rate != 0.8 || cfg.Speech.Voice != "Daniel" {
		t.Errorf("speech = %+v", cfg.Speech)
	}
	if got := cfg.Synth.Engines; len(got) != 3 || got[0] != "elevenlabs" {
		t.Errorf("engines = %v", got)
	}
	if cfg.Synth.Breaker.ResetTimeout != time.Minute {
		t.Errorf("reset_timeout = %v, want 1m", cfg.Synth.Breaker.ResetTimeout)
	}
	if cfg.ElevenLabs.Model != config.DefaultElevenLabsModel {
		t.Errorf("model default not applied: %q", cfg.ElevenLabs.Model)
	}
}

func TestLoadFromReader_EmptyAppliesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != config.DefaultListenAddr || cfg.Server.LogLevel != config.LogInfo {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Speech.ClipSource != config.DefaultAssets {
		t.Errorf("clip_source = %q, want assets dir", cfg.Speech.ClipSource)
	}
	if cfg.Speech.Language != "en-US" || cfg.Speech.Rate != 0.9 || cfg.Speech.Pitch != 1.1 {
		t.Errorf("speech = %+v", cfg.Speech)
	}
	if len(cfg.Synth.Engines) != 1 || cfg.Synth.Engines[0] != config.EngineEspeak {
		t.Errorf("engines = %v", cfg.Synth.Engines)
	}
	if cfg.ElevenLabs.VoiceID != "FGY2WhTYpPnrIDTdsKH5" {
		t.Errorf("voice = %q", cfg.ElevenLabs.VoiceID)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	if _, err := config.LoadFromReader(strings.NewReader("speech:\n  volume: 11\n")); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"log level", "server:\n  log_level: loud\n", "server.log_level"},
		{"tls half", "server:\n  tls:\n    cert_file: a.pem\n", "server.tls"},
		{"clip scheme", "speech:\n  clip_source: ftp://x/audio\n", "speech.clip_source"},
		{"rate", "speech:\n  rate: 20\n", "speech.rate"},
		{"pitch", "speech:\n  pitch: -1\n", "speech.pitch"},
		{"unknown engine", "synth:\n  engines: [sapi]\n", "synth.engines[0]"},
		{"duplicate engine", "synth:\n  engines: [espeak, espeak]\n", "duplicate"},
		{"coqui url", "synth:\n  engines: [coqui]\n", "coqui.url"},
		{"breaker", "synth:\n  breaker:\n    max_failures: -1\n", "max_failures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Server.LogLevel = "nope"
	cfg.Synth.Engines = []string{"sapi"}
	err := config.Validate(cfg)
	if err == nil {
		t.Fatal("expected errors")
	}
	if n := strings.Count(err.Error(), "\n") + 1; n != 2 {
		t.Errorf("got %d errors, want 2: %v", n, err)
	}
}

func TestSecrets(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "sk-test")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIA")
	t.Setenv("S3_PATH_STYLE", "true")

	s, err := config.LoadSecrets()
	if err != nil {
		t.Fatal(err)
	}
	if s.ElevenLabsAPIKey != "sk-test" || s.S3.Region != "eu-west-1" || s.S3.AccessKeyID != "AKIA" || !s.S3.UsePathStyle {
		t.Errorf("secrets = %+v", s)
	}

	cfg := &config.Config{ElevenLabs: config.ElevenLabsConfig{APIKey: "from-file"}}
	cfg.ApplySecrets(s)
	if cfg.ElevenLabs.APIKey != "sk-test" {
		t.Errorf("api key = %q, want env value", cfg.ElevenLabs.APIKey)
	}
}

func TestConfigS3(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Storage: config.StorageConfig{Endpoint: "http://minio:9000", PathStyle: true}}
	got := cfg.S3(storage.S3Config{Region: "us-east-1", AccessKeyID: "a"})
	if got.Region != "us-east-1" || got.Endpoint != "http://minio:9000" || !got.UsePathStyle || got.AccessKeyID != "a" {
		t.Errorf("S3 = %+v", got)
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()
	base := func() *config.Config {
		cfg, err := config.LoadFromReader(strings.NewReader(fullYAML))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	if d := config.Diff(base(), base()); d.LogLevelChanged || d.RestartRequired() {
		t.Errorf("identical configs: %+v", d)
	}

	next := base()
	next.Server.LogLevel = config.LogWarn
	d := config.Diff(base(), next)
	if !d.LogLevelChanged || d.NewLogLevel != config.LogWarn || d.RestartRequired() {
		t.Errorf("log level change: %+v", d)
	}

	next = base()
	next.Synth.Engines = []string{"espeak"}
	if d := config.Diff(base(), next); !d.SynthChanged || !d.RestartRequired() {
		t.Errorf("engine change: %+v", d)
	}

	next = base()
	next.Speech.Rate = 1
	if d := config.Diff(base(), next); !d.SpeechChanged {
		t.Errorf("speech change: %+v", d)
	}

	next = base()
	next.Storage.Region = "us-west-2"
	if d := config.Diff(base(), next); !d.AssetsChanged {
		t.Errorf("storage change: %+v", d)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := config.NewRegistry()
	cfg := &config.Config{}

	if _, err := r.CreateSynth("espeak", cfg); !errors.Is(err, config.ErrEngineNotRegistered) {
		t.Fatalf("err = %v, want ErrEngineNotRegistered", err)
	}

	want := &mock.Synthesizer{NameResult: "espeak"}
	r.RegisterSynth("espeak", func(*config.Config) (audio.Synthesizer, error) { return want, nil })
	boom := errors.New("no binary")
	r.RegisterSynth("coqui", func(*config.Config) (audio.Synthesizer, error) { return nil, boom })

	got, err := r.CreateSynth("espeak", cfg)
	if err != nil || got != want {
		t.Fatalf("CreateSynth = %v, %v", got, err)
	}
	if _, err := got.Voices(context.Background()); err != nil {
		t.Errorf("Voices: %v", err)
	}
	if _, err := r.CreateSynth("coqui", cfg); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if names := r.Names(); len(names) != 2 || names[0] != "coqui" {
		t.Errorf("Names = %v", names)
	}
}
