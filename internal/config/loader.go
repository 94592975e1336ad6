package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// KnownEngines lists the accepted synth.engines entries.
var KnownEngines = []string{EngineElevenLabs, EngineCoqui, EngineEspeak}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with defaults applied.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies defaults and
// validates the result. An empty document is valid.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if tls := cfg.Server.TLS; tls != nil && (tls.CertFile == "" || tls.KeyFile == "") {
		errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
	}

	if src := cfg.Speech.ClipSource; strings.Contains(src, "://") {
		u, err := url.Parse(src)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("speech.clip_source: %w", err))
		case u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "s3":
			errs = append(errs, fmt.Errorf("speech.clip_source scheme %q is invalid; valid values: http, https, s3", u.Scheme))
		}
	}
	if r := cfg.Speech.Rate; r != 0 && (r < 0.1 || r > 10) {
		errs = append(errs, fmt.Errorf("speech.rate %.2f is out of range [0.1, 10]", r))
	}
	if p := cfg.Speech.Pitch; p != 0 && (p < 0 || p > 2) {
		errs = append(errs, fmt.Errorf("speech.pitch %.2f is out of range [0, 2]", p))
	}

	seen := make(map[string]int, len(cfg.Synth.Engines))
	for i, name := range cfg.Synth.Engines {
		prefix := fmt.Sprintf("synth.engines[%d]", i)
		if !slices.Contains(KnownEngines, name) {
			errs = append(errs, fmt.Errorf("%s %q is unknown; valid values: %s", prefix, name, strings.Join(KnownEngines, ", ")))
			continue
		}
		if prev, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("%s %q is a duplicate of synth.engines[%d]", prefix, name, prev))
		}
		seen[name] = i
	}
	if _, ok := seen[EngineCoqui]; ok && cfg.Coqui.URL == "" {
		errs = append(errs, errors.New("synth.engines: coqui requires coqui.url"))
	}
	if cfg.Synth.Breaker.MaxFailures < 0 {
		errs = append(errs, fmt.Errorf("synth.breaker.max_failures %d must not be negative", cfg.Synth.Breaker.MaxFailures))
	}
	if cfg.Synth.Breaker.ResetTimeout < 0 {
		errs = append(errs, fmt.Errorf("synth.breaker.reset_timeout %s must not be negative", cfg.Synth.Breaker.ResetTimeout))
	}

	return errors.Join(errs...)
}
