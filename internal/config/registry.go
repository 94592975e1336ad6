package config

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/MrWong99/littlewords/pkg/audio"
)

// ErrEngineNotRegistered is returned by [Registry.CreateSynth] when no
// factory has been registered under the requested engine name.
var ErrEngineNotRegistered = errors.New("config: engine not registered")

// SynthFactory builds a synthesis engine from the loaded config.
type SynthFactory func(*Config) (audio.Synthesizer, error)

// Registry maps engine names to their constructors. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	synth map[string]SynthFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{synth: make(map[string]SynthFactory)}
}

// RegisterSynth registers a synthesis engine factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSynth(name string, factory SynthFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synth[name] = factory
}

// CreateSynth instantiates the engine registered under name.
func (r *Registry) CreateSynth(name string, cfg *Config) (audio.Synthesizer, error) {
	r.mu.RLock()
	factory, ok := r.synth[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: synth/%q", ErrEngineNotRegistered, name)
	}
	s, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("config: create %s engine: %w", name, err)
	}
	return s, nil
}

// Names returns the registered engine names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.synth))
	for n := range r.synth {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
