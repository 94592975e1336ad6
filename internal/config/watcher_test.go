package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrWong99/littlewords/internal/config"
)

const watcherBaseYAML = `
server:
  log_level: info
speech:
  clip_source: https://example.com/audio
synth:
  engines: [espeak]
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %q: %v", path, err)
	}
}

// startWatcher writes watcherBaseYAML and returns a watcher that forwards
// each reload on the returned channel.
func startWatcher(t *testing.T, opts ...config.WatcherOption) (string, *config.Watcher, <-chan [2]*config.Config) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "littlewords.yaml")
	writeFile(t, path, watcherBaseYAML)

	reloads := make(chan [2]*config.Config, 4)
	opts = append(opts, config.WithInterval(20*time.Millisecond))
	w, err := config.NewWatcher(path, func(old, new *config.Config) {
		reloads <- [2]*config.Config{old, new}
	}, opts...)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(w.Stop)
	return path, w, reloads
}

// rewrite replaces the file and pushes its mtime forward so coarse
// filesystem clocks still register the change.
func rewrite(t *testing.T, path, content string) {
	t.Helper()
	writeFile(t, path, content)
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

func TestWatcher_Reload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		yaml      string
		wantLevel bool
		wantSynth bool
		restart   bool
	}{
		{
			name: "log level applies live",
			yaml: `
server:
  log_level: debug
speech:
  clip_source: https://example.com/audio
synth:
  engines: [espeak]
`,
			wantLevel: true,
		},
		{
			name: "engine list needs restart",
			yaml: `
server:
  log_level: info
speech:
  clip_source: https://example.com/audio
synth:
  engines: [espeak, elevenlabs]
`,
			wantSynth: true,
			restart:   true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path, w, reloads := startWatcher(t)
			if got := w.Current().Speech.ClipSource; got != "https://example.com/audio" {
				t.Fatalf("initial clip_source = %q", got)
			}

			rewrite(t, path, tc.yaml)
			var pair [2]*config.Config
			select {
			case pair = <-reloads:
			case <-time.After(2 * time.Second):
				t.Fatal("no reload within 2s")
			}

			d := config.Diff(pair[0], pair[1])
			if d.LogLevelChanged != tc.wantLevel {
				t.Errorf("LogLevelChanged = %v, want %v", d.LogLevelChanged, tc.wantLevel)
			}
			if d.SynthChanged != tc.wantSynth {
				t.Errorf("SynthChanged = %v, want %v", d.SynthChanged, tc.wantSynth)
			}
			if d.RestartRequired() != tc.restart {
				t.Errorf("RestartRequired = %v, want %v", d.RestartRequired(), tc.restart)
			}
			if w.Current() != pair[1] {
				t.Error("Current() does not return the reloaded config")
			}
		})
	}
}

func TestWatcher_InvalidFileKeepsOldConfig(t *testing.T) {
	t.Parallel()
	path, w, reloads := startWatcher(t)

	rewrite(t, path, `
speech:
  clip_source: ftp://example.com/audio
synth:
  engines: [espeak, say-it-loud]
`)
	select {
	case <-reloads:
		t.Fatal("reload fired for an invalid file")
	case <-time.After(200 * time.Millisecond):
	}

	cur := w.Current()
	if cur.Speech.ClipSource != "https://example.com/audio" {
		t.Errorf("clip_source = %q, want the previous value", cur.Speech.ClipSource)
	}
	if len(cur.Synth.Engines) != 1 || cur.Synth.Engines[0] != "espeak" {
		t.Errorf("engines = %v, want [espeak]", cur.Synth.Engines)
	}
}

func TestWatcher_AppliesSecretsOnReload(t *testing.T) {
	t.Parallel()
	path, w, reloads := startWatcher(t, config.WithSecrets(config.Secrets{ElevenLabsAPIKey: "sk-env"}))

	if got := w.Current().ElevenLabs.APIKey; got != "sk-env" {
		t.Errorf("initial api key = %q, want sk-env", got)
	}

	rewrite(t, path, `
server:
  log_level: warn
speech:
  clip_source: https://example.com/audio
synth:
  engines: [elevenlabs, espeak]
`)
	select {
	case pair := <-reloads:
		if got := pair[1].ElevenLabs.APIKey; got != "sk-env" {
			t.Errorf("reloaded api key = %q, want sk-env", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload within 2s")
	}
}
