package config

import "slices"

// ConfigDiff describes what changed between two configs. Only the log
// level is applied live; the other flags tell the operator a restart is
// needed.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	AssetsChanged bool
	SpeechChanged bool
	SynthChanged  bool
}

// RestartRequired reports whether any change cannot be applied live.
func (d ConfigDiff) RestartRequired() bool {
	return d.AssetsChanged || d.SpeechChanged || d.SynthChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}
	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}
	d.AssetsChanged = old.Server.Assets != new.Server.Assets || old.Storage != new.Storage
	d.SpeechChanged = old.Speech != new.Speech
	d.SynthChanged = !slices.Equal(old.Synth.Engines, new.Synth.Engines) ||
		old.Synth.Breaker != new.Synth.Breaker ||
		old.ElevenLabs != new.ElevenLabs ||
		old.Coqui != new.Coqui
	return d
}
