// Package audio defines the device-side audio abstractions: a [Player] that
// renders encoded clips, a [PCMPlayer] for raw streamed audio, and a
// [Synthesizer] that speaks text with an on-device or remote voice.
//
// Implementations live in sub-packages (audio/speaker, audio/espeak,
// audio/remote); audio/mock provides test doubles. Every blocking call takes
// a context and must return promptly once it is cancelled, because the
// speech service relies on cancellation to stop the current utterance
// before the next one starts.
package audio

import (
	"context"
	"io"
)

// Format describes 16-bit little-endian PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// Player renders encoded audio clips.
type Player interface {
	// Play decodes clip and blocks until playback ends, fails, or ctx is
	// cancelled. On cancellation the output stops immediately and Play
	// returns ctx.Err().
	Play(ctx context.Context, clip io.Reader) error
}

// PCMPlayer renders raw PCM chunks as they arrive.
type PCMPlayer interface {
	// PlayPCM plays chunks in format until the channel is closed and the
	// buffered audio has drained, or until ctx is cancelled.
	PlayPCM(ctx context.Context, format Format, chunks <-chan []byte) error
}

// Voice is a voice offered by a [Synthesizer].
type Voice struct {
	ID       string
	Name     string
	Language string // BCP 47 tag, e.g. "en-US"

	// Local reports whether the voice renders on this device without a
	// network round trip.
	Local bool

	// Default marks the engine's default voice.
	Default bool
}

// Utterance is one request to a [Synthesizer].
type Utterance struct {
	Text     string
	Voice    Voice // zero value selects the engine default
	Language string
	Rate     float64 // 1.0 is the engine's normal speed
	Pitch    float64 // 1.0 is the engine's normal pitch
}

// Synthesizer speaks text.
type Synthesizer interface {
	// Name identifies the engine in logs and metrics.
	Name() string

	// Voices lists the voices the engine can use.
	Voices(ctx context.Context) ([]Voice, error)

	// Speak renders u and blocks until speech ends, fails, or ctx is
	// cancelled. On cancellation speech stops immediately and Speak returns
	// ctx.Err().
	Speak(ctx context.Context, u Utterance) error
}
