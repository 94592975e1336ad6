// Package tts defines the cloud text-to-speech backends used by littlewords.
//
// Two shapes are supported. A [Provider] streams raw PCM while text arrives,
// which suits live device speech. A [Converter] renders one complete
// utterance into an encoded file, which is how the offline generator
// produces the MP3 clips the app ships with.
//
// Implementations must be safe for concurrent use.
package tts

import (
	"context"

	"github.com/MrWong99/littlewords/pkg/audio"
)

// Provider streams synthesized speech.
type Provider interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Format describes the PCM emitted by SynthesizeStream.
	Format() audio.Format

	// SynthesizeStream consumes text fragments and returns a channel of
	// PCM chunks. The channel is closed once all text has been spoken, on
	// a mid-stream failure, or when ctx is cancelled; callers check
	// ctx.Err() to tell cancellation apart. A non-nil error means the
	// stream could not be started.
	SynthesizeStream(ctx context.Context, text <-chan string, voice VoiceProfile) (<-chan []byte, error)

	// ListVoices returns the voices available to the configured account.
	ListVoices(ctx context.Context) ([]VoiceProfile, error)
}

// Converter renders complete utterances to encoded audio.
type Converter interface {
	// Convert returns the encoded audio for req, e.g. an MP3 file.
	Convert(ctx context.Context, req ConvertRequest) ([]byte, error)
}
