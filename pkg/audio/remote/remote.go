// Package remote adapts a streaming [tts.Provider] into an
// [audio.Synthesizer] that plays through an [audio.PCMPlayer]. It is the
// network voice used when no pre-generated clip exists and the device has
// no usable local voice.
package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
)

// ErrNoAudio is returned by Speak when the provider closed its stream
// without producing any audio.
var ErrNoAudio = errors.New("remote: provider returned no audio")

// DeviceFormat is the output format used when none is configured.
var DeviceFormat = audio.Format{SampleRate: 44100, Channels: 2}

// Synthesizer speaks through a remote TTS provider.
type Synthesizer struct {
	provider     tts.Provider
	player       audio.PCMPlayer
	device       audio.Format
	defaultVoice string
}

var _ audio.Synthesizer = (*Synthesizer)(nil)

// Option configures a [Synthesizer].
type Option func(*Synthesizer)

// WithDeviceFormat sets the PCM format handed to the player. Provider audio
// is resampled to it.
func WithDeviceFormat(f audio.Format) Option {
	return func(s *Synthesizer) { s.device = f }
}

// WithDefaultVoice sets the provider voice used when an utterance does not
// name one.
func WithDefaultVoice(id string) Option {
	return func(s *Synthesizer) { s.defaultVoice = id }
}

// New creates a Synthesizer streaming from provider into player.
func New(provider tts.Provider, player audio.PCMPlayer, opts ...Option) *Synthesizer {
	s := &Synthesizer{provider: provider, player: player, device: DeviceFormat}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name implements [audio.Synthesizer].
func (s *Synthesizer) Name() string {
	return s.provider.Name()
}

// Voices implements [audio.Synthesizer]. Remote voices are never Local.
func (s *Synthesizer) Voices(ctx context.Context) ([]audio.Voice, error) {
	profiles, err := s.provider.ListVoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("remote: %s: %w", s.Name(), err)
	}
	voices := make([]audio.Voice, 0, len(profiles))
	for _, p := range profiles {
		voices = append(voices, audio.Voice{
			ID:       p.ID,
			Name:     p.Name,
			Language: p.Language,
			Default:  p.ID != "" && p.ID == s.defaultVoice,
		})
	}
	return voices, nil
}

// Speak implements [audio.Synthesizer]. The whole utterance is sent as one
// text fragment and the resulting PCM is played as it arrives.
func (s *Synthesizer) Speak(ctx context.Context, u audio.Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}
	voice := tts.VoiceProfile{
		ID:       u.Voice.ID,
		Name:     u.Voice.Name,
		Provider: s.provider.Name(),
		Language: u.Language,
	}
	if voice.ID == "" {
		voice.ID = s.defaultVoice
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	text := make(chan string, 1)
	text <- u.Text
	close(text)
	chunks, err := s.provider.SynthesizeStream(streamCtx, text, voice)
	if err != nil {
		return fmt.Errorf("remote: %s: start stream: %w", s.Name(), err)
	}

	src := s.provider.Format()
	out := make(chan []byte, 8)
	var received atomic.Int64
	go func() {
		defer close(out)
		for c := range chunks {
			if len(c) == 0 {
				continue
			}
			received.Add(int64(len(c)))
			select {
			case out <- audio.ToFormat(c, src, s.device):
			case <-streamCtx.Done():
				audio.Drain(chunks)
				return
			}
		}
	}()

	err = s.player.PlayPCM(streamCtx, s.device, out)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("remote: %s: play: %w", s.Name(), err)
	}
	if received.Load() == 0 {
		return ErrNoAudio
	}
	return nil
}
