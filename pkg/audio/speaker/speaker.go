// Package speaker plays audio on the local sound card. MP3 clips are
// decoded with go-mp3 and rendered through an oto context fixed at
// 44.1 kHz stereo; streamed PCM is converted to that format on the fly.
package speaker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/MrWong99/littlewords/pkg/audio"
)

// Format is the device format. go-mp3 always emits 16-bit stereo, so the
// context uses the same channel layout.
var Format = audio.Format{SampleRate: 44100, Channels: 2}

const pollInterval = 10 * time.Millisecond

// oto allows a single context per process.
var (
	contextOnce sync.Once
	sharedCtx   *oto.Context
	contextErr  error
)

// Speaker is an [audio.Player] and [audio.PCMPlayer] on the default output
// device.
type Speaker struct {
	ctx *oto.Context
}

var (
	_ audio.Player    = (*Speaker)(nil)
	_ audio.PCMPlayer = (*Speaker)(nil)
)

// Open initialises the audio device and waits until it is ready or ctx
// ends. Repeated calls share the same device context.
func Open(ctx context.Context) (*Speaker, error) {
	contextOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   Format.SampleRate,
			ChannelCount: Format.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufferSize(),
		}
		var ready chan struct{}
		sharedCtx, ready, contextErr = oto.NewContext(opts)
		if contextErr != nil {
			contextErr = fmt.Errorf("speaker: open device: %w", contextErr)
			return
		}
		select {
		case <-ready:
		case <-ctx.Done():
			contextErr = fmt.Errorf("speaker: device not ready: %w", ctx.Err())
		}
	})
	if contextErr != nil {
		return nil, contextErr
	}
	slog.Debug("speaker ready", "sample_rate", Format.SampleRate, "channels", Format.Channels)
	return &Speaker{ctx: sharedCtx}, nil
}

func bufferSize() time.Duration {
	if runtime.GOOS == "darwin" {
		return 100 * time.Millisecond
	}
	return 50 * time.Millisecond
}

// Play implements [audio.Player] for MP3 clips.
func (s *Speaker) Play(ctx context.Context, clip io.Reader) error {
	pcm, err := decodeMP3(clip)
	if err != nil {
		return err
	}
	return s.play(ctx, bytes.NewReader(pcm), nil)
}

// decodeMP3 returns the clip as device-format PCM.
func decodeMP3(clip io.Reader) ([]byte, error) {
	dec, err := mp3.NewDecoder(clip)
	if err != nil {
		return nil, fmt.Errorf("speaker: decode mp3: %w", err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("speaker: decode mp3: %w", err)
	}
	return audio.Resample16(pcm, Format.Channels, dec.SampleRate(), Format.SampleRate), nil
}

// PlayPCM implements [audio.PCMPlayer].
func (s *Speaker) PlayPCM(ctx context.Context, format audio.Format, chunks <-chan []byte) error {
	pr, pw := io.Pipe()
	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		pw.CloseWithError(pump(ctx, chunks, format, pw))
	}()
	err := s.play(ctx, pr, pw)
	<-pumped
	return err
}

// pump writes converted chunks to w until chunks closes or ctx ends.
// Leftover chunks are drained so the producer never blocks.
func pump(ctx context.Context, chunks <-chan []byte, src audio.Format, w io.Writer) error {
	defer audio.Drain(chunks)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-chunks:
			if !ok {
				return nil
			}
			if _, err := w.Write(audio.ToFormat(c, src, Format)); err != nil {
				return err
			}
		}
	}
}

// play renders r and blocks until it has drained or ctx ends. A non-nil
// pw is closed on cancellation so a blocked read returns before Pause.
func (s *Speaker) play(ctx context.Context, r io.Reader, pw *io.PipeWriter) error {
	p := s.ctx.NewPlayer(r)
	defer p.Close()

	started := make(chan struct{})
	go func() {
		defer close(started)
		p.Play()
	}()

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			if pw != nil {
				pw.CloseWithError(ctx.Err())
			}
			<-started
			p.Pause()
			return ctx.Err()
		case <-t.C:
			select {
			case <-started:
			default:
				continue
			}
			if !p.IsPlaying() {
				if err := p.Err(); err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("speaker: %w", err)
				}
				return nil
			}
		}
	}
}
