// Package mock provides a test double for the tts.Provider and
// tts.Converter interfaces.
//
// Example:
//
//	p := &mock.Provider{
//	    SynthesizeChunks: [][]byte{[]byte("audio1"), []byte("audio2")},
//	    ConvertResult:    []byte("ID3..."),
//	}
//	ch, _ := p.SynthesizeStream(ctx, textCh, voice)
package mock

import (
	"context"
	"sync"

	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
)

// SynthesizeStreamCall records a single invocation of SynthesizeStream.
type SynthesizeStreamCall struct {
	Voice tts.VoiceProfile
	// Texts holds every fragment read from the text channel.
	Texts []string
}

// Provider is a mock implementation of tts.Provider and tts.Converter.
type Provider struct {
	mu sync.Mutex

	// NameResult is returned by Name. Defaults to "mock".
	NameResult string

	// FormatResult is returned by Format. Defaults to 16 kHz mono.
	FormatResult audio.Format

	// SynthesizeChunks are emitted by every stream.
	SynthesizeChunks [][]byte

	// SynthesizeErr, if non-nil, is returned instead of starting a stream.
	SynthesizeErr error

	// KeepOpen leaves the audio channel open after the chunks until ctx
	// is cancelled, like a long utterance.
	KeepOpen bool

	ListVoicesResult []tts.VoiceProfile
	ListVoicesErr    error

	// ConvertFunc, if set, computes the Convert result.
	ConvertFunc   func(tts.ConvertRequest) ([]byte, error)
	ConvertResult []byte
	ConvertErr    error

	// --- Call records ---

	SynthesizeStreamCalls []SynthesizeStreamCall
	ListVoicesCalls       int
	ConvertCalls          []tts.ConvertRequest
}

var (
	_ tts.Provider  = (*Provider)(nil)
	_ tts.Converter = (*Provider)(nil)
)

// Name implements tts.Provider.
func (p *Provider) Name() string {
	if p.NameResult == "" {
		return "mock"
	}
	return p.NameResult
}

// Format implements tts.Provider.
func (p *Provider) Format() audio.Format {
	if p.FormatResult == (audio.Format{}) {
		return audio.Format{SampleRate: 16000, Channels: 1}
	}
	return p.FormatResult
}

// SynthesizeStream reads the text channel to completion, records the call
// and emits SynthesizeChunks.
func (p *Provider) SynthesizeStream(ctx context.Context, text <-chan string, voice tts.VoiceProfile) (<-chan []byte, error) {
	p.mu.Lock()
	idx := len(p.SynthesizeStreamCalls)
	p.SynthesizeStreamCalls = append(p.SynthesizeStreamCalls, SynthesizeStreamCall{Voice: voice})
	err := p.SynthesizeErr
	chunks := append([][]byte(nil), p.SynthesizeChunks...)
	keepOpen := p.KeepOpen
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	ch := make(chan []byte, len(chunks))
	go func() {
		defer close(ch)
		for fragment := range text {
			p.mu.Lock()
			p.SynthesizeStreamCalls[idx].Texts = append(p.SynthesizeStreamCalls[idx].Texts, fragment)
			p.mu.Unlock()
		}
		for _, c := range chunks {
			select {
			case <-ctx.Done():
				return
			case ch <- c:
			}
		}
		if keepOpen {
			<-ctx.Done()
		}
	}()
	return ch, nil
}

// ListVoices implements tts.Provider.
func (p *Provider) ListVoices(_ context.Context) ([]tts.VoiceProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListVoicesCalls++
	return p.ListVoicesResult, p.ListVoicesErr
}

// Convert implements tts.Converter.
func (p *Provider) Convert(_ context.Context, req tts.ConvertRequest) ([]byte, error) {
	p.mu.Lock()
	p.ConvertCalls = append(p.ConvertCalls, req)
	fn, result, err := p.ConvertFunc, p.ConvertResult, p.ConvertErr
	p.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return result, err
}

// Streams returns a copy of the recorded stream calls.
func (p *Provider) Streams() []SynthesizeStreamCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SynthesizeStreamCall(nil), p.SynthesizeStreamCalls...)
}

// Converts returns a copy of the recorded convert requests.
func (p *Provider) Converts() []tts.ConvertRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]tts.ConvertRequest(nil), p.ConvertCalls...)
}
