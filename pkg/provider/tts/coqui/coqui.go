// Package coqui is a [tts.Provider] for a self-hosted Coqui TTS server
// (ghcr.io/coqui-ai/tts-cpu). It is the remote voice of last resort when
// ElevenLabs is unreachable or out of quota.
//
// The server works in batch mode: each sentence is one GET /api/tts call
// returning a WAV file. SynthesizeStream splits the incoming text into
// sentences, fetches them in order and emits the PCM in chunks, resampled
// to the configured output rate.
package coqui

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
)

var _ tts.Provider = (*Provider)(nil)

const (
	providerName      = "coqui"
	defaultLanguage   = "en"
	defaultTimeout    = 15 * time.Second
	defaultSampleRate = 22050
	pcmChunkSize      = 4096
)

// Option configures a [Provider].
type Option func(*Provider)

// WithLanguage sets the language_id sent to multilingual models.
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// WithSampleRate sets the rate of the emitted PCM. Server audio at another
// rate is resampled.
func WithSampleRate(rate int) Option {
	return func(p *Provider) { p.rate = rate }
}

// WithMetrics records request counts and latencies on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Provider) { p.metrics = m }
}

// Provider talks to one Coqui TTS server.
type Provider struct {
	serverURL string
	language  string
	rate      int
	client    *http.Client
	metrics   *observe.Metrics
}

// New returns a Provider for the server at serverURL, e.g.
// "http://localhost:5002".
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("coqui: serverURL must not be empty")
	}
	p := &Provider{
		serverURL: strings.TrimRight(serverURL, "/"),
		language:  defaultLanguage,
		rate:      defaultSampleRate,
		client:    &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p, nil
}

// Name implements [tts.Provider].
func (p *Provider) Name() string { return providerName }

// Format implements [tts.Provider]. Coqui models are mono.
func (p *Provider) Format() audio.Format {
	return audio.Format{SampleRate: p.rate, Channels: 1}
}

// SynthesizeStream implements [tts.Provider]. A failing sentence ends the
// stream early.
func (p *Provider) SynthesizeStream(ctx context.Context, text <-chan string, voice tts.VoiceProfile) (<-chan []byte, error) {
	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer audio.Drain(text)
		var buf strings.Builder
		speak := func(sentence string) bool {
			pcm, err := p.synthesize(ctx, sentence, voice)
			if err != nil {
				return false
			}
			for c := range slices.Chunk(pcm, pcmChunkSize) {
				select {
				case out <- c:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}
		for {
			select {
			case <-ctx.Done():
				return
			case fragment, ok := <-text:
				if !ok {
					if rest := strings.TrimSpace(buf.String()); rest != "" {
						speak(rest)
					}
					return
				}
				buf.WriteString(fragment)
				for {
					s := buf.String()
					idx := sentenceEnd(s)
					if idx < 0 {
						break
					}
					buf.Reset()
					buf.WriteString(s[idx+1:])
					if sentence := strings.TrimSpace(s[:idx+1]); sentence != "" && !speak(sentence) {
						return
					}
				}
			}
		}
	}()
	return out, nil
}

// synthesize fetches one sentence as PCM at the output rate.
func (p *Provider) synthesize(ctx context.Context, sentence string, voice tts.VoiceProfile) (pcm []byte, err error) {
	start := time.Now()
	defer func() { p.record(ctx, "synthesize", err, start) }()

	q := url.Values{}
	q.Set("text", sentence)
	if voice.ID != "" {
		q.Set("speaker_id", voice.ID)
	}
	if p.language != "" {
		q.Set("language_id", p.language)
	}
	wav, err := p.get(ctx, "/api/tts?"+q.Encode(), "audio/wav")
	if err != nil {
		return nil, err
	}
	info, err := parseWAV(wav)
	if err != nil {
		return nil, err
	}
	pcm = wav[info.DataOffset:]
	if info.Channels == 1 {
		pcm = audio.Resample16(pcm, 1, info.SampleRate, p.rate)
	}
	return pcm, nil
}

func (p *Provider) get(ctx context.Context, path, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serverURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("coqui: %w", err)
	}
	req.Header.Set("Accept", accept)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coqui: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coqui: GET %s returned status %d", req.URL.Path, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coqui: read %s: %w", req.URL.Path, err)
	}
	return data, nil
}

func (p *Provider) record(ctx context.Context, kind string, err error, start time.Time) {
	status := "ok"
	switch {
	case err == nil:
	case ctx.Err() != nil:
		status = "cancelled"
	default:
		status = "error"
	}
	p.metrics.RecordProviderRequest(ctx, providerName, kind, status, time.Since(start).Seconds())
}

type detailsResponse struct {
	ModelName string   `json:"model_name"`
	Speakers  []string `json:"speakers"`
	Languages []string `json:"languages"`
}

// ListVoices implements [tts.Provider] with GET /details. Single-speaker
// models yield one voice named after the model.
func (p *Provider) ListVoices(ctx context.Context) (voices []tts.VoiceProfile, err error) {
	start := time.Now()
	defer func() { p.record(ctx, "voices", err, start) }()

	data, err := p.get(ctx, "/details", "application/json")
	if err != nil {
		return nil, err
	}
	var d detailsResponse
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("coqui: decode details: %w", err)
	}
	meta := map[string]string{"model_name": d.ModelName}
	if len(d.Speakers) == 0 {
		name := cmpOr(d.ModelName, "default")
		return []tts.VoiceProfile{{Name: name, Provider: providerName, Language: p.language, Metadata: meta}}, nil
	}
	speakers := slices.Sorted(slices.Values(d.Speakers))
	for _, s := range speakers {
		voices = append(voices, tts.VoiceProfile{ID: s, Name: s, Provider: providerName, Language: p.language, Metadata: meta})
	}
	return voices, nil
}

func cmpOr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// sentenceEnd returns the index of the first '.', '!' or '?' that ends the
// buffer or is followed by whitespace, or -1.
func sentenceEnd(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || unicode.IsSpace(rune(s[i+1])) {
				return i
			}
		}
	}
	return -1
}

type wavInfo struct {
	DataOffset int
	SampleRate int
	Channels   int
}

// parseWAV walks the RIFF chunks for the fmt and data chunks.
func parseWAV(wav []byte) (wavInfo, error) {
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return wavInfo{}, errors.New("coqui: response is not a RIFF/WAVE file")
	}
	info := wavInfo{SampleRate: defaultSampleRate, Channels: 1}
	for off := 12; off+8 <= len(wav); {
		id := string(wav[off : off+4])
		size := int(binary.LittleEndian.Uint32(wav[off+4 : off+8]))
		switch id {
		case "fmt ":
			if size >= 16 && off+8+16 <= len(wav) {
				f := wav[off+8:]
				info.Channels = int(binary.LittleEndian.Uint16(f[2:4]))
				info.SampleRate = int(binary.LittleEndian.Uint32(f[4:8]))
			}
		case "data":
			info.DataOffset = off + 8
			return info, nil
		}
		off += 8 + size + size%2
	}
	return wavInfo{}, errors.New("coqui: WAV has no data chunk")
}
