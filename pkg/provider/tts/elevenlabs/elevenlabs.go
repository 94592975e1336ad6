// Package elevenlabs provides the ElevenLabs text-to-speech backend. It
// implements [tts.Provider] over the streaming WebSocket API and
// [tts.Converter] over the REST text-to-speech endpoint.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/audio"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
)

const (
	defaultBaseURL      = "https://api.elevenlabs.io"
	defaultModel        = "eleven_flash_v2_5"
	defaultStreamFormat = "pcm_44100"

	// DefaultConvertFormat is the encoding of generated clips.
	DefaultConvertFormat = "mp3_44100_128"

	providerName = "elevenlabs"

	// maxErrorBody bounds how much of a failed response is kept.
	maxErrorBody = 4 << 10
)

// ErrMissingAPIKey is returned by [New] without an API key.
var ErrMissingAPIKey = errors.New("elevenlabs: missing API key")

// APIError is a non-success response from the REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("elevenlabs: API error %d: %s", e.StatusCode, e.Body)
}

// Option is a functional option for configuring the ElevenLabs Provider.
type Option func(*Provider)

// WithModel sets the model used for streaming synthesis.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithOutputFormat sets the streaming PCM format, e.g. "pcm_16000" or
// "pcm_44100".
func WithOutputFormat(format string) Option {
	return func(p *Provider) {
		p.outputFormat = format
	}
}

// WithBaseURL points the provider at another API host. The WebSocket URL is
// derived by switching the scheme to ws/wss.
func WithBaseURL(base string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient replaces the REST client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// WithStreamSettings sets the voice settings sent with the first streamed
// fragment.
func WithStreamSettings(s tts.VoiceSettings) Option {
	return func(p *Provider) {
		p.streamSettings = s
	}
}

// WithMetrics records request counts and latencies on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}

// Provider talks to ElevenLabs.
type Provider struct {
	apiKey         string
	model          string
	outputFormat   string
	baseURL        string
	httpClient     *http.Client
	streamSettings tts.VoiceSettings
	metrics        *observe.Metrics
}

var (
	_ tts.Provider  = (*Provider)(nil)
	_ tts.Converter = (*Provider)(nil)
)

// New creates a Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	p := &Provider{
		apiKey:         apiKey,
		model:          defaultModel,
		outputFormat:   defaultStreamFormat,
		baseURL:        defaultBaseURL,
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		streamSettings: tts.VoiceSettings{Stability: 0.5, SimilarityBoost: 0.75},
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
func (p *Provider) Name() string {
	return providerName
}

// Format implements [tts.Provider]. ElevenLabs streams mono PCM at the
// rate named by the output format; unknown formats assume 44.1 kHz.
func (p *Provider) Format() audio.Format {
	return audio.Format{SampleRate: sampleRate(p.outputFormat), Channels: 1}
}

func sampleRate(format string) int {
	rate, ok := strings.CutPrefix(format, "pcm_")
	if !ok {
		return 44100
	}
	n, err := strconv.Atoi(rate)
	if err != nil || n <= 0 {
		return 44100
	}
	return n
}

// voiceSettings mirrors the ElevenLabs voice_settings object.
type voiceSettings struct {
	Stability       float64  `json:"stability"`
	SimilarityBoost float64  `json:"similarity_boost"`
	Style           *float64 `json:"style,omitempty"`
	Speed           *float64 `json:"speed,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
}

func toWire(s tts.VoiceSettings) *voiceSettings {
	vs := &voiceSettings{Stability: s.Stability, SimilarityBoost: s.SimilarityBoost}
	if s.Style != 0 {
		vs.Style = &s.Style
	}
	if s.Speed != 0 {
		vs.Speed = &s.Speed
	}
	if s.UseSpeakerBoost {
		vs.UseSpeakerBoost = &s.UseSpeakerBoost
	}
	return vs
}

// ---- REST ----

type convertBody struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings *voiceSettings `json:"voice_settings"`
}

// Convert implements [tts.Converter] with POST /v1/text-to-speech/{voice}.
// A non-2xx response is returned as *[APIError].
func (p *Provider) Convert(ctx context.Context, req tts.ConvertRequest) ([]byte, error) {
	if req.VoiceID == "" {
		return nil, errors.New("elevenlabs: voice ID must not be empty")
	}
	model := req.ModelID
	if model == "" {
		model = p.model
	}
	format := req.OutputFormat
	if format == "" {
		format = DefaultConvertFormat
	}

	body, err := json.Marshal(convertBody{Text: req.Text, ModelID: model, VoiceSettings: toWire(req.Settings)})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		p.baseURL, url.PathEscape(req.VoiceID), url.QueryEscape(format))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: convert: %w", err)
	}
	httpReq.Header.Set("xi-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	data, err := p.do(httpReq)
	p.record(ctx, "convert", err, start)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// do executes req and returns the body of a 2xx response.
func (p *Provider) do(req *http.Request) ([]byte, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read response: %w", err)
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

// ---- ListVoices ----

// voicesResponse is the top-level response from GET /v1/voices.
type voicesResponse struct {
	Voices []elevenLabsVoice `json:"voices"`
}

type elevenLabsVoice struct {
	VoiceID  string            `json:"voice_id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Labels   map[string]string `json:"labels"`
}

// ListVoices implements [tts.Provider].
func (p *Provider) ListVoices(ctx context.Context) ([]tts.VoiceProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices: %w", err)
	}
	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	data, err := p.do(req)
	p.record(ctx, "voices", err, start)
	if err != nil {
		return nil, err
	}
	profiles, err := parseVoicesResponse(data)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: list voices decode: %w", err)
	}
	return profiles, nil
}

// parseVoicesResponse maps a /v1/voices body to voice profiles. The
// "language" label, when present, becomes the profile language.
func parseVoicesResponse(data []byte) ([]tts.VoiceProfile, error) {
	var vr voicesResponse
	if err := json.Unmarshal(data, &vr); err != nil {
		return nil, err
	}
	profiles := make([]tts.VoiceProfile, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		meta := make(map[string]string, len(v.Labels)+1)
		for k, val := range v.Labels {
			meta[k] = val
		}
		if v.Category != "" {
			meta["category"] = v.Category
		}
		profiles = append(profiles, tts.VoiceProfile{
			ID:       v.VoiceID,
			Name:     v.Name,
			Provider: providerName,
			Language: v.Labels["language"],
			Metadata: meta,
		})
	}
	return profiles, nil
}
