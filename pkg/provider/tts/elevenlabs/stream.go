package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
)

// textMessage is sent for every text fragment. An empty Text flushes the
// stream and asks the server to finish.
type textMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
}

// boiMessage opens the stream ("beginning of input").
type boiMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
	XiAPIKey      string         `json:"xi_api_key"`
	OutputFormat  string         `json:"output_format,omitempty"`
}

// audioResponse is one server message.
type audioResponse struct {
	Audio   string `json:"audio"` // base64 PCM
	IsFinal bool   `json:"isFinal"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// streamURL builds the stream-input WebSocket URL for voiceID.
func (p *Provider) streamURL(voiceID string) string {
	base := p.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return fmt.Sprintf("%s/v1/text-to-speech/%s/stream-input?model_id=%s",
		base, url.PathEscape(voiceID), url.QueryEscape(p.model))
}

// SynthesizeStream implements [tts.Provider]. It opens a WebSocket, forwards
// text fragments as they arrive and emits decoded PCM chunks.
func (p *Provider) SynthesizeStream(ctx context.Context, text <-chan string, voice tts.VoiceProfile) (<-chan []byte, error) {
	if voice.ID == "" {
		return nil, errors.New("elevenlabs: voice.ID must not be empty")
	}

	start := time.Now()
	conn, _, err := websocket.Dial(ctx, p.streamURL(voice.ID), nil)
	if err != nil {
		p.record(ctx, "stream", err, start)
		return nil, fmt.Errorf("elevenlabs: dial: %w", err)
	}

	boi, _ := json.Marshal(boiMessage{
		Text:          " ", // the first text value must not be empty
		VoiceSettings: toWire(p.streamSettings),
		XiAPIKey:      p.apiKey,
		OutputFormat:  p.outputFormat,
	})
	if err := conn.Write(ctx, websocket.MessageText, boi); err != nil {
		conn.Close(websocket.StatusInternalError, "failed to send BOI")
		p.record(ctx, "stream", err, start)
		return nil, fmt.Errorf("elevenlabs: send BOI: %w", err)
	}

	audioCh := make(chan []byte, 256)
	go func() {
		defer close(audioCh)
		defer conn.Close(websocket.StatusNormalClosure, "done")

		readErr := make(chan error, 1)
		go func() {
			readErr <- p.readAudio(ctx, conn, audioCh)
		}()

		err := p.writeText(ctx, conn, text)
		if err == nil {
			err = <-readErr
		}
		p.record(ctx, "stream", err, start)
		if err != nil && ctx.Err() == nil {
			observe.Logger(ctx).Warn("elevenlabs: stream ended early", "err", err)
		}
	}()
	return audioCh, nil
}

// writeText forwards fragments until text closes, then sends the flush.
func (p *Provider) writeText(ctx context.Context, conn *websocket.Conn, text <-chan string) error {
	for {
		select {
		case fragment, ok := <-text:
			if !ok {
				flush, _ := json.Marshal(textMessage{Text: ""})
				return conn.Write(ctx, websocket.MessageText, flush)
			}
			if fragment == "" {
				continue
			}
			// The server wants a trailing space to know a word is complete.
			if !strings.HasSuffix(fragment, " ") {
				fragment += " "
			}
			msg, _ := json.Marshal(textMessage{Text: fragment})
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return fmt.Errorf("elevenlabs: send text: %w", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// readAudio forwards decoded audio until the final message arrives.
func (p *Provider) readAudio(ctx context.Context, conn *websocket.Conn, out chan<- []byte) error {
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("elevenlabs: read: %w", err)
		}
		var resp audioResponse
		if err := json.Unmarshal(msg, &resp); err != nil {
			continue
		}
		if resp.Error != "" {
			return fmt.Errorf("elevenlabs: stream error: %s", resp.Error)
		}
		if resp.Audio != "" {
			pcm, err := base64.StdEncoding.DecodeString(resp.Audio)
			if err == nil {
				select {
				case out <- pcm:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		if resp.IsFinal {
			return nil
		}
	}
}
