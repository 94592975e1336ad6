package remote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrWong99/littlewords/pkg/audio"
	audiomock "github.com/MrWong99/littlewords/pkg/audio/mock"
	"github.com/MrWong99/littlewords/pkg/audio/remote"
	"github.com/MrWong99/littlewords/pkg/provider/tts"
	ttsmock "github.com/MrWong99/littlewords/pkg/provider/tts/mock"
)

func TestSpeak_StreamsConvertedAudio(t *testing.T) {
	prov := &ttsmock.Provider{
		NameResult:       "elevenlabs",
		FormatResult:     audio.Format{SampleRate: 44100, Channels: 1},
		SynthesizeChunks: [][]byte{{1, 0, 2, 0}, {}, {3, 0}},
	}
	player := &audiomock.PCMPlayer{}
	s := remote.New(prov, player, remote.WithDefaultVoice("voice-1"))

	err := s.Speak(context.Background(), audio.Utterance{Text: "Tiger", Language: "en-US"})
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}

	streams := prov.Streams()
	if len(streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(streams))
	}
	if streams[0].Voice.ID != "voice-1" || streams[0].Voice.Language != "en-US" {
		t.Errorf("voice = %+v", streams[0].Voice)
	}
	if len(streams[0].Texts) != 1 || streams[0].Texts[0] != "Tiger" {
		t.Errorf("texts = %q", streams[0].Texts)
	}

	if len(player.Formats) != 1 || player.Formats[0] != remote.DeviceFormat {
		t.Errorf("formats = %v", player.Formats)
	}
	want := []byte{1, 0, 1, 0, 2, 0, 2, 0, 3, 0, 3, 0}
	if got := player.Bytes(); string(got) != string(want) {
		t.Errorf("pcm = %v, want %v", got, want)
	}
}

func TestSpeak_UtteranceVoiceWins(t *testing.T) {
	prov := &ttsmock.Provider{SynthesizeChunks: [][]byte{{0, 0}}}
	s := remote.New(prov, &audiomock.PCMPlayer{}, remote.WithDefaultVoice("fallback"))

	if err := s.Speak(context.Background(), audio.Utterance{Text: "hi", Voice: audio.Voice{ID: "picked"}}); err != nil {
		t.Fatal(err)
	}
	if got := prov.Streams()[0].Voice.ID; got != "picked" {
		t.Errorf("voice = %q, want picked", got)
	}
}

func TestSpeak_NoAudio(t *testing.T) {
	s := remote.New(&ttsmock.Provider{}, &audiomock.PCMPlayer{})
	err := s.Speak(context.Background(), audio.Utterance{Text: "hi"})
	if !errors.Is(err, remote.ErrNoAudio) {
		t.Fatalf("err = %v, want ErrNoAudio", err)
	}
}

func TestSpeak_StartError(t *testing.T) {
	boom := errors.New("dial failed")
	s := remote.New(&ttsmock.Provider{SynthesizeErr: boom}, &audiomock.PCMPlayer{})
	if err := s.Speak(context.Background(), audio.Utterance{Text: "hi"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSpeak_PlayerError(t *testing.T) {
	boom := errors.New("device lost")
	prov := &ttsmock.Provider{SynthesizeChunks: [][]byte{{0, 0}}}
	s := remote.New(prov, &audiomock.PCMPlayer{PlayErr: boom})
	if err := s.Speak(context.Background(), audio.Utterance{Text: "hi"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSpeak_Cancelled(t *testing.T) {
	prov := &ttsmock.Provider{SynthesizeChunks: [][]byte{{0, 0}}, KeepOpen: true}
	s := remote.New(prov, &audiomock.PCMPlayer{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Speak(ctx, audio.Utterance{Text: "a long sentence"}) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Speak did not return after cancel")
	}
}

func TestSpeak_BlankText(t *testing.T) {
	prov := &ttsmock.Provider{}
	s := remote.New(prov, &audiomock.PCMPlayer{})
	if err := s.Speak(context.Background(), audio.Utterance{Text: "  "}); err != nil {
		t.Fatal(err)
	}
	if len(prov.Streams()) != 0 {
		t.Error("blank text reached the provider")
	}
}

func TestVoices(t *testing.T) {
	prov := &ttsmock.Provider{ListVoicesResult: []tts.VoiceProfile{
		{ID: "a", Name: "Aria", Language: "en"},
		{ID: "b", Name: "Bill", Language: "en"},
	}}
	s := remote.New(prov, &audiomock.PCMPlayer{}, remote.WithDefaultVoice("b"))

	voices, err := s.Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) != 2 {
		t.Fatalf("voices = %v", voices)
	}
	if voices[0].Default || !voices[1].Default {
		t.Errorf("default flags = %v, %v", voices[0].Default, voices[1].Default)
	}
	for _, v := range voices {
		if v.Local {
			t.Errorf("remote voice %q marked local", v.ID)
		}
	}

	prov.ListVoicesErr = errors.New("unauthorized")
	if _, err := s.Voices(context.Background()); err == nil {
		t.Error("expected error")
	}
}
