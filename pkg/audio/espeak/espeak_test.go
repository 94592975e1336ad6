package espeak

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/MrWong99/littlewords/pkg/audio"
)

func TestParseVoices(t *testing.T) {
	out := []byte(`Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 2  en              --/M      English_(Great_Britain) gmw/en          (en 2)
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
garbage line
`)
	got := parseVoices(out)
	if len(got) != 3 {
		t.Fatalf("voices = %+v", got)
	}
	us := got[2]
	if us.ID != "en-us" || us.Language != "en-us" || us.Name != "English (America)" || !us.Local || us.Default {
		t.Errorf("en-us = %+v", us)
	}
	if !got[1].Default {
		t.Errorf("en should be the default voice: %+v", got[1])
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name string
		u    audio.Utterance
		want []string
	}{
		{
			name: "toddler defaults",
			u:    audio.Utterance{Text: "Tiger", Language: "en-US", Rate: 0.9, Pitch: 1.1},
			want: []string{"-s", "158", "-p", "55", "-v", "en-us", "--", "Tiger"},
		},
		{
			name: "explicit voice",
			u:    audio.Utterance{Text: "hi", Voice: audio.Voice{ID: "en-gb"}, Language: "en-US"},
			want: []string{"-s", "175", "-p", "50", "-v", "en-gb", "--", "hi"},
		},
		{
			name: "clamped",
			u:    audio.Utterance{Text: "-x", Rate: 10, Pitch: 5},
			want: []string{"-s", "450", "-p", "99", "--", "-x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := args(tt.u); !slices.Equal(got, tt.want) {
				t.Errorf("args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpeak_MissingBinary(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "no-such-espeak"))
	if err := s.Speak(context.Background(), audio.Utterance{Text: "hi"}); err == nil {
		t.Fatal("expected error")
	}
	if err := s.Speak(context.Background(), audio.Utterance{Text: " "}); err != nil {
		t.Fatalf("blank text: %v", err)
	}
}
