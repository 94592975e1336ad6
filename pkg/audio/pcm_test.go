package audio_test

import (
	"encoding/binary"
	"slices"
	"testing"

	"github.com/MrWong99/littlewords/pkg/audio"
)

func samplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func bytesToSamples(b []byte) []int16 {
	samples := make([]int16, len(b)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return samples
}

func TestMonoToStereo(t *testing.T) {
	got := bytesToSamples(audio.MonoToStereo(samplesToBytes([]int16{100, -200, 300})))
	want := []int16{100, 100, -200, -200, 300, 300}
	if !slices.Equal(got, want) {
		t.Errorf("MonoToStereo = %v, want %v", got, want)
	}
}

func TestMonoToStereo_OddLengthInput(t *testing.T) {
	in := append(samplesToBytes([]int16{7}), 0xFF)
	if got := len(audio.MonoToStereo(in)); got != 4 {
		t.Errorf("len = %d, want 4", got)
	}
}

func TestResample16(t *testing.T) {
	tests := []struct {
		name     string
		in       []int16
		channels int
		src, dst int
		wantLen  int
	}{
		{"same rate", []int16{1, 2, 3}, 1, 44100, 44100, 3},
		{"mono upsample 3x", []int16{1000, 2000}, 1, 16000, 48000, 6},
		{"mono downsample 3x", []int16{100, 200, 300, 400, 500, 600}, 1, 48000, 16000, 2},
		{"stereo upsample 2x", []int16{10, 20, 30, 40}, 2, 22050, 44100, 8},
		{"zero rate", []int16{1, 2}, 1, 0, 44100, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bytesToSamples(audio.Resample16(samplesToBytes(tt.in), tt.channels, tt.src, tt.dst))
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0] != tt.in[0] {
				t.Errorf("first sample = %d, want %d", got[0], tt.in[0])
			}
		})
	}
}

func TestResample16_StereoKeepsChannelsApart(t *testing.T) {
	// L is constant 1000, R is constant -1000.
	in := samplesToBytes([]int16{1000, -1000, 1000, -1000})
	got := bytesToSamples(audio.Resample16(in, 2, 22050, 44100))
	for i, s := range got {
		want := int16(1000)
		if i%2 == 1 {
			want = -1000
		}
		if s != want {
			t.Fatalf("sample %d = %d, want %d", i, s, want)
		}
	}
}

func TestToFormat_MonoToStereo(t *testing.T) {
	src := audio.Format{SampleRate: 44100, Channels: 1}
	dst := audio.Format{SampleRate: 44100, Channels: 2}
	got := bytesToSamples(audio.ToFormat(samplesToBytes([]int16{5, 6}), src, dst))
	if want := []int16{5, 5, 6, 6}; !slices.Equal(got, want) {
		t.Errorf("ToFormat = %v, want %v", got, want)
	}
}

func TestDrain(t *testing.T) {
	ch := make(chan []byte, 3)
	ch <- []byte{1}
	ch <- []byte{2}
	close(ch)
	audio.Drain(ch)
	if _, ok := <-ch; ok {
		t.Error("channel still has values after Drain")
	}
}
