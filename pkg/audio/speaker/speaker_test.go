package speaker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MrWong99/littlewords/pkg/audio"
)

func TestPump_ConvertsToDeviceFormat(t *testing.T) {
	chunks := make(chan []byte, 2)
	chunks <- []byte{1, 0}
	chunks <- []byte{2, 0}
	close(chunks)

	var buf bytes.Buffer
	if err := pump(context.Background(), chunks, audio.Format{SampleRate: 44100, Channels: 1}, &buf); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 0, 1, 0, 2, 0, 2, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %v, want %v", buf.Bytes(), want)
	}
}

func TestPump_CancelDrainsProducer(t *testing.T) {
	chunks := make(chan []byte)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(chunks)
		for range 3 {
			chunks <- []byte{0, 0}
		}
		close(done)
	}()

	err := pump(ctx, chunks, Format, &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	<-done
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPump_WriteError(t *testing.T) {
	chunks := make(chan []byte, 1)
	chunks <- []byte{0, 0}
	close(chunks)
	if err := pump(context.Background(), chunks, Format, failWriter{}); err == nil {
		t.Fatal("expected write error")
	}
}

func TestDecodeMP3_RejectsGarbage(t *testing.T) {
	if _, err := decodeMP3(strings.NewReader("definitely not an mp3")); err == nil {
		t.Fatal("expected decode error")
	}
}
