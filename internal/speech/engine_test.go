package speech

import (
	"context"
	"slices"
	"testing"

	"github.com/MrWong99/littlewords/pkg/audio/mock"
)

func TestEngine_PlayClip(t *testing.T) {
	t.Parallel()

	player := &mock.Player{}
	e := NewEngine(newFakeSource(), player, nil, nil)
	e.PlayClip(context.Background(), "lion")

	if got := player.Clips(); !slices.Equal(got, []string{"words/lion.mp3"}) {
		t.Errorf("played %v, want [words/lion.mp3]", got)
	}
	if e.Active() {
		t.Error("Active after natural end")
	}
}

func TestEngine_StopThenStart(t *testing.T) {
	t.Parallel()

	dev := &mock.Device{}
	player := &mock.Player{Device: dev, Hold: true, Started: make(chan string, 4)}
	e := NewEngine(newFakeSource(), player, nil, nil)

	go e.PlayAsset(context.Background(), "words/lion.mp3")
	recv(t, player.Started)
	if !e.Active() {
		t.Fatal("Active = false while playing")
	}

	go e.PlayAsset(context.Background(), "words/tiger.mp3")
	recv(t, player.Started)
	player.Release()
	waitFor(t, "engine idle", func() bool { return !e.Active() })

	want := []string{
		"start words/lion.mp3",
		"cancel words/lion.mp3",
		"start words/tiger.mp3",
		"end words/tiger.mp3",
	}
	if got := dev.Log(); !slices.Equal(got, want) {
		t.Errorf("device log = %v, want %v", got, want)
	}
	if dev.MaxActive() != 1 {
		t.Errorf("MaxActive = %d, want 1", dev.MaxActive())
	}
}

func TestEngine_Stop(t *testing.T) {
	t.Parallel()

	player := &mock.Player{Hold: true, Started: make(chan string, 1)}
	e := NewEngine(newFakeSource(), player, nil, nil)

	e.Stop() // idle: no-op

	done := make(chan struct{})
	go func() {
		e.PlayClip(context.Background(), "lion")
		close(done)
	}()
	recv(t, player.Started)
	e.Stop()
	<-done

	calls := player.CallsSnapshot()
	if len(calls) != 1 || !calls[0].Cancelled {
		t.Errorf("calls = %+v, want one cancelled call", calls)
	}
	e.Stop()
}

func TestEngine_CancelledContextNeverStarts(t *testing.T) {
	t.Parallel()

	player := &mock.Player{}
	e := NewEngine(newFakeSource(), player, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.PlayClip(ctx, "lion")
	if n := len(player.Clips()); n != 0 {
		t.Errorf("player called %d times with a cancelled context", n)
	}
}

func TestEngine_OpenFailureResolves(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.missing["words/lion.mp3"] = true
	player := &mock.Player{}
	e := NewEngine(src, player, nil, nil)

	e.PlayClip(context.Background(), "lion")
	if n := len(player.Clips()); n != 0 {
		t.Errorf("player called %d times for a missing clip", n)
	}
	if e.Active() {
		t.Error("Active after failed open")
	}
}

func TestEngine_SynthesisNotStoppedByEngineStop(t *testing.T) {
	t.Parallel()

	out := &Output{}
	synth := &mock.Synthesizer{Hold: true, Started: make(chan string, 1)}
	f := NewFallback(synth, FallbackConfig{}, out, nil)
	e := NewEngine(newFakeSource(), &mock.Player{}, out, nil)

	done := make(chan struct{})
	go func() {
		f.SpeakSynthesized(context.Background(), "Tiger")
		close(done)
	}()
	recv(t, synth.Started)

	e.Stop()
	if !out.Busy() {
		t.Fatal("Engine.Stop cancelled synthesis")
	}
	f.Cancel()
	<-done
	if out.Busy() {
		t.Error("output busy after Fallback.Cancel")
	}
}
