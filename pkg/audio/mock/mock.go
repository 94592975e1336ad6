// Package mock provides in-memory test doubles for the interfaces of
// package audio.
//
// All mocks are safe for concurrent use. They record every call, expose
// exported fields to control results, and can hold a call open until the
// test releases it, which makes preemption observable:
//
//	dev := &mock.Device{}
//	p := &mock.Player{Device: dev, Hold: true, Started: make(chan string, 4)}
//	go p.Play(ctx, strings.NewReader("lion"))
//	<-p.Started    // "lion" is now the current sound
//	p.Release()    // let it end naturally
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/MrWong99/littlewords/pkg/audio"
)

// Device tracks what is audible across several mocks sharing it.
type Device struct {
	mu        sync.Mutex
	active    int
	maxActive int
	log       []string
}

func (d *Device) start(what string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active++
	d.maxActive = max(d.maxActive, d.active)
	d.log = append(d.log, "start "+what)
}

func (d *Device) stop(what string, cancelled bool) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active--
	verb := "end "
	if cancelled {
		verb = "cancel "
	}
	d.log = append(d.log, verb+what)
}

// MaxActive returns the highest number of sounds that were ever audible at
// the same time.
func (d *Device) MaxActive() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxActive
}

// Active returns the number of sounds audible right now.
func (d *Device) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Log returns the ordered start/end/cancel events, e.g. "start lion".
func (d *Device) Log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.log...)
}

// gate lets a test hold calls open and release them in bulk.
type gate struct {
	mu      sync.Mutex
	release chan struct{}
}

func (g *gate) wait() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.release == nil {
		g.release = make(chan struct{})
	}
	return g.release
}

func (g *gate) open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.release != nil {
		close(g.release)
	}
	g.release = nil
}

// hold blocks until release is closed or ctx is done and reports whether
// the call was cancelled. A nil release does not block.
func hold(ctx context.Context, release <-chan struct{}) bool {
	if release == nil {
		return ctx.Err() != nil
	}
	select {
	case <-ctx.Done():
		return true
	case <-release:
		return false
	}
}

// ─── Player ──────────────────────────────────────────────────────────────────

// PlayCall records one [Player.Play] invocation.
type PlayCall struct {
	// Clip is the full content read from the clip reader.
	Clip string
	// Cancelled reports whether the context ended the call.
	Cancelled bool
}

// Player is a mock [audio.Player]. The clip content doubles as its name in
// [Device] logs.
type Player struct {
	gate gate
	mu   sync.Mutex

	// Device, if set, observes start and end of every play.
	Device *Device

	// Hold makes Play block until [Player.Release] or cancellation.
	Hold bool

	// PlayErr is returned by Play when it is not cancelled.
	PlayErr error

	// Started, if non-nil, receives the clip content when playback starts.
	// Use a buffered channel.
	Started chan string

	// Calls records every call to Play in order.
	Calls []PlayCall
}

var _ audio.Player = (*Player)(nil)

// Play implements [audio.Player].
func (p *Player) Play(ctx context.Context, clip io.Reader) error {
	data, err := io.ReadAll(clip)
	if err != nil {
		return err
	}
	name := string(data)

	p.mu.Lock()
	idx := len(p.Calls)
	p.Calls = append(p.Calls, PlayCall{Clip: name})
	holdOpen, started, playErr := p.Hold, p.Started, p.PlayErr
	p.mu.Unlock()

	var release <-chan struct{}
	if holdOpen {
		release = p.gate.wait()
	}
	p.Device.start(name)
	if started != nil {
		started <- name
	}
	cancelled := hold(ctx, release)
	p.Device.stop(name, cancelled)

	p.mu.Lock()
	p.Calls[idx].Cancelled = cancelled
	p.mu.Unlock()

	if cancelled {
		return ctx.Err()
	}
	return playErr
}

// Release lets every held Play return as if the clip ended.
func (p *Player) Release() {
	p.gate.open()
}

// Clips returns the content of every played clip in call order.
func (p *Player) Clips() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Calls))
	for i, c := range p.Calls {
		out[i] = c.Clip
	}
	return out
}

// CallsSnapshot returns a copy of Calls.
func (p *Player) CallsSnapshot() []PlayCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PlayCall(nil), p.Calls...)
}

// ─── PCMPlayer ───────────────────────────────────────────────────────────────

// PCMPlayer is a mock [audio.PCMPlayer] that collects every chunk.
type PCMPlayer struct {
	mu sync.Mutex

	// PlayErr is returned after the chunk channel closes.
	PlayErr error

	// Formats records the format of every call.
	Formats []audio.Format

	// Data is the concatenation of all received chunks.
	Data []byte
}

var _ audio.PCMPlayer = (*PCMPlayer)(nil)

// PlayPCM implements [audio.PCMPlayer].
func (p *PCMPlayer) PlayPCM(ctx context.Context, format audio.Format, chunks <-chan []byte) error {
	p.mu.Lock()
	p.Formats = append(p.Formats, format)
	p.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-chunks:
			if !ok {
				return p.PlayErr
			}
			p.mu.Lock()
			p.Data = append(p.Data, c...)
			p.mu.Unlock()
		}
	}
}

// Bytes returns a copy of the collected audio.
func (p *PCMPlayer) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.Data...)
}

// ─── Synthesizer ─────────────────────────────────────────────────────────────

// SpeakCall records one [Synthesizer.Speak] invocation.
type SpeakCall struct {
	Utterance audio.Utterance
	Cancelled bool
}

// Synthesizer is a mock [audio.Synthesizer]. Utterance text doubles as its
// name in [Device] logs.
type Synthesizer struct {
	gate gate
	mu   sync.Mutex

	// NameResult is returned by Name. Defaults to "mock".
	NameResult string

	// Device, if set, observes start and end of every utterance.
	Device *Device

	// Hold makes Speak block until [Synthesizer.Release] or cancellation.
	Hold bool

	// VoicesResult and VoicesErr are returned by Voices.
	VoicesResult []audio.Voice
	VoicesErr    error

	// SpeakErr is returned by Speak when it is not cancelled.
	SpeakErr error

	// Started, if non-nil, receives the utterance text when speech starts.
	Started chan string

	// Calls records every call to Speak in order.
	Calls []SpeakCall

	// CallCountVoices counts calls to Voices.
	CallCountVoices int
}

var _ audio.Synthesizer = (*Synthesizer)(nil)

// Name implements [audio.Synthesizer].
func (s *Synthesizer) Name() string {
	if s.NameResult == "" {
		return "mock"
	}
	return s.NameResult
}

// Voices implements [audio.Synthesizer].
func (s *Synthesizer) Voices(_ context.Context) ([]audio.Voice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CallCountVoices++
	return s.VoicesResult, s.VoicesErr
}

// Speak implements [audio.Synthesizer].
func (s *Synthesizer) Speak(ctx context.Context, u audio.Utterance) error {
	s.mu.Lock()
	idx := len(s.Calls)
	s.Calls = append(s.Calls, SpeakCall{Utterance: u})
	holdOpen, started, speakErr := s.Hold, s.Started, s.SpeakErr
	s.mu.Unlock()

	var release <-chan struct{}
	if holdOpen {
		release = s.gate.wait()
	}
	s.Device.start(u.Text)
	if started != nil {
		started <- u.Text
	}
	cancelled := hold(ctx, release)
	s.Device.stop(u.Text, cancelled)

	s.mu.Lock()
	s.Calls[idx].Cancelled = cancelled
	s.mu.Unlock()

	if cancelled {
		return ctx.Err()
	}
	return speakErr
}

// Release lets every held Speak return as if speech ended.
func (s *Synthesizer) Release() {
	s.gate.open()
}

// Texts returns the text of every utterance in call order.
func (s *Synthesizer) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		out[i] = c.Utterance.Text
	}
	return out
}

// CallsSnapshot returns a copy of Calls.
func (s *Synthesizer) CallsSnapshot() []SpeakCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SpeakCall(nil), s.Calls...)
}
