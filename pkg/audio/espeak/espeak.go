// Package espeak speaks through the espeak-ng (or classic espeak) command
// line tool. It is the on-device voice for desktop builds: no network, no
// API key, and every voice it lists is Local.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/MrWong99/littlewords/pkg/audio"
)

// ErrNotInstalled is returned by [Find] when neither binary is on PATH.
var ErrNotInstalled = errors.New("espeak: install espeak-ng or espeak")

const (
	baseWPM   = 175
	basePitch = 50
)

// Synthesizer is an [audio.Synthesizer] backed by an espeak binary.
type Synthesizer struct {
	bin string
}

var _ audio.Synthesizer = (*Synthesizer)(nil)

// Find locates espeak-ng, then espeak, on PATH.
func Find() (*Synthesizer, error) {
	for _, name := range []string{"espeak-ng", "espeak"} {
		if p, err := exec.LookPath(name); err == nil {
			return New(p), nil
		}
	}
	return nil, ErrNotInstalled
}

// New returns a Synthesizer running the binary at path.
func New(path string) *Synthesizer {
	return &Synthesizer{bin: path}
}

// Name implements [audio.Synthesizer].
func (s *Synthesizer) Name() string {
	return "espeak"
}

// Voices implements [audio.Synthesizer] by parsing `espeak --voices`.
func (s *Synthesizer) Voices(ctx context.Context) ([]audio.Voice, error) {
	out, err := exec.CommandContext(ctx, s.bin, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("espeak: list voices: %w", err)
	}
	return parseVoices(out), nil
}

// parseVoices reads the --voices table:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 2  en-us           --/M      English_(America)  gmw/en-US     (en 2)
func parseVoices(out []byte) []audio.Voice {
	var voices []audio.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 4 || f[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(f[0]); err != nil {
			continue
		}
		voices = append(voices, audio.Voice{
			ID:       f[1],
			Name:     strings.ReplaceAll(f[3], "_", " "),
			Language: f[1],
			Local:    true,
			Default:  f[1] == "en",
		})
	}
	return voices
}

// Speak implements [audio.Synthesizer]. Cancelling ctx kills the process.
func (s *Synthesizer) Speak(ctx context.Context, u audio.Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, s.bin, args(u)...)
	cmd.WaitDelay = time.Second
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("espeak: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// args maps an utterance to command line flags. Rate and pitch are
// relative to espeak's defaults of 175 wpm and pitch 50.
func args(u audio.Utterance) []string {
	a := []string{
		"-s", strconv.Itoa(scale(baseWPM, u.Rate, 80, 450)),
		"-p", strconv.Itoa(scale(basePitch, u.Pitch, 0, 99)),
	}
	voice := u.Voice.ID
	if voice == "" {
		voice = strings.ToLower(u.Language)
	}
	if voice != "" {
		a = append(a, "-v", voice)
	}
	return append(a, "--", u.Text)
}

func scale(base int, factor float64, lo, hi int) int {
	if factor <= 0 {
		factor = 1
	}
	return min(max(int(math.Round(float64(base)*factor)), lo), hi)
}
