package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	keyCtrlC = 0x03
	keyCtrlD = 0x04
	keyEsc   = 0x1b
)

func newTypeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "type",
		Short: "Typing practice: speak every letter or digit key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.typing(cmd.Context())
		},
	}
}

func (a *app) typing(ctx context.Context) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("type needs an interactive terminal")
	}

	st, err := a.newSpeech(ctx)
	if err != nil {
		return err
	}
	defer st.svc.Close()

	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw terminal: %w", err)
	}
	defer term.Restore(fd, old)

	fmt.Fprint(os.Stdout, "Type letters or numbers. Esc quits.\r\n")

	keys := make(chan byte)
	go readKeys(os.Stdin, keys)

	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			text, quit := keyText(k)
			if quit {
				fmt.Fprint(os.Stdout, "\r\n")
				return nil
			}
			if text == "" {
				continue
			}
			fmt.Fprint(os.Stdout, text)
			st.svc.Speak(text)
		}
	}
}

// readKeys sends every key read from r until it fails. Escape sequences
// (arrow and function keys) arrive in one read and are dropped whole, so
// only a lone Esc is sent. The goroutine stays blocked in Read after the
// caller returns; the process exits soon after.
func readKeys(r io.Reader, keys chan<- byte) {
	defer close(keys)
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if b == keyEsc && br.Buffered() > 0 {
			_, _ = br.Discard(br.Buffered())
			continue
		}
		keys <- b
	}
}

// keyText maps a raw key to the text spoken for it. Letters are spoken
// upper-case, so "a" plays the clip for "A". quit is set for Esc, Ctrl-C
// and Ctrl-D.
func keyText(k byte) (text string, quit bool) {
	switch {
	case k == keyEsc || k == keyCtrlC || k == keyCtrlD:
		return "", true
	case k >= 'a' && k <= 'z', k >= 'A' && k <= 'Z', k >= '0' && k <= '9':
		return strings.ToUpper(string(rune(k))), false
	}
	return "", false
}
