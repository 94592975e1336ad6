package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const sayLong = `Speak each argument in turn, or each line of stdin when no argument is given.
Words with a generated clip play the clip; everything else is synthesized.`

func newSayCmd(a *app) *cobra.Command {
	var sequence bool
	cmd := &cobra.Command{
		Use:   "say [text...]",
		Short: "Speak text through the device speaker",
		Long:  sayLong,
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if len(texts) == 0 {
				var err error
				if texts, err = readLines(os.Stdin); err != nil {
					return err
				}
			}
			return a.say(cmd.Context(), texts, sequence)
		},
	}
	cmd.Flags().BoolVarP(&sequence, "sequence", "s", false, "speak all texts as one sequence")
	return cmd
}

func (a *app) say(ctx context.Context, texts []string, sequence bool) error {
	st, err := a.newSpeech(ctx)
	if err != nil {
		return err
	}
	defer st.svc.Close()

	if sequence {
		st.svc.SpeakSequence(texts)
		return ignoreCanceled(st.svc.Wait(ctx))
	}
	for _, t := range texts {
		st.svc.Speak(t)
		if err := st.svc.Wait(ctx); err != nil {
			return ignoreCanceled(err)
		}
	}
	return nil
}

// ignoreCanceled treats an interrupt as a normal exit.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			lines = append(lines, l)
		}
	}
	return lines, sc.Err()
}
