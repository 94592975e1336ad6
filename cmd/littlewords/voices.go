package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrWong99/littlewords/internal/health"
	"github.com/MrWong99/littlewords/internal/speech"
)

func newVoicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List synthesis voices and the one speech would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.voices(cmd.Context())
		},
	}
}

func (a *app) voices(ctx context.Context) error {
	st, err := a.newSpeech(ctx)
	if err != nil {
		return err
	}
	defer st.svc.Close()
	if st.chain == nil {
		return errors.New("no synthesis engine available")
	}

	voices, err := st.chain.Voices(ctx)
	if err != nil {
		return fmt.Errorf("list voices: %w", err)
	}
	chosen := speech.SelectVoice(voices, a.cfg.Speech.Language, a.cfg.Speech.Voice)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\tLANGUAGE\tLOCAL")
	for _, v := range voices {
		mark := ""
		if v == chosen {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", mark, v.ID, v.Name, v.Language, v.Local)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	check := health.SynthChecker(st.chain.States)
	if err := check.Check(ctx); err != nil {
		fmt.Printf("%s: %v\n", check.Name, err)
		return nil
	}
	fmt.Printf("%s: ok (%s)\n", check.Name, st.chain.Name())
	return nil
}
