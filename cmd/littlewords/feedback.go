package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrWong99/littlewords/internal/feedback"
)

const feedbackExample = `  littlewords quiz-feedback --correct 4
  littlewords quiz-feedback --wrong Lion,Tiger`

func newFeedbackCmd(a *app) *cobra.Command {
	var (
		correct int
		wrong   []string
	)
	cmd := &cobra.Command{
		Use:     "quiz-feedback",
		Short:   "Play praise or encouragement for a quiz answer",
		Example: feedbackExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case cmd.Flags().Changed("correct") == cmd.Flags().Changed("wrong"):
				return errors.New("exactly one of --correct or --wrong is required")
			case len(wrong) > 0 && len(wrong) != 2:
				return errors.New("--wrong takes PICKED,TARGET")
			case correct < 0:
				return errors.New("--correct must not be negative")
			}
			return a.feedback(cmd.Context(), correct, wrong)
		},
	}
	cmd.Flags().IntVar(&correct, "correct", 0, "praise a right answer; the running count of correct answers")
	cmd.Flags().StringSliceVar(&wrong, "wrong", nil, "encourage after a wrong answer: PICKED,TARGET")
	return cmd
}

func (a *app) feedback(ctx context.Context, correct int, wrong []string) error {
	st, err := a.newSpeech(ctx)
	if err != nil {
		return err
	}
	defer st.svc.Close()

	ann := feedback.NewAnnouncer(st.svc, nil, feedback.WithProber(st.source))
	if !ann.Probe(ctx) {
		a.logger.Info("feedback clips not found, speaking phrase text")
	}

	var pick feedback.Pick
	if len(wrong) == 2 {
		pick = ann.Wrong(wrong[0], wrong[1])
	} else {
		pick = ann.Correct(correct)
	}
	fmt.Printf("%s [%s #%d]\n", pick.Text, pick.Pool, pick.Index)
	return ignoreCanceled(st.svc.Wait(ctx))
}
