package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrWong99/littlewords/internal/catalog"
)

const learnLong = `Without a category, list the categories. With one, speak its items in order.
--difficulty limits the items to the number of options a quiz round shows.`

func newLearnCmd(a *app) *cobra.Command {
	var (
		difficulty string
		ask        bool
	)
	cmd := &cobra.Command{
		Use:   "learn [category]",
		Short: "Speak the items of a learning category",
		Long:  learnLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listCategories()
			}
			c, ok := catalog.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown category %q", args[0])
			}
			names, err := learnNames(c, difficulty)
			if err != nil {
				return err
			}
			return a.learn(cmd.Context(), names, ask)
		},
	}
	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "", "easy, medium or hard (default: all items)")
	cmd.Flags().BoolVar(&ask, "ask", false, "follow the items with the question for the first one")
	return cmd
}

func listCategories() error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tITEMS")
	for _, c := range catalog.Categories() {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, c.Title, len(c.Items))
	}
	return tw.Flush()
}

// learnNames returns the item names of c, cut to the option count of
// difficulty when one is given.
func learnNames(c catalog.Category, difficulty string) ([]string, error) {
	n := len(c.Items)
	if difficulty != "" {
		d, err := catalog.ParseDifficulty(difficulty)
		if err != nil {
			return nil, err
		}
		n = d.OptionCount(n)
	}
	names := make([]string, n)
	for i, it := range c.Items[:n] {
		names[i] = it.Name
	}
	return names, nil
}

func (a *app) learn(ctx context.Context, names []string, ask bool) error {
	st, err := a.newSpeech(ctx)
	if err != nil {
		return err
	}
	defer st.svc.Close()

	texts := names
	if ask && len(names) > 0 {
		texts = append(texts[:len(texts):len(texts)], catalog.Question(names[0]))
	}
	for _, t := range texts {
		fmt.Println(t)
	}
	st.svc.SpeakSequence(texts)
	return ignoreCanceled(st.svc.Wait(ctx))
}
