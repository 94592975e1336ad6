// Command clipgen renders the pre-recorded praise, encouragement and word
// clips with ElevenLabs and writes the word manifest next to them.
//
// Usage:
//
//	ELEVENLABS_API_KEY=... clipgen [--out public/audio] [--words-only | --feedback-only]
//
// The output may be a directory or s3://bucket/prefix. Existing clips are
// skipped unless --force is given.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MrWong99/littlewords/internal/clipgen"
	"github.com/MrWong99/littlewords/internal/config"
	"github.com/MrWong99/littlewords/pkg/provider/tts/elevenlabs"
	"github.com/MrWong99/littlewords/pkg/storage"
)

type flags struct {
	voice        string
	model        string
	out          string
	wordsOnly    bool
	feedbackOnly bool
	force        bool
	rps          float64
	concurrency  int
	debug        bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var f flags
	cmd := &cobra.Command{
		Use:           "clipgen",
		Short:         "Generate the app's pre-recorded audio clips",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(*cobra.Command, []string) error {
			if f.wordsOnly && f.feedbackOnly {
				return errors.New("--words-only and --feedback-only are mutually exclusive")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return generate(cmd.Context(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.voice, "voice", clipgen.DefaultVoice, "ElevenLabs voice ID")
	fl.StringVar(&f.model, "model", clipgen.DefaultModel, "ElevenLabs model ID")
	fl.StringVarP(&f.out, "out", "o", config.DefaultAssets, "output directory or s3://bucket/prefix")
	fl.BoolVar(&f.wordsOnly, "words-only", false, "render only the learning word clips and manifest")
	fl.BoolVar(&f.feedbackOnly, "feedback-only", false, "render only praise and encouragement clips")
	fl.BoolVarP(&f.force, "force", "f", false, "re-render clips that already exist")
	fl.Float64Var(&f.rps, "rps", clipgen.DefaultRPS, "maximum API requests per second")
	fl.IntVarP(&f.concurrency, "concurrency", "c", clipgen.DefaultConcurrency, "clips rendered at once")
	fl.BoolVar(&f.debug, "debug", false, "log skipped clips")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		var apiErr *elevenlabs.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "ElevenLabs API error %d: %s\n", apiErr.StatusCode, apiErr.Body)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func generate(ctx context.Context, f flags) error {
	level := log.InfoLevel
	if f.debug {
		level = log.DebugLevel
	}
	logger := slog.New(log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           level,
		Prefix:          "clipgen",
	}))
	slog.SetDefault(logger)

	secrets, err := config.LoadSecrets()
	if err != nil {
		return err
	}
	if secrets.ElevenLabsAPIKey == "" {
		return errors.New("ELEVENLABS_API_KEY is not set")
	}

	store, err := storage.Open(ctx, f.out, secrets.S3)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	conv, err := elevenlabs.New(secrets.ElevenLabsAPIKey, elevenlabs.WithModel(f.model))
	if err != nil {
		return err
	}

	opts := clipgen.Options{
		VoiceID:     f.voice,
		ModelID:     f.model,
		Feedback:    !f.wordsOnly,
		Words:       !f.feedbackOnly,
		Force:       f.force,
		RPS:         f.rps,
		Concurrency: f.concurrency,
	}
	logger.Info("generating clips",
		"out", f.out,
		"voice", opts.VoiceID,
		"model", opts.ModelID,
		"stability", clipgen.BaseStability(opts.ModelID),
		"feedback", opts.Feedback,
		"words", opts.Words,
	)

	start := time.Now()
	sum, err := clipgen.New(conv, store, opts, clipgen.WithLogger(logger)).Run(ctx)
	if err != nil {
		logger.Error("generation stopped", "summary", sum.String())
		return err
	}
	logger.Info("done", "summary", sum.String(), "manifest_keys", sum.ManifestKeys, "took", time.Since(start).Round(time.Millisecond))
	return nil
}
