// Command littlewords is the speech runtime of the toddler learning app.
//
// Subcommands:
//
//	serve          serve the generated clips, health and metrics over HTTP
//	say            speak words or a sequence through the device speaker
//	type           speak every letter or digit typed on the keyboard
//	quiz-feedback  play praise or encouragement for a quiz answer
//	voices         list synthesis voices and engine health
//	learn          list categories or speak the items of one
//
// Usage:
//
//	littlewords --config config.yaml serve
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/MrWong99/littlewords/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	cfg        *config.Config
	secrets    config.Secrets
	logger     *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "littlewords",
		Short:         "Speech runtime for the littlewords learning app",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "path to the YAML configuration file")

	root.AddCommand(
		newServeCmd(a),
		newSayCmd(a),
		newTypeCmd(a),
		newFeedbackCmd(a),
		newVoicesCmd(a),
		newLearnCmd(a),
	)
	return root
}

// load reads the configuration and installs the logger. A missing config
// file is not an error; every setting has a default.
func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	missing := errors.Is(err, os.ErrNotExist)
	switch {
	case missing:
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	case err != nil:
		return fmt.Errorf("load config: %w", err)
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		return err
	}
	cfg.ApplySecrets(secrets)

	a.cfg = cfg
	a.secrets = secrets
	a.logger = newLogger(cfg.Server.LogLevel)
	slog.SetDefault(slog.New(a.logger))
	if missing {
		a.logger.Info("config file not found, using defaults", "path", a.configPath)
	}
	return nil
}

// newLogger returns a charmbracelet logger at level. It doubles as the
// slog handler so library code logging through slog shares its output.
func newLogger(level config.LogLevel) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           logLevel(level),
	})
}

func logLevel(level config.LogLevel) log.Level {
	switch level {
	case config.LogDebug:
		return log.DebugLevel
	case config.LogWarn:
		return log.WarnLevel
	case config.LogError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
