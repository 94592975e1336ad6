package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/littlewords/internal/config"
	"github.com/MrWong99/littlewords/internal/health"
	"github.com/MrWong99/littlewords/internal/observe"
	"github.com/MrWong99/littlewords/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve generated clips, health and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	shutdownOTel, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "littlewords"})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			a.logger.Warn("telemetry shutdown", "err", err)
		}
	}()
	m := observe.DefaultMetrics()

	store, err := storage.Open(ctx, a.cfg.Server.Assets, a.cfg.S3(a.secrets.S3))
	if err != nil {
		return fmt.Errorf("open assets: %w", err)
	}

	if w := a.watch(); w != nil {
		defer w.Stop()
	}

	mux := http.NewServeMux()
	mux.Handle("GET /audio/", gzhttp.GzipHandler(http.StripPrefix("/audio/", assetHandler(store))))
	mux.Handle("GET /metrics", observe.MetricsHandler())
	health.New(
		health.StorageChecker(store),
		health.ManifestChecker(store),
	).Register(mux)

	srv := &http.Server{
		Addr:              a.cfg.Server.ListenAddr,
		Handler:           observe.Middleware(m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server listening", "addr", srv.Addr, "assets", a.cfg.Server.Assets, "tls", a.cfg.Server.TLS != nil)
		var err error
		if tls := a.cfg.Server.TLS; tls != nil {
			err = srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received, stopping")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("goodbye")
	return nil
}

// watch starts hot reload of the config file. Only the log level applies
// live; other changes are reported as needing a restart. It returns nil
// when there is no file to watch.
func (a *app) watch() *config.Watcher {
	if _, err := os.Stat(a.configPath); err != nil {
		return nil
	}
	w, err := config.NewWatcher(a.configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			a.logger.SetLevel(logLevel(d.NewLogLevel))
			a.logger.Info("log level changed", "level", d.NewLogLevel)
		}
		if d.RestartRequired() {
			a.logger.Warn("config changed, restart required to apply",
				"assets", d.AssetsChanged, "speech", d.SpeechChanged, "synth", d.SynthChanged)
		}
	}, config.WithSecrets(a.secrets))
	if err != nil {
		a.logger.Warn("config hot reload disabled", "err", err)
		return nil
	}
	return w
}

// assetHandler serves files from store. Paths are relative to the store
// root; directories are not listed.
func assetHandler(store storage.FileStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if name == "" || strings.HasSuffix(name, "/") {
			http.NotFound(w, r)
			return
		}
		rc, err := store.Read(r.Context(), name)
		switch {
		case errors.Is(err, os.ErrNotExist):
			http.NotFound(w, r)
			return
		case err != nil:
			observe.Logger(r.Context()).Warn("asset read failed", "path", name, "err", err)
			http.Error(w, "asset unavailable", http.StatusBadGateway)
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", storage.ContentType(name))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		if _, err := io.Copy(w, rc); err != nil {
			observe.Logger(r.Context()).Debug("asset write aborted", "path", name, "err", err)
		}
	})
}
