package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/notice-registry/pkg/api"
	"github.com/hazyhaar/notice-registry/pkg/session"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "listen address (default :8421)")
	f.Bool("normalize-dates", true, "rewrite parseable dates as DD/MM/YYYY")
	f.Float64("rate-per-second", 0, "requests per second per client, 0 disables (default from config)")
	f.Int("rate-burst", 0, "burst per client (default from config)")
	return cmd
}

// swapHandler serves the current router and lets a reload replace it.
type swapHandler struct {
	h atomic.Pointer[http.Handler]
}

func (s *swapHandler) Store(h http.Handler) { s.h.Store(&h) }

func (s *swapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.h.Load()).ServeHTTP(w, r)
}

func (a *app) serve(parent context.Context) error {
	logger := a.logger

	store, err := session.OpenStore(a.cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	// Shared by every router so a reload keeps the per-client budgets.
	var limiter *api.ClientLimiter
	if a.cfg.RatePerSecond > 0 {
		limiter = api.NewClientLimiter(a.cfg.RatePerSecond, a.cfg.RateBurst, 0)
	}

	build := func() (http.Handler, error) {
		p, err := a.cfg.Pipeline(logger)
		if err != nil {
			return nil, err
		}
		return api.NewRouter(api.Deps{
			Pipeline: p,
			Dates:    a.cfg.Normalizer(),
			Sessions: store,
			Logger:   logger,
			Limiter:  limiter,
		}), nil
	}

	router, err := build()
	if err != nil {
		return err
	}
	handler := &swapHandler{}
	handler.Store(router)

	reload := func(reason string) {
		logger.Info("reloading vocabulary", "reason", reason, "path", a.cfg.Vocabulary)
		h, err := build()
		if err != nil {
			logger.Error("reload failed", "error", err)
			return
		}
		handler.Store(h)
		logger.Info("vocabulary reloaded")
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// SIGHUP or a vocabulary file change: hot reload.
	// SIGINT/SIGTERM: graceful shutdown.
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-sighup:
				reload("SIGHUP")
			}
		}
	}()

	if a.cfg.Vocabulary != "" {
		if err := watchFile(ctx, a.cfg.Vocabulary, reload); err != nil {
			logger.Warn("vocabulary watch disabled", "error", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("notices listening", "addr", a.cfg.Addr, "db", a.cfg.DB, "normalize_dates", a.cfg.NormalizeDates)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// watchFile calls onChange when path is written or replaced. The parent
// directory is watched so editors that rename over the file are seen.
func watchFile(ctx context.Context, path string, onChange func(reason string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return err
	}
	target := filepath.Clean(path)

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == target && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					onChange("file " + ev.Op.String())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("vocabulary watch error", "error", err)
			}
		}
	}()
	return nil
}
