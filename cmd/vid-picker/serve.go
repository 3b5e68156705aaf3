package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/snapetech/vidpicker/internal/config"
	"github.com/snapetech/vidpicker/internal/library"
	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/metrics"
	"github.com/snapetech/vidpicker/internal/pick"
	"github.com/snapetech/vidpicker/internal/playback"
	"github.com/snapetech/vidpicker/internal/session"
)

type starter interface {
	Start(ctx context.Context, completion func(pick.Outcome)) error
}

// trigger starts a session whose outcome is queued on outcomes. The completion
// runs on the main queue, so it only hands off; playback happens elsewhere.
func trigger(ctx context.Context, s starter, outcomes chan<- pick.Outcome) error {
	return s.Start(ctx, func(out pick.Outcome) {
		select {
		case outcomes <- out:
		default:
			logger := xlog.WithComponent("serve")
			logger.Warn().Str(xlog.FieldOutcome, out.Kind.String()).Msg("outcome dropped: playback backlog full")
		}
	})
}

// newMux serves /metrics, /healthz and POST /pick.
func newMux(ctx context.Context, s starter, outcomes chan<- pick.Outcome) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/pick", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// The session outlives the request.
		err := trigger(ctx, s, outcomes)
		switch {
		case err == nil:
			w.WriteHeader(http.StatusAccepted)
		case errors.Is(err, pick.ErrSessionInFlight):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, session.ErrThrottled):
			http.Error(w, err.Error(), http.StatusTooManyRequests)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	return mux
}

func runServe(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, library.NewConsole(os.Stdin, os.Stdout), cfg.Limiter())
	if err != nil {
		return err
	}
	defer a.Close()
	logger := xlog.WithComponent("serve")
	outcomes := make(chan pick.Outcome, 4)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           newMux(ctx, a.sess, outcomes),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		usr1 := make(chan os.Signal, 1)
		signal.Notify(usr1, syscall.SIGUSR1)
		defer signal.Stop(usr1)
		logger.Info().Int("pid", os.Getpid()).Msg("send SIGUSR1 to pick a video")
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-usr1:
				if err := trigger(ctx, a.sess, outcomes); err != nil {
					logger.Warn().Err(err).Msg("pick trigger refused")
				}
			}
		}
	})

	g.Go(func() error {
		return playOutcomes(ctx, a.player, outcomes, xlog.WithComponent("playback"))
	})

	return g.Wait()
}

// playOutcomes renders delivered outcomes until ctx ends. Player errors are logged, not fatal.
func playOutcomes(ctx context.Context, p playback.Player, outcomes <-chan pick.Outcome, logger zerolog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case out := <-outcomes:
			_ = playback.Handle(ctx, p, out, logger)
		}
	}
}
