package main

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/snapetech/vidpicker/internal/authz"
	"github.com/snapetech/vidpicker/internal/cache"
	"github.com/snapetech/vidpicker/internal/config"
	"github.com/snapetech/vidpicker/internal/history"
	"github.com/snapetech/vidpicker/internal/library"
	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/materializer"
	"github.com/snapetech/vidpicker/internal/playback"
	"github.com/snapetech/vidpicker/internal/session"
)

const closeTimeout = 10 * time.Second

// app is a wired pick session with the terminal library as its collaborators.
type app struct {
	sess   *session.Session
	main   *session.MainQueue
	hist   *history.Store
	player playback.Player
}

func newApp(cfg *config.Config, console *library.Console, limiter *rate.Limiter) (*app, error) {
	a := &app{player: newPlayer(cfg, os.Stdout)}
	opts := []session.Option{session.WithAuthOptions(authz.Options{AllowLimited: cfg.AllowLimited})}
	if limiter != nil {
		opts = append(opts, session.WithLimiter(limiter))
	}
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return nil, err
		}
		a.hist = store
		opts = append(opts, session.WithRecorder(store))
	}

	lib := &library.Library{Dir: cfg.LibraryDir, TransientDir: cfg.TransientDir}
	a.main = session.NewMainQueue()
	a.sess = session.New(session.Deps{
		Authorizer: &library.Authorizer{Status: cfg.AuthStatus, Console: console},
		Presenter:  &library.TermPresenter{Library: lib, Console: console},
		Allocator:  stagingAllocator(cfg),
		Copier:     &materializer.Copier{},
		Main:       a.main,
	}, opts...)
	return a, nil
}

// Close waits for the run in flight to deliver, drains the main queue, then
// closes history, so a run cut short by shutdown still gets recorded.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := a.sess.Wait(ctx); err != nil {
		logger := xlog.WithComponent("cli")
		logger.Warn().Err(err).Msg("pick still in flight at shutdown")
	}
	a.main.Close()
	if a.hist != nil {
		a.hist.Close()
	}
}

func stagingAllocator(cfg *config.Config) cache.Allocator {
	return cache.Allocator{Root: cfg.DocumentsDir, Subdir: cfg.StagingSub}
}

func newPlayer(cfg *config.Config, w io.Writer) playback.Player {
	bin, args := cfg.PlayerArgv()
	if bin == "" {
		return playback.Print{W: w}
	}
	return playback.Command{Bin: bin, Args: args, Stdout: w, Stderr: os.Stderr}
}
