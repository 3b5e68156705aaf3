// Command vid-picker: pick one video from a library into the app's staging directory.
//
//	pick     One session: authorize, choose on the terminal, copy, then play or print the path
//	serve    Long-running host: SIGUSR1 or POST /pick triggers a session; /metrics for Prometheus
//	check    Verify the staging dir is writable and the library has videos
//	history  Show recent delivered outcomes (needs VIDPICKER_HISTORY_DB)
//	list     List the library's videos
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/snapetech/vidpicker/internal/config"
	"github.com/snapetech/vidpicker/internal/health"
	"github.com/snapetech/vidpicker/internal/history"
	"github.com/snapetech/vidpicker/internal/library"
	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/playback"
)

func main() {
	pickCmd := flag.NewFlagSet("pick", flag.ExitOnError)
	pickPrint := pickCmd.Bool("print", false, "Print the delivered path instead of running VIDPICKER_PLAYER")
	pickLibrary := pickCmd.String("library", "", "Library dir (default: VIDPICKER_LIBRARY)")

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	serveAddr := serveCmd.String("addr", "", "Listen address for /metrics and /pick (default: VIDPICKER_METRICS_ADDR)")
	serveLibrary := serveCmd.String("library", "", "Library dir (default: VIDPICKER_LIBRARY)")

	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	checkLibrary := checkCmd.String("library", "", "Library dir (default: VIDPICKER_LIBRARY)")

	historyCmd := flag.NewFlagSet("history", flag.ExitOnError)
	historyN := historyCmd.Int("n", 20, "Number of entries")
	historyDB := historyCmd.String("db", "", "History DB (default: VIDPICKER_HISTORY_DB)")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listLibrary := listCmd.String("library", "", "Library dir (default: VIDPICKER_LIBRARY)")

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <pick|serve|check|history|list> [flags]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  pick     Pick one video, copy it to staging, play it\n")
		fmt.Fprintf(os.Stderr, "  serve    Wait for triggers (SIGUSR1, POST /pick) and serve /metrics\n")
		fmt.Fprintf(os.Stderr, "  check    Verify staging dir and library\n")
		fmt.Fprintf(os.Stderr, "  history  Show recent picks\n")
		fmt.Fprintf(os.Stderr, "  list     List library videos\n")
		os.Exit(1)
	}

	_ = config.LoadEnvFile(".env")
	cfg := config.Load()
	xlog.Configure(xlog.Config{})
	logger := xlog.WithComponent("cli")

	switch os.Args[1] {
	case "pick":
		_ = pickCmd.Parse(os.Args[2:])
		override(&cfg.LibraryDir, *pickLibrary)
		if *pickPrint {
			cfg.Player = ""
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runPick(ctx, cfg); err != nil {
			logger.Error().Err(err).Msg("pick failed")
			os.Exit(1)
		}

	case "serve":
		_ = serveCmd.Parse(os.Args[2:])
		override(&cfg.LibraryDir, *serveLibrary)
		override(&cfg.MetricsAddr, *serveAddr)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := runServe(ctx, cfg); err != nil {
			logger.Error().Err(err).Msg("serve failed")
			os.Exit(1)
		}

	case "check":
		_ = checkCmd.Parse(os.Args[2:])
		override(&cfg.LibraryDir, *checkLibrary)
		if err := runCheck(context.Background(), cfg, os.Stdout); err != nil {
			logger.Error().Err(err).Msg("check failed")
			os.Exit(1)
		}

	case "history":
		_ = historyCmd.Parse(os.Args[2:])
		override(&cfg.HistoryDB, *historyDB)
		if err := runHistory(context.Background(), cfg, *historyN); err != nil {
			logger.Error().Err(err).Msg("history failed")
			os.Exit(1)
		}

	case "list":
		_ = listCmd.Parse(os.Args[2:])
		override(&cfg.LibraryDir, *listLibrary)
		if err := runList(context.Background(), cfg); err != nil {
			logger.Error().Err(err).Msg("list failed")
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func override(dst *string, flagVal string) {
	if flagVal != "" {
		*dst = flagVal
	}
}

func runPick(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(cfg, library.NewConsole(os.Stdin, os.Stdout), nil)
	if err != nil {
		return err
	}
	defer a.Close()
	out, err := a.sess.Run(ctx)
	if err != nil {
		return err
	}
	return playback.Handle(ctx, a.player, out, xlog.WithComponent("playback"))
}

func runCheck(ctx context.Context, cfg *config.Config, w io.Writer) error {
	alloc := stagingAllocator(cfg)
	if err := health.CheckStaging(alloc); err != nil {
		return err
	}
	fmt.Fprintf(w, "staging: %s OK\n", alloc.StagingDir())
	n, err := health.CheckLibrary(ctx, &library.Library{Dir: cfg.LibraryDir})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "library: %s OK (%d videos)\n", cfg.LibraryDir, n)
	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		store.Close()
		fmt.Fprintf(w, "history: %s OK\n", cfg.HistoryDB)
	}
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, n int) error {
	if cfg.HistoryDB == "" {
		return errors.New("no history DB configured (set VIDPICKER_HISTORY_DB or -db)")
	}
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()
	entries, err := store.Recent(ctx, n)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tOUTCOME\tKIND\tPATH\tSESSION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", humanize.Time(e.At), e.Outcome, e.ErrorKind, e.Path, e.SessionID)
	}
	return tw.Flush()
}

func runList(ctx context.Context, cfg *config.Config) error {
	lib := &library.Library{Dir: cfg.LibraryDir}
	assets, err := lib.Assets(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VIDEO\tSIZE\tMODIFIED\tID")
	for _, a := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.Rel, humanize.Bytes(uint64(a.Size)), humanize.Time(a.ModTime), a.ID)
	}
	return tw.Flush()
}
