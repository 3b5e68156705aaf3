// Package provider resolves a selection into the provider's transient file and
// hands it downstream while the provider still guarantees it exists.
package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/snapetech/vidpicker/internal/fsutil"
	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/pick"
)

// Consumer receives the transient file inside the provider callback. It must
// finish with the file before returning.
type Consumer func(ctx context.Context, file pick.TransientFile) pick.Outcome

// Resolver negotiates a file representation for a selection.
type Resolver struct{}

const (
	loadPending = iota
	loadClaimed
	loadAbandoned
)

// Resolve requests the first declared type identifier of sel and passes the
// resulting path to consume before the provider callback returns.
//
// No declared identifier and a provider success without a path both resolve to
// Cancelled rather than Failure. A provider error is ProviderLoadFailure. If ctx
// ends before the provider calls back, the late callback is ignored.
func (r *Resolver) Resolve(ctx context.Context, sel pick.Selection, consume Consumer) pick.Outcome {
	logger := xlog.FromContext(ctx, "provider").With().Str(xlog.FieldAssetID, sel.AssetID).Logger()

	ids := sel.TypeIdentifiers()
	if len(ids) == 0 {
		logger.Warn().Msg("No type identifier, aborting")
		return pick.Cancel(pick.RepresentationUnavailable)
	}
	typeID := ids[0]
	logger = logger.With().Str(xlog.FieldTypeID, typeID).Logger()
	logger.Debug().Strs("declared", ids).Msg("requesting file representation")

	done := make(chan pick.Outcome, 1)
	var (
		mu    sync.Mutex
		state = loadPending
	)
	sel.Provider.LoadFileRepresentation(ctx, typeID, func(path string, err error) {
		mu.Lock()
		if state != loadPending {
			mu.Unlock()
			logger.Warn().Msg("ignoring repeated or late provider callback")
			return
		}
		state = loadClaimed
		mu.Unlock()
		done <- safeHandleLoad(ctx, logger, path, err, consume)
	})

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		mu.Lock()
		if state == loadClaimed {
			mu.Unlock()
			return <-done
		}
		state = loadAbandoned
		mu.Unlock()
		logger.Warn().Err(ctx.Err()).Msg("provider did not call back")
		return pick.Fail(&pick.Error{Kind: pick.ProviderLoadFailure, Op: "load representation", Err: ctx.Err()})
	}
}

// safeHandleLoad runs handleLoad on the provider's goroutine and turns a panic
// into a Failure, so the outcome still reaches Resolve. A panic inside consume is
// a CopyFailure; anywhere else it is a ProviderLoadFailure.
func safeHandleLoad(ctx context.Context, logger zerolog.Logger, path string, err error, consume Consumer) (out pick.Outcome) {
	var consuming bool
	defer func() {
		if p := recover(); p != nil {
			kind := pick.ProviderLoadFailure
			if consuming {
				kind = pick.CopyFailure
			}
			logger.Error().Interface("panic", p).Str(xlog.FieldErrorKind, kind.String()).Msg("provider callback panicked")
			out = pick.Fail(&pick.Error{Kind: kind, Op: "load representation", Path: path, Err: fmt.Errorf("panic: %v", p)})
		}
	}()
	return handleLoad(ctx, logger, path, err, func(ctx context.Context, file pick.TransientFile) pick.Outcome {
		consuming = true
		return consume(ctx, file)
	})
}

func handleLoad(ctx context.Context, logger zerolog.Logger, path string, err error, consume Consumer) pick.Outcome {
	if err != nil {
		logger.Error().Err(err).Msg("Load file representation ERROR")
		return pick.Fail(&pick.Error{Kind: pick.ProviderLoadFailure, Op: "load representation", Err: err})
	}
	if path == "" {
		logger.Error().Msg("No URL - shouldn't happen")
		return pick.Cancel(pick.KindNone)
	}
	logger.Info().Str(xlog.FieldPath, path).Msg("Load file representation Url")

	// The provider may still be materializing the file; a miss here is only logged.
	if err := fsutil.IsRegularFile(path); err != nil {
		logger.Warn().Err(err).Str(xlog.FieldPath, path).Msg("File doesn't exist at path")
	} else {
		logger.Debug().Str(xlog.FieldPath, path).Msg("File does exist")
	}
	return consume(ctx, pick.TransientFile(path))
}
