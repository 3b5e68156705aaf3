// Package session runs one end-to-end video pick: authorize, present the
// selection UI, resolve the picked asset, copy it into staging, and deliver a
// single outcome to the caller.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/snapetech/vidpicker/internal/authz"
	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/materializer"
	"github.com/snapetech/vidpicker/internal/metrics"
	"github.com/snapetech/vidpicker/internal/pick"
	"github.com/snapetech/vidpicker/internal/picker"
	"github.com/snapetech/vidpicker/internal/provider"
)

// ErrThrottled is returned by Start when the trigger limiter refuses a run.
var ErrThrottled = errors.New("pick session start throttled")

// Allocator derives the durable destination for a transient file.
type Allocator interface {
	Allocate(source pick.TransientFile) (pick.DurableFile, error)
}

// Recorder persists delivered outcomes.
type Recorder interface {
	Record(ctx context.Context, sessionID string, out pick.Outcome) error
}

// Deps are the collaborators of a Session.
type Deps struct {
	Authorizer authz.Authorizer
	Presenter  picker.Presenter
	Allocator  Allocator
	Copier     materializer.Interface
	// Main is the UI-affine executor; Inline when nil.
	Main Executor
}

type Option func(*Session)

// WithRecorder records every delivered outcome.
func WithRecorder(r Recorder) Option { return func(s *Session) { s.recorder = r } }

// WithAuthOptions tunes the authorization reduction.
func WithAuthOptions(o authz.Options) Option { return func(s *Session) { s.authOpts = o } }

// WithPickerConfig overrides the selection UI configuration.
func WithPickerConfig(c picker.Config) Option { return func(s *Session) { s.pickerCfg = c } }

// WithLimiter refuses Start calls beyond the limiter's rate.
func WithLimiter(l *rate.Limiter) Option { return func(s *Session) { s.limiter = l } }

// WithIDGenerator replaces the uuid session ID generator.
func WithIDGenerator(fn func() string) Option { return func(s *Session) { s.newID = fn } }

// Session starts pick runs. At most one run is in flight at a time; each run
// delivers exactly one outcome.
type Session struct {
	deps      Deps
	gate      *authz.Gate
	resolver  provider.Resolver
	pickerCfg picker.Config
	authOpts  authz.Options
	recorder  Recorder
	limiter   *rate.Limiter
	newID     func() string

	inFlight atomic.Bool
	runs     sync.WaitGroup
	mu       sync.Mutex
	current  *run
}

func New(deps Deps, opts ...Option) *Session {
	if deps.Main == nil {
		deps.Main = Inline{}
	}
	s := &Session{
		deps:      deps,
		pickerCfg: picker.DefaultConfig(),
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	s.gate = authz.NewGate(deps.Authorizer, s.authOpts)
	return s
}

// State reports the state of the latest run, Idle if none has started.
func (s *Session) State() State {
	s.mu.Lock()
	r := s.current
	s.mu.Unlock()
	if r == nil {
		return Idle
	}
	return r.getState()
}

// Start begins a run and returns immediately. completion is called exactly once,
// on the Main executor, with the run's outcome. While a run is in flight Start
// returns pick.ErrSessionInFlight and completion is never called for that attempt.
//
// Cancelling ctx bounds how long the run waits on collaborators; the outcome is
// still delivered.
func (s *Session) Start(ctx context.Context, completion func(pick.Outcome)) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.StartRejectedTotal.WithLabelValues("in_flight").Inc()
		return pick.ErrSessionInFlight
	}
	if s.limiter != nil && !s.limiter.Allow() {
		s.inFlight.Store(false)
		metrics.StartRejectedTotal.WithLabelValues("throttled").Inc()
		return ErrThrottled
	}

	s.runs.Add(1)
	id := s.newID()
	ctx = xlog.ContextWithSessionID(ctx, id)
	r := &run{
		s:          s,
		id:         id,
		completion: completion,
		logger:     xlog.FromContext(ctx, "session"),
	}
	s.mu.Lock()
	s.current = r
	s.mu.Unlock()

	metrics.SessionsInFlight.Inc()
	go r.execute(ctx)
	return nil
}

// Wait blocks until the run in flight, if any, has delivered its outcome, or
// until ctx ends. Hosts call it before closing collaborators such as the
// history recorder. It must not be called from work running on the Main executor.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.runs.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts a run and blocks until its outcome is delivered. It must not be
// called from work running on the Main executor.
func (s *Session) Run(ctx context.Context) (pick.Outcome, error) {
	ch := make(chan pick.Outcome, 1)
	if err := s.Start(ctx, func(out pick.Outcome) { ch <- out }); err != nil {
		return pick.Outcome{}, err
	}
	return <-ch, nil
}

type run struct {
	s          *Session
	id         string
	completion func(pick.Outcome)
	logger     zerolog.Logger

	mu        sync.Mutex
	state     State
	presented bool
	delivered sync.Once
}

func (r *run) getState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *run) transition(to State) {
	r.mu.Lock()
	from := r.state
	if to <= from {
		r.mu.Unlock()
		r.logger.Error().Str(xlog.FieldOldState, from.String()).Str(xlog.FieldNewState, to.String()).
			Msg("invalid state transition ignored")
		return
	}
	r.state = to
	r.mu.Unlock()
	r.logger.Debug().Str(xlog.FieldOldState, from.String()).Str(xlog.FieldNewState, to.String()).Msg("state")
}

func (r *run) execute(ctx context.Context) {
	var out pick.Outcome
	defer func() {
		if p := recover(); p != nil {
			state := r.getState()
			r.logger.Error().Interface("panic", p).Str("state", state.String()).Msg("pipeline stage panicked")
			out = pick.Fail(&pick.Error{Kind: failureKind(state), Op: state.String(), Err: fmt.Errorf("panic: %v", p)})
		}
		r.deliver(ctx, out)
	}()
	out = r.pipeline(ctx)
}

func (r *run) pipeline(ctx context.Context) pick.Outcome {
	r.transition(AwaitingAuthorization)
	start := time.Now()
	status, ok, err := r.s.gate.Request(ctx)
	metrics.ObserveStage("authorization", start)
	metrics.AuthorizationTotal.WithLabelValues(status.String()).Inc()
	if !ok {
		r.logger.Info().Str(xlog.FieldStatus, status.String()).Msg("Authorization not granted")
		cause := pick.ErrPermissionDenied
		if err != nil {
			cause = fmt.Errorf("%w: %w", pick.ErrPermissionDenied, err)
		}
		return pick.Fail(&pick.Error{Kind: pick.PermissionDenied, Op: "authorize", Err: cause})
	}

	r.transition(AwaitingSelection)
	start = time.Now()
	results, err := onMain(r.s.deps.Main, func() ([]pick.Selection, error) {
		r.mu.Lock()
		r.presented = true
		r.mu.Unlock()
		return r.s.deps.Presenter.Present(ctx, r.s.pickerCfg)
	})
	metrics.ObserveStage("selection", start)
	if err != nil {
		r.logger.Warn().Err(err).Msg("selection UI failed; treating as no selection")
	}
	sel, ok := picker.First(results)
	if !ok {
		return pick.Cancel(pick.NoSelection)
	}
	r.logger.Info().Str(xlog.FieldAssetID, sel.AssetID).Msgf("Picker result: %s", sel)

	r.transition(Resolving)
	start = time.Now()
	out := r.s.resolver.Resolve(ctx, sel, r.store)
	metrics.ObserveStage("resolve", start)
	return out
}

// store runs inside the provider callback while the transient file is valid.
func (r *run) store(ctx context.Context, file pick.TransientFile) pick.Outcome {
	dest, err := r.s.deps.Allocator.Allocate(file)
	if err != nil {
		r.logger.Error().Err(err).Msg("allocate staging destination")
		return pick.Fail(asKind(err, pick.DirectoryCreationFailure))
	}

	r.transition(Copying)
	r.logger.Info().Str(xlog.FieldDestPath, string(dest)).Msg("Will attempt to copy file")
	start := time.Now()
	err = r.s.deps.Copier.Copy(ctx, file, dest)
	metrics.ObserveStage("copy", start)
	switch {
	case err == nil:
		return pick.Succeeded(dest)
	case pick.KindOf(err) == pick.DestinationAlreadyExists:
		return pick.PartiallySucceeded(dest, err)
	default:
		r.logger.Error().Err(err).Msg("Unable to copy file")
		return pick.Fail(asKind(err, pick.CopyFailure))
	}
}

// deliver dismisses the selection UI if it was shown, then hands out to the
// caller. Both happen on the Main executor.
func (r *run) deliver(ctx context.Context, out pick.Outcome) {
	r.delivered.Do(func() {
		if out.Kind != pick.Success {
			out.Path = ""
		}
		metrics.ObserveOutcome(out)
		if r.s.recorder != nil {
			if err := r.s.recorder.Record(context.WithoutCancel(ctx), r.id, out); err != nil {
				r.logger.Warn().Err(err).Msg("record pick history")
			}
		}

		r.mu.Lock()
		presented := r.presented
		r.mu.Unlock()

		r.s.deps.Main.Do(func() {
			defer r.s.runs.Done()
			if presented {
				if err := r.s.deps.Presenter.Dismiss(context.WithoutCancel(ctx)); err != nil {
					r.logger.Warn().Err(err).Msg("dismiss selection UI")
				}
			}
			r.transition(Delivered)
			ev := r.logger.Info().Str(xlog.FieldOutcome, out.Kind.String())
			if out.Path != "" {
				ev = ev.Str(xlog.FieldPath, string(out.Path))
			}
			if out.Err != nil {
				ev = ev.Err(out.Err).Str(xlog.FieldErrorKind, pick.KindOf(out.Err).String())
			}
			ev.Msg("pick delivered")

			metrics.SessionsInFlight.Dec()
			r.s.inFlight.Store(false)
			if r.completion != nil {
				r.completion(out)
			}
		})
	})
}

func asKind(err error, kind pick.ErrorKind) error {
	if pick.KindOf(err) != pick.KindNone {
		return err
	}
	return &pick.Error{Kind: kind, Err: err}
}

func failureKind(s State) pick.ErrorKind {
	switch s {
	case AwaitingAuthorization:
		return pick.PermissionDenied
	case Resolving:
		return pick.ProviderLoadFailure
	default:
		return pick.CopyFailure
	}
}
