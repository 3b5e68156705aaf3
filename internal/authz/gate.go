// Package authz asks the permission subsystem for library access and reduces
// its answer to a proceed/halt decision for one pick.
package authz

import (
	"context"
	"sync"

	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/pick"
)

// Scope is the access level requested from the permission subsystem.
type Scope int

const (
	ScopeReadWrite Scope = iota
	ScopeAddOnly
)

func (s Scope) String() string {
	if s == ScopeAddOnly {
		return "addOnly"
	}
	return "readWrite"
}

// Authorizer is the permission subsystem. RequestAuthorization may show a
// one-time prompt and blocks until a status is known or ctx ends.
type Authorizer interface {
	RequestAuthorization(ctx context.Context, scope Scope) (pick.AuthorizationStatus, error)
}

// Options tunes the reduction.
type Options struct {
	// AllowLimited treats a limited-library grant as authorized.
	AllowLimited bool
}

// Reduce maps a status to proceed. Only authorized proceeds, plus limited when
// allowLimited is set.
func Reduce(status pick.AuthorizationStatus, allowLimited bool) bool {
	switch status {
	case pick.StatusAuthorized:
		return true
	case pick.StatusLimited:
		return allowLimited
	default:
		return false
	}
}

// Gate requests readWrite authorization and remembers a determined answer for
// the lifetime of the process. An undetermined answer is asked again next time.
type Gate struct {
	auth Authorizer
	opts Options

	mu         sync.Mutex
	determined bool
	status     pick.AuthorizationStatus
}

func NewGate(auth Authorizer, opts Options) *Gate {
	return &Gate{auth: auth, opts: opts}
}

// Request returns the status and whether the pipeline may proceed. A
// collaborator error yields StatusUnknown and the error.
func (g *Gate) Request(ctx context.Context) (pick.AuthorizationStatus, bool, error) {
	logger := xlog.FromContext(ctx, "authz")

	g.mu.Lock()
	if g.determined {
		status := g.status
		g.mu.Unlock()
		return status, Reduce(status, g.opts.AllowLimited), nil
	}
	g.mu.Unlock()

	status, err := g.auth.RequestAuthorization(ctx, ScopeReadWrite)
	if err != nil {
		logger.Error().Err(err).Msg("authorization request failed")
		return pick.StatusUnknown, false, err
	}
	logger.Info().Str(xlog.FieldStatus, status.String()).Msgf("Authorization status: %s", status)

	if status != pick.StatusUndetermined {
		g.mu.Lock()
		g.determined = true
		g.status = status
		g.mu.Unlock()
	}
	return status, Reduce(status, g.opts.AllowLimited), nil
}
