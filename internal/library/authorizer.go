package library

import (
	"context"
	"strings"
	"sync"

	"github.com/snapetech/vidpicker/internal/authz"
	"github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/pick"
)

// Authorizer answers with a configured status. When that status is
// undetermined it asks on the console the first time and remembers the answer
// for the life of the process.
type Authorizer struct {
	Status  pick.AuthorizationStatus
	Console *Console

	mu     sync.Mutex
	asked  bool
	answer pick.AuthorizationStatus
}

func (a *Authorizer) RequestAuthorization(ctx context.Context, scope authz.Scope) (pick.AuthorizationStatus, error) {
	if a.Status != pick.StatusUndetermined || a.Console == nil {
		return a.Status, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.asked {
		return a.answer, nil
	}
	line, err := a.Console.Ask(ctx, "Allow vid-picker to access your videos ("+scope.String()+")? [y]es / [l]imited / [N]o: ")
	if err != nil {
		return pick.StatusUndetermined, err
	}
	a.answer = parseAnswer(line)
	a.asked = true
	logger := log.FromContext(ctx, "library")
	logger.Debug().Str(log.FieldStatus, a.answer.String()).Msg("authorization answered")
	return a.answer, nil
}

func parseAnswer(line string) pick.AuthorizationStatus {
	switch strings.ToLower(line) {
	case "y", "yes":
		return pick.StatusAuthorized
	case "l", "limited":
		return pick.StatusLimited
	}
	return pick.StatusDenied
}
