// Package playback hands a delivered pick to a player.
package playback

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/rs/zerolog"

	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/pick"
)

// Player plays a durable file.
type Player interface {
	Play(ctx context.Context, path pick.DurableFile) error
}

// Command runs an external player, e.g. ffplay, with the path as last argument.
type Command struct {
	Bin    string
	Args   []string
	Stdout io.Writer // nil discards
	Stderr io.Writer
}

func (c Command) Play(ctx context.Context, path pick.DurableFile) error {
	args := append(append([]string(nil), c.Args...), string(path))
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", c.Bin, err)
	}
	return nil
}

// Print writes the path on its own line instead of playing it.
type Print struct{ W io.Writer }

func (p Print) Play(_ context.Context, path pick.DurableFile) error {
	_, err := fmt.Fprintln(p.W, path)
	return err
}

// Handle renders out: a delivered path is played (including the already-picked
// partial success), a failure is logged, a cancellation is only noted.
// It returns the player's error, if any.
func Handle(ctx context.Context, p Player, out pick.Outcome, logger zerolog.Logger) error {
	switch {
	case out.Path != "":
		if out.Err != nil {
			logger.Info().Err(out.Err).Msg("reusing earlier copy")
		}
		if err := p.Play(ctx, out.Path); err != nil {
			logger.Error().Err(err).Str(xlog.FieldPath, string(out.Path)).Msg("playback failed")
			return err
		}
		return nil
	case out.Err != nil:
		logger.Error().Err(out.Err).Str(xlog.FieldErrorKind, pick.KindOf(out.Err).String()).Msg("Error picking video")
	default:
		logger.Info().Str("note", out.Note.String()).Msg("pick cancelled")
	}
	return nil
}
