// Package picker describes the selection UI the pick pipeline presents.
package picker

import (
	"context"

	"github.com/snapetech/vidpicker/internal/pick"
)

// Filter limits the assets the selection UI offers.
type Filter string

const (
	FilterAny    Filter = "any"
	FilterVideos Filter = "videos"
	FilterImages Filter = "images"
)

// Mode is the preferred asset representation.
type Mode string

const (
	// ModeCurrent asks for the most current, highest fidelity version.
	ModeCurrent    Mode = "current"
	ModeCompatible Mode = "compatible"
	ModeAutomatic  Mode = "automatic"
)

// Config is handed to the Presenter.
type Config struct {
	SelectionLimit     int
	Filter             Filter
	RepresentationMode Mode
	FullScreen         bool
}

// DefaultConfig is a full-screen single-video picker preferring the current representation.
func DefaultConfig() Config {
	return Config{
		SelectionLimit:     1,
		Filter:             FilterVideos,
		RepresentationMode: ModeCurrent,
		FullScreen:         true,
	}
}

// Presenter shows the selection UI. Present blocks until the user finishes and
// returns at most cfg.SelectionLimit results; zero results means the user
// cancelled. Dismiss removes the UI.
type Presenter interface {
	Present(ctx context.Context, cfg Config) ([]pick.Selection, error)
	Dismiss(ctx context.Context) error
}

// First returns the first selection, if any.
func First(results []pick.Selection) (pick.Selection, bool) {
	if len(results) == 0 {
		return pick.Selection{}, false
	}
	return results[0], true
}
