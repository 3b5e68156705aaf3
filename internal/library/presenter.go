package library

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/pick"
	"github.com/snapetech/vidpicker/internal/picker"
)

const maxAttempts = 3

// TermPresenter lists the library on the console and reads a 1-based choice.
// Empty input, "q", or end of input cancels.
type TermPresenter struct {
	Library *Library
	Console *Console

	mu    sync.Mutex
	shown bool
}

func (p *TermPresenter) Present(ctx context.Context, cfg picker.Config) ([]pick.Selection, error) {
	if cfg.Filter == picker.FilterImages {
		return nil, nil
	}
	assets, err := p.Library.Assets(ctx)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.shown = true
	p.mu.Unlock()

	if len(assets) == 0 {
		p.Console.Printf("No videos in %s\n", p.Library.Dir)
		return nil, nil
	}
	p.Console.Printf("Videos in %s:\n", p.Library.Dir)
	for i, a := range assets {
		p.Console.Printf("  %2d) %s  (%s, %s)\n", i+1, a.Rel, humanize.Bytes(uint64(a.Size)), humanize.Time(a.ModTime))
	}

	for range maxAttempts {
		line, err := p.Console.Ask(ctx, "Pick a video [1-"+strconv.Itoa(len(assets))+", empty to cancel]: ")
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if line == "" || strings.EqualFold(line, "q") {
			return nil, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(assets) {
			p.Console.Printf("Not a choice: %q\n", line)
			continue
		}
		return p.selections(assets[n-1 : n], cfg.SelectionLimit), nil
	}
	return nil, nil
}

func (p *TermPresenter) selections(assets []Asset, limit int) []pick.Selection {
	if limit > 0 && len(assets) > limit {
		assets = assets[:limit]
	}
	out := make([]pick.Selection, 0, len(assets))
	for _, a := range assets {
		out = append(out, pick.Selection{AssetID: a.ID, Name: a.Name, Provider: p.Library.Item(a)})
	}
	return out
}

// Dismiss tears down the listing. Dismissing an unshown UI is a no-op.
func (p *TermPresenter) Dismiss(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shown {
		p.shown = false
		logger := log.FromContext(ctx, "library")
		logger.Debug().Msg("selection UI dismissed")
	}
	return nil
}
