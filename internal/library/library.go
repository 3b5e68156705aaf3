// Package library is a directory-backed media library. It stands in for the
// platform's photo library on a plain host: it answers authorization, presents
// a terminal selection UI, and serves each picked asset through a use-once
// transient file.
package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snapetech/vidpicker/internal/probe"
)

// assetNamespace scopes asset IDs so the same relative path always maps to the same ID.
var assetNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("vidpicker:library"))

// Asset is one video in the library.
type Asset struct {
	ID      string
	Name    string // base name
	Rel     string // path relative to the library dir
	Path    string
	Size    int64
	ModTime time.Time
}

// Library scans Dir for videos.
type Library struct {
	Dir string
	// TransientDir holds provider-owned representations while a callback runs;
	// "" = os.TempDir().
	TransientDir string
}

// Assets walks the library and returns every video, ordered by relative path.
// Hidden files and directories are skipped.
func (l *Library) Assets(ctx context.Context) ([]Asset, error) {
	var out []Asset
	err := filepath.WalkDir(l.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != l.Dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !probe.IsVideo(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(l.Dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		out = append(out, Asset{
			ID:      uuid.NewSHA1(assetNamespace, []byte(rel)).String(),
			Name:    d.Name(),
			Rel:     rel,
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rel < out[j].Rel })
	return out, nil
}

// Names returns the relative paths of every video.
func (l *Library) Names(ctx context.Context) ([]string, error) {
	assets, err := l.Assets(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = a.Rel
	}
	return names, nil
}

// Item returns the item provider serving a.
func (l *Library) Item(a Asset) *Item {
	root := l.TransientDir
	if root == "" {
		root = os.TempDir()
	}
	return &Item{asset: a, root: root}
}
