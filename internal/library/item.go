package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/probe"
)

// Item serves one asset's file representation. The representation is written to
// a fresh provider-owned directory, handed to the callback, and removed as soon
// as the callback returns.
type Item struct {
	asset Asset
	root  string
}

func (it *Item) RegisteredTypeIdentifiers() []string {
	return probe.TypeIdentifiers(it.asset.Path)
}

// LoadFileRepresentation calls fn exactly once from a separate goroutine.
func (it *Item) LoadFileRepresentation(ctx context.Context, typeID string, fn func(path string, err error)) {
	go func() {
		logger := log.FromContext(ctx, "library")
		if !slices.Contains(it.RegisteredTypeIdentifiers(), typeID) {
			fn("", fmt.Errorf("type %s not registered for %s", typeID, it.asset.Rel))
			return
		}
		dir, err := os.MkdirTemp(it.root, "representation-*")
		if err != nil {
			fn("", fmt.Errorf("create representation dir: %w", err))
			return
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				logger.Warn().Err(err).Str("dir", dir).Msg("remove transient representation")
			}
		}()
		path := filepath.Join(dir, representationName(it.asset.Name, typeID))
		if err := writeRepresentation(ctx, it.asset.Path, path); err != nil {
			fn("", err)
			return
		}
		logger.Debug().Str(log.FieldAssetID, it.asset.ID).Str(log.FieldTypeID, typeID).
			Str(log.FieldPath, path).Msg("representation ready")
		fn(path, nil)
	}()
}

// representationName keeps the asset's stem and uses the extension conventional
// for typeID, falling back to the asset's own extension.
func representationName(name, typeID string) string {
	ext := probe.Extension(typeID)
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

func writeRepresentation(ctx context.Context, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open asset: %w", err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create representation: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write representation: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write representation: %w", err)
	}
	return ctx.Err()
}
