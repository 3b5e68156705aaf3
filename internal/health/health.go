// Package health verifies the host can run a pick before the first trigger.
package health

import (
	"context"
	"fmt"
	"os"

	"github.com/snapetech/vidpicker/internal/cache"
)

// CheckStaging creates the staging directory if needed and proves it is writable
// by creating and removing a probe file. Returns nil if OK.
func CheckStaging(alloc cache.Allocator) error {
	dir := alloc.StagingDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("staging dir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return fmt.Errorf("staging dir %s not writable: %w", dir, err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("staging dir %s: remove probe: %w", dir, err)
	}
	return nil
}

// Lister is the part of the library CheckLibrary needs.
type Lister interface {
	Names(ctx context.Context) ([]string, error)
}

// CheckLibrary returns an error if the library cannot be read or holds no videos.
func CheckLibrary(ctx context.Context, l Lister) (int, error) {
	names, err := l.Names(ctx)
	if err != nil {
		return 0, fmt.Errorf("library unreadable: %w", err)
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("library has no videos")
	}
	return len(names), nil
}
