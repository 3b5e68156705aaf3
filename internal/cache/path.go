package cache

import (
	"os"
	"path/filepath"

	"github.com/snapetech/vidpicker/internal/fsutil"
	"github.com/snapetech/vidpicker/internal/pick"
)

// DefaultSubdir is the staging subdirectory under the application documents root.
const DefaultSubdir = "temp-dir"

// Allocator derives durable destinations inside a fixed staging directory.
// Destinations are deterministic: the same source name always maps to the same
// path, so repeated picks of a same-named file collide on purpose.
type Allocator struct {
	Root   string // application documents directory
	Subdir string // staging subdirectory; DefaultSubdir when empty
}

// StagingDir returns Root/Subdir.
func (a Allocator) StagingDir() string {
	sub := a.Subdir
	if sub == "" {
		sub = DefaultSubdir
	}
	return filepath.Join(a.Root, sub)
}

// Allocate ensures the staging directory exists and returns the destination for
// source: staging dir + the source's final path component. Creating an existing
// directory is not an error.
func (a Allocator) Allocate(source pick.TransientFile) (pick.DurableFile, error) {
	dir := a.StagingDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &pick.Error{Kind: pick.DirectoryCreationFailure, Op: "allocate", Path: dir, Err: err}
	}
	dest, err := fsutil.ConfineName(dir, filepath.Base(string(source)))
	if err != nil {
		return "", &pick.Error{Kind: pick.CopyFailure, Op: "allocate", Path: string(source), Err: err}
	}
	return pick.DurableFile(dest), nil
}
