// Package fsutil holds small filesystem checks shared by the resolver and the
// staging allocator.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsRegularFile checks if path exists and is a regular file (not directory, device, etc).
// Returns error if not.
func IsRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file: %s", path)
	}
	return nil
}

// ConfineName joins root and a single path component, rejecting names that
// would land outside root or name root itself.
func ConfineName(root, name string) (string, error) {
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name: %q", name)
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("file name is not a single path component: %q", name)
	}
	full := filepath.Join(root, name)
	rel, err := filepath.Rel(root, full)
	if err != nil {
		return "", fmt.Errorf("rel computation failed: %w", err)
	}
	if rel != name {
		return "", fmt.Errorf("path escapes root: %s", full)
	}
	return full, nil
}
