package cache

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/snapetech/vidpicker/internal/pick"
)

func TestAllocate_baseNameOnly(t *testing.T) {
	root := t.TempDir()
	a := Allocator{Root: root}
	want := filepath.Join(root, DefaultSubdir, "clip.mov")
	for _, src := range []string{"/tmp/x/clip.mov", "/a/b/c/d/e/clip.mov", "clip.mov"} {
		got, err := a.Allocate(pick.TransientFile(src))
		if err != nil {
			t.Fatalf("Allocate(%s): %v", src, err)
		}
		if string(got) != want {
			t.Errorf("Allocate(%s) = %s, want %s", src, got, want)
		}
	}
}

func TestAllocate_stable(t *testing.T) {
	a := Allocator{Root: t.TempDir(), Subdir: "stage"}
	p1, err := a.Allocate("/tmp/one/movie.mp4")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := a.Allocate("/tmp/two/movie.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Errorf("same-named sources should collide: %q vs %q", p1, p2)
	}
}

func TestAllocate_createsDirIdempotent(t *testing.T) {
	a := Allocator{Root: t.TempDir()}
	if err := os.MkdirAll(a.StagingDir(), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Allocate("/tmp/x/clip.mov"); err != nil {
		t.Fatalf("existing staging dir should not fail: %v", err)
	}
	fi, err := os.Stat(a.StagingDir())
	if err != nil || !fi.IsDir() {
		t.Fatalf("staging dir missing: %v", err)
	}
}

func TestAllocate_directoryCreationFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	root := t.TempDir()
	if err := os.Chmod(root, 0500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(root, 0700) })

	dest, err := Allocator{Root: root}.Allocate("/tmp/x/clip.mov")
	if err == nil {
		t.Fatal("expected error")
	}
	if dest != "" {
		t.Errorf("no destination expected, got %s", dest)
	}
	if k := pick.KindOf(err); k != pick.DirectoryCreationFailure {
		t.Errorf("kind = %v", k)
	}
}

func TestAllocate_rootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, nil, 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Allocator{Root: root}.Allocate("/tmp/x/clip.mov")
	var pe *pick.Error
	if !errors.As(err, &pe) || pe.Kind != pick.DirectoryCreationFailure {
		t.Fatalf("err = %v", err)
	}
}

func TestAllocate_invalidName(t *testing.T) {
	a := Allocator{Root: t.TempDir()}
	if _, err := a.Allocate("/"); err == nil {
		t.Error("root path has no usable name")
	}
}
