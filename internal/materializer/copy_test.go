package materializer

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/snapetech/vidpicker/internal/pick"
)

func writeSource(t *testing.T, dir, name string, data []byte) pick.TransientFile {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0644); err != nil {
		t.Fatal(err)
	}
	return pick.TransientFile(p)
}

func TestCopy_roundTrip(t *testing.T) {
	data := make([]byte, 3<<20+17)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}
	src := writeSource(t, t.TempDir(), "clip.mov", data)
	dst := pick.DurableFile(filepath.Join(t.TempDir(), "clip.mov"))

	c := &Copier{BufferSize: 64 << 10}
	if err := c.Copy(context.Background(), src, dst); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	got, err := os.ReadFile(string(dst))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("destination differs from source (%d vs %d bytes)", len(got), len(data))
	}
	still, err := os.ReadFile(string(src))
	if err != nil {
		t.Fatalf("source should remain: %v", err)
	}
	if !bytes.Equal(still, data) {
		t.Fatal("source was modified")
	}
}

func TestCopy_noPendingLeftovers(t *testing.T) {
	src := writeSource(t, t.TempDir(), "clip.mov", []byte("video"))
	stage := t.TempDir()
	dst := pick.DurableFile(filepath.Join(stage, "clip.mov"))
	if err := (&Copier{}).Copy(context.Background(), src, dst); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(stage)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "clip.mov" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("staging dir should hold only the copy, got %v", names)
	}
}

func TestCopy_alreadyExists(t *testing.T) {
	src := writeSource(t, t.TempDir(), "clip.mov", []byte("new"))
	stage := t.TempDir()
	dst := filepath.Join(stage, "clip.mov")
	if err := os.WriteFile(dst, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	err := (&Copier{}).Copy(context.Background(), src, pick.DurableFile(dst))
	if err == nil {
		t.Fatal("expected already-exists error")
	}
	if k := pick.KindOf(err); k != pick.DestinationAlreadyExists {
		t.Errorf("kind = %v", k)
	}
	if !errors.Is(err, pick.ErrAlreadyExists) || !errors.Is(err, fs.ErrExist) {
		t.Errorf("error should match ErrAlreadyExists and fs.ErrExist: %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "old" {
		t.Errorf("existing destination overwritten: %q", got)
	}
}

func TestCopy_missingSource(t *testing.T) {
	dst := pick.DurableFile(filepath.Join(t.TempDir(), "clip.mov"))
	err := (&Copier{}).Copy(context.Background(), pick.TransientFile(filepath.Join(t.TempDir(), "gone.mov")), dst)
	if k := pick.KindOf(err); k != pick.CopyFailure {
		t.Fatalf("kind = %v (err %v)", k, err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("cause should be not-exist: %v", err)
	}
	if _, statErr := os.Stat(string(dst)); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("no destination file expected after failure")
	}
}

func TestCopy_sourceIsDirectory(t *testing.T) {
	dst := pick.DurableFile(filepath.Join(t.TempDir(), "clip.mov"))
	err := (&Copier{}).Copy(context.Background(), pick.TransientFile(t.TempDir()), dst)
	if k := pick.KindOf(err); k != pick.CopyFailure {
		t.Fatalf("kind = %v", k)
	}
}

func TestCopy_missingStagingDir(t *testing.T) {
	src := writeSource(t, t.TempDir(), "clip.mov", []byte("x"))
	dst := pick.DurableFile(filepath.Join(t.TempDir(), "nope", "clip.mov"))
	if k := pick.KindOf((&Copier{}).Copy(context.Background(), src, dst)); k != pick.CopyFailure {
		t.Fatalf("kind = %v", k)
	}
}

func TestCopy_cancelled(t *testing.T) {
	src := writeSource(t, t.TempDir(), "clip.mov", []byte("payload"))
	stage := t.TempDir()
	dst := pick.DurableFile(filepath.Join(stage, "clip.mov"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&Copier{}).Copy(ctx, src, dst)
	if k := pick.KindOf(err); k != pick.CopyFailure {
		t.Fatalf("kind = %v", k)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cause should be context.Canceled: %v", err)
	}
	entries, _ := os.ReadDir(stage)
	if len(entries) != 0 {
		t.Errorf("pending file left behind: %d entries", len(entries))
	}
}

// observingCtx runs observe the first time the copy loop checks for cancellation,
// which happens while the pending file is open.
type observingCtx struct {
	context.Context
	once    sync.Once
	observe func()
}

func (c *observingCtx) Err() error {
	c.once.Do(c.observe)
	return c.Context.Err()
}

func TestCopy_pendingFileLivesInStagingDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)
	src := writeSource(t, t.TempDir(), "clip.mov", []byte("video"))
	stage := t.TempDir()
	dst := pick.DurableFile(filepath.Join(stage, "clip.mov"))

	var stagedDuringCopy, tmpDuringCopy []os.DirEntry
	ctx := &observingCtx{Context: context.Background(), observe: func() {
		stagedDuringCopy, _ = os.ReadDir(stage)
		tmpDuringCopy, _ = os.ReadDir(tmp)
	}}
	if err := (&Copier{}).Copy(ctx, src, dst); err != nil {
		t.Fatal(err)
	}
	if len(stagedDuringCopy) != 1 {
		t.Errorf("staging dir during copy = %v, want one pending file", stagedDuringCopy)
	}
	if len(tmpDuringCopy) != 0 {
		t.Errorf("TMPDIR during copy = %v, want untouched", tmpDuringCopy)
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("TMPDIR after copy = %v, want untouched", entries)
	}
}
