package materializer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	xlog "github.com/snapetech/vidpicker/internal/log"
	"github.com/snapetech/vidpicker/internal/pick"
)

const copyBufferSize = 1 << 20 // 1 MiB

// Copier writes the copy into a pending file beside dst, fsyncs it, then
// publishes it under dst without replacing anything already there.
type Copier struct {
	// BufferSize overrides the copy chunk size; 0 = 1 MiB.
	BufferSize int
}

func (c *Copier) Copy(ctx context.Context, src pick.TransientFile, dst pick.DurableFile) error {
	logger := xlog.FromContext(ctx, "materializer")
	start := time.Now()

	if _, err := os.Lstat(string(dst)); err == nil {
		logger.Info().Str(xlog.FieldDestPath, string(dst)).Msg("File already exists!")
		return alreadyExists(dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return copyFailure("stat destination", string(dst), err)
	}

	in, err := os.Open(string(src))
	if err != nil {
		return copyFailure("open source", string(src), err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return copyFailure("stat source", string(src), err)
	}
	if !info.Mode().IsRegular() {
		return copyFailure("open source", string(src), fmt.Errorf("not a regular file"))
	}

	pending, err := renameio.NewPendingFile(string(dst),
		renameio.WithTempDir(filepath.Dir(string(dst))),
		renameio.WithPermissions(info.Mode().Perm()))
	if err != nil {
		return copyFailure("create pending file", string(dst), err)
	}
	defer func() {
		// Cleanup removes the pending file; a published hard link survives it.
		if err := pending.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending file")
		}
	}()

	size := c.BufferSize
	if size <= 0 {
		size = copyBufferSize
	}
	n, err := io.CopyBuffer(pending, &ctxReader{ctx: ctx, r: in}, make([]byte, size))
	if err != nil {
		return copyFailure("copy", string(src), err)
	}
	if err := pending.Sync(); err != nil {
		return copyFailure("sync", string(dst), err)
	}
	if err := publish(pending, dst); err != nil {
		return err
	}

	logger.Info().
		Str(xlog.FieldPath, string(src)).
		Str(xlog.FieldDestPath, string(dst)).
		Int64(xlog.FieldBytes, n).
		Dur("took", time.Since(start)).
		Msg("copied transient file into staging")
	return nil
}

// publish exposes the pending file under dst. A hard link fails atomically when
// dst exists; filesystems without links fall back to a checked rename.
func publish(pending *renameio.PendingFile, dst pick.DurableFile) error {
	err := os.Link(pending.Name(), string(dst))
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return alreadyExists(dst)
	}
	if _, statErr := os.Lstat(string(dst)); statErr == nil {
		return alreadyExists(dst)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return copyFailure("publish", string(dst), err)
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
