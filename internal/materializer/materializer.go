// Package materializer copies a provider's transient file into the staging
// directory so the application owns a durable copy.
package materializer

import (
	"context"

	"github.com/snapetech/vidpicker/internal/pick"
)

// Interface copies src to dst. Implementations must leave src untouched and
// must never overwrite an existing dst.
type Interface interface {
	// Copy returns nil once dst holds a complete copy of src.
	// A pre-existing dst yields a *pick.Error of kind DestinationAlreadyExists;
	// every other failure is kind CopyFailure and leaves no file at dst.
	Copy(ctx context.Context, src pick.TransientFile, dst pick.DurableFile) error
}

func alreadyExists(dst pick.DurableFile) error {
	return &pick.Error{Kind: pick.DestinationAlreadyExists, Op: "copy", Path: string(dst), Err: pick.ErrAlreadyExists}
}

func copyFailure(op string, path string, err error) error {
	return &pick.Error{Kind: pick.CopyFailure, Op: op, Path: path, Err: err}
}
