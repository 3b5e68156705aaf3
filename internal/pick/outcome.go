package pick

import (
	"errors"
	"io/fs"
)

// Kind classifies a delivered outcome.
type Kind int

const (
	Success Kind = iota
	Cancelled
	Failure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Cancelled:
		return "cancelled"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// Outcome is the one result delivered per session run.
// Path is set only on Success. Err is set on Failure, and on Success only for the
// DestinationAlreadyExists partial success.
type Outcome struct {
	Kind Kind
	Path DurableFile
	Err  error
	// Note carries a benign diagnostic (e.g. RepresentationUnavailable on a
	// cancelled run). It is never an error the caller must act on.
	Note ErrorKind
}

// Succeeded returns a Success outcome for path.
func Succeeded(path DurableFile) Outcome { return Outcome{Kind: Success, Path: path} }

// PartiallySucceeded returns a Success outcome that still carries err, used when
// the destination already held a file from an earlier pick.
func PartiallySucceeded(path DurableFile, err error) Outcome {
	return Outcome{Kind: Success, Path: path, Err: err}
}

// Cancel returns a Cancelled outcome with an optional benign note.
func Cancel(note ErrorKind) Outcome { return Outcome{Kind: Cancelled, Note: note} }

// Fail returns a Failure outcome; no path is ever attached.
func Fail(err error) Outcome { return Outcome{Kind: Failure, Err: err} }

// ErrorKind is the failure taxonomy of the pick pipeline.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	PermissionDenied
	NoSelection
	RepresentationUnavailable
	ProviderLoadFailure
	DirectoryCreationFailure
	DestinationAlreadyExists
	CopyFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case PermissionDenied:
		return "permission_denied"
	case NoSelection:
		return "no_selection"
	case RepresentationUnavailable:
		return "representation_unavailable"
	case ProviderLoadFailure:
		return "provider_load_failure"
	case DirectoryCreationFailure:
		return "directory_creation_failure"
	case DestinationAlreadyExists:
		return "destination_already_exists"
	case CopyFailure:
		return "copy_failure"
	}
	return "unknown"
}

var (
	// ErrAlreadyExists marks a destination populated by an earlier pick.
	ErrAlreadyExists = errors.New("destination already exists")
	// ErrSessionInFlight is returned by Start while a previous run has not delivered.
	ErrSessionInFlight = errors.New("pick session already in flight")
	// ErrPermissionDenied is the cause attached to PermissionDenied failures.
	ErrPermissionDenied = errors.New("authorization not granted")
)

// Error is a classified pipeline error.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets DestinationAlreadyExists errors match ErrAlreadyExists and fs.ErrExist.
func (e *Error) Is(target error) bool {
	if e.Kind == DestinationAlreadyExists {
		return target == ErrAlreadyExists || target == fs.ErrExist
	}
	return false
}

// KindOf returns the ErrorKind carried by err, or KindNone.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindNone
}
