package pick

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses {
		tok := map[AuthorizationStatus]string{
			StatusUndetermined: "not-determined",
			StatusRestricted:   "Restricted",
			StatusDenied:       "denied",
			StatusAuthorized:   " authorized ",
			StatusLimited:      "limited",
			StatusUnknown:      "unknown",
		}[s]
		got, ok := ParseStatus(tok)
		if !ok || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v", tok, got, ok, s)
		}
	}
	if got, ok := ParseStatus("sometimes"); ok || got != StatusUnknown {
		t.Errorf("ParseStatus(sometimes) = %v, %v", got, ok)
	}
}

func TestStatusString(t *testing.T) {
	if StatusUndetermined.String() != "Not determined" {
		t.Errorf("got %q", StatusUndetermined.String())
	}
	if AuthorizationStatus(42).String() != "Unknown" {
		t.Errorf("got %q", AuthorizationStatus(42).String())
	}
}

func TestError_alreadyExistsMatchesSentinels(t *testing.T) {
	err := fmt.Errorf("copy: %w", &Error{Kind: DestinationAlreadyExists, Path: "/s/a.mov"})
	if !errors.Is(err, ErrAlreadyExists) || !errors.Is(err, fs.ErrExist) {
		t.Errorf("%v should match ErrAlreadyExists and fs.ErrExist", err)
	}
	if KindOf(err) != DestinationAlreadyExists {
		t.Errorf("KindOf = %v", KindOf(err))
	}
	other := &Error{Kind: CopyFailure, Err: fs.ErrNotExist}
	if errors.Is(other, ErrAlreadyExists) {
		t.Error("copy failure must not match ErrAlreadyExists")
	}
	if !errors.Is(other, fs.ErrNotExist) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestError_message(t *testing.T) {
	e := &Error{Kind: CopyFailure, Op: "open", Path: "/t/a.mov", Err: errors.New("boom")}
	if got := e.Error(); got != "open: copy_failure /t/a.mov: boom" {
		t.Errorf("Error() = %q", got)
	}
	if KindOf(errors.New("plain")) != KindNone {
		t.Error("plain errors carry no kind")
	}
}

func TestOutcomeConstructors(t *testing.T) {
	if o := Succeeded("/s/a.mov"); o.Kind != Success || o.Err != nil || o.Path != "/s/a.mov" {
		t.Errorf("Succeeded = %+v", o)
	}
	if o := Cancel(NoSelection); o.Kind != Cancelled || o.Path != "" || o.Err != nil || o.Note != NoSelection {
		t.Errorf("Cancel = %+v", o)
	}
	if o := Fail(ErrPermissionDenied); o.Kind != Failure || o.Path != "" {
		t.Errorf("Fail = %+v", o)
	}
}

func TestSelection_nilProvider(t *testing.T) {
	if ids := (Selection{}).TypeIdentifiers(); ids != nil {
		t.Errorf("TypeIdentifiers() = %v", ids)
	}
}
