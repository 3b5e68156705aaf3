// Package pick holds the shared model of one video pick: authorization status,
// the selected asset handle, transient and durable file paths, and the single
// outcome delivered to the caller.
package pick

import (
	"context"
	"fmt"
	"strings"
)

// AuthorizationStatus is the multi-valued answer of the permission subsystem.
type AuthorizationStatus int

const (
	StatusUndetermined AuthorizationStatus = iota
	StatusRestricted
	StatusDenied
	StatusAuthorized
	StatusLimited
	StatusUnknown
)

// AllStatuses lists every status in declaration order.
var AllStatuses = []AuthorizationStatus{
	StatusUndetermined,
	StatusRestricted,
	StatusDenied,
	StatusAuthorized,
	StatusLimited,
	StatusUnknown,
}

func (s AuthorizationStatus) String() string {
	switch s {
	case StatusUndetermined:
		return "Not determined"
	case StatusRestricted:
		return "Restricted"
	case StatusDenied:
		return "Denied"
	case StatusAuthorized:
		return "Authorized"
	case StatusLimited:
		return "Limited"
	default:
		return "Unknown"
	}
}

// ParseStatus maps a config token (e.g. "authorized", "not-determined") to a status.
// Unrecognized tokens map to StatusUnknown with ok=false.
func ParseStatus(s string) (AuthorizationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "undetermined", "notdetermined", "not-determined", "not_determined", "":
		return StatusUndetermined, true
	case "restricted":
		return StatusRestricted, true
	case "denied":
		return StatusDenied, true
	case "authorized", "granted":
		return StatusAuthorized, true
	case "limited":
		return StatusLimited, true
	case "unknown":
		return StatusUnknown, true
	}
	return StatusUnknown, false
}

// TransientFile is a provider-owned path, valid only while the provider's
// load callback is running.
type TransientFile string

// DurableFile is an application-owned path inside the staging directory.
type DurableFile string

// ItemProvider negotiates file representations of one selected asset.
type ItemProvider interface {
	// RegisteredTypeIdentifiers returns the declared type identifiers, most preferred first.
	RegisteredTypeIdentifiers() []string
	// LoadFileRepresentation materializes the asset as typeID and calls fn once.
	// The path handed to fn must not be used after fn returns.
	LoadFileRepresentation(ctx context.Context, typeID string, fn func(path string, err error))
}

// Selection is the opaque handle of the one asset the user picked.
type Selection struct {
	AssetID  string
	Name     string
	Provider ItemProvider
}

// TypeIdentifiers returns the provider's declared identifiers (nil-safe).
func (s Selection) TypeIdentifiers() []string {
	if s.Provider == nil {
		return nil
	}
	return s.Provider.RegisteredTypeIdentifiers()
}

func (s Selection) String() string {
	return fmt.Sprintf("Selection(asset=%s name=%q)", s.AssetID, s.Name)
}
