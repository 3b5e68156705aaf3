package session

// State is the position of one run in the pick pipeline. Runs only move forward.
type State int

const (
	Idle State = iota
	AwaitingAuthorization
	AwaitingSelection
	Resolving
	Copying
	Delivered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingAuthorization:
		return "awaiting_authorization"
	case AwaitingSelection:
		return "awaiting_selection"
	case Resolving:
		return "resolving"
	case Copying:
		return "copying"
	case Delivered:
		return "delivered"
	}
	return "unknown"
}
