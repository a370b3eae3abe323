package gesture

// Status is the setup state of a tracker.
type Status uint8

const (
	Pending Status = iota
	Ready
	Unavailable
)

// String returns the status as shown in the UI.
func (s Status) String() string {
	switch s {
	case Ready:
		return "tracking"
	case Unavailable:
		return "unavailable"
	default:
		return "starting"
	}
}

// Terminal reports whether no further status change can follow.
func (s Status) Terminal() bool {
	return s == Unavailable
}
