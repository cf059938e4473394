package model

// Event is a single log entry produced during ProcessRound, filtered
// per-viewer before being sent out over the bus.
type Event struct {
	Kind         string
	Public       bool
	VisibleTo    map[string]bool // additional viewer ids beyond attacker/target
	AttackerID   string
	TargetID     string
	PublicText   string
	AttackerText string
	TargetText   string
	Payload      map[string]any
}

// NewEvent constructs an Event with an initialized VisibleTo set.
func NewEvent(kind string) *Event {
	return &Event{Kind: kind, VisibleTo: make(map[string]bool)}
}

// ShouldShow reports whether viewer should see this event, per spec §3.5:
// public OR viewer in the explicit visibility list OR viewer is the
// attacker or target.
func (e *Event) ShouldShow(viewerID string) bool {
	if e.Public {
		return true
	}
	if e.VisibleTo[viewerID] {
		return true
	}
	if viewerID != "" && (viewerID == e.AttackerID || viewerID == e.TargetID) {
		return true
	}
	return false
}

// TextFor selects the text variant a viewer should see: attacker-specific
// if the viewer is the attacker, target-specific if the viewer is the
// target, else the public text.
func (e *Event) TextFor(viewerID string) string {
	switch {
	case viewerID != "" && viewerID == e.AttackerID && e.AttackerText != "":
		return e.AttackerText
	case viewerID != "" && viewerID == e.TargetID && e.TargetText != "":
		return e.TargetText
	default:
		return e.PublicText
	}
}
