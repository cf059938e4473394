package model

import "time"

// ActionKind distinguishes a class action from a racial action. At most
// one of each may be submitted per actor per round; a racial action may
// coexist with a class action.
type ActionKind string

const (
	ActionClass  ActionKind = "class"
	ActionRacial ActionKind = "racial"
)

// Action is a single submitted command awaiting resolution.
type Action struct {
	ActorID     string
	AbilityID   string
	TargetID    string
	SubmittedAt time.Time
	Kind        ActionKind
}
