package model

// StatusKind enumerates the status-effect kinds. Every kind shares the one
// flat StatusEffect struct below; there is no per-kind payload type. The
// single Magnitude field is read per kind: damage or healing per turn for
// poison/regen, an armor bonus for shielded, a damage-taken increase for
// vulnerable, and a damage-mod reduction for weakened.
type StatusKind string

const (
	StatusPoison     StatusKind = "poison"
	StatusStunned    StatusKind = "stunned"
	StatusShielded   StatusKind = "shielded"
	StatusInvisible  StatusKind = "invisible"
	StatusVulnerable StatusKind = "vulnerable"
	StatusWeakened   StatusKind = "weakened"
	StatusEnraged    StatusKind = "enraged"
	StatusRegen      StatusKind = "regen"
)

// StackPolicy governs how a newly-applied effect combines with an existing one of the same kind.
type StackPolicy string

const (
	// StackRefresh replaces the turns counter, keeping the existing magnitude if the new one is unset.
	StackRefresh StackPolicy = "refresh"
	// StackAdd adds both magnitude and turns to the existing effect.
	StackAdd StackPolicy = "add"
	// StackLastWrite replaces the effect outright (used for immuneNextDamage-style single-shot flags).
	StackLastWrite StackPolicy = "lastWrite"
)

// StatusEffect is an active, timed modifier on a player.
type StatusEffect struct {
	Kind      StatusKind
	Turns     int
	Magnitude float64
	SourceID  string
	Stack     StackPolicy
}
