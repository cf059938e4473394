// Package statuseffect implements the StatusEffectManager (spec §4.6):
// applying, ticking, and removing status effects, plus the boolean
// queries handlers need (stunned, invisible, has-effect, armor bonus).
package statuseffect

import (
	"github.com/covenhold/warlock/internal/model"
)

// Manager applies stacking policy and ticks recurring effects. It is
// stateless; all state lives on the model.Player it is given, so a
// single Manager instance is shared by every player in a room.
type Manager struct{}

// New creates a Manager.
func New() *Manager {
	return &Manager{}
}

// Apply merges a new effect of kind onto target per its stack policy.
func (m *Manager) Apply(target *model.Player, kind model.StatusKind, magnitude float64, turns int, sourceID string, policy model.StackPolicy) {
	existing, ok := target.StatusEffects[string(kind)]
	if !ok {
		target.StatusEffects[string(kind)] = &model.StatusEffect{
			Kind:      kind,
			Turns:     turns,
			Magnitude: magnitude,
			SourceID:  sourceID,
			Stack:     policy,
		}
		return
	}

	switch policy {
	case model.StackAdd:
		existing.Magnitude += magnitude
		existing.Turns += turns
	case model.StackLastWrite:
		existing.Magnitude = magnitude
		existing.Turns = turns
		existing.SourceID = sourceID
	default: // model.StackRefresh and unset
		existing.Turns = turns
		if magnitude != 0 {
			existing.Magnitude = magnitude
		}
		existing.SourceID = sourceID
	}
}

// Remove deletes the effect of kind from target, if present.
func (m *Manager) Remove(target *model.Player, kind model.StatusKind) {
	delete(target.StatusEffects, string(kind))
}

// Tick applies recurring effects (poison damage, regen) then decrements
// every effect's remaining turns, removing those that reach zero. It
// returns the HP delta applied by recurring effects (negative for
// poison, positive for regen) so the caller can log/clamp it.
func (m *Manager) Tick(target *model.Player) int {
	delta := 0
	for kind, eff := range target.StatusEffects {
		switch model.StatusKind(kind) {
		case model.StatusPoison:
			delta -= int(eff.Magnitude)
		case model.StatusRegen:
			delta += int(eff.Magnitude)
		}
	}
	for kind, eff := range target.StatusEffects {
		eff.Turns--
		if eff.Turns <= 0 {
			delete(target.StatusEffects, kind)
		}
	}
	return delta
}

// IsStunned reports whether target is currently stunned.
func (m *Manager) IsStunned(target *model.Player) bool {
	return m.HasEffect(target, model.StatusStunned)
}

// IsInvisible reports whether target is currently invisible.
func (m *Manager) IsInvisible(target *model.Player) bool {
	return m.HasEffect(target, model.StatusInvisible)
}

// HasEffect reports whether target carries an effect of kind.
func (m *Manager) HasEffect(target *model.Player, kind model.StatusKind) bool {
	_, ok := target.StatusEffects[string(kind)]
	return ok
}

// GetArmorBonus returns the armor bonus from an active Shielded effect, or 0.
func (m *Manager) GetArmorBonus(target *model.Player) float64 {
	if eff, ok := target.StatusEffects[string(model.StatusShielded)]; ok {
		return eff.Magnitude
	}
	return 0
}

// VulnerabilityIncrease returns the damage-taken multiplier increase from Vulnerable, or 0.
func (m *Manager) VulnerabilityIncrease(target *model.Player) float64 {
	if eff, ok := target.StatusEffects[string(model.StatusVulnerable)]; ok {
		return eff.Magnitude
	}
	return 0
}

// DamageModPenalty returns the damage-dealt reduction from Weakened, or 0.
func (m *Manager) DamageModPenalty(target *model.Player) float64 {
	if eff, ok := target.StatusEffects[string(model.StatusWeakened)]; ok {
		return eff.Magnitude
	}
	return 0
}
