package coordination_test

import (
	"testing"

	"github.com/covenhold/warlock/internal/coordination"
	"github.com/stretchr/testify/assert"
)

// S2 — Coordination: A, B, C each attack Monster, bonusPerAttacker=0.15, maxBonus=0.5.
func TestCoordinationBonusMatchesScenario(t *testing.T) {
	tr := coordination.New(0.15, 0.5)
	tr.Track("A", "monster")
	tr.Track("B", "monster")
	tr.Track("C", "monster")

	assert.InDelta(t, 0.30, tr.BonusFor("A", "monster"), 1e-9)
	assert.InDelta(t, 0.30, tr.BonusFor("B", "monster"), 1e-9)
	assert.InDelta(t, 0.30, tr.BonusFor("C", "monster"), 1e-9)
}

func TestCoordinationBonusCapsAtMax(t *testing.T) {
	tr := coordination.New(0.15, 0.5)
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		tr.Track(id, "monster")
	}
	assert.Equal(t, 0.5, tr.BonusFor("A", "monster"))
}

// Property 4 — coordination monotonicity.
func TestCoordinationMonotonic(t *testing.T) {
	tr := coordination.New(0.1, 1.0)
	tr.Track("A", "T")
	first := tr.BonusFor("A", "T")
	tr.Track("B", "T")
	second := tr.BonusFor("A", "T")
	tr.Track("C", "T")
	third := tr.BonusFor("A", "T")

	assert.LessOrEqual(t, first, second)
	assert.LessOrEqual(t, second, third)
}

func TestResetClearsTracking(t *testing.T) {
	tr := coordination.New(0.15, 0.5)
	tr.Track("A", "monster")
	tr.Reset()
	assert.Equal(t, 0, tr.CountOthersOn("monster", "B"))
}
