package statuseffect_test

import (
	"testing"

	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/statuseffect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRefreshKeepsMagnitudeIfUnset(t *testing.T) {
	mgr := statuseffect.New()
	p := model.NewPlayer("p1", "c1", "Alice")
	mgr.Apply(p, model.StatusPoison, 5, 2, "wizard", model.StackRefresh)
	mgr.Apply(p, model.StatusPoison, 0, 3, "wizard", model.StackRefresh)

	eff := p.StatusEffects[string(model.StatusPoison)]
	require.NotNil(t, eff)
	assert.Equal(t, 5.0, eff.Magnitude)
	assert.Equal(t, 3, eff.Turns)
}

func TestApplyAddStacks(t *testing.T) {
	mgr := statuseffect.New()
	p := model.NewPlayer("p1", "c1", "Alice")
	mgr.Apply(p, model.StatusPoison, 5, 2, "a", model.StackAdd)
	mgr.Apply(p, model.StatusPoison, 3, 1, "b", model.StackAdd)

	eff := p.StatusEffects[string(model.StatusPoison)]
	assert.Equal(t, 8.0, eff.Magnitude)
	assert.Equal(t, 3, eff.Turns)
}

func TestTickAppliesPoisonThenExpires(t *testing.T) {
	mgr := statuseffect.New()
	p := model.NewPlayer("p1", "c1", "Alice")
	mgr.Apply(p, model.StatusPoison, 5, 1, "wizard", model.StackRefresh)

	delta := mgr.Tick(p)
	assert.Equal(t, -5, delta)
	assert.False(t, mgr.HasEffect(p, model.StatusPoison))
}

func TestQueries(t *testing.T) {
	mgr := statuseffect.New()
	p := model.NewPlayer("p1", "c1", "Alice")
	mgr.Apply(p, model.StatusStunned, 0, 1, "x", model.StackRefresh)
	mgr.Apply(p, model.StatusShielded, 0.2, 2, "x", model.StackRefresh)

	assert.True(t, mgr.IsStunned(p))
	assert.Equal(t, 0.2, mgr.GetArmorBonus(p))
	assert.False(t, mgr.IsInvisible(p))
}
