package gamestate_test

import (
	"testing"

	"github.com/covenhold/warlock/internal/gamestate"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func players() []*model.Player {
	a := model.NewPlayer("a", "ca", "Alice")
	a.HP = 50
	b := model.NewPlayer("b", "cb", "Bob")
	b.HP = 10
	c := model.NewPlayer("c", "cc", "Charlie")
	c.HP = 80
	c.Alive = false
	return []*model.Player{a, b, c}
}

func TestAliveFiltersDead(t *testing.T) {
	ps := players()
	alive := gamestate.Alive(ps)
	assert.Len(t, alive, 2)
}

func TestLowestHP(t *testing.T) {
	ps := players()
	assert.Equal(t, "b", gamestate.LowestHP(ps).ID)
}

func TestRandomAliveTargetExcludesSelf(t *testing.T) {
	ps := players()
	target, err := gamestate.RandomAliveTarget(ps, "a", rng.Fixed{Value: 0})
	require.NoError(t, err)
	assert.Equal(t, "b", target.ID)
}

func TestPendingResurrections(t *testing.T) {
	ps := players()
	ps[1].PendingDeath = true
	pending := gamestate.PendingResurrections(ps)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].ID)
}

func TestByID(t *testing.T) {
	ps := players()
	assert.Equal(t, "b", gamestate.ByID(ps, "b").ID)
	assert.Nil(t, gamestate.ByID(ps, "zzz"))
}
