// Package monster implements the MonsterController (spec §4.5): HP,
// aging, targeting, and respawn-on-level-up for the room's shared
// antagonist.
package monster

import (
	"math"

	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/gamestate"
	"github.com/covenhold/warlock/internal/model"
)

// Controller wraps a model.Monster with the balance coefficients that
// govern its scaling.
type Controller struct {
	balance catalog.MonsterBalance
}

// New creates a Controller parameterized by the catalog's monster balance.
func New(balance catalog.MonsterBalance) *Controller {
	return &Controller{balance: balance}
}

// NewMonster constructs a fresh model.Monster at the given level.
func (c *Controller) NewMonster(level int) *model.Monster {
	maxHP := c.CalcMonsterHP(level)
	return &model.Monster{
		HP:         maxHP,
		MaxHP:      maxHP,
		BaseDamage: c.balance.BaseDamage,
		Age:        0,
		Level:      level,
		Alive:      true,
	}
}

// CalcMonsterHP returns the monster's max HP at level.
func (c *Controller) CalcMonsterHP(level int) int {
	return c.balance.BaseHP + c.balance.HPPerLevel*(level-1)
}

// GetNextDamage returns the damage the monster's next attack would deal,
// exposed to clients as the "nextDamage" hint.
func (c *Controller) GetNextDamage(m *model.Monster) int {
	return int(math.Round(float64(m.BaseDamage) * (1 + float64(m.Age)*c.balance.AgeDamageMultiplier)))
}

// PickTarget selects the lowest-HP visible alive player, or nil if none
// are visible (the swing misses at shadows), per spec §4.1.1 step 6.
func PickTarget(visibleAlive []*model.Player) *model.Player {
	return gamestate.LowestHP(visibleAlive)
}

// Attack ages the monster by one round; callers apply the returned
// damage through CombatSystem against the picked target.
func (c *Controller) Attack(m *model.Monster) (damage int) {
	damage = c.GetNextDamage(m)
	m.Age++
	return damage
}

// Respawn resets the monster at newLevel with recomputed maxHP and age 0.
func (c *Controller) Respawn(m *model.Monster, newLevel int) {
	m.Respawn(newLevel, c.CalcMonsterHP(newLevel))
}
