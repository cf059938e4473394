package ability_test

import (
	"testing"

	"github.com/covenhold/warlock/internal/ability"
	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/combat"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/rng"
	"github.com/covenhold/warlock/internal/statuseffect"
	"github.com/covenhold/warlock/internal/warlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Classes: []catalog.Class{
			{
				ID: "warrior",
				Abilities: []catalog.Ability{
					{ID: "slash", Category: "attack", Target: "monster", Cooldown: 0, Params: map[string]any{"baseDamage": 33}},
					{ID: "shield_bash", Category: "defense", Target: "self", Cooldown: 2, Params: map[string]any{"armorBonus": 0.2, "turns": 2}},
				},
			},
			{
				ID: "wizard",
				Abilities: []catalog.Ability{
					{ID: "poison_strike", Category: "attack", Target: "single", Cooldown: 1, Params: map[string]any{
						"baseDamage": 15, "statusKind": "poison", "statusMagnitude": 5.0, "statusTurns": 2,
					}},
					{ID: "arcane_ward", Category: "special", Target: "monster", Cooldown: 3, Params: map[string]any{"vulnerabilityIncrease": 0.25, "turns": 2}},
				},
			},
			{
				ID: "priest",
				Abilities: []catalog.Ability{
					{ID: "heal", Category: "heal", Target: "single", Cooldown: 0, Params: map[string]any{"baseHeal": 40}},
					{ID: "mass_heal", Category: "heal", Target: "multi", Cooldown: 4, Params: map[string]any{"baseHeal": 25}},
					{ID: "sanctuary_of_truth", Category: "defense", Target: "self", Cooldown: 3, Params: map[string]any{"counterDamage": 10, "revealsWarlock": true}},
				},
			},
		},
		Balance: catalog.Balance{
			Armor: catalog.ArmorBalance{ReductionPerPoint: 0.05, MaxReduction: 0.75},
			Healing: catalog.HealingBalance{RejectWarlockHealing: true, ExcludeWarlocksFromAoE: true},
			Warlock: catalog.WarlockBalance{
				Conversion:    catalog.ConversionBalance{BaseChance: 0.2, MaxChance: 0.5, ScalingFactor: 0.3},
				WinConditions: catalog.WinConditionBalance{MajorityThreshold: 0.5},
			},
		},
	}
}

func newFixtures() (*ability.Registry, *combat.System, *statuseffect.Manager, *catalog.Catalog) {
	cat := testCatalog()
	status := statuseffect.New()
	wl := warlock.New(cat.Balance.Warlock, rng.Fixed{Value: 0.99})
	combatSys := combat.New(cat, status, wl)
	reg := ability.NewRegistry(cat)
	return reg, combatSys, status, cat
}

func newPlayer(id, name string) *model.Player {
	p := model.NewPlayer(id, "c-"+id, name)
	p.HP, p.MaxHP = 100, 100
	p.SetDamageMod(1.0)
	p.Unlocked = map[string]bool{
		"slash": true, "shield_bash": true, "poison_strike": true, "arcane_ward": true,
		"heal": true, "mass_heal": true, "sanctuary_of_truth": true,
	}
	return p
}

func TestValidateRejectsUnlocked(t *testing.T) {
	_, _, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")
	actor.Unlocked["slash"] = false
	err := ability.Validate(actor, cat.AbilityByID("slash"), status, nil, nil, &model.Monster{Alive: true})
	assert.Error(t, err)
}

func TestValidateRejectsOnCooldown(t *testing.T) {
	_, _, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")
	actor.Cooldowns["slash"] = 2
	err := ability.Validate(actor, cat.AbilityByID("slash"), status, nil, nil, &model.Monster{Alive: true})
	assert.Error(t, err)
}

func TestValidateRejectsStunned(t *testing.T) {
	_, _, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")
	status.Apply(actor, model.StatusStunned, 0, 1, "src", model.StackRefresh)
	err := ability.Validate(actor, cat.AbilityByID("slash"), status, nil, nil, &model.Monster{Alive: true})
	assert.Error(t, err)
}

func TestDispatchSlashDamagesMonster(t *testing.T) {
	reg, combatSys, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")
	monster := &model.Monster{HP: 100, MaxHP: 100, Alive: true}

	events, err := reg.Dispatch(&ability.Context{
		Self: actor, Monster: monster, Ability: cat.AbilityByID("slash"),
		Combat: combatSys, Status: status,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 67, monster.HP) // floor(33*1.0)
}

func TestDispatchArmsCooldown(t *testing.T) {
	_, combatSys, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")
	ab := cat.AbilityByID("shield_bash")

	reg := ability.NewRegistry(cat)
	_, err := reg.Dispatch(&ability.Context{Self: actor, Ability: ab, Combat: combatSys, Status: status})
	require.NoError(t, err)
	ability.ArmCooldown(actor, ab)
	assert.Equal(t, ab.Cooldown+1, actor.Cooldowns["shield_bash"])
}

func TestDispatchPoisonStrikeAppliesStatus(t *testing.T) {
	reg, combatSys, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")
	target := newPlayer("b", "Bob")

	_, err := reg.Dispatch(&ability.Context{
		Self: actor, Target: target, Alive: []*model.Player{actor, target},
		Ability: cat.AbilityByID("poison_strike"), Combat: combatSys, Status: status,
	})
	require.NoError(t, err)
	assert.True(t, status.HasEffect(target, model.StatusPoison))
}

func TestDispatchArcaneWardAppliesMonsterVulnerability(t *testing.T) {
	reg, combatSys, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")
	monster := &model.Monster{HP: 100, MaxHP: 100, Alive: true}

	_, err := reg.Dispatch(&ability.Context{
		Self: actor, Monster: monster, Ability: cat.AbilityByID("arcane_ward"),
		Combat: combatSys, Status: status,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.25, monster.VulnerableMagnitude)
	assert.Equal(t, 2, monster.VulnerableTurns)
}

func TestDispatchHealSingle(t *testing.T) {
	reg, combatSys, status, cat := newFixtures()
	healer := newPlayer("a", "Alice")
	target := newPlayer("b", "Bob")
	target.HP = 50

	_, err := reg.Dispatch(&ability.Context{
		Self: healer, Target: target, Ability: cat.AbilityByID("heal"),
		Combat: combatSys, Status: status,
	})
	require.NoError(t, err)
	assert.Equal(t, 90, target.HP)
}

func TestDispatchMassHealSkipsWarlocks(t *testing.T) {
	reg, combatSys, status, cat := newFixtures()
	healer := newPlayer("a", "Alice")
	t1 := newPlayer("b", "Bob")
	t1.HP = 50
	t2 := newPlayer("c", "Carol")
	t2.HP = 50
	t2.IsWarlock = true

	_, err := reg.Dispatch(&ability.Context{
		Self: healer, Targets: []*model.Player{t1, t2}, Ability: cat.AbilityByID("mass_heal"),
		Combat: combatSys, Status: status,
	})
	require.NoError(t, err)
	assert.Equal(t, 75, t1.HP)
	assert.Equal(t, 50, t2.HP) // warlock excluded from AoE heal
}

func TestDispatchSanctuaryOfTruthGrantsClassEffect(t *testing.T) {
	reg, combatSys, status, cat := newFixtures()
	actor := newPlayer("a", "Alice")

	_, err := reg.Dispatch(&ability.Context{
		Self: actor, Ability: cat.AbilityByID("sanctuary_of_truth"),
		Combat: combatSys, Status: status,
	})
	require.NoError(t, err)
	eff, ok := actor.ClassEffects["sanctuary_of_truth"]
	require.True(t, ok)
	assert.Equal(t, 10.0, eff.Magnitude)
}
