// Package ability implements the AbilityRegistry (spec §4.1.2): validating
// an action against its ability definition, dispatching to the handler for
// its category (attack, heal, defense, special), and arming the cooldown on
// success.
package ability

import (
	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/combat"
	"github.com/covenhold/warlock/internal/gameerr"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/statuseffect"
)

// Context bundles everything a handler needs to resolve one ability use.
// Self and Target/Targets/Monster are mutated in place; the handler
// returns the events the use produced.
type Context struct {
	Self       *model.Player
	Target     *model.Player   // set when ability.Target is "self" or "single"
	Targets    []*model.Player // set when ability.Target is "multi"
	Monster    *model.Monster  // set when ability.Target is "monster"
	Alive      []*model.Player // room's alive roster, for conversion rolls
	CoordBonus float64

	Ability *catalog.Ability
	Combat  *combat.System
	Status  *statuseffect.Manager
}

// Handler resolves one ability use and returns the events it produced.
type Handler func(ctx *Context) ([]*model.Event, error)

// Registry maps an ability id to its resolution handler.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds a Registry from every ability in the catalog, picking
// a generic handler by category. Category-specific parameters (damage,
// heal amount, status kind, armor bonus, ...) live in ability.Params and
// are read by the handler at dispatch time, so one handler per category
// covers every class's abilities of that category.
func NewRegistry(cat *catalog.Catalog) *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	for _, cls := range cat.Classes {
		for i := range cls.Abilities {
			ab := cls.Abilities[i]
			switch ab.Category {
			case "attack":
				r.handlers[ab.ID] = attackHandler
			case "heal":
				r.handlers[ab.ID] = healHandler
			case "defense":
				r.handlers[ab.ID] = defenseHandler
			case "special":
				r.handlers[ab.ID] = specialHandler
			}
		}
	}
	return r
}

// Dispatch looks up the handler for ctx.Ability.ID and runs it.
func (r *Registry) Dispatch(ctx *Context) ([]*model.Event, error) {
	h, ok := r.handlers[ctx.Ability.ID]
	if !ok {
		return nil, gameerr.NotFound("no handler registered for ability " + ctx.Ability.ID)
	}
	return h(ctx)
}

// Validate checks the preconditions spec §4.1.2 requires before an ability
// use may be dispatched: actor alive, not stunned, ability unlocked,
// cooldown elapsed, and a target appropriate to the ability's target kind.
func Validate(actor *model.Player, ab *catalog.Ability, status *statuseffect.Manager, target *model.Player, targets []*model.Player, monster *model.Monster) error {
	if !actor.Alive {
		return gameerr.State("actor is not alive")
	}
	if status.IsStunned(actor) {
		return gameerr.State("actor is stunned")
	}
	if !actor.Unlocked[ab.ID] {
		return gameerr.Validation("ability not unlocked")
	}
	if actor.Cooldowns[ab.ID] > 0 {
		return gameerr.State("ability is on cooldown")
	}

	switch ab.Target {
	case "self":
		// no external target required
	case "single":
		if target == nil || !target.Alive {
			return gameerr.Validation("single-target ability requires a living target")
		}
	case "multi":
		if len(targets) == 0 {
			return gameerr.Validation("multi-target ability requires at least one target")
		}
	case "monster":
		if monster == nil || !monster.Alive {
			return gameerr.Validation("monster is not available as a target")
		}
	default:
		return gameerr.Invariant("ability " + ab.ID + " has unknown target kind " + ab.Target)
	}
	return nil
}

// ArmCooldown sets the ability's cooldown to cooldown+1 on a successful
// use. The extra 1 is taken off by the cooldown tick (step 9) of the same
// round, so the round's result shows the raw cooldown and a 0-cooldown
// ability is usable again next round.
func ArmCooldown(actor *model.Player, ab *catalog.Ability) {
	actor.Cooldowns[ab.ID] = ab.Cooldown + 1
}

func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func floatParam(params map[string]any, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func attackHandler(ctx *Context) ([]*model.Event, error) {
	baseDamage := intParam(ctx.Ability.Params, "baseDamage")

	if ctx.Ability.Target == "monster" {
		e, _ := ctx.Combat.ApplyDamageToMonster(ctx.Self, ctx.Monster, baseDamage, ctx.CoordBonus)
		ctx.Self.Stats.Kills += killDelta(ctx.Monster)
		return []*model.Event{e}, nil
	}

	res, err := ctx.Combat.ApplyDamage(ctx.Self, ctx.Target, baseDamage, ctx.Ability.Target, ctx.CoordBonus, ctx.Alive, false, 1.0)
	if err != nil {
		return nil, err
	}
	events := res.Events

	if kind := stringParam(ctx.Ability.Params, "statusKind"); kind != "" {
		magnitude := floatParam(ctx.Ability.Params, "statusMagnitude")
		turns := intParam(ctx.Ability.Params, "statusTurns")
		ctx.Status.Apply(ctx.Target, model.StatusKind(kind), magnitude, turns, ctx.Self.ID, model.StackRefresh)
	}
	return events, nil
}

// killDelta reports 1 the instant a monster attack brings it to 0 HP, so
// the caller can credit a kill without re-deriving it from HP state later.
func killDelta(m *model.Monster) int {
	if m.HP == 0 {
		return 1
	}
	return 0
}

func healHandler(ctx *Context) ([]*model.Event, error) {
	baseHeal := intParam(ctx.Ability.Params, "baseHeal")

	if ctx.Ability.Target == "multi" {
		var events []*model.Event
		for _, t := range ctx.Targets {
			if t.IsWarlock && ctx.Combat.ExcludesWarlocksFromAoE() {
				continue
			}
			e, _, err := ctx.Combat.ApplyHeal(ctx.Self, t, baseHeal)
			if err != nil {
				continue
			}
			events = append(events, e)
		}
		return events, nil
	}

	e, _, err := ctx.Combat.ApplyHeal(ctx.Self, ctx.Target, baseHeal)
	if err != nil {
		return nil, err
	}
	return []*model.Event{e}, nil
}

func defenseHandler(ctx *Context) ([]*model.Event, error) {
	params := ctx.Ability.Params

	if _, ok := params["armorBonus"]; ok {
		turns := intParam(params, "turns")
		ctx.Status.Apply(ctx.Self, model.StatusShielded, floatParam(params, "armorBonus"), turns, ctx.Self.ID, model.StackRefresh)
		e := model.NewEvent("shielded")
		e.Public = true
		e.TargetID = ctx.Self.ID
		return []*model.Event{e}, nil
	}

	if _, ok := params["counterDamage"]; ok {
		ctx.Self.ClassEffects["sanctuary_of_truth"] = &model.ClassEffect{
			Kind:      "sanctuary_of_truth",
			Magnitude: floatParam(params, "counterDamage"),
			Turns:     1,
		}
		e := model.NewEvent("sanctuaryOfTruth")
		e.Public = true
		e.TargetID = ctx.Self.ID
		return []*model.Event{e}, nil
	}

	return nil, gameerr.Invariant("defense ability " + ctx.Ability.ID + " has no recognized params")
}

func specialHandler(ctx *Context) ([]*model.Event, error) {
	params := ctx.Ability.Params

	if _, ok := params["vulnerabilityIncrease"]; ok {
		ctx.Combat.ApplyVulnerability(ctx.Monster, floatParam(params, "vulnerabilityIncrease"), intParam(params, "turns"))
		e := model.NewEvent("arcaneWard")
		e.Public = true
		return []*model.Event{e}, nil
	}

	return nil, gameerr.Invariant("special ability " + ctx.Ability.ID + " has no recognized params")
}
