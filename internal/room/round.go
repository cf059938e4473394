package room

import (
	"sort"
	"strconv"

	"github.com/covenhold/warlock/internal/ability"
	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/gamestate"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/monster"
	"go.uber.org/zap"
)

func racialParamFloat(params map[string]any, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// applyRacialTraits sets up the passive/charge state a race grants at
// character-select time. Stone Armor, Undying, and Keen Senses are
// passives or standing charges that need no per-round activation;
// Adaptability and Stone Resolve are activated later via a racial action
// (see resolveRacialActions), so only their use-budget is seeded here.
func applyRacialTraits(p *model.Player, raceDef *catalog.Race) {
	racial := raceDef.Racial
	p.Racial.Usage = model.RacialUsage(racial.Usage)
	p.Racial.UsesRemaining = racial.MaxUses

	switch racial.ID {
	case "stone_armor":
		p.Racial.StoneArmorIntact = true
		p.Racial.StoneArmorValue = int(racialParamFloat(racial.Params, "stoneArmorValue"))
	case "undying":
		p.Racial.UndyingCharge = true
	case "keen_senses":
		p.Racial.KeenSenses = true
	}
}

// resetPerRoundRacials refills any perRound racial use budget at the top
// of a round, per RacialUsagePerRound.
func (r *Room) resetPerRoundRacials() {
	for _, p := range r.players {
		if p.Racial.Usage != model.RacialUsagePerRound {
			continue
		}
		raceDef := r.cat.RaceByID(p.Race)
		if raceDef == nil {
			continue
		}
		p.Racial.UsesRemaining = raceDef.Racial.MaxUses
	}
}

// resolveRacialActions runs step 2 of ProcessRound: racial
// passives/activations, in stable submission order.
func (r *Room) resolveRacialActions() []*model.Event {
	actions := make([]*model.Action, 0, len(r.pendingRacial))
	for _, a := range r.pendingRacial {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].SubmittedAt.Before(actions[j].SubmittedAt) })

	var events []*model.Event
	for _, a := range actions {
		p := gamestate.ByID(r.players, a.ActorID)
		if p == nil || !p.Alive {
			continue
		}
		switch a.AbilityID {
		case "stone_resolve":
			if p.Race != "lich" || p.Racial.UsesRemaining <= 0 {
				continue
			}
			p.Racial.UsesRemaining--
			p.Racial.ImmuneNextDamage = true
			e := model.NewEvent("stoneResolve")
			e.Public = false
			e.TargetID = p.ID
			e.TargetText = "You brace yourself; the next hit will not land"
			events = append(events, e)
		case "adaptability":
			if p.Race != "human" || p.Racial.UsesRemaining <= 0 {
				continue
			}
			p.Racial.UsesRemaining--
			p.Racial.AdaptabilitySlot = a.TargetID // TargetID carries the borrowed ability id
			e := model.NewEvent("adaptability")
			e.Public = false
			e.TargetID = p.ID
			e.TargetText = "You adapt, borrowing a stranger's technique for this round"
			events = append(events, e)
		}
	}
	return events
}

// sortedClassActions implements step 3: validate and sort by
// (ability.order ASC, submittedAt ASC, actorId ASC).
func (r *Room) sortedClassActions() []*model.Action {
	actions := make([]*model.Action, 0, len(r.pendingClass))
	for _, a := range r.pendingClass {
		if r.cat.AbilityByID(a.AbilityID) != nil {
			actions = append(actions, a)
		}
	}
	sort.Slice(actions, func(i, j int) bool {
		ai, aj := r.cat.AbilityByID(actions[i].AbilityID), r.cat.AbilityByID(actions[j].AbilityID)
		if ai.Order != aj.Order {
			return ai.Order < aj.Order
		}
		if !actions[i].SubmittedAt.Equal(actions[j].SubmittedAt) {
			return actions[i].SubmittedAt.Before(actions[j].SubmittedAt)
		}
		return actions[i].ActorID < actions[j].ActorID
	})
	return actions
}

// processRound runs the full 13-step pipeline from spec §4.1.1 and
// returns the RoundResult. Called only from within a task closure, so it
// always executes on the room's single worker goroutine.
func (r *Room) processRound() *RoundResult {
	var events []*model.Event

	// Step 1: snapshot is implicit — r.players/r.monster are the live state
	// this whole pass reads and mutates; pending actions already buffered.
	r.resetPerRoundRacials()

	// Step 2: racial passives/activations.
	events = append(events, r.resolveRacialActions()...)

	// Step 3: validate & sort class actions.
	sorted := r.sortedClassActions()

	// Step 4: coordination tracker, attack actions only.
	r.coord.Reset()
	for _, a := range sorted {
		ab := r.cat.AbilityByID(a.AbilityID)
		if ab.Category == "attack" {
			r.coord.Track(a.ActorID, a.TargetID)
		}
	}

	// Step 5: execute actions in order via AbilityRegistry.
	alive := gamestate.Alive(r.players)
	for _, a := range sorted {
		actor := gamestate.ByID(r.players, a.ActorID)
		ab := r.cat.AbilityByID(a.AbilityID)
		if actor == nil || ab == nil {
			continue
		}

		var target *model.Player
		var targets []*model.Player
		switch ab.Target {
		case "self":
			target = actor
		case "single":
			target = gamestate.ByID(r.players, a.TargetID)
		case "multi":
			targets = alive
		case "monster":
			// no player target
		}

		if err := ability.Validate(actor, ab, r.status, target, targets, r.monster); err != nil {
			e := model.NewEvent("error")
			e.Public = true
			e.PublicText = "Something went wrong"
			e.TargetID = actor.ID
			events = append(events, e)
			continue
		}

		coordBonus := 0.0
		if ab.Category == "attack" {
			coordBonus = r.coord.BonusFor(actor.ID, a.TargetID)
		}

		produced, err := r.abilities.Dispatch(&ability.Context{
			Self: actor, Target: target, Targets: targets, Monster: r.monster,
			Alive: alive, CoordBonus: coordBonus, Ability: ab,
			Combat: r.combatSys, Status: r.status,
		})
		if err != nil {
			r.logger.Warn("ability handler failed",
				zap.String("room", r.Code), zap.String("ability", ab.ID), zap.Error(err))
			e := model.NewEvent("error")
			e.Public = true
			e.PublicText = "Something went wrong"
			events = append(events, e)
			continue
		}
		events = append(events, produced...)
		ability.ArmCooldown(actor, ab)
	}

	// Step 6: monster turn.
	if r.monster != nil && r.monster.Alive {
		visible := make([]*model.Player, 0, len(alive))
		for _, p := range alive {
			if !r.status.IsInvisible(p) {
				visible = append(visible, p)
			}
		}
		target := monster.PickTarget(visible)
		if target == nil {
			e := model.NewEvent("monsterMiss")
			e.Public = true
			e.PublicText = "The monster swings at shadows and hits nothing"
			events = append(events, e)
		} else {
			dmg := r.monsterSys.Attack(r.monster)
			res, err := r.combatSys.ApplyMonsterAttack(target, dmg)
			if err == nil {
				events = append(events, res.Events...)
			}
		}
	}

	// Step 7: process pending deaths.
	resurrectedThisRound := make(map[string]bool)
	for _, p := range gamestate.PendingResurrections(r.players) {
		if p.Racial.UndyingCharge {
			p.Racial.UndyingCharge = false
			p.PendingDeath = false
			p.HP = 1
			resurrectedThisRound[p.ID] = true
			e := model.NewEvent("resurrected")
			e.Public = true
			e.PublicText = p.Name + " clings to unlife and rises again"
			events = append(events, e)
			continue
		}
		p.PendingDeath = false
		p.Alive = false
		if p.IsWarlock {
			r.warlockSys.DecrementWarlockCount()
		}
		e := model.NewEvent("death")
		e.Public = true
		e.PublicText = p.Name + " has fallen"
		events = append(events, e)
	}

	// Step 8: tick status effects. A player resurrected by their Undying
	// charge this round already spent their one reprieve in step 7; their
	// lingering status effects (e.g. the same poison that just killed
	// them) resume ticking next round instead of finishing them off a
	// second time in the round they clung back to life.
	for _, p := range r.players {
		if !p.Alive || resurrectedThisRound[p.ID] {
			continue
		}
		delta := r.status.Tick(p)
		if delta != 0 {
			p.HP += delta
			p.ClampHP()
			if p.HP == 0 {
				if p.Racial.UndyingCharge {
					p.Racial.UndyingCharge = false
					p.HP = 1
					e := model.NewEvent("resurrected")
					e.Public = true
					e.PublicText = p.Name + " clings to unlife and rises again"
					events = append(events, e)
				} else {
					p.Alive = false
					if p.IsWarlock {
						r.warlockSys.DecrementWarlockCount()
					}
					e := model.NewEvent("death")
					e.Public = true
					e.PublicText = p.Name + " has fallen"
					events = append(events, e)
				}
			}
		}
	}
	if r.monster != nil {
		r.monster.TickVulnerability()
	}

	// Step 9: tick ability cooldowns.
	for _, p := range r.players {
		for id, cd := range p.Cooldowns {
			if cd > 0 {
				p.Cooldowns[id] = cd - 1
			}
		}
	}

	// Step 10: monster respawn / level up.
	var levelUp *LevelUpInfo
	if r.monster != nil && r.monster.HP <= 0 && len(gamestate.PendingResurrections(r.players)) == 0 {
		old := r.level
		r.level++
		levelUp = &LevelUpInfo{OldLevel: old, NewLevel: r.level}
		for _, p := range r.players {
			if !p.Alive {
				continue
			}
			p.Level = r.level
			classDef := r.cat.ClassByID(p.Class)
			if classDef != nil {
				for _, ab := range classDef.Abilities {
					if ab.UnlockAt == r.level {
						p.Unlocked[ab.ID] = true
					}
				}
			}
			if r.cat.Balance.FullHealOnLevelUp {
				p.HP = p.MaxHP
			}
		}
		r.monsterSys.Respawn(r.monster, r.level)
		e := model.NewEvent("levelUp")
		e.Public = true
		e.PublicText = "The party grows stronger. Level " + strconv.Itoa(r.level) + " reached."
		events = append(events, e)
	}

	// Step 11: evaluate win conditions.
	winner := r.evaluateWinner()
	if winner != WinnerNone {
		r.phase = PhaseEnded
	}

	result := &RoundResult{
		Turn: r.turn, Level: r.level, Players: r.players, Monster: r.monster,
		Events: events, Winner: winner, LevelUp: levelUp,
	}

	// Step 12: emit personalized roundResult.
	r.broadcastRoundResult(result)

	// Step 13: clear buffers and coordination tracker, advance turn.
	r.pendingClass = make(map[string]*model.Action)
	r.pendingRacial = make(map[string]*model.Action)
	r.coord.Reset()
	r.turn++

	return result
}

// evaluateWinner implements spec §4.4, evaluated after pending-death
// processing: MonsterDefeated alone never ends the game.
func (r *Room) evaluateWinner() Winner {
	alive := gamestate.Alive(r.players)
	if len(alive) == 0 {
		return WinnerEvil
	}
	warlocks := gamestate.AliveWarlocks(r.players)
	if len(warlocks) == len(alive) {
		return WinnerEvil
	}
	if len(warlocks) == 0 {
		return WinnerGood
	}
	if r.warlockSys.AreWarlocksWinning(len(warlocks), len(alive)) {
		return WinnerEvil
	}
	return WinnerNone
}

func (r *Room) broadcastRoundResult(result *RoundResult) {
	for _, p := range r.players {
		if p.Disconnected {
			continue
		}
		var visible []map[string]any
		for _, e := range result.Events {
			if !e.ShouldShow(p.ID) {
				continue
			}
			visible = append(visible, map[string]any{
				"kind": e.Kind, "text": e.TextFor(p.ID), "public": e.Public,
			})
		}
		payload := map[string]any{
			"players": playerSummaries(result.Players),
			"monster": result.Monster,
			"events":  visible,
			"winner":  result.Winner,
			"turn":    result.Turn,
			"level":   result.Level,
		}
		if result.Monster != nil && result.Monster.Alive {
			payload["nextDamage"] = r.monsterSys.GetNextDamage(result.Monster)
		}
		if result.LevelUp != nil {
			payload["levelUp"] = result.LevelUp
		}
		r.pub.SendTo(p.ConnID, "RoundResult", payload)
	}
}
