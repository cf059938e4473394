// Package combat implements the CombatSystem and DamageCalculator (spec
// §4.2): the damage pipeline, the healing pipeline, counter-attacks,
// Stone Armor degradation, delayed (pending) death, and the warlock
// conversion hook.
package combat

import (
	"math"
	"strconv"

	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/gameerr"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/statuseffect"
	"github.com/covenhold/warlock/internal/template"
	"github.com/covenhold/warlock/internal/warlock"
)

// System orchestrates damage and healing application for a room.
type System struct {
	armor      catalog.ArmorBalance
	healing    catalog.HealingBalance
	templates  map[string]catalog.MessageTemplate
	status     *statuseffect.Manager
	warlockSys *warlock.System
}

// New creates a combat System wired to the room's status manager and
// warlock system.
func New(cat *catalog.Catalog, status *statuseffect.Manager, warlockSys *warlock.System) *System {
	return &System{
		armor:      cat.Balance.Armor,
		healing:    cat.Balance.Healing,
		templates:  cat.MessageTemplates,
		status:     status,
		warlockSys: warlockSys,
	}
}

func (s *System) render(kind, viewer string, e *model.Event, data map[string]string) {
	t, ok := s.templates[kind]
	if !ok {
		return
	}
	e.PublicText = template.Render(t.Public, data)
	if t.Attacker != "" {
		e.AttackerText = template.Render(t.Attacker, data)
	}
	if t.Target != "" {
		e.TargetText = template.Render(t.Target, data)
	}
}

// DamageResult carries the outcome of one ApplyDamage call.
type DamageResult struct {
	FinalDamage  int
	Immune       bool
	DeathPending bool
	Events       []*model.Event
}

// ApplyDamage runs the full 9-step damage pipeline from spec §4.2 for one
// (attacker, target) hit. alive is the room's alive-player list, used for
// the warlock-conversion random-target fallback.
func (s *System) ApplyDamage(attacker, target *model.Player, baseDmg int, abilityTarget string, coordBonus float64, alive []*model.Player, isAoE bool, conversionModifier float64) (*DamageResult, error) {
	res := &DamageResult{}

	// Step 1: immunity check (Stone Resolve).
	if target.Racial.ImmuneNextDamage {
		target.Racial.ImmuneNextDamage = false
		res.Immune = true
		e := model.NewEvent("immune")
		e.Public = true
		e.TargetID = target.ID
		s.render("immune", "", e, map[string]string{"target": target.Name})
		res.Events = append(res.Events, e)
		return res, nil
	}

	// Step 2: modified damage.
	vulnIncrease := s.status.VulnerabilityIncrease(target)
	effDamageMod := attacker.DamageMod - s.status.DamageModPenalty(attacker)
	if effDamageMod < 0 {
		effDamageMod = 0
	}
	modDmg := float64(baseDmg) * effDamageMod * (1 + coordBonus) * (1 + vulnIncrease)

	// Step 3: armor mitigation.
	effectiveArmor := target.EffectiveArmor + s.status.GetArmorBonus(target)
	reduction := s.armor.ReductionPerPoint * effectiveArmor
	if reduction > s.armor.MaxReduction {
		reduction = s.armor.MaxReduction
	}
	final := int(math.Floor(modDmg * (1 - reduction)))
	if final < 0 {
		final = 0
	}
	res.FinalDamage = final

	// Step 4: apply.
	target.HP -= final
	if target.HP < 0 {
		target.HP = 0
	}
	attacker.Stats.DamageDealt += final
	target.Stats.DamageTaken += final

	dmgEvent := model.NewEvent("damage")
	dmgEvent.Public = true
	dmgEvent.AttackerID = attacker.ID
	dmgEvent.TargetID = target.ID
	s.render("damage", "", dmgEvent, map[string]string{
		"attacker": attacker.Name,
		"target":   target.Name,
		"amount":   strconv.Itoa(final),
	})
	res.Events = append(res.Events, dmgEvent)

	// Step 5: Rockhewn Stone Armor degradation.
	if target.Race == "rockhewn" && target.Racial.StoneArmorIntact {
		target.Racial.StoneArmorValue--
		e := model.NewEvent("stoneArmorDegraded")
		e.Public = true
		e.TargetID = target.ID
		kind := "stoneArmorDegraded"
		if target.Racial.StoneArmorValue <= 0 {
			target.Racial.StoneArmorIntact = false
			kind = "stoneArmorDestroyed"
			e.Kind = kind
		}
		s.render(kind, "", e, map[string]string{"target": target.Name})
		res.Events = append(res.Events, e)
	}

	// Step 6: mark pending death instead of killing in place.
	if target.HP == 0 {
		target.PendingDeath = true
		target.DeathAttacker = attacker.ID
		res.DeathPending = true
	}

	// Step 7: counter-attacks.
	if eff, ok := target.ClassEffects["spirit_guard"]; ok {
		counter := int(eff.Magnitude)
		attacker.HP -= counter
		if attacker.HP < 0 {
			attacker.HP = 0
		}
		target.Stats.DamageDealt += counter
		attacker.Stats.DamageTaken += counter
		e := model.NewEvent("counterAttack")
		e.Public = true
		e.AttackerID = attacker.ID
		e.TargetID = target.ID
		s.render("counterAttack", "", e, map[string]string{
			"attacker": attacker.Name,
			"target":   target.Name,
			"amount":   strconv.Itoa(counter),
		})
		res.Events = append(res.Events, e)
	}
	if eff, ok := target.ClassEffects["sanctuary_of_truth"]; ok {
		counter := int(eff.Magnitude)
		attacker.HP -= counter
		if attacker.HP < 0 {
			attacker.HP = 0
		}
		e := model.NewEvent("counterAttack")
		e.Public = true
		e.AttackerID = attacker.ID
		e.TargetID = target.ID
		s.render("counterAttack", "", e, map[string]string{
			"attacker": attacker.Name,
			"target":   target.Name,
			"amount":   strconv.Itoa(counter),
		})
		res.Events = append(res.Events, e)
		if attacker.IsWarlock {
			reveal := model.NewEvent("warlockRevealed")
			reveal.VisibleTo[target.ID] = true
			reveal.TargetID = target.ID
			reveal.TargetText = attacker.Name + " is revealed as a warlock"
			res.Events = append(res.Events, reveal)
		}
	}

	// Step 8: warlock conversion attempt. target counts as "alive post-hit"
	// because death is only pending, not finalized, at this point.
	if attacker.IsWarlock && !target.IsWarlock && target.Alive {
		// conversionModifier is applied as given and isAoE is not read.
		// The only caller, the attack handler, resolves single-target
		// attacks and always passes 1.0, so
		// balance.warlock.conversion.aoeModifier is never applied.
		converted, victim, err := s.warlockSys.AttemptConversion(attacker, target, alive, conversionModifier)
		if err != nil {
			return res, gameerr.Wrap(err, "warlock conversion")
		}
		if converted && victim != nil {
			pub := model.NewEvent("corruption")
			pub.Public = true
			s.render("corruption", "", pub, nil)
			priv := model.NewEvent("corruption")
			priv.VisibleTo[victim.ID] = true
			priv.TargetID = victim.ID
			priv.AttackerID = attacker.ID
			tmpl := s.templates["corruption"]
			priv.TargetText = template.Render(tmpl.Target, map[string]string{"attacker": attacker.Name})
			victim.Stats.Corruptions++
			attacker.Stats.Corruptions++
			res.Events = append(res.Events, pub, priv)
		}
	}

	// Step 9: Keen Senses detection hook.
	if attacker.Racial.KeenSenses {
		reveal := model.NewEvent("keenSenses")
		reveal.VisibleTo[target.ID] = true
		reveal.TargetID = target.ID
		if attacker.IsWarlock {
			reveal.TargetText = "Something feels wrong about " + attacker.Name
		}
		res.Events = append(res.Events, reveal)
	}

	return res, nil
}

// ApplyHeal computes floor(base * target.HealingMod) and applies it,
// enforcing the warlock-healing policy from spec §4.2: a warlock may
// only heal itself unless balance.rejectWarlockHealing is false.
func (s *System) ApplyHeal(healer, target *model.Player, baseHeal int) (*model.Event, int, error) {
	if healer.IsWarlock && healer.ID != target.ID && s.healing.RejectWarlockHealing {
		return nil, 0, gameerr.State("warlocks may only heal themselves")
	}

	amount := int(math.Floor(float64(baseHeal) * target.HealingMod))
	target.HP += amount
	if target.HP > target.MaxHP {
		target.HP = target.MaxHP
	}
	healer.Stats.HealingDone += amount

	e := model.NewEvent("heal")
	e.Public = true
	e.AttackerID = healer.ID
	e.TargetID = target.ID
	s.render("heal", "", e, map[string]string{
		"healer": healer.Name,
		"target": target.Name,
		"amount": strconv.Itoa(amount),
	})
	return e, amount, nil
}

// ApplyDamageToMonster runs the monster-targeted variant of the damage
// pipeline: the monster has no armor and never converts, so only the
// modified-damage step (with its own vulnerability debuff) applies.
func (s *System) ApplyDamageToMonster(attacker *model.Player, monster *model.Monster, baseDmg int, coordBonus float64) (*model.Event, int) {
	effDamageMod := attacker.DamageMod - s.status.DamageModPenalty(attacker)
	if effDamageMod < 0 {
		effDamageMod = 0
	}
	modDmg := float64(baseDmg) * effDamageMod * (1 + coordBonus) * (1 + monster.VulnerableMagnitude)
	final := int(math.Floor(modDmg))
	if final < 0 {
		final = 0
	}
	monster.TakeDamage(final)
	attacker.Stats.DamageDealt += final
	attacker.Stats.MonsterDamage += final

	e := model.NewEvent("damage")
	e.Public = true
	e.AttackerID = attacker.ID
	s.render("damage", "", e, map[string]string{
		"attacker": attacker.Name,
		"target":   "the monster",
		"amount":   strconv.Itoa(final),
	})
	return e, final
}

// ApplyMonsterAttack runs the monster's swing against target: immunity,
// vulnerability, and armor mitigation apply exactly as in the player-vs-
// player pipeline, but the monster is never a counter-attack or warlock-
// conversion source.
func (s *System) ApplyMonsterAttack(target *model.Player, baseDmg int) (*DamageResult, error) {
	res := &DamageResult{}

	if target.Racial.ImmuneNextDamage {
		target.Racial.ImmuneNextDamage = false
		res.Immune = true
		e := model.NewEvent("immune")
		e.Public = true
		e.TargetID = target.ID
		s.render("immune", "", e, map[string]string{"target": target.Name})
		res.Events = append(res.Events, e)
		return res, nil
	}

	vulnIncrease := s.status.VulnerabilityIncrease(target)
	modDmg := float64(baseDmg) * (1 + vulnIncrease)

	effectiveArmor := target.EffectiveArmor + s.status.GetArmorBonus(target)
	reduction := s.armor.ReductionPerPoint * effectiveArmor
	if reduction > s.armor.MaxReduction {
		reduction = s.armor.MaxReduction
	}
	final := int(math.Floor(modDmg * (1 - reduction)))
	if final < 0 {
		final = 0
	}
	res.FinalDamage = final

	target.HP -= final
	if target.HP < 0 {
		target.HP = 0
	}
	target.Stats.DamageTaken += final

	e := model.NewEvent("monsterAttack")
	e.Public = true
	e.TargetID = target.ID
	s.render("monsterAttack", "", e, map[string]string{"target": target.Name, "amount": strconv.Itoa(final)})
	res.Events = append(res.Events, e)

	if target.Race == "rockhewn" && target.Racial.StoneArmorIntact {
		target.Racial.StoneArmorValue--
		kind := "stoneArmorDegraded"
		if target.Racial.StoneArmorValue <= 0 {
			target.Racial.StoneArmorIntact = false
			kind = "stoneArmorDestroyed"
		}
		se := model.NewEvent(kind)
		se.Public = true
		se.TargetID = target.ID
		s.render(kind, "", se, map[string]string{"target": target.Name})
		res.Events = append(res.Events, se)
	}

	if target.HP == 0 {
		target.PendingDeath = true
		target.DeathAttacker = ""
		res.DeathPending = true
	}

	return res, nil
}

// ApplyVulnerability applies an Arcane Ward-style debuff to the monster.
func (s *System) ApplyVulnerability(monster *model.Monster, magnitude float64, turns int) {
	monster.VulnerableMagnitude = magnitude
	monster.VulnerableTurns = turns
}

// ExcludesWarlocksFromAoE reports whether AoE heals should skip warlock targets.
func (s *System) ExcludesWarlocksFromAoE() bool {
	return s.healing.ExcludeWarlocksFromAoE
}

