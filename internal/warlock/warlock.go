// Package warlock implements the WarlockSystem (spec §4.3): assigning,
// counting, converting, and decrementing the hidden warlock role with
// scaling conversion probability.
package warlock

import (
	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/gameerr"
	"github.com/covenhold/warlock/internal/gamestate"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/rng"
)

// System tracks numWarlocks as the single process of truth, updated only
// through mark (initial assignment and conversions) and
// DecrementWarlockCount, never derived from scanning players.
type System struct {
	numWarlocks int
	conversion  catalog.ConversionBalance
	threshold   float64
	source      rng.Source
}

// New creates a System parameterized by the catalog's warlock balance.
func New(balance catalog.WarlockBalance, source rng.Source) *System {
	threshold := balance.WinConditions.MajorityThreshold
	if threshold == 0 {
		threshold = 0.5
	}
	return &System{
		conversion: balance.Conversion,
		threshold:  threshold,
		source:     source,
	}
}

// NumWarlocks returns the current count of truth.
func (s *System) NumWarlocks() int { return s.numWarlocks }

// AssignInitialWarlock picks preferredID if present and alive, else a
// uniform-random alive player, and marks it the warlock.
func (s *System) AssignInitialWarlock(alive []*model.Player, preferredID string) (*model.Player, error) {
	if len(alive) == 0 {
		return nil, gameerr.Invariant("cannot assign initial warlock: no alive players")
	}

	if preferredID != "" {
		for _, p := range alive {
			if p.ID == preferredID && p.Alive {
				s.mark(p)
				return p, nil
			}
		}
	}

	chosen, err := gamestate.RandomAliveTarget(alive, "", s.source)
	if err != nil {
		return nil, gameerr.Wrap(err, "picking initial warlock")
	}
	if chosen == nil {
		return nil, gameerr.Invariant("cannot assign initial warlock: no alive players")
	}
	s.mark(chosen)
	return chosen, nil
}

func (s *System) mark(p *model.Player) {
	p.IsWarlock = true
	s.numWarlocks++
}

// AttemptConversion requires attacker.IsWarlock. If target is nil, a
// random alive non-warlock from alive is picked. It draws r ~ U[0,1) and
// converts iff r < min(maxChance, baseChance + scalingFactor *
// (numWarlocks/len(alive))) * modifier * (1 + random*randomModifier).
// On success it sets the target's warlock flag and increments the count.
func (s *System) AttemptConversion(attacker *model.Player, target *model.Player, alive []*model.Player, modifier float64) (converted bool, victim *model.Player, err error) {
	if !attacker.IsWarlock {
		return false, nil, gameerr.Invariant("AttemptConversion called with non-warlock attacker %s", attacker.ID)
	}

	if target == nil {
		var candidates []*model.Player
		for _, p := range alive {
			if p.Alive && !p.IsWarlock {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return false, nil, nil
		}
		idx, pickErr := s.source.Intn(len(candidates))
		if pickErr != nil {
			return false, nil, gameerr.Wrap(pickErr, "picking conversion target")
		}
		target = candidates[idx]
	}

	if target.IsWarlock {
		return false, target, nil
	}

	aliveCount := 0
	for _, p := range alive {
		if p.Alive {
			aliveCount++
		}
	}
	if aliveCount == 0 {
		return false, target, nil
	}

	chance := s.conversion.BaseChance + s.conversion.ScalingFactor*(float64(s.numWarlocks)/float64(aliveCount))
	if chance > s.conversion.MaxChance {
		chance = s.conversion.MaxChance
	}
	chance *= modifier
	chance *= 1 + s.source.Float64()*s.conversion.RandomModifier

	r := s.source.Float64()
	if r < chance {
		s.mark(target)
		return true, target, nil
	}
	return false, target, nil
}

// ForceConvert deterministically converts target, bypassing probability,
// for scripted effects. A target that is already a warlock is left as is.
func (s *System) ForceConvert(target *model.Player) {
	if target.IsWarlock {
		return
	}
	s.mark(target)
}

// DecrementWarlockCount is called once per warlock death, clamped at 0.
func (s *System) DecrementWarlockCount() {
	if s.numWarlocks > 0 {
		s.numWarlocks--
	}
}

// AreWarlocksWinning reports whether alive warlocks form a strict
// majority of alive players per the configured threshold (default strict
// majority: warlocks*2 > alive).
func (s *System) AreWarlocksWinning(aliveWarlocks, aliveTotal int) bool {
	if aliveTotal == 0 {
		return false
	}
	return float64(aliveWarlocks) > float64(aliveTotal)*s.threshold
}
