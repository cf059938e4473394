// Package gamestate provides the small query helpers (GameStateUtils,
// spec §4.1.1/§4.5) the resolver and handlers need: alive lists,
// lowest-HP lookups, random-target selection, id lookup, and pending
// resurrections.
package gamestate

import (
	"github.com/covenhold/warlock/internal/gameerr"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/rng"
)

// Alive returns the subset of players with Alive=true.
func Alive(players []*model.Player) []*model.Player {
	var out []*model.Player
	for _, p := range players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// AliveWarlocks returns the subset of alive players with IsWarlock=true.
func AliveWarlocks(players []*model.Player) []*model.Player {
	var out []*model.Player
	for _, p := range players {
		if p.Alive && p.IsWarlock {
			out = append(out, p)
		}
	}
	return out
}

// LowestHP returns the alive player with the lowest HP, or nil if none alive.
func LowestHP(players []*model.Player) *model.Player {
	var lowest *model.Player
	for _, p := range players {
		if !p.Alive {
			continue
		}
		if lowest == nil || p.HP < lowest.HP {
			lowest = p
		}
	}
	return lowest
}

// RandomAliveTarget picks a uniform-random alive player excluding
// excludeID, using source for the draw.
func RandomAliveTarget(players []*model.Player, excludeID string, source rng.Source) (*model.Player, error) {
	var candidates []*model.Player
	for _, p := range players {
		if p.Alive && p.ID != excludeID {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	idx, err := source.Intn(len(candidates))
	if err != nil {
		return nil, gameerr.Wrap(err, "picking random alive target")
	}
	return candidates[idx], nil
}

// PendingResurrections returns every player currently marked pendingDeath.
func PendingResurrections(players []*model.Player) []*model.Player {
	var out []*model.Player
	for _, p := range players {
		if p.PendingDeath {
			out = append(out, p)
		}
	}
	return out
}

// ByID returns the player with the given id, or nil.
func ByID(players []*model.Player, id string) *model.Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	return nil
}
