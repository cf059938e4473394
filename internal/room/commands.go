package room

import (
	"time"

	"github.com/covenhold/warlock/internal/gameerr"
	"github.com/covenhold/warlock/internal/gamestate"
	"github.com/covenhold/warlock/internal/model"
	"github.com/google/uuid"
)

const defaultPlayerMaxHP = 100

// AddPlayer adds a new connection to the lobby, returning the new
// player's stable id.
func (r *Room) AddPlayer(connID, name string) (id string, err error) {
	err = r.do(func() error {
		if r.phase != PhaseLobby && r.phase != PhaseCharacterSelect {
			return gameerr.State("room %s has already started", r.Code)
		}
		if r.cfg.MaxPlayers > 0 && len(r.players) >= r.cfg.MaxPlayers {
			return gameerr.Capacity("room %s is full", r.Code)
		}
		if r.playerByName(name) != nil {
			return gameerr.Validation("name %q is already taken in this room", name)
		}

		p := model.NewPlayer(uuid.NewString(), connID, name)
		p.HP, p.MaxHP = defaultPlayerMaxHP, defaultPlayerMaxHP
		p.SetDamageMod(1.0)
		if len(r.players) == 0 {
			p.IsHost = true
			r.hostID = p.ID
		}
		r.players = append(r.players, p)
		id = p.ID
		if r.phase == PhaseLobby {
			r.phase = PhaseCharacterSelect
		}

		r.pub.Broadcast(r.Code, "PlayerJoined", playerSummaries(r.players))
		r.pub.Broadcast(r.Code, "PlayerList", playerListPayload(r.players, r.hostID))
		return nil
	})
	return id, err
}

// SelectCharacter assigns race and class to a player, validating
// compatibility and initializing class/race-derived state.
func (r *Room) SelectCharacter(playerID, race, class string) error {
	return r.do(func() error {
		if r.phase != PhaseCharacterSelect {
			return gameerr.State("room %s is not selecting characters", r.Code)
		}
		p := gamestate.ByID(r.players, playerID)
		if p == nil {
			return gameerr.NotFound("unknown player %s", playerID)
		}
		raceDef := r.cat.RaceByID(race)
		classDef := r.cat.ClassByID(class)
		if raceDef == nil || classDef == nil {
			return gameerr.NotFound("unknown race or class")
		}
		if !r.cat.Compatible(race, class) {
			return gameerr.Validation("race %s cannot play class %s", race, class)
		}

		p.Race = race
		p.Class = class
		p.BaseArmor = classDef.BaseArmor
		p.EffectiveArmor = classDef.BaseArmor
		p.Level = r.level
		p.Unlocked = make(map[string]bool)
		p.Abilities = nil
		for _, ab := range classDef.Abilities {
			p.Abilities = append(p.Abilities, ab.ID)
			if ab.UnlockAt <= p.Level {
				p.Unlocked[ab.ID] = true
			}
		}
		applyRacialTraits(p, raceDef)

		r.pub.Broadcast(r.Code, "PlayerList", playerListPayload(r.players, r.hostID))
		return nil
	})
}

// MarkReady flags a player ready to start.
func (r *Room) MarkReady(playerID string) error {
	return r.do(func() error {
		if r.phase != PhaseCharacterSelect {
			return gameerr.State("room %s is not in character select", r.Code)
		}
		p := gamestate.ByID(r.players, playerID)
		if p == nil {
			return gameerr.NotFound("unknown player %s", playerID)
		}
		p.Ready = true
		return nil
	})
}

// StartGame transitions CharacterSelect → Active{Action}, requiring
// the caller to be host, every player ready, and the minimum headcount met.
func (r *Room) StartGame(hostID string) error {
	return r.do(func() error {
		if r.phase != PhaseCharacterSelect {
			return gameerr.State("room %s cannot start from phase %s", r.Code, r.phase)
		}
		if hostID != r.hostID {
			return gameerr.Auth("only the host may start the game")
		}
		if len(r.players) < r.cfg.MinPlayers {
			return gameerr.Validation("need at least %d players, have %d", r.cfg.MinPlayers, len(r.players))
		}
		for _, p := range r.players {
			if !p.Ready {
				return gameerr.State("player %s is not ready", p.Name)
			}
		}

		r.monster = r.monsterSys.NewMonster(r.level)
		_, err := r.warlockSys.AssignInitialWarlock(r.players, "")
		if err != nil {
			return err
		}
		r.phase = PhaseAction
		r.turn = 1

		r.pub.Broadcast(r.Code, "GameStarted", map[string]any{
			"players":    playerSummaries(r.players),
			"monster":    r.monster,
			"nextDamage": r.monsterSys.GetNextDamage(r.monster),
		})
		return nil
	})
}

// SubmitAction accepts a class or racial action from a player, advancing
// the phase to Results once every alive, non-stunned player has one
// submitted (or the submission deadline has elapsed — driven externally
// by ForceResolve).
func (r *Room) SubmitAction(playerID, abilityID, targetID string, kind model.ActionKind) (*RoundResult, error) {
	var result *RoundResult
	err := r.do(func() error {
		if r.phase != PhaseAction {
			return gameerr.State("room %s is not accepting actions", r.Code)
		}
		p := gamestate.ByID(r.players, playerID)
		if p == nil {
			return gameerr.NotFound("unknown player %s", playerID)
		}
		if !p.Alive {
			return gameerr.State("player %s is dead", p.Name)
		}
		if r.status.IsStunned(p) {
			return gameerr.State("player %s is stunned", p.Name)
		}
		if kind == model.ActionRacial {
			if raceDef := r.cat.RaceByID(p.Race); raceDef == nil || raceDef.Racial.ID != abilityID {
				return gameerr.Validation("ability %s is not %s's racial ability", abilityID, p.Name)
			}
		} else if !p.Unlocked[abilityID] && p.Racial.AdaptabilitySlot != abilityID {
			return gameerr.Validation("ability %s is not unlocked", abilityID)
		}
		if p.Cooldowns[abilityID] > 0 {
			return gameerr.State("ability %s is on cooldown", abilityID)
		}

		bucket := r.pendingClass
		if kind == model.ActionRacial {
			bucket = r.pendingRacial
		}
		if _, dup := bucket[playerID]; dup {
			return gameerr.State("player %s already submitted a %s action this round", p.Name, kind)
		}
		bucket[playerID] = &model.Action{
			ActorID: playerID, AbilityID: abilityID, TargetID: targetID,
			SubmittedAt: time.Now(), Kind: kind,
		}

		if r.allActionsIn() {
			rr := r.processRound()
			result = rr
		}
		return nil
	})
	return result, err
}

// ForceResolve runs ProcessRound immediately, used when the submission
// deadline elapses with some alive players still silent (they resolve as
// no-ops).
func (r *Room) ForceResolve() (*RoundResult, error) {
	var result *RoundResult
	err := r.do(func() error {
		if r.phase != PhaseAction {
			return gameerr.State("room %s is not in the action phase", r.Code)
		}
		result = r.processRound()
		return nil
	})
	return result, err
}

func (r *Room) allActionsIn() bool {
	for _, p := range r.aliveNonStunned() {
		if _, ok := r.pendingClass[p.ID]; !ok {
			return false
		}
	}
	return true
}

// ReconnectToGame reassociates a disconnected player's persistent id with
// a new connection, transferring host status if they held it.
func (r *Room) ReconnectToGame(connID, name string) (id string, err error) {
	err = r.do(func() error {
		p := r.playerByName(name)
		if p == nil || !p.Disconnected {
			return gameerr.NotFound("no disconnected slot for %q", name)
		}
		if r.cfg.ReconnectGrace > 0 && time.Since(p.DisconnectedAt) > r.cfg.ReconnectGrace {
			return gameerr.State("reconnect grace period has elapsed for %q", name)
		}
		p.ConnID = connID
		p.Disconnected = false
		id = p.ID

		r.pub.SendTo(connID, "GameReconnected", map[string]any{
			"players": playerSummaries(r.players),
			"monster": r.monster,
			"turn":    r.turn,
			"level":   r.level,
			"started": r.phase == PhaseAction || r.phase == PhaseResults,
			"host":    r.hostID,
		})
		return nil
	})
	return id, err
}

// LeaveGame marks a player disconnected and, if they were host, transfers
// host status to the first remaining alive player.
func (r *Room) LeaveGame(playerID string) error {
	return r.do(func() error {
		p := gamestate.ByID(r.players, playerID)
		if p == nil {
			return gameerr.NotFound("unknown player %s", playerID)
		}
		p.Disconnected = true
		p.DisconnectedAt = time.Now()

		if p.ID == r.hostID {
			for _, other := range r.players {
				if other.ID != p.ID && other.Alive && !other.Disconnected {
					other.IsHost = true
					r.hostID = other.ID
					break
				}
			}
		}
		r.pub.Broadcast(r.Code, "PlayerList", playerListPayload(r.players, r.hostID))
		return nil
	})
}

func playerSummaries(players []*model.Player) []map[string]any {
	out := make([]map[string]any, 0, len(players))
	for _, p := range players {
		out = append(out, map[string]any{
			"id": p.ID, "name": p.Name, "race": p.Race, "class": p.Class,
			"hp": p.HP, "maxHp": p.MaxHP, "alive": p.Alive, "level": p.Level,
		})
	}
	return out
}

func playerListPayload(players []*model.Player, hostID string) map[string]any {
	return map[string]any{"players": playerSummaries(players), "host": hostID}
}
