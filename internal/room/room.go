// Package room implements the Room orchestrator and phase machine (spec
// §4.1): a single game's lobby, character-select, and active-play state,
// running under a single-writer model (spec §5) so ProcessRound executes
// as one deterministic, lock-free pass from the perspective of its own
// goroutine.
package room

import (
	"time"

	"github.com/covenhold/warlock/internal/ability"
	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/combat"
	"github.com/covenhold/warlock/internal/coordination"
	"github.com/covenhold/warlock/internal/model"
	"github.com/covenhold/warlock/internal/monster"
	"github.com/covenhold/warlock/internal/rng"
	"github.com/covenhold/warlock/internal/statuseffect"
	"github.com/covenhold/warlock/internal/warlock"
	"go.uber.org/zap"
)

// Phase is one state in the room's lifecycle.
type Phase string

const (
	PhaseLobby          Phase = "lobby"
	PhaseCharacterSelect Phase = "characterSelect"
	PhaseAction         Phase = "action"
	PhaseResults        Phase = "results"
	PhaseEnded          Phase = "ended"
)

// Winner is the terminal outcome of a game.
type Winner string

const (
	WinnerNone Winner = "none"
	WinnerGood Winner = "good"
	WinnerEvil Winner = "evil"
)

// Publisher is the boundary the room uses to fan events out to clients.
// internal/bus implements this over whatever wire transport the caller
// chooses; the room never imports a transport package directly.
type Publisher interface {
	Broadcast(code string, kind string, payload any)
	SendTo(connID string, kind string, payload any)
}

// Config parameterizes a room independent of any single game's catalog data.
type Config struct {
	MinPlayers      int
	MaxPlayers      int
	IdleTimeout     time.Duration
	ReconnectGrace  time.Duration
	SubmissionDeadline time.Duration
}

// LevelUpInfo is attached to a RoundResult when the monster was defeated.
type LevelUpInfo struct {
	OldLevel int
	NewLevel int
}

// RoundResult is the outcome of one ProcessRound pass, before per-viewer
// personalization.
type RoundResult struct {
	Turn    int
	Level   int
	Players []*model.Player
	Monster *model.Monster
	Events  []*model.Event
	Winner  Winner
	LevelUp *LevelUpInfo
}

// Room is one game's full mutable state plus the subsystems that operate
// on it. Every exported command method enqueues a closure onto tasks and
// blocks for its result, so all mutation happens on the single owning
// goroutine started by Run — the FIFO single-writer model spec §5
// requires, without needing a lock inside the resolver itself.
type Room struct {
	Code   string
	cat    *catalog.Catalog
	cfg    Config
	pub    Publisher
	logger *zap.Logger

	tasks chan func()
	quit  chan struct{}

	phase   Phase
	turn    int
	level   int
	hostID  string
	players []*model.Player
	monster *model.Monster

	pendingClass  map[string]*model.Action
	pendingRacial map[string]*model.Action

	coord      *coordination.Tracker
	status     *statuseffect.Manager
	combatSys  *combat.System
	warlockSys *warlock.System
	monsterSys *monster.Controller
	abilities  *ability.Registry
	source     rng.Source

	idleTimer *time.Timer
}

// New constructs a Room in PhaseLobby, wiring every subsystem from the
// shared catalog and a dedicated RNG source.
func New(code string, cat *catalog.Catalog, cfg Config, source rng.Source, pub Publisher, logger *zap.Logger) *Room {
	status := statuseffect.New()
	warlockSys := warlock.New(cat.Balance.Warlock, source)
	combatSys := combat.New(cat, status, warlockSys)
	monsterSys := monster.New(cat.Balance.Monster)

	r := &Room{
		Code:          code,
		cat:           cat,
		cfg:           cfg,
		pub:           pub,
		logger:        logger,
		tasks:         make(chan func(), 64),
		quit:          make(chan struct{}),
		phase:         PhaseLobby,
		level:         1,
		pendingClass:  make(map[string]*model.Action),
		pendingRacial: make(map[string]*model.Action),
		coord:         coordination.New(cat.Balance.Coordination.BonusPerAttacker, cat.Balance.Coordination.MaxBonus),
		status:        status,
		combatSys:     combatSys,
		warlockSys:    warlockSys,
		monsterSys:    monsterSys,
		abilities:     ability.NewRegistry(cat),
		source:        source,
	}
	return r
}

// Run drives the room's task queue until Stop is called or ctx-equivalent
// quit channel fires. Callers launch this as `go room.Run()`.
func (r *Room) Run() {
	r.resetIdleTimer()
	for {
		select {
		case task := <-r.tasks:
			task()
			r.resetIdleTimer()
		case <-r.idleTimerC():
			r.logger.Info("room idle timeout", zap.String("code", r.Code))
			close(r.quit)
			return
		case <-r.quit:
			return
		}
	}
}

// Stop tears the room down; safe to call once.
func (r *Room) Stop() {
	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
}

func (r *Room) idleTimerC() <-chan time.Time {
	if r.idleTimer == nil {
		return nil
	}
	return r.idleTimer.C
}

func (r *Room) resetIdleTimer() {
	if r.cfg.IdleTimeout <= 0 {
		return
	}
	if r.idleTimer == nil {
		r.idleTimer = time.NewTimer(r.cfg.IdleTimeout)
		return
	}
	if !r.idleTimer.Stop() {
		select {
		case <-r.idleTimer.C:
		default:
		}
	}
	r.idleTimer.Reset(r.cfg.IdleTimeout)
}

// do enqueues fn and blocks until it has run on the room's worker
// goroutine, returning whatever error fn produced.
func (r *Room) do(fn func() error) error {
	result := make(chan error, 1)
	r.tasks <- func() {
		result <- fn()
	}
	return <-result
}

func (r *Room) playerByConn(connID string) *model.Player {
	for _, p := range r.players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *model.Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// SubmissionDeadline returns the configured per-round action deadline.
// cfg is set once at construction and never mutated afterward, so this
// is safe to read from outside the room's worker goroutine.
func (r *Room) SubmissionDeadline() time.Duration {
	return r.cfg.SubmissionDeadline
}

// Snapshot returns the room's phase, turn, and level, synchronized
// through the worker goroutine like every other read of mutable state.
func (r *Room) Snapshot() (phase Phase, turn, level int) {
	_ = r.do(func() error {
		phase, turn, level = r.phase, r.turn, r.level
		return nil
	})
	return phase, turn, level
}

func (r *Room) aliveNonStunned() []*model.Player {
	var out []*model.Player
	for _, p := range r.players {
		if p.Alive && !p.Disconnected && !r.status.IsStunned(p) {
			out = append(out, p)
		}
	}
	return out
}
