// Package registry implements the process-wide Registry & Lifecycle
// component (spec §4.8): a code → Room map with a capacity cap, a
// concurrent-creation throttle, and reconnect routing. The map itself is
// the only cross-room shared resource in the process — the catalog is
// immutable after load and every Room is single-writer internally — so
// the Registry's own locking is limited to the map and its throttle.
package registry

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/gameerr"
	"github.com/covenhold/warlock/internal/rng"
	"github.com/covenhold/warlock/internal/room"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// codeAlphabet is decimal digits only, per spec §6.3 ("room codes are 4
// decimal digits, uniformly chosen avoiding collisions").
const codeAlphabet = "0123456789"

// Config parameterizes the registry independent of any single room.
type Config struct {
	MaxRooms           int
	MaxConcurrentCreate int64 // semaphore weight; spec §4.8's "creation throttle"
	CodeLength         int
	Room               room.Config
}

// Registry owns every active Room in the process.
type Registry struct {
	cfg     Config
	cat     *catalog.Catalog
	pub     room.Publisher
	logger  *zap.Logger
	sources func() rng.Source

	throttle *semaphore.Weighted

	mu    sync.Mutex
	rooms map[string]*room.Room
}

// New constructs a Registry. sourceFactory mints a fresh rng.Source per
// room (production passes a factory returning rng.CryptoSource{}; tests
// pass one returning a scripted source).
func New(cfg Config, cat *catalog.Catalog, pub room.Publisher, logger *zap.Logger, sourceFactory func() rng.Source) *Registry {
	if cfg.CodeLength <= 0 {
		cfg.CodeLength = 4
	}
	if cfg.MaxConcurrentCreate <= 0 {
		cfg.MaxConcurrentCreate = 4
	}
	return &Registry{
		cfg:      cfg,
		cat:      cat,
		pub:      pub,
		logger:   logger,
		sources:  sourceFactory,
		throttle: semaphore.NewWeighted(cfg.MaxConcurrentCreate),
		rooms:    make(map[string]*room.Room),
	}
}

// CreateRoom mints a fresh room code, constructs a Room, and starts its
// worker goroutine. The semaphore caps how many creations may run
// concurrently (generating a unique code takes a handful of map probes
// under lock); MaxRooms caps the steady-state population.
func (reg *Registry) CreateRoom(ctx context.Context) (*room.Room, string, error) {
	if err := reg.throttle.Acquire(ctx, 1); err != nil {
		return nil, "", gameerr.Transient("room creation is throttled: %v", err)
	}
	defer reg.throttle.Release(1)

	reg.mu.Lock()
	if reg.cfg.MaxRooms > 0 && len(reg.rooms) >= reg.cfg.MaxRooms {
		reg.mu.Unlock()
		return nil, "", gameerr.Capacity("registry is at capacity (%d rooms)", reg.cfg.MaxRooms)
	}
	code, err := reg.uniqueCodeLocked()
	if err != nil {
		reg.mu.Unlock()
		return nil, "", err
	}

	var source rng.Source = rng.CryptoSource{}
	if reg.sources != nil {
		source = reg.sources()
	}
	r := room.New(code, reg.cat, reg.cfg.Room, source, reg.pub, reg.logger)
	reg.rooms[code] = r
	reg.mu.Unlock()

	go func() {
		r.Run()
		reg.remove(code)
	}()

	return r, code, nil
}

// uniqueCodeLocked must be called with mu held.
func (reg *Registry) uniqueCodeLocked() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		code, err := randomCode(reg.cfg.CodeLength)
		if err != nil {
			return "", gameerr.Transient("could not generate a room code: %v", err)
		}
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", gameerr.Transient("exhausted room code attempts")
}

func randomCode(length int) (string, error) {
	// Bytes at or above limit are redrawn so every digit is equally likely.
	limit := 256 - 256%len(codeAlphabet)
	buf := make([]byte, 1)
	out := make([]byte, 0, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		if int(buf[0]) >= limit {
			continue
		}
		out = append(out, codeAlphabet[int(buf[0])%len(codeAlphabet)])
	}
	return string(out), nil
}

// Get looks up a live room by code.
func (reg *Registry) Get(code string) (*room.Room, error) {
	reg.mu.Lock()
	r, ok := reg.rooms[code]
	reg.mu.Unlock()
	if !ok {
		return nil, gameerr.NotFound("no room with code %s", code)
	}
	return r, nil
}

// remove drops code from the map once its room's worker loop has
// returned, whether from an explicit Stop, an idle timeout, or the game
// reaching a terminal winner and the caller tearing it down.
func (reg *Registry) remove(code string) {
	reg.mu.Lock()
	delete(reg.rooms, code)
	reg.mu.Unlock()
	reg.logger.Info("room removed from registry", zap.String("code", code))
}

// ReconnectToGame locates code's room and hands off to its
// ReconnectToGame, the one operation that needs both the registry (to
// find the room) and the room (to validate the grace period and
// transfer connection/host state).
func (reg *Registry) ReconnectToGame(code, connID, name string) (playerID string, err error) {
	r, err := reg.Get(code)
	if err != nil {
		return "", err
	}
	return r.ReconnectToGame(connID, name)
}

// Count returns the number of currently tracked rooms, for metrics/health.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// Shutdown stops every tracked room concurrently, used on process
// shutdown so no worker goroutine is left running past main's return.
// Stopping rooms one at a time would make shutdown latency scale with
// the room count; fanning the Stop calls out bounds it to the slowest
// single room instead.
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	rooms := make([]*room.Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.Unlock()

	var g errgroup.Group
	for _, r := range rooms {
		r := r
		g.Go(func() error {
			r.Stop()
			return nil
		})
	}
	_ = g.Wait()
}
