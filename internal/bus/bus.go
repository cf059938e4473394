// Package bus implements the wire-agnostic message-bus boundary adapter
// (spec §6.1): it fans a room's outbound events out to every subscribed
// connection, or to one connection directly for private events, without
// knowing anything about the transport a Subscriber actually writes to.
package bus

import (
	"sync"

	"go.uber.org/zap"
)

// Subscriber is one connection's outbound sink. Implementations own the
// actual wire framing (websocket, in-process channel, whatever a test
// needs) — the bus only ever calls Send.
type Subscriber interface {
	Send(kind string, payload any) error
}

// Bus tracks, per room code, the set of connections subscribed to it,
// and fans events out preserving per-subscriber emit order: Broadcast
// and SendTo are called synchronously from the room's own worker
// goroutine (see internal/room), so a single room's events are never
// reordered relative to each other even though Bus itself is shared and
// locked across every room in the process.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber          // connID -> subscriber
	rooms       map[string]map[string]struct{} // room code -> set of connID
	logger      *zap.Logger
}

// New constructs an empty Bus.
func New(logger *zap.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]Subscriber),
		rooms:       make(map[string]map[string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers sub as code's connection connID, replacing any
// prior subscriber at that connID (a reconnect reuses the same connID
// slot under a fresh Subscriber).
func (b *Bus) Subscribe(code, connID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[connID] = sub
	if b.rooms[code] == nil {
		b.rooms[code] = make(map[string]struct{})
	}
	b.rooms[code][connID] = struct{}{}
}

// Unsubscribe removes connID from code's broadcast set and drops its
// sink. A disconnected-but-reconnectable player stays in the room's
// player list (spec §4.8 handles that); Unsubscribe only concerns the
// transport-level fan-out set.
func (b *Bus) Unsubscribe(code, connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, connID)
	if conns, ok := b.rooms[code]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(b.rooms, code)
		}
	}
}

// Broadcast sends kind/payload to every connection subscribed to code.
// A single failed Send is logged and skipped, matching the resolver's
// "never let one bad subscriber break the round" policy (spec §7) —
// the bus has no notion of which events matter more than others.
func (b *Bus) Broadcast(code string, kind string, payload any) {
	b.mu.RLock()
	conns := make([]string, 0, len(b.rooms[code]))
	for connID := range b.rooms[code] {
		conns = append(conns, connID)
	}
	subs := make([]Subscriber, 0, len(conns))
	for _, connID := range conns {
		subs = append(subs, b.subscribers[connID])
	}
	b.mu.RUnlock()

	for i, sub := range subs {
		if sub == nil {
			continue
		}
		if err := sub.Send(kind, payload); err != nil {
			b.logger.Warn("broadcast send failed",
				zap.String("room", code), zap.String("connId", conns[i]),
				zap.String("kind", kind), zap.Error(err))
		}
	}
}

// SendTo sends kind/payload to exactly one connection, used for
// per-viewer personalized events (PrivateEvent, RoundResult).
func (b *Bus) SendTo(connID string, kind string, payload any) {
	b.mu.RLock()
	sub, ok := b.subscribers[connID]
	b.mu.RUnlock()
	if !ok {
		b.logger.Warn("sendTo: unknown connection", zap.String("connId", connID), zap.String("kind", kind))
		return
	}
	if err := sub.Send(kind, payload); err != nil {
		b.logger.Warn("sendTo failed", zap.String("connId", connID), zap.String("kind", kind), zap.Error(err))
	}
}

// RoomConnections returns the connection ids currently subscribed to
// code, for diagnostics and tests.
func (b *Bus) RoomConnections(code string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.rooms[code]))
	for connID := range b.rooms[code] {
		out = append(out, connID)
	}
	return out
}
