package bus_test

import (
	"errors"
	"testing"

	"github.com/covenhold/warlock/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSubscriber struct {
	kinds    []string
	payloads []any
	failNext bool
}

func (r *recordingSubscriber) Send(kind string, payload any) error {
	if r.failNext {
		r.failNext = false
		return errors.New("boom")
	}
	r.kinds = append(r.kinds, kind)
	r.payloads = append(r.payloads, payload)
	return nil
}

func TestBroadcastFansOutToEverySubscriberInRoom(t *testing.T) {
	b := bus.New(zap.NewNop())
	a1, a2, other := &recordingSubscriber{}, &recordingSubscriber{}, &recordingSubscriber{}
	b.Subscribe("1234", "conn-a1", a1)
	b.Subscribe("1234", "conn-a2", a2)
	b.Subscribe("9999", "conn-other", other)

	b.Broadcast("1234", "PlayerJoined", map[string]any{"name": "Alice"})

	require.Len(t, a1.kinds, 1)
	require.Len(t, a2.kinds, 1)
	assert.Empty(t, other.kinds)
	assert.Equal(t, "PlayerJoined", a1.kinds[0])
}

func TestSendToReachesOnlyOneConnection(t *testing.T) {
	b := bus.New(zap.NewNop())
	a, other := &recordingSubscriber{}, &recordingSubscriber{}
	b.Subscribe("1234", "conn-a", a)
	b.Subscribe("1234", "conn-other", other)

	b.SendTo("conn-a", "RoundResult", map[string]any{"turn": 1})

	require.Len(t, a.kinds, 1)
	assert.Empty(t, other.kinds)
}

func TestBroadcastSkipsFailingSubscriberWithoutStoppingOthers(t *testing.T) {
	b := bus.New(zap.NewNop())
	broken, fine := &recordingSubscriber{failNext: true}, &recordingSubscriber{}
	b.Subscribe("1234", "conn-broken", broken)
	b.Subscribe("1234", "conn-fine", fine)

	b.Broadcast("1234", "GameStarted", nil)

	assert.Empty(t, broken.kinds)
	assert.Len(t, fine.kinds, 1)
}

func TestUnsubscribeRemovesFromBroadcastSet(t *testing.T) {
	b := bus.New(zap.NewNop())
	sub := &recordingSubscriber{}
	b.Subscribe("1234", "conn-a", sub)
	b.Unsubscribe("1234", "conn-a")

	b.Broadcast("1234", "PlayerList", nil)

	assert.Empty(t, sub.kinds)
	assert.Empty(t, b.RoomConnections("1234"))
}

func TestSendToUnknownConnectionDoesNotPanic(t *testing.T) {
	b := bus.New(zap.NewNop())
	assert.NotPanics(t, func() {
		b.SendTo("ghost", "ErrorMessage", nil)
	})
}
