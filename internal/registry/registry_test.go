package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/gameerr"
	"github.com/covenhold/warlock/internal/registry"
	"github.com/covenhold/warlock/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopPublisher struct{}

func (nopPublisher) Broadcast(code, kind string, payload any) {}
func (nopPublisher) SendTo(connID, kind string, payload any)  {}

func testRegistry(t *testing.T, cfg registry.Config) *registry.Registry {
	t.Helper()
	reg := registry.New(cfg, &catalog.Catalog{}, nopPublisher{}, zap.NewNop(), func() rng.Source { return rng.Fixed{Value: 0.5} })
	t.Cleanup(reg.Shutdown)
	return reg
}

func TestCreateRoomAssignsUniqueCode(t *testing.T) {
	reg := testRegistry(t, registry.Config{MaxRooms: 10})
	r1, code1, err := reg.CreateRoom(context.Background())
	require.NoError(t, err)
	r2, code2, err := reg.CreateRoom(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, code1, code2)
	assert.Equal(t, code1, r1.Code)
	assert.Equal(t, code2, r2.Code)
	assert.Equal(t, 2, reg.Count())
}

func TestCreateRoomRejectsAtCapacity(t *testing.T) {
	reg := testRegistry(t, registry.Config{MaxRooms: 1})
	_, _, err := reg.CreateRoom(context.Background())
	require.NoError(t, err)

	_, _, err = reg.CreateRoom(context.Background())
	require.Error(t, err)
	assert.Equal(t, gameerr.CodeCapacity, gameerr.CodeOf(err))
}

func TestGetReturnsNotFoundForUnknownCode(t *testing.T) {
	reg := testRegistry(t, registry.Config{MaxRooms: 10})
	_, err := reg.Get("ZZZZ")
	require.Error(t, err)
	assert.Equal(t, gameerr.CodeNotFound, gameerr.CodeOf(err))
}

func TestShutdownStopsEveryRoom(t *testing.T) {
	reg := registry.New(registry.Config{MaxRooms: 10}, &catalog.Catalog{}, nopPublisher{}, zap.NewNop(), func() rng.Source { return rng.Fixed{Value: 0.5} })
	_, code, err := reg.CreateRoom(context.Background())
	require.NoError(t, err)

	reg.Shutdown()

	require.Eventually(t, func() bool {
		_, err := reg.Get(code)
		return err != nil
	}, time.Second, 5*time.Millisecond, "room should be removed once its worker exits")
}
