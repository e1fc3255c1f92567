package state

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/fluid-helper/internal/domain"
)

func newRedisManager(t *testing.T) (*RedisManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m := NewRedisManagerWithClient(client)
	t.Cleanup(func() { m.Close() })
	return m, mr
}

func managers(t *testing.T) map[string]StateManager {
	redisManager, _ := newRedisManager(t)
	return map[string]StateManager{
		"memory": NewManager(),
		"redis":  redisManager,
	}
}

func TestUserState(t *testing.T) {
	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, None, m.GetUserState(42))

			m.SetUserState(42, WaitingForLimit)
			assert.Equal(t, WaitingForLimit, m.GetUserState(42))
			assert.Equal(t, None, m.GetUserState(43))

			m.ClearUserState(42)
			assert.Equal(t, None, m.GetUserState(42))
		})
	}
}

func TestLastBatch(t *testing.T) {
	refs := []domain.RecordRef{{Kind: domain.KindFluid, ID: 7}, {Kind: domain.KindGag, ID: 9}}

	for name, m := range managers(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := m.GetLastBatch(42)
			assert.False(t, ok)

			m.SetLastBatch(42, refs)
			got, ok := m.GetLastBatch(42)
			require.True(t, ok)
			assert.Equal(t, refs, got)

			m.SetLastBatch(42, nil)
			_, ok = m.GetLastBatch(42)
			assert.False(t, ok)

			m.SetLastBatch(42, refs)
			m.ClearLastBatch(42)
			_, ok = m.GetLastBatch(42)
			assert.False(t, ok)
		})
	}
}

func TestMemoryLastBatchIsCopied(t *testing.T) {
	m := NewManager()
	refs := []domain.RecordRef{{Kind: domain.KindFluid, ID: 1}}
	m.SetLastBatch(1, refs)
	refs[0].ID = 99

	got, ok := m.GetLastBatch(1)
	require.True(t, ok)
	assert.Equal(t, uint(1), got[0].ID)
}

func TestRedisStateExpires(t *testing.T) {
	m, mr := newRedisManager(t)
	m.SetUserState(5, WaitingForLimit)
	m.SetLastBatch(5, []domain.RecordRef{{Kind: domain.KindFluid, ID: 1}})

	mr.FastForward(stateTTL + time.Second)

	assert.Equal(t, None, m.GetUserState(5))
	_, ok := m.GetLastBatch(5)
	assert.False(t, ok)
}

func TestRedisUnavailableFallsBack(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	m := NewRedisManagerWithClient(client)
	defer m.Close()

	m.SetUserState(5, WaitingForLimit)
	assert.Equal(t, None, m.GetUserState(5))
	_, ok := m.GetLastBatch(5)
	assert.False(t, ok)
}
