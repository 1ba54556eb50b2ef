package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalith-99/happythoughts/internal/models"
)

type mockRedis struct {
	values  map[string]string
	getErr  error
	setErr  error
	lastTTL time.Duration
}

func newMockRedis() *mockRedis {
	return &mockRedis{values: make(map[string]string)}
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	b, _ := value.([]byte)
	m.values[key] = string(b)
	m.lastTTL = expiration
	cmd.SetVal("OK")
	return cmd
}

func TestTokenCache_SetThenGet(t *testing.T) {
	mock := newMockRedis()
	c := &TokenCache{client: mock, ttl: time.Minute}
	user := &models.User{
		ID:           "u1",
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "secret-hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, c.Set(context.Background(), "raw-access-token", user))
	assert.Equal(t, time.Minute, mock.lastTTL)

	for key, raw := range mock.values {
		assert.True(t, strings.HasPrefix(key, tokenPrefix))
		assert.NotContains(t, key, "raw-access-token")
		assert.NotContains(t, raw, "secret-hash")
		var cu cachedUser
		require.NoError(t, json.Unmarshal([]byte(raw), &cu))
	}

	got, ok := c.Get(context.Background(), "raw-access-token")
	require.True(t, ok)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "raw-access-token", got.AccessToken)
	assert.Empty(t, got.PasswordHash)
}

func TestTokenCache_MissAndErrors(t *testing.T) {
	t.Run("nil cache", func(t *testing.T) {
		var c *TokenCache
		_, ok := c.Get(context.Background(), "tok")
		assert.False(t, ok)
		assert.NoError(t, c.Set(context.Background(), "tok", &models.User{ID: "u1"}))
	})

	t.Run("miss", func(t *testing.T) {
		c := &TokenCache{client: newMockRedis(), ttl: time.Minute}
		_, ok := c.Get(context.Background(), "tok")
		assert.False(t, ok)
	})

	t.Run("get error is a miss", func(t *testing.T) {
		mock := newMockRedis()
		mock.getErr = errors.New("connection refused")
		c := &TokenCache{client: mock, ttl: time.Minute}
		_, ok := c.Get(context.Background(), "tok")
		assert.False(t, ok)
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		mock := newMockRedis()
		mock.values[tokenKey("tok")] = "{not json"
		c := &TokenCache{client: mock, ttl: time.Minute}
		_, ok := c.Get(context.Background(), "tok")
		assert.False(t, ok)
	})

	t.Run("set error surfaces", func(t *testing.T) {
		mock := newMockRedis()
		mock.setErr = errors.New("readonly")
		c := &TokenCache{client: mock, ttl: time.Minute}
		assert.Error(t, c.Set(context.Background(), "tok", &models.User{ID: "u1"}))
	})
}

func TestNewTokenCache_NilClient(t *testing.T) {
	assert.Nil(t, NewTokenCache(nil, time.Minute))
}
