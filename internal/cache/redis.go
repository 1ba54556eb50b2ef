package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lalith-99/happythoughts/internal/models"
)

const tokenPrefix = "happythoughts:token:"

// opTimeout bounds each cache call. A timeout is a miss.
const opTimeout = 250 * time.Millisecond

type redisGetSetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	cli := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cli.Ping(pingCtx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return cli, nil
}

// cachedUser never holds the password hash.
type cachedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenCache maps access tokens to users. Keys are SHA-256 digests of the
// token. Tokens are never rotated, so entries only expire by TTL.
type TokenCache struct {
	client redisGetSetter
	ttl    time.Duration
}

func NewTokenCache(client *redis.Client, ttl time.Duration) *TokenCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TokenCache{client: client, ttl: ttl}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached user for token. Any failure is a miss.
func (c *TokenCache) Get(ctx context.Context, token string) (*models.User, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, tokenKey(token)).Bytes()
	if err != nil {
		return nil, false
	}
	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil || cu.ID == "" {
		return nil, false
	}
	return &models.User{
		ID:          cu.ID,
		Name:        cu.Name,
		Email:       cu.Email,
		AccessToken: token,
		CreatedAt:   cu.CreatedAt,
	}, true
}

// Set stores user under token.
func (c *TokenCache) Set(ctx context.Context, token string, user *models.User) error {
	if c == nil || c.client == nil || user == nil {
		return nil
	}
	raw, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode cached user: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.client.Set(ctx, tokenKey(token), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
