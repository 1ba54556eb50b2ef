package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
)

const bearerScheme = "bearer "

// TokenCache is an optional read-through cache in front of the user store.
type TokenCache interface {
	Get(ctx context.Context, token string) (*models.User, bool)
	Set(ctx context.Context, token string, user *models.User) error
}

// BearerToken extracts the token from an Authorization header. ok is false
// when the header is absent or uses another scheme; a bare "Bearer " is
// ok with an empty token.
func BearerToken(header string) (token string, ok bool) {
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	return strings.TrimSpace(header[len(bearerScheme):]), true
}

// Resolver turns bearer credentials into users. It never fails for a
// missing or unknown credential; only store failures are errors. Whether
// "no user" is acceptable is up to the caller.
//
// The user store is the only authority: tokens are opaque strings and are
// matched exactly, whatever their shape or who minted them.
type Resolver struct {
	users  repository.UserRepository
	cache  TokenCache
	logger *zap.Logger
}

// NewResolver wires the user store. cache may be nil.
func NewResolver(users repository.UserRepository, cache TokenCache, logger *zap.Logger) *Resolver {
	return &Resolver{users: users, cache: cache, logger: logger}
}

// Resolve reads an Authorization header value.
func (r *Resolver) Resolve(ctx context.Context, header string) (*models.User, error) {
	token, ok := BearerToken(header)
	if !ok {
		return nil, nil
	}
	return r.ResolveToken(ctx, token)
}

// ResolveToken looks up a bare token.
func (r *Resolver) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	if r.cache != nil {
		if user, ok := r.cache.Get(ctx, token); ok {
			return user, nil
		}
	}

	user, err := r.users.FindByAccessToken(ctx, token)
	if err != nil {
		return nil, &StoreError{Op: "find user by token", Err: err}
	}
	if user == nil {
		return nil, nil
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, token, user); err != nil {
			r.logger.Warn("token cache write failed", zap.Error(err))
		}
	}
	return user, nil
}
