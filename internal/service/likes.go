package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
)

// LikeRequest is one "like this message" call as it arrived.
type LikeRequest struct {
	MessageID     string
	Authorization string
	ClientID      string
}

// LikeEngine decides whether a like is accepted and applies it.
//
// A bearer credential takes precedence over a client id. Authenticated
// likes always count: the same user liking twice adds two hearts.
// Anonymous likes count once per client id per message.
type LikeEngine struct {
	messages repository.MessageRepository
	identity *Resolver
	logger   *zap.Logger
}

func NewLikeEngine(messages repository.MessageRepository, identity *Resolver, logger *zap.Logger) *LikeEngine {
	return &LikeEngine{messages: messages, identity: identity, logger: logger}
}

func (e *LikeEngine) Like(ctx context.Context, req LikeRequest) (*models.Message, error) {
	msg, err := e.messages.GetByID(ctx, req.MessageID)
	if err != nil {
		return nil, messageErr("get message", err)
	}

	if token, ok := BearerToken(req.Authorization); ok {
		user, err := e.identity.ResolveToken(ctx, token)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrInvalidToken
		}

		updated, err := e.messages.IncrementHeart(ctx, msg.ID, repository.Like{UserID: user.ID})
		if err != nil {
			return nil, messageErr("like as user", err)
		}
		e.logger.Debug("message liked",
			zap.String("message_id", msg.ID),
			zap.String("user_id", user.ID),
			zap.Int("hearts", updated.HeartCount),
		)
		return updated, nil
	}

	// Blank ids are rejected; any other value is the client identity as sent.
	clientID := req.ClientID
	if strings.TrimSpace(clientID) == "" {
		return nil, ErrClientIDMissing
	}

	// Racing requests from one client are settled by IncrementHeart.
	if msg.LikedByClient(clientID) {
		return nil, ErrAlreadyLiked
	}

	updated, err := e.messages.IncrementHeart(ctx, msg.ID, repository.Like{ClientID: clientID})
	if err != nil {
		return nil, messageErr("like as client", err)
	}
	e.logger.Debug("message liked",
		zap.String("message_id", msg.ID),
		zap.String("client_id", clientID),
		zap.Int("hearts", updated.HeartCount),
	)
	return updated, nil
}
