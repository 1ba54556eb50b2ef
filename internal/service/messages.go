package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
	"github.com/lalith-99/happythoughts/internal/validator"
)

// MessageService covers posting, reading and deleting messages. Likes go
// through LikeEngine.
type MessageService struct {
	repo       repository.MessageRepository
	val        *validator.Validator
	lengthRule string
	logger     *zap.Logger
}

// NewMessageService takes optional length bounds in characters; zero
// leaves that side unbounded.
func NewMessageService(repo repository.MessageRepository, val *validator.Validator, minLen, maxLen int, logger *zap.Logger) *MessageService {
	var rules []string
	if minLen > 0 {
		rules = append(rules, fmt.Sprintf("min=%d", minLen))
	}
	if maxLen > 0 {
		rules = append(rules, fmt.Sprintf("max=%d", maxLen))
	}
	return &MessageService{
		repo:       repo,
		val:        val,
		lengthRule: strings.Join(rules, ","),
		logger:     logger,
	}
}

// Create posts text. author is nil for anonymous posts.
func (s *MessageService) Create(ctx context.Context, text string, author *models.User) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if err := s.val.Var(text, s.lengthRule); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var authorID *string
	if author != nil {
		authorID = &author.ID
	}

	msg, err := s.repo.Create(ctx, text, authorID)
	if err != nil {
		return nil, &StoreError{Op: "create message", Err: err}
	}
	return msg, nil
}

func (s *MessageService) Get(ctx context.Context, id string) (*models.Message, error) {
	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, messageErr("get message", err)
	}
	return msg, nil
}

func (s *MessageService) List(ctx context.Context, opts repository.ListOptions) ([]models.Message, error) {
	msgs, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, &StoreError{Op: "list messages", Err: err}
	}
	return msgs, nil
}

// Delete removes a message its requester owns and returns the deleted id.
func (s *MessageService) Delete(ctx context.Context, id string, requester *models.User) (string, error) {
	if requester == nil {
		return "", ErrAuthRequired
	}

	msg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", messageErr("get message", err)
	}
	if err := CanDelete(msg, requester); err != nil {
		return "", err
	}

	deleted, err := s.repo.Delete(ctx, msg.ID)
	if err != nil {
		return "", messageErr("delete message", err)
	}
	s.logger.Info("message deleted",
		zap.String("message_id", deleted.ID),
		zap.String("user_id", requester.ID),
	)
	return deleted.ID, nil
}

// Ping reports store health.
func (s *MessageService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
