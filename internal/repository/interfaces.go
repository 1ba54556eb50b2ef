package repository

import (
	"context"
	"errors"

	"github.com/lalith-99/happythoughts/internal/models"
)

// Storage errors. Implementations wrap driver failures with %w and return
// these sentinels for the cases callers branch on.
var (
	// ErrNotFound means no record has the given id.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidID means the id is not in the store's id format. It is
	// distinct from ErrNotFound so the API can answer 400 instead of 404.
	ErrInvalidID = errors.New("invalid id format")

	// ErrAlreadyLiked means the conditional like update found the client
	// id already recorded on the message. Nothing was written.
	ErrAlreadyLiked = errors.New("already liked")

	// ErrDuplicate is a unique constraint violation (email, access token).
	ErrDuplicate = errors.New("duplicate record")
)

// Like describes who is liking a message. Exactly one of UserID and
// ClientID is set.
type Like struct {
	UserID   string
	ClientID string
}

// MessageRepository is the message store.
type MessageRepository interface {
	// Create persists a new message with zero hearts and empty liked-by
	// sets. authorID is nil for anonymous messages.
	Create(ctx context.Context, text string, authorID *string) (*models.Message, error)

	// GetByID returns ErrInvalidID for a malformed id and ErrNotFound when
	// no message has it.
	GetByID(ctx context.Context, id string) (*models.Message, error)

	// List returns messages matching opts. Returns an empty slice, not nil.
	List(ctx context.Context, opts ListOptions) ([]models.Message, error)

	// IncrementHeart adds one heart and records the liker in a single
	// atomic update.
	//
	// For a client like, the update only applies if the client id is not
	// already recorded; otherwise it returns ErrAlreadyLiked. For a user
	// like, the count always moves and the user id is added to the set
	// if missing.
	IncrementHeart(ctx context.Context, id string, like Like) (*models.Message, error)

	// Delete removes the message and returns it as it was.
	Delete(ctx context.Context, id string) (*models.Message, error)

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
}

// UserRepository is the user directory.
type UserRepository interface {
	// Create returns ErrDuplicate if the email or token is taken.
	Create(ctx context.Context, user models.User) (*models.User, error)

	// GetByID returns ErrInvalidID or ErrNotFound like MessageRepository.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail returns ErrNotFound if nobody registered the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByAccessToken returns nil, nil when no user holds the token.
	FindByAccessToken(ctx context.Context, token string) (*models.User, error)
}
