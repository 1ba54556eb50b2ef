package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
)

// Array and uuid columns are cast to text so they scan straight into the
// string-typed model.
const messageColumns = `
	id::text, text, hearts, created_at, author_id::text,
	liked_by_user_ids::text[], liked_by_client_ids`

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	if err := row.Scan(
		&msg.ID,
		&msg.Text,
		&msg.HeartCount,
		&msg.CreatedAt,
		&msg.AuthorID,
		&msg.LikedByUserIDs,
		&msg.LikedByClientIDs,
	); err != nil {
		return nil, err
	}
	msg.Normalize()
	return &msg, nil
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, repository.ErrInvalidID
	}
	return parsed, nil
}

func (s *MessageStore) Create(ctx context.Context, text string, authorID *string) (*models.Message, error) {
	var author *uuid.UUID
	if authorID != nil {
		parsed, err := parseID(*authorID)
		if err != nil {
			return nil, fmt.Errorf("author id: %w", err)
		}
		author = &parsed
	}

	query := `
		INSERT INTO messages (text, author_id)
		VALUES ($1, $2)
		RETURNING ` + messageColumns

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, text, author))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (s *MessageStore) GetByID(ctx context.Context, id string) (*models.Message, error) {
	messageID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return msg, nil
}

func (s *MessageStore) List(ctx context.Context, opts repository.ListOptions) ([]models.Message, error) {
	opts = opts.WithDefaults()

	query := `SELECT ` + messageColumns + ` FROM messages`
	switch opts.Hearts {
	case repository.HeartsSome:
		query += ` WHERE hearts > 0`
	case repository.HeartsNone:
		query += ` WHERE hearts = 0`
	}

	// Both parts come from closed enums, never from raw input.
	column := "created_at"
	if opts.Sort == repository.SortByHearts {
		column = "hearts"
	}
	direction := "DESC"
	if opts.Order == repository.SortAsc {
		direction = "ASC"
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id %s`, column, direction, direction)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

func (s *MessageStore) IncrementHeart(ctx context.Context, id string, like repository.Like) (*models.Message, error) {
	messageID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var query string
	var args []any

	if like.UserID != "" {
		userID, err := parseID(like.UserID)
		if err != nil {
			return nil, fmt.Errorf("liker id: %w", err)
		}
		// Users are recorded once but counted every time.
		query = `
			UPDATE messages
			SET hearts = hearts + 1,
			    liked_by_user_ids = CASE
			        WHEN $2 = ANY(liked_by_user_ids) THEN liked_by_user_ids
			        ELSE array_append(liked_by_user_ids, $2)
			    END
			WHERE id = $1
			RETURNING ` + messageColumns
		args = []any{messageID, userID}
	} else {
		// The row lock plus the re-checked WHERE clause make this a
		// compare-and-set: of two racing likes from one client, the
		// second matches zero rows.
		query = `
			UPDATE messages
			SET hearts = hearts + 1,
			    liked_by_client_ids = array_append(liked_by_client_ids, $2)
			WHERE id = $1 AND NOT ($2 = ANY(liked_by_client_ids))
			RETURNING ` + messageColumns
		args = []any{messageID, like.ClientID}
	}

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return msg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("increment hearts: %w", err)
	}

	// Zero rows: either the message is gone or the client already liked it.
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, repository.ErrAlreadyLiked
}

func (s *MessageStore) Delete(ctx context.Context, id string) (*models.Message, error) {
	messageID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := `DELETE FROM messages WHERE id = $1 RETURNING ` + messageColumns

	msg, err := scanMessage(s.pool.QueryRow(ctx, query, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return msg, nil
}

func (s *MessageStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
